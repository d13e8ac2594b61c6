package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/zlin/chanscan/internal/scan"
	"github.com/zlin/chanscan/internal/universe"
	"github.com/zlin/chanscan/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ScanHandler drives scans over a WebSocket connection
// ⭐ SSOT: 扫描 WebSocket 协议只在这个文件
type ScanHandler struct {
	source       SnapshotSource
	orchestrator *scan.Orchestrator
	defaults     scan.Config
	logger       *logger.Logger
}

// NewScanHandler creates a new scan handler. defaults fill fields the
// client omits in its start request.
func NewScanHandler(source SnapshotSource, orchestrator *scan.Orchestrator, defaults scan.Config, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		source:       source,
		orchestrator: orchestrator,
		defaults:     defaults,
		logger:       log,
	}
}

// scanRequest is one inbound client frame.
type scanRequest struct {
	Action string `json:"action"` // "start" | "stop"

	Boards       []string `json:"boards,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	RecencyDays  *int     `json:"recency_days,omitempty"`
	HistoryDays  *int     `json:"history_days,omitempty"`
	UseResonance *bool    `json:"use_resonance,omitempty"`
	MaxWorkers   *int     `json:"max_workers,omitempty"`
}

// scanFrame is one outbound server frame.
type scanFrame struct {
	Type      string        `json:"type"` // progress | found | finished | error
	Completed int           `json:"completed,omitempty"`
	Total     int           `json:"total,omitempty"`
	Result    *foundResult  `json:"result,omitempty"`
	Summary   *scan.Summary `json:"summary,omitempty"`
	Message   string        `json:"message,omitempty"`
}

type foundResult struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	ChangePct      float64 `json:"change_pct"`
	RiskRating     int     `json:"risk_rating"`
	ResonanceCount int     `json:"resonance_count"`
	SignalClass    string  `json:"signal_class"`
	SignalTime     string  `json:"signal_time"`
}

// wsConn serializes concurrent writes to one connection.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(frame scanFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(frame)
}

// Serve upgrades the connection and runs the scan protocol until the
// client disconnects.
func (h *ScanHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rawConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	conn := &wsConn{conn: rawConn}
	defer rawConn.Close()

	var (
		mu      sync.Mutex
		session *scan.Session
	)

	defer func() {
		mu.Lock()
		if session != nil {
			session.Stop()
		}
		mu.Unlock()
	}()

	for {
		var req scanRequest
		if err := rawConn.ReadJSON(&req); err != nil {
			return
		}

		switch req.Action {
		case "start":
			mu.Lock()
			running := session != nil && session.Status() == scan.StatusRunning
			mu.Unlock()
			if running {
				conn.send(scanFrame{Type: "error", Message: "扫描已在进行中"})
				continue
			}

			s, err := h.startScan(r, conn, req)
			if err != nil {
				conn.send(scanFrame{Type: "error", Message: err.Error()})
				continue
			}
			mu.Lock()
			session = s
			mu.Unlock()

		case "stop":
			mu.Lock()
			if session != nil {
				session.Stop()
			}
			mu.Unlock()

		default:
			conn.send(scanFrame{Type: "error", Message: "未知指令: " + req.Action})
		}
	}
}

func (h *ScanHandler) startScan(r *http.Request, conn *wsConn, req scanRequest) (*scan.Session, error) {
	ucfg, scfg := h.buildConfigs(req)

	snapshot := h.source.Fetch(r.Context())
	if snapshot.Empty() {
		return nil, errSnapshotUnavailable
	}

	filtered := universe.Filter(snapshot.Quotes, ucfg)
	session, events, err := h.orchestrator.Start(r.Context(), filtered, scfg)
	if err != nil {
		return nil, err
	}

	go h.stream(conn, events)
	return session, nil
}

// stream forwards orchestrator events as frames until the stream closes.
func (h *ScanHandler) stream(conn *wsConn, events <-chan scan.Event) {
	for ev := range events {
		var frame scanFrame
		switch ev.Kind {
		case scan.EventProgress:
			frame = scanFrame{Type: "progress", Completed: ev.Completed, Total: ev.Total}
		case scan.EventFound:
			r := ev.Result
			frame = scanFrame{Type: "found", Completed: ev.Completed, Total: ev.Total, Result: &foundResult{
				Code:           r.Instrument.Code,
				Name:           r.Instrument.Name,
				Price:          r.Instrument.Price,
				ChangePct:      r.Instrument.ChangePct,
				RiskRating:     r.RiskRating,
				ResonanceCount: r.ResonanceCount,
				SignalClass:    r.Base.Class,
				SignalTime:     r.Base.Time.Format("2006-01-02 15:04:05"),
			}}
		case scan.EventDiagnostic:
			frame = scanFrame{Type: "error", Message: ev.Code + ": " + ev.Reason}
		case scan.EventFinished:
			frame = scanFrame{Type: "finished", Completed: ev.Completed, Total: ev.Total, Summary: ev.Summary}
		}
		if err := conn.send(frame); err != nil {
			// 客户端断开: 事件流有界缓冲, 继续丢弃直到关闭
			for range events {
			}
			return
		}
	}
}

func (h *ScanHandler) buildConfigs(req scanRequest) (universe.Config, scan.Config) {
	ucfg := universe.Config{IncludeMain: true, MinPrice: 0, MaxPrice: 10000}
	if len(req.Boards) > 0 {
		ucfg.IncludeMain = false
		for _, b := range req.Boards {
			switch b {
			case "main":
				ucfg.IncludeMain = true
			case "gem":
				ucfg.IncludeGEM = true
			case "star":
				ucfg.IncludeSTAR = true
			case "bse":
				ucfg.IncludeBSE = true
			}
		}
	}
	if req.MinPrice != nil {
		ucfg.MinPrice = *req.MinPrice
	}
	if req.MaxPrice != nil {
		ucfg.MaxPrice = *req.MaxPrice
	}

	scfg := h.defaults
	if req.RecencyDays != nil {
		scfg.RecencyDays = *req.RecencyDays
	}
	if req.HistoryDays != nil {
		scfg.HistoryDays = *req.HistoryDays
	}
	if req.UseResonance != nil {
		scfg.UseResonance = *req.UseResonance
	}
	if req.MaxWorkers != nil {
		scfg.MaxWorkers = *req.MaxWorkers
	}
	return ucfg, scfg
}

type snapshotError string

const errSnapshotUnavailable snapshotError = "行情快照暂不可用, 请稍后重试"

func (e snapshotError) Error() string { return string(e) }
