// Package backtest re-prices previously exported recommendations against a
// fresh snapshot and summarizes the strategy's performance.
package backtest

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Row is one recommendation, parsed from an export file and later enriched
// by Evaluate. Unresolved rows keep Resolved == false; that is a valid
// terminal state, not an error.
type Row struct {
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	RecommendedPrice float64 `json:"recommended_price"`
	RecommendDate    string  `json:"recommend_date"`

	Resolved     bool    `json:"resolved"`
	CurrentPrice float64 `json:"current_price,omitempty"`
	Change       float64 `json:"change,omitempty"`
	PctChange    float64 `json:"pct_change,omitempty"`
}

var (
	codeRe = regexp.MustCompile(`^\d{6}$`)
	dateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// Parse reads rows back out of an export file. The format is the stable
// contract written by the report package: a title line carrying the scan
// date, a dashed rule opening the data section, whitespace-separated rows
// with a 6-digit code, and a dashed rule or the 共-N summary closing it.
// Lines that do not fit are skipped, never fatal.
func Parse(r io.Reader) ([]Row, error) {
	var rows []Row
	recDate := "未知"
	inData := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.Contains(line, "A股买点扫描结果") {
			if m := dateRe.FindString(line); m != "" {
				recDate = m
			}
			continue
		}

		if strings.HasPrefix(line, "----------") {
			if inData {
				break
			}
			inData = true
			continue
		}
		if inData && strings.HasPrefix(line, "共 ") {
			break
		}
		if !inData || line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		code := parts[0]
		if !codeRe.MatchString(code) {
			continue
		}
		price, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			continue
		}

		rows = append(rows, Row{
			Code:             code,
			Name:             parts[1],
			RecommendedPrice: price,
			RecommendDate:    recDate,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
