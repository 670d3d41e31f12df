package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ToJSON serializes a report to pretty JSON.
func ToJSON(r *Report) (string, error) {
	if r == nil {
		return "", errors.New("nil report")
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToPlainText joins recognized words in emission order, one page per line.
func ToPlainText(r *Report) (string, error) {
	if r == nil {
		return "", errors.New("nil report")
	}
	if len(r.Words) == 0 {
		return "", nil
	}
	var lines []string
	var current []string
	page := r.Words[0].Page
	for _, w := range r.Words {
		if w.Page != page {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
			page = w.Page
		}
		current = append(current, w.Text)
	}
	lines = append(lines, strings.Join(current, " "))
	return strings.Join(lines, "\n"), nil
}

// ToCSV exports word-level structured data as CSV with header.
func ToCSV(r *Report) (string, error) {
	if r == nil {
		return "", errors.New("nil report")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"page", "x0", "y0", "x1", "y1", "confidence", "text"})
	for _, word := range r.Words {
		row := []string{
			strconv.Itoa(word.Page),
			fmt.Sprintf("%.1f", word.Box.X0),
			fmt.Sprintf("%.1f", word.Box.Y0),
			fmt.Sprintf("%.1f", word.Box.X1),
			fmt.Sprintf("%.1f", word.Box.Y1),
			fmt.Sprintf("%.2f", word.Confidence),
			word.Text,
		}
		_ = w.Write(row)
	}
	w.Flush()
	return buf.String(), nil
}
