// Package shopping implements bulk list import and preset templates for
// the shopping module.
package shopping

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxImportLines caps a single import call.
const MaxImportLines = 100

// ParsedItem is one line of import text after parsing.
type ParsedItem struct {
	Name   string `json:"name"`
	Qty    int64  `json:"qty"`
	Note   string `json:"note"`
	Urgent bool   `json:"urgent"`
}

var qtyPattern = regexp.MustCompile(`^(\d+)[xX*](.+)$`)

var notePattern = regexp.MustCompile(`\(([^)]+)\)$`)

// ParseImportText parses newline-separated shopping lines. Blank lines
// are skipped. Each line follows the grammar:
//
//	[<qty>x] <name> [(<note>)] [!]
//
// e.g. "3x milk (whole) !" parses to qty 3, name "milk", note "whole",
// urgent. Quantity is clamped to 1..1000. Input past MaxImportLines is
// dropped; the second return reports whether that happened.
func ParseImportText(text string) ([]ParsedItem, bool) {
	lines := strings.Split(text, "\n")
	truncated := len(lines) > MaxImportLines
	if truncated {
		lines = lines[:MaxImportLines]
	}

	var items []ParsedItem
	for _, raw := range lines {
		if item, ok := ParseImportLine(raw); ok {
			items = append(items, item)
		}
	}
	return items, truncated
}

// ParseImportLine parses a single line. Returns false for blank lines.
func ParseImportLine(raw string) (ParsedItem, bool) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return ParsedItem{}, false
	}

	item := ParsedItem{Qty: 1, Name: line}

	if m := qtyPattern.FindStringSubmatch(line); m != nil {
		qty, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || qty < 1 {
			qty = 1
		}
		if qty > 1000 {
			qty = 1000
		}
		item.Qty = qty
		item.Name = strings.TrimSpace(m[2])
	}

	if strings.HasSuffix(item.Name, "!") {
		item.Urgent = true
		item.Name = strings.TrimSpace(strings.TrimSuffix(item.Name, "!"))
	}

	if m := notePattern.FindStringSubmatch(item.Name); m != nil {
		item.Note = strings.TrimSpace(m[1])
		item.Name = strings.TrimSpace(notePattern.ReplaceAllString(item.Name, ""))
	}

	return item, true
}
