package shopping

import (
	"fmt"
	"strings"
	"testing"
)

func TestParseImportLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want ParsedItem
	}{
		{"bare name", "milk", ParsedItem{Name: "milk", Qty: 1}},
		{"quantity prefix", "3x milk", ParsedItem{Name: "milk", Qty: 3}},
		{"uppercase x", "2X eggs", ParsedItem{Name: "eggs", Qty: 2}},
		{"star separator", "4*bread", ParsedItem{Name: "bread", Qty: 4}},
		{"note", "milk (whole)", ParsedItem{Name: "milk", Qty: 1, Note: "whole"}},
		{"urgent", "milk!", ParsedItem{Name: "milk", Qty: 1, Urgent: true}},
		{"everything", "3x milk (whole)!", ParsedItem{Name: "milk", Qty: 3, Note: "whole", Urgent: true}},
		{"qty clamped high", "5000x rice", ParsedItem{Name: "rice", Qty: 1000}},
		{"zero qty floors to one", "0x rice", ParsedItem{Name: "rice", Qty: 1}},
		{"whitespace trimmed", "  2x  butter  ", ParsedItem{Name: "butter", Qty: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseImportLine(tt.line)
			if !ok {
				t.Fatalf("ParseImportLine(%q) returned not-ok", tt.line)
			}
			if got != tt.want {
				t.Fatalf("ParseImportLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseImportLineBlank(t *testing.T) {
	for _, line := range []string{"", "   ", "\t"} {
		if _, ok := ParseImportLine(line); ok {
			t.Fatalf("blank line %q parsed as an item", line)
		}
	}
}

func TestParseImportText(t *testing.T) {
	text := "milk\n\n2x eggs (free range)\nbread!\n"
	items, truncated := ParseImportText(text)

	if truncated {
		t.Fatal("short input reported truncated")
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[1].Qty != 2 || items[1].Note != "free range" {
		t.Fatalf("items[1] = %+v", items[1])
	}
	if !items[2].Urgent {
		t.Fatalf("items[2] = %+v, want urgent", items[2])
	}
}

// Over-long imports keep the first MaxImportLines lines instead of
// failing the whole batch.
func TestParseImportTextTruncates(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxImportLines+20; i++ {
		fmt.Fprintf(&b, "item %d\n", i)
	}

	items, truncated := ParseImportText(b.String())
	if !truncated {
		t.Fatal("over-cap input not reported truncated")
	}
	if len(items) != MaxImportLines {
		t.Fatalf("got %d items, want %d", len(items), MaxImportLines)
	}
	if items[0].Name != "item 0" || items[len(items)-1].Name != fmt.Sprintf("item %d", MaxImportLines-1) {
		t.Fatalf("wrong lines kept: first=%q last=%q", items[0].Name, items[len(items)-1].Name)
	}
}

func TestPresetTemplate(t *testing.T) {
	tpl, ok := PresetTemplate("basics")
	if !ok {
		t.Fatal("basics preset missing")
	}
	if len(tpl.Items) == 0 {
		t.Fatal("basics preset has no items")
	}
	if _, ok := PresetTemplate("nope"); ok {
		t.Fatal("unknown preset id resolved")
	}
}
