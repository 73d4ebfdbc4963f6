package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/weicopy/cli/internal/models"
	itesting "github.com/weicopy/cli/internal/testing"
)

func fixtureItems() []models.ClipboardItem {
	created := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	return []models.ClipboardItem{
		{ID: "a1", Type: models.TypeText, Content: "hello world", CreatedAt: created},
		{ID: "b2", Type: models.TypeImage, Content: "shot", Filename: "shot.png", CreatedAt: created},
	}
}

func TestWriteTable(t *testing.T) {
	t.Run("renders header and rows", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteTable(&buf, fixtureItems()); err != nil {
			t.Fatalf("WriteTable() error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"ID", "TYPE", "a1", "hello world", "shot.png"} {
			if !strings.Contains(out, want) {
				t.Errorf("table output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("propagates write failures", func(t *testing.T) {
		if err := WriteTable(&itesting.FWriter{}, fixtureItems()); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("truncates long content", func(t *testing.T) {
		var buf bytes.Buffer
		long := []models.ClipboardItem{{
			ID:      "c3",
			Type:    models.TypeText,
			Content: strings.Repeat("x", 200),
		}}
		if err := WriteTable(&buf, long); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), strings.Repeat("x", 60)) {
			t.Error("content should be truncated")
		}
		if !strings.Contains(buf.String(), "...") {
			t.Error("truncated content should carry an ellipsis")
		}
	})
}

func TestToCSV(t *testing.T) {
	data, err := ToCSV(fixtureItems())
	if err != nil {
		t.Fatalf("ToCSV() error: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "ID" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[2][3] != "shot.png" {
		t.Errorf("expected filename column, got %v", records[2])
	}
}

func TestToMarkdown(t *testing.T) {
	out := string(ToMarkdown(fixtureItems()))

	if !strings.Contains(out, "# Clipboard") {
		t.Error("missing title")
	}
	if !strings.Contains(out, "**Items**: 2") {
		t.Error("missing item count")
	}
	if !strings.Contains(out, "1. hello world") {
		t.Errorf("missing text entry:\n%s", out)
	}
	if !strings.Contains(out, "[image] shot.png") {
		t.Errorf("missing image entry:\n%s", out)
	}
}

func TestToJSON(t *testing.T) {
	t.Run("compact", func(t *testing.T) {
		data, err := ToJSON(fixtureItems(), false)
		if err != nil {
			t.Fatal(err)
		}
		var decoded []models.ClipboardItem
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 {
			t.Errorf("expected 2 items, got %d", len(decoded))
		}
	})

	t.Run("pretty", func(t *testing.T) {
		data, err := ToJSON(fixtureItems(), true)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "\n  ") {
			t.Error("expected indented output")
		}
	})
}
