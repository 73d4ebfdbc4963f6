// package formatter renders clipboard item listings in various formats (table, CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/weicopy/cli/internal/models"
)

const timeLayout = "2006-01-02 15:04"

// WriteTable renders items as an aligned table.
func WriteTable(w io.Writer, items []models.ClipboardItem) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tTYPE\tCONTENT\tCREATED"); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			item.ID, item.Type, truncate(item.DisplayName(), 48), item.CreatedAt.Local().Format(timeLayout)); err != nil {
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}
	return nil
}

// ToCSV converts items to CSV with columns: ID, Type, Content, Filename, Created
func ToCSV(items []models.ClipboardItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Type", "Content", "Filename", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			item.ID,
			item.Type,
			item.Content,
			item.Filename,
			item.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown converts items to a Markdown listing.
func ToMarkdown(items []models.ClipboardItem) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Clipboard\n\n")
	buf.WriteString(fmt.Sprintf("**Items**: %d\n\n", len(items)))

	for i, item := range items {
		label := item.DisplayName()
		switch item.Type {
		case models.TypeText:
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, label))
		default:
			buf.WriteString(fmt.Sprintf("%d. [%s] %s (`%s`)\n", i+1, item.Type, label, item.ID))
		}
	}

	return buf.Bytes()
}

// ToJSON converts items to JSON, optionally indented.
func ToJSON(items []models.ClipboardItem, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(items, "", "  ")
	}
	return json.Marshal(items)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
