package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/weicopy/cli/internal/models"
	"github.com/weicopy/cli/internal/services"
	"github.com/weicopy/cli/internal/shared"
)

func TestExport(t *testing.T) {
	api := &mockAPI{
		items: []models.ClipboardItem{
			{ID: "t1", Type: models.TypeText, Content: "note one"},
			{ID: "i1", Type: models.TypeImage, Content: "shot", Filename: "shot.png"},
			{ID: "t2", Type: models.TypeText, Content: "note two"},
		},
		binaries: map[string]*services.Binary{
			"i1": {Data: []byte("pngbytes"), ContentType: "image/png", Filename: "shot.png"},
		},
	}

	exporter := NewExporter(api, shared.NewLogger(os.Stderr))
	outDir := filepath.Join(t.TempDir(), "export")

	result, err := exporter.Export(context.Background(), nil, ExportOpts{OutputDir: outDir, NumWorkers: 2})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	if result.TotalItems != 3 || result.Downloaded != 3 || result.Failed != 0 {
		t.Errorf("unexpected counts: %+v", result)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	// 3 items + manifest
	if len(entries) != 4 {
		t.Errorf("expected 4 files, found %d", len(entries))
	}

	manifest, err := os.ReadFile(result.ManifestPath)
	if err != nil {
		t.Fatalf("manifest unreadable: %v", err)
	}
	var decoded ExportResult
	if err := json.Unmarshal(manifest, &decoded); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if decoded.Downloaded != 3 {
		t.Errorf("manifest downloaded = %d, want 3", decoded.Downloaded)
	}

	for _, res := range result.Results {
		if !res.Success {
			t.Errorf("item %s failed: %s", res.ItemID, res.Error)
			continue
		}
		data, err := os.ReadFile(res.File)
		if err != nil {
			t.Errorf("exported file missing: %v", err)
			continue
		}
		if res.ItemID == "i1" && string(data) != "pngbytes" {
			t.Errorf("binary payload wrong: %q", data)
		}
	}
}

func TestExportPartialFailure(t *testing.T) {
	api := &mockAPI{
		items: []models.ClipboardItem{
			{ID: "t1", Type: models.TypeText, Content: "fine"},
			{ID: "i1", Type: models.TypeImage, Filename: "gone.png"},
		},
		fetchErr: fmt.Errorf("download failed"),
	}

	exporter := NewExporter(api, shared.NewLogger(os.Stderr))
	result, err := exporter.Export(context.Background(), nil, ExportOpts{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	if result.Downloaded != 1 || result.Failed != 1 {
		t.Errorf("expected 1 success and 1 failure, got %+v", result)
	}
}

func TestExportProgress(t *testing.T) {
	api := &mockAPI{items: []models.ClipboardItem{{ID: "t1", Type: models.TypeText, Content: "x"}}}
	exporter := NewExporter(api, shared.NewLogger(os.Stderr))

	prog := make(chan ProgressUpdate, 16)
	if _, err := exporter.Export(context.Background(), prog, ExportOpts{OutputDir: t.TempDir()}); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	close(prog)

	var phases []Phase
	for u := range prog {
		phases = append(phases, u.Phase)
	}
	if len(phases) < 2 {
		t.Errorf("expected fetch and download updates, got %v", phases)
	}
	if phases[0] != FetchItems {
		t.Errorf("first update should be fetch_items, got %v", phases[0])
	}
}
