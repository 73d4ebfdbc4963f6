package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/weicopy/cli/internal/models"
	"github.com/weicopy/cli/internal/services"
	"github.com/weicopy/cli/internal/shared"
)

// ExportOpts contains configuration for bulk clipboard exports.
type ExportOpts struct {
	OutputDir  string  // Base output directory (default: weicopy_export_{epoch})
	NumWorkers int     // Concurrent downloads (default: 5)
	RateLimit  float64 // Requests per second (default: 5)
}

// ItemExportResult records the outcome for a single item.
type ItemExportResult struct {
	ItemID  string `json:"item_id"`
	Name    string `json:"name"`
	File    string `json:"file,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ExportResult summarizes a bulk export run.
type ExportResult struct {
	TotalItems      int                `json:"total_items"`
	Downloaded      int                `json:"downloaded"`
	Failed          int                `json:"failed"`
	OutputDirectory string             `json:"output_directory"`
	ManifestPath    string             `json:"manifest_path"`
	Results         []ItemExportResult `json:"results"`
}

// Exporter downloads every clipboard item to local files.
type Exporter struct {
	api    services.ClipboardAPI
	logger *log.Logger
}

// NewExporter creates an Exporter reading from api.
func NewExporter(api services.ClipboardAPI, logger *log.Logger) *Exporter {
	return &Exporter{api: api, logger: logger}
}

type exportJob struct {
	index int
	item  models.ClipboardItem
}

// Export downloads all clipboard items concurrently with rate limiting
// and progress tracking. Text items are written directly; binary items
// are fetched through the download endpoint. Partial failures are
// recorded in the manifest rather than aborting the run.
func (e *Exporter) Export(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: client not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("weicopy_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	e.sendProgress(prog, fetchingItemsUpdate())
	items, err := e.api.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		TotalItems:      len(items),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ItemExportResult, 0, len(items)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan exportJob, len(items))
	results := make(chan ItemExportResult, len(items))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, limiter, jobs, results, opts.OutputDir)
	}

	for i, item := range items {
		jobs <- exportJob{index: i, item: item}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Success {
			result.Downloaded++
			e.sendProgress(prog, downloadCompletedUpdate(completed, len(items), res.Name))
		} else {
			result.Failed++
			e.sendProgress(prog, downloadFailedUpdate(completed, len(items), res.Name, fmt.Errorf("%s", res.Error)))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker downloads items from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan exportJob,
	results chan<- ItemExportResult,
	outputDir string,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportItem(ctx, limiter, job, outputDir)
	}
}

func (e *Exporter) exportItem(ctx context.Context, limiter *rate.Limiter, job exportJob, outputDir string) ItemExportResult {
	item := job.item
	res := ItemExportResult{ItemID: item.ID, Name: item.DisplayName()}

	var data []byte
	var filename string

	switch {
	case item.IsBinary():
		if err := limiter.Wait(ctx); err != nil {
			res.Error = err.Error()
			return res
		}
		bin, err := e.api.FetchItem(ctx, item.ID)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		data = bin.Data
		filename = item.Filename
		if filename == "" {
			filename = bin.Filename
		}
		if filename == "" {
			filename = item.ID + payloadExt(bin)
		}
	default:
		data = []byte(item.Content)
		filename = item.ID + ".txt"
	}

	// index prefix keeps files in clipboard order and avoids collisions
	path := filepath.Join(outputDir, fmt.Sprintf("%03d_%s", job.index+1, filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		res.Error = err.Error()
		return res
	}

	res.File = path
	res.Success = true
	return res
}

// sendProgress sends a progress update through the channel without
// blocking.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
