package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/weicopy/cli/internal/clip"
	"github.com/weicopy/cli/internal/formatter"
	"github.com/weicopy/cli/internal/models"
	"github.com/weicopy/cli/internal/shared"
	"github.com/weicopy/cli/internal/tasks"
)

// imageExtensions are uploaded via the image endpoint so other clients
// render a preview.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true,
}

// ClipboardList prints the shared clipboard, optionally filtered by type
// or served from the local cache.
func (r *Runner) ClipboardList(ctx context.Context, cmd *cli.Command) error {
	itemType := cmd.String("type")
	if itemType != "" && itemType != models.TypeText && itemType != models.TypeImage && itemType != models.TypeFile {
		return fmt.Errorf("%w: unknown type %q", shared.ErrValidation, itemType)
	}

	var items []models.ClipboardItem
	var err error

	if cmd.Bool("cached") {
		cache, closeCache, cacheErr := r.openCache()
		if cacheErr != nil {
			return cacheErr
		}
		defer closeCache()

		if itemType != "" {
			items, err = cache.ByType(itemType)
		} else {
			items, err = cache.All()
		}
	} else {
		items, err = r.client.List(ctx)
		if err == nil {
			items = models.FilterItems(items, itemType)
			r.writeCache(items, itemType)
		}
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	switch format := cmd.String("format"); format {
	case "table", "":
		return formatter.WriteTable(r.output, items)
	case "csv":
		data, err := formatter.ToCSV(items)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "markdown", "md":
		return r.writePlain("%s", formatter.ToMarkdown(items))
	case "json":
		return r.writeJSON(items, cmd.Bool("pretty"))
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrValidation, format)
	}
}

// writeCache mirrors a full listing into the snapshot cache. Failures
// only cost the offline copy, so they log instead of aborting.
func (r *Runner) writeCache(items []models.ClipboardItem, itemType string) {
	if itemType != "" || r.config.CachePath() == "" {
		return
	}
	cache, closeCache, err := r.openCache()
	if err != nil {
		r.logger.Debug("cache unavailable", "err", err)
		return
	}
	defer closeCache()
	if err := cache.ReplaceAll(items); err != nil {
		r.logger.Warn("failed to update cache", "err", err)
	}
}

// ClipboardAdd pushes a text snippet from the argument or stdin.
func (r *Runner) ClipboardAdd(ctx context.Context, cmd *cli.Command) error {
	text := cmd.StringArg("text")
	if text == "" || text == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	item, err := r.client.AddText(ctx, text)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Pushed snippet %s\n", item.ID)
}

// ClipboardUpload pushes a local file, routing images through the image
// endpoint unless told otherwise.
func (r *Runner) ClipboardUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	filename := filepath.Base(path)

	asImage := cmd.Bool("image") || imageExtensions[strings.ToLower(filepath.Ext(filename))]

	var item *models.ClipboardItem
	if asImage {
		item, err = r.client.AddImage(ctx, filename, data)
	} else {
		item, err = r.client.AddFile(ctx, filename, data)
	}
	if err != nil {
		return err
	}

	return r.writePlain("✓ Uploaded %s (%s) as %s\n", filename, shared.FormatSize(int64(len(data))), item.ID)
}

// ClipboardGet downloads the payload behind an image or file item.
func (r *Runner) ClipboardGet(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	bin, err := r.client.FetchItem(ctx, id)
	if err != nil {
		return err
	}

	dest := cmd.String("output")
	if dest == "" {
		dest = bin.Filename
	}
	if dest == "" {
		dest = id
	}

	if err := os.WriteFile(dest, bin.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return r.writePlain("✓ Saved %s (%s)\n", dest, shared.FormatSize(int64(len(bin.Data))))
}

// ClipboardLatest shows the most recent item.
func (r *Runner) ClipboardLatest(ctx context.Context, cmd *cli.Command) error {
	item, err := r.client.Latest(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(item, cmd.Bool("pretty"))
	}
	if item.Type == models.TypeText {
		return r.writePlain("%s\n", item.Content)
	}
	return r.writePlain("[%s] %s (fetch with `weicopy get %s`)\n", item.Type, item.DisplayName(), item.ID)
}

// ClipboardDelete removes an item; a missing item still counts as gone.
func (r *Runner) ClipboardDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	if err := r.client.Delete(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", id)
}

// ClipboardCopy puts a shared text item (the latest, unless an ID is
// given) on the local clipboard.
func (r *Runner) ClipboardCopy(ctx context.Context, cmd *cli.Command) error {
	var item *models.ClipboardItem
	var err error

	if id := cmd.StringArg("id"); id != "" {
		items, listErr := r.client.List(ctx)
		if listErr != nil {
			return listErr
		}
		for i := range items {
			if items[i].ID == id {
				item = &items[i]
				break
			}
		}
		if item == nil {
			return fmt.Errorf("%w: %s", shared.ErrNotFound, id)
		}
	} else {
		item, err = r.client.Latest(ctx)
		if err != nil {
			return err
		}
	}

	if item.Type != models.TypeText {
		return fmt.Errorf("%w: item %s is %s, use `weicopy get`", shared.ErrValidation, item.ID, item.Type)
	}

	backend := clip.New(r.logger)
	defer backend.Close()

	if err := backend.Write([]clip.Item{{MIME: "text/plain", Data: []byte(item.Content)}}); err != nil {
		return err
	}
	return r.writePlain("✓ Copied %s to the local clipboard\n", item.ID)
}

// ClipboardPaste pushes the local clipboard once, or continuously with
// --watch.
func (r *Runner) ClipboardPaste(ctx context.Context, cmd *cli.Command) error {
	backend := clip.New(r.logger)
	defer backend.Close()

	router := tasks.NewRouter(r.client, r.logger)
	router.SetUploadedHandler(func(item *models.ClipboardItem) {
		r.writePlain("✓ Uploaded %s\n", item.ID)
	})

	if cmd.Bool("watch") {
		r.writePlain("Watching the clipboard, ctrl+c to stop\n")
		if err := router.Attach(ctx, backend); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	items, err := backend.Read()
	if err != nil {
		return err
	}
	payload := tasks.Classify(items)
	if payload.Kind == tasks.PayloadUnhandled {
		return fmt.Errorf("%w: nothing usable on the clipboard", shared.ErrValidation)
	}
	if err := router.Dispatch(ctx, payload); err != nil {
		return err
	}
	if payload.Kind == tasks.PayloadText {
		return r.writePlain("✓ Pushed clipboard text\n")
	}
	return nil
}

// ClipboardHistory prints everything the local cache has ever seen,
// including items since deleted from the server.
func (r *Runner) ClipboardHistory(ctx context.Context, cmd *cli.Command) error {
	cache, closeCache, err := r.openCache()
	if err != nil {
		return err
	}
	defer closeCache()

	items, err := cache.History()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}
	return formatter.WriteTable(r.output, items)
}

// ClipboardExport downloads the whole clipboard into a directory.
func (r *Runner) ClipboardExport(ctx context.Context, cmd *cli.Command) error {
	exporter := tasks.NewExporter(r.client, r.logger)

	prog := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := exporter.Export(ctx, prog, tasks.ExportOpts{
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Exported %d/%d items to %s", result.Downloaded, result.TotalItems, result.OutputDirectory)
	if result.Failed > 0 {
		r.writePlain("%d items failed, see %s\n", result.Failed, result.ManifestPath)
	}
	return nil
}
