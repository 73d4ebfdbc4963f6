package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/weicopy/cli/internal/clip"
	"github.com/weicopy/cli/internal/models"
	"github.com/weicopy/cli/internal/services"
)

// PayloadKind tags what a paste event contained.
type PayloadKind int

const (
	PayloadUnhandled PayloadKind = iota
	PayloadText
	PayloadImage
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadText:
		return "text"
	case PayloadImage:
		return "image"
	default:
		return "unhandled"
	}
}

// Payload is the classified content of a paste event.
type Payload struct {
	Kind PayloadKind
	Text string
	Data []byte
	MIME string
}

// Classify inspects clipboard items and picks the one to act on. The
// first item with a recognized MIME prefix wins, in arrival order;
// anything else is unhandled. Classification never touches the network.
func Classify(items []clip.Item) Payload {
	for _, item := range items {
		switch {
		case strings.HasPrefix(item.MIME, "text/plain"):
			return Payload{Kind: PayloadText, Text: string(item.Data), MIME: item.MIME}
		case strings.HasPrefix(item.MIME, "image/"):
			return Payload{Kind: PayloadImage, Data: item.Data, MIME: item.MIME}
		}
	}
	return Payload{Kind: PayloadUnhandled}
}

// Router dispatches classified paste payloads. Images always upload;
// text goes to the registered handler so the TUI can drop it into the
// compose box, while the CLI uploads it directly.
type Router struct {
	api    services.ClipboardAPI
	logger *log.Logger

	onText     func(ctx context.Context, text string) error
	onUploaded func(item *models.ClipboardItem)
}

// NewRouter creates a Router pushing to api. With no text handler set,
// text payloads are uploaded via AddText.
func NewRouter(api services.ClipboardAPI, logger *log.Logger) *Router {
	return &Router{api: api, logger: logger}
}

// SetTextHandler overrides the default text dispatch.
func (r *Router) SetTextHandler(fn func(ctx context.Context, text string) error) {
	r.onText = fn
}

// SetUploadedHandler registers a callback invoked after a successful
// image upload, typically to trigger a refresh.
func (r *Router) SetUploadedHandler(fn func(item *models.ClipboardItem)) {
	r.onUploaded = fn
}

// Dispatch routes one payload. Unhandled payloads are dropped without
// error.
func (r *Router) Dispatch(ctx context.Context, p Payload) error {
	switch p.Kind {
	case PayloadText:
		if r.onText != nil {
			return r.onText(ctx, p.Text)
		}
		_, err := r.api.AddText(ctx, p.Text)
		return err

	case PayloadImage:
		ext := "png"
		if idx := strings.Index(p.MIME, "/"); idx >= 0 && idx+1 < len(p.MIME) {
			ext = p.MIME[idx+1:]
		}
		filename := fmt.Sprintf("clipboard-%d.%s", time.Now().Unix(), ext)
		item, err := r.api.AddImage(ctx, filename, p.Data)
		if err != nil {
			return err
		}
		if r.onUploaded != nil {
			r.onUploaded(item)
		}
		return nil

	default:
		r.logger.Debug("ignoring unhandled paste payload")
		return nil
	}
}

// Attach watches backend for clipboard changes and dispatches each one,
// blocking until ctx is done. Dispatch errors are logged and watching
// continues.
func (r *Router) Attach(ctx context.Context, backend clip.Backend) error {
	changes := backend.Watch()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
			items, err := backend.Read()
			if err != nil {
				r.logger.Warn("failed to read clipboard", "err", err)
				continue
			}
			payload := Classify(items)
			if err := r.Dispatch(ctx, payload); err != nil {
				r.logger.Warn("paste dispatch failed", "kind", payload.Kind.String(), "err", err)
			}
		}
	}
}
