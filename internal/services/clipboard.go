package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/weicopy/cli/internal/models"
	"github.com/weicopy/cli/internal/shared"
)

// List retrieves every clipboard item for the authenticated user, newest
// first.
func (c *Client) List(ctx context.Context) ([]models.ClipboardItem, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/clipboard", nil, "")
	if err != nil {
		return nil, err
	}

	var items []models.ClipboardItem
	if err := decodeJSON(resp, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Latest retrieves the most recent clipboard item. Returns
// [shared.ErrNotFound] when the clipboard is empty.
func (c *Client) Latest(ctx context.Context) (*models.ClipboardItem, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/clipboard/latest", nil, "")
	if err != nil {
		return nil, err
	}

	var item models.ClipboardItem
	if err := decodeJSON(resp, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// AddText pushes a text snippet to the shared clipboard. The body is sent
// raw as text/plain. Empty or whitespace-only text is rejected before any
// request is made.
func (c *Client) AddText(ctx context.Context, text string) (*models.ClipboardItem, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text content is empty", shared.ErrValidation)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/clipboard/text", strings.NewReader(text), "text/plain")
	if err != nil {
		return nil, err
	}

	var item models.ClipboardItem
	if err := decodeJSON(resp, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// AddFile uploads an arbitrary file as a multipart form.
func (c *Client) AddFile(ctx context.Context, filename string, data []byte) (*models.ClipboardItem, error) {
	return c.upload(ctx, "/api/clipboard/file", filename, data)
}

// AddImage uploads image bytes via the image endpoint, which the server
// records with type "image" so clients render a preview.
func (c *Client) AddImage(ctx context.Context, filename string, data []byte) (*models.ClipboardItem, error) {
	return c.upload(ctx, "/api/clipboard/image", filename, data)
}

func (c *Client) upload(ctx context.Context, path, filename string, data []byte) (*models.ClipboardItem, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", shared.ErrValidation)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", shared.ErrValidation)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var item models.ClipboardItem
	if err := decodeJSON(resp, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// FetchItem downloads the binary payload behind an image or file item. The
// filename comes from the Content-Disposition header when the server sends
// one.
func (c *Client) FetchItem(ctx context.Context, id string) (*Binary, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: item id is required", shared.ErrMissingArgument)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/clipboard/file/"+id, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}

	return &Binary{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    dispositionFilename(resp.Header.Get("Content-Disposition")),
	}, nil
}

// Delete removes an item from the shared clipboard. An item that is
// already gone counts as deleted.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: item id is required", shared.ErrMissingArgument)
	}

	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/clipboard/"+id, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
