package pixdex

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
)

// Search uploads the query image and returns products ranked by similarity,
// most similar first. An empty slice means the catalog had nothing to return.
func (c *Client) Search(ctx context.Context, image io.Reader, opts ...SearchOption) ([]SearchResult, error) {
	cfg := &searchConfig{filename: "query.jpg"}
	for _, o := range opts {
		o.applySearch(cfg)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", cfg.filename)
	if err != nil {
		return nil, fmt.Errorf("pixdex: build multipart body: %w", err)
	}
	if _, err := io.Copy(fw, image); err != nil {
		return nil, fmt.Errorf("pixdex: read image: %w", err)
	}
	if cfg.k > 0 {
		if err := w.WriteField("k", strconv.Itoa(cfg.k)); err != nil {
			return nil, fmt.Errorf("pixdex: build multipart body: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("pixdex: build multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, "POST", "/api/v1/search", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp searchResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
