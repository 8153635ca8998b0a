package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	c "github.com/unkn0wn-root/fallcache/codec"
)

const defaultMaxBody = 8 << 20 // 8 MiB

// HTTP fetches the record set with a single GET against a fixed endpoint
// and decodes the body with a Codec over the whole slice (for JSON,
// codec.JSON[[]R]{}). Transport failures, non-2xx statuses, oversized
// bodies, and decode failures are all errors; the store normalizes them
// into one remote-unavailable outcome.
type HTTP[R any] struct {
	url    string
	client *http.Client
	codec  c.Codec[[]R]
	max    int64
	header http.Header
}

type HTTPConfig[R any] struct {
	// Required
	URL   string
	Codec c.Codec[[]R] // decodes the response body into the record set

	Client  *http.Client // nil => http.DefaultClient
	MaxBody int64        // response size cap in bytes; 0 => 8 MiB
	Header  http.Header  // extra request headers (e.g. auth)
}

func NewHTTP[R any](cfg HTTPConfig[R]) (*HTTP[R], error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("source: url is required")
	}
	if cfg.Codec == nil {
		return nil, fmt.Errorf("source: codec is required")
	}
	h := &HTTP[R]{
		url:    cfg.URL,
		client: cfg.Client,
		codec:  cfg.Codec,
		max:    cfg.MaxBody,
		header: cfg.Header,
	}
	if h.client == nil {
		h.client = http.DefaultClient
	}
	if h.max <= 0 {
		h.max = defaultMaxBody
	}
	return h, nil
}

func (h *HTTP[R]) FetchAll(ctx context.Context) ([]R, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range h.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("source: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > h.max {
		return nil, fmt.Errorf("source: response body exceeds %d bytes", h.max)
	}
	return h.codec.Decode(body)
}
