package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Loader fetches the full catalog from a static JSON document. The source
// may be an http(s) URL or a local file path; the document is fetched fresh
// on every call since the data is static and small.
type Loader struct {
	source     string
	httpClient *http.Client
}

type catalogDocument struct {
	Products []Product `json:"products"`
}

func NewLoader(source string) *Loader {
	return &Loader{source: source, httpClient: &http.Client{}}
}

func (l *Loader) Load(ctx context.Context) ([]Product, error) {
	data, err := l.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return doc.Products, nil
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(l.source, "http://") || strings.HasPrefix(l.source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer func(b io.ReadCloser) {
			_ = b.Close()
		}(resp.Body)
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("catalog source returned status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(l.source)
}
