package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stress-quiz/internal/domain"
)

// maxDocument caps a dataset download.
const maxDocument = 8 << 20

// Loader fetches <base>/<name>.json over HTTP, the way a static site serves its question files.
type Loader struct {
	base   string
	client *http.Client
}

func NewLoader(base string, client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Loader{base: strings.TrimRight(base, "/"), client: client}
}

func (l *Loader) LoadDataset(ctx context.Context, name string) (domain.Dataset, error) {
	target := l.base + "/" + url.PathEscape(name) + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.Dataset{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Dataset{}, fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, target)
	case resp.StatusCode != http.StatusOK:
		return domain.Dataset{}, fmt.Errorf("fetch %s: unexpected status %s", target, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocument))
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read %s: %w", target, err)
	}
	ds, err := domain.DecodeDataset(body)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("parse %s: %w", target, err)
	}
	return ds, nil
}
