package control_http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
)

var hc = &http.Client{Timeout: 10 * time.Second}

func Refresh(ctx context.Context, addr string) error {
	resp, err := call(ctx, http.MethodPost, addr, "/refresh", http.StatusAccepted)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func OpenItem(ctx context.Context, addr, id string) error {
	resp, err := call(ctx, http.MethodPost, addr, "/menu/"+url.PathEscape(id)+"/open", http.StatusNoContent)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Status fetches the latest snapshot; nil means the watcher has not completed a check yet.
func Status(ctx context.Context, addr string) (*domain.OverallStatus, error) {
	resp, err := call(ctx, http.MethodGet, addr, "/status", http.StatusOK, http.StatusNoContent)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	var st domain.OverallStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

func call(ctx context.Context, method, addr, path string, ok ...int) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, "http://"+addr+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watcher not reachable at %s: %w", addr, err)
	}
	for _, code := range ok {
		if resp.StatusCode == code {
			return resp, nil
		}
	}
	_ = resp.Body.Close()
	return nil, fmt.Errorf("watcher %s %s: %s", method, path, resp.Status)
}
