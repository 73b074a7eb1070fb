// AngelaMos | 2026
// admin.go

package client

import (
	"context"
	"net/http"
)

type AdminService struct {
	client *Client
}

func (s *AdminService) Stats(ctx context.Context) (*PlatformStats, error) {
	var out PlatformStats
	if _, err := s.client.do(ctx, http.MethodGet, "/admin/stats/platform", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Snapshot asks the server to write a db.json snapshot and returns its
// path on the server.
func (s *AdminService) Snapshot(ctx context.Context) (string, error) {
	var out struct {
		Path string `json:"path"`
	}
	if _, err := s.client.do(ctx, http.MethodPost, "/admin/snapshot", nil, nil, &out); err != nil {
		return "", err
	}
	return out.Path, nil
}
