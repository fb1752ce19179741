package dataapi

import (
	"context"
	"sort"
	"time"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
)

// SymbolsUpload is one uploaded symbols archive.
type SymbolsUpload struct {
	ID       uint64    `json:"id"`
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	User     string    `json:"user"`
	Created  time.Time `json:"created"`
}

// SymbolsService wraps the symbols upload log.
type SymbolsService struct {
	client *Client
}

// Uploads fetches all symbol uploads, newest first.
func (s *SymbolsService) Uploads(ctx context.Context) ([]SymbolsUpload, error) {
	s.client.recordClassFetch("SymbolsUploads", cache.OutcomeMiss)

	var result struct {
		Hits  []SymbolsUpload `json:"hits"`
		Total int             `json:"total"`
	}

	if err := s.client.get(ctx, "/symbols/uploads/", nil, &result); err != nil {
		return nil, err
	}

	uploads := result.Hits

	// newest first regardless of the order the service answered in
	sort.SliceStable(uploads, func(i, j int) bool {
		return uploads[i].Created.After(uploads[j].Created)
	})

	return uploads, nil
}
