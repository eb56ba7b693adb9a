package billing

import (
	"context"

	"github.com/vidpoint/vidpoint/internal/source"
)

// Gate decides whether a request may start processing and records finished
// work for accounting.
type Gate interface {
	CanProcess(ctx context.Context, id source.VideoID) (bool, error)
	RecordUsage(ctx context.Context, id source.VideoID) error
}

// AllowAll admits every request. It is the default when no billing backend
// is configured.
type AllowAll struct{}

func (AllowAll) CanProcess(context.Context, source.VideoID) (bool, error) { return true, nil }

func (AllowAll) RecordUsage(context.Context, source.VideoID) error { return nil }
