package activity

import (
	"context"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// LogRepository defines activity log persistence
type LogRepository interface {
	Create(ctx context.Context, l *Log) error
	// FindAll supports date range on created_at, Search over description and
	// filters "user_id", "action", "module"
	FindAll(ctx context.Context, filter shared.Filter) ([]LogRow, int64, error)
	DistinctActions(ctx context.Context) ([]string, error)
}
