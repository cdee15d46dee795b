// Package activity records and lists the audit trail.
package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// Record writes an activity log for the actor through repo, which is normally
// the repository of the surrounding transaction so the log commits with the change.
func Record(ctx context.Context, repo activity.LogRepository, actor identity.Actor, action, module string, entityID *uuid.UUID, format string, args ...any) error {
	description := format
	if len(args) > 0 {
		description = fmt.Sprintf(format, args...)
	}
	l, err := activity.NewLog(activity.Entry{
		UserID:      actor.Ref(),
		Action:      action,
		Module:      module,
		EntityID:    entityID,
		Description: description,
	}, actor.IPAddress, actor.UserAgent)
	if err != nil {
		return err
	}
	return repo.Create(ctx, l)
}

// ActivityService serves the activity log viewer
type ActivityService struct {
	logs activity.LogRepository
}

// NewActivityService creates a new ActivityService
func NewActivityService(logs activity.LogRepository) *ActivityService {
	return &ActivityService{logs: logs}
}

// List returns a page of logs, newest first by default
func (s *ActivityService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[activity.LogRow], error) {
	filter = filter.Normalize()
	rows, total, err := s.logs.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[activity.LogRow]{}, err
	}
	return shared.NewPaginated(rows, total, filter.Page, filter.PageSize), nil
}

// Actions lists the distinct recorded actions for the filter dropdown
func (s *ActivityService) Actions(ctx context.Context) ([]string, error) {
	return s.logs.DistinctActions(ctx)
}
