package service

import (
	"context"
	"fmt"
	"log/slog"

	"selfreg-backend/internal/apperr"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/ports"
)

// ActivityRecorder appends audit entries for admin mutations. A failed write is
// logged and does not fail the mutation it describes.
type ActivityRecorder struct {
	Store  ports.ActivityLogStore
	Logger *slog.Logger
}

func (r ActivityRecorder) Record(ctx context.Context, actor string, typ domain.ActivityLogType, title, format string, args ...any) {
	if r.Store == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if _, err := r.Store.Create(ctx, ports.NewActivityLog{Title: title, Message: msg, Actor: actor, Type: typ}); err != nil && r.Logger != nil {
		r.Logger.Warn("record activity", "title", title, "actor", actor, "err", err)
	}
}

type ActivityService struct {
	Store  ports.ActivityLogStore
	Access Authorizer
}

// List returns the most recent audit entries. Reading the audit trail is an admin-management capability.
func (s ActivityService) List(ctx context.Context, actor domain.Actor, limit int) ([]domain.ActivityLog, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAdminUsers, domain.PermRead); err != nil {
		return nil, err
	}
	items, err := s.Store.List(ctx, limit)
	if err != nil {
		return nil, apperr.Upstream(err, "list activity")
	}
	return items, nil
}

func actorName(actor domain.Actor) string {
	if actor.Username == "" {
		return domain.SelfApprovedBy
	}
	return actor.Username
}
