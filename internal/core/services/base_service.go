package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/SscSPs/mobile_money_core/internal/middleware"
	"github.com/google/uuid"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Clock func() time.Time
}

// Now returns the service clock truncated to the precision the database stores.
func (s *BaseService) Now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC().Truncate(time.Microsecond)
	}
	return time.Now().UTC().Truncate(time.Microsecond)
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// LogOutcome logs a failed command at Warn for business rejections and at Error otherwise.
func (s *BaseService) LogOutcome(ctx context.Context, err error, msg string, keyvals ...any) {
	if err == nil {
		return
	}
	if apperrors.KindOf(err) == apperrors.KindTechnical {
		s.LogError(ctx, err, msg, keyvals...)
		return
	}
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()), slog.String("kind", string(apperrors.KindOf(err))))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Warn(msg, args...)
}

// Authorize checks the actor has one of the required types.
func (s *BaseService) Authorize(actor domain.Actor, allowed ...domain.ActorType) error {
	if actor.ID == "" {
		return apperrors.NewAppError(apperrors.KindUnauthorized, "actor is required", nil)
	}
	if !actor.Is(allowed...) {
		return apperrors.Forbiddenf("actor type %s may not perform this operation", actor.Type)
	}
	return nil
}

// newID returns a time-ordered identifier so (createdAt, id) ordering follows insertion.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// notFoundAsForbidden hides the existence of an entity from callers that should not learn it.
func notFoundAsForbidden(err error, msg string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.Forbiddenf("%s", msg)
	}
	return err
}

func boolString(b bool) string { return strconv.FormatBool(b) }

func itoa(i int) string { return strconv.Itoa(i) }
