package event

import (
	"context"

	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/englishbooster/affiliate/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes every domain event to the audit logger. It
// subscribes as a wildcard handler.
type AuditLogHandler struct {
	logger *zap.Logger
}

func NewAuditLogHandler(l *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: l.Named("audit")}
}

func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

func (h *AuditLogHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	env, err := Serialize(e)
	if err != nil {
		return err
	}
	fields := []zap.Field{
		zap.String("event_id", env.EventID.String()),
		zap.String("event_type", env.EventType),
		zap.String("aggregate_type", env.AggregateType),
		zap.String("aggregate_id", env.AggregateID.String()),
		zap.Time("occurred_at", env.OccurredAt),
		zap.ByteString("payload", env.Payload),
	}
	if rid := logger.GetRequestID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if uid := logger.GetUserID(ctx); uid != "" {
		fields = append(fields, zap.String("actor_id", uid))
	}
	h.logger.Info("Domain event", fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
