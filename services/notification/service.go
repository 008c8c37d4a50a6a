package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogNotificationService is the default implementation: it records each
// dispatch in the structured log. Real delivery channels (push, email)
// slot in behind the same interface.
type LogNotificationService struct {
	Logger *zap.Logger
}

func (s *LogNotificationService) Notify(ctx context.Context, partyID, eventKind string, payload map[string]string) error {
	fields := []zap.Field{
		zap.String("partyId", partyID),
		zap.String("eventKind", eventKind),
	}
	for k, v := range payload {
		fields = append(fields, zap.String(k, v))
	}
	s.Logger.Info("notification dispatched", fields...)
	return nil
}
