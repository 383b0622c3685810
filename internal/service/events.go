package service

import (
	"context"
	"fmt"
	"time"

	"github.com/skvortsov/todoapp/internal/events"
	"github.com/skvortsov/todoapp/internal/logging"
)

// publishEvent sends a lifecycle event best-effort: failures are
// logged, never surfaced to the request.
func publishEvent(ctx context.Context, p *events.Producer, topic string, userID uint, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.PublishEvent(pubCtx, topic, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", topic, "error", err)
	}
}

func (s *AuthService) publish(ctx context.Context, topic string, userID uint, event map[string]any) {
	publishEvent(ctx, s.Events, topic, userID, event)
}

func (s *TodoService) publish(ctx context.Context, topic string, userID uint, event map[string]any) {
	publishEvent(ctx, s.Events, topic, userID, event)
}
