package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPostCreated, n.handlePostCreated)
	n.dispatcher.Subscribe(events.EventPostPublished, n.handlePostPublished)
	n.dispatcher.Subscribe(events.EventPostDeleted, n.handlePostDeleted)
}

func (n *NotificationService) handlePostCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("PostCreated", zap.Int64("post_id", event.PostID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handlePostPublished(ctx context.Context, event events.Event) error {
	n.logger.Info("PostPublished", zap.Int64("post_id", event.PostID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePostDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("PostDeleted", zap.Int64("post_id", event.PostID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("post_id", event.PostID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("post_id", event.PostID),
		zap.String("event_type", string(event.Type)))
}
