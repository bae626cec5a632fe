package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"storybook-server/internal/config"
)

// StoryReadyEvent tells downstream consumers a story finished generating.
type StoryReadyEvent struct {
	StoryID string `json:"storyId"`
	Title   string `json:"title"`
	Email   string `json:"email"`
}

// CompletionNotifier announces finished stories. NotifyStoryReady is
// best-effort from the pipeline's point of view.
type CompletionNotifier interface {
	NotifyStoryReady(ctx context.Context, event StoryReadyEvent) error
	Close() error
}

type rabbitNotifier struct {
	conn  *amqp091.Connection
	ch    *amqp091.Channel
	queue string
	log   *zap.Logger
}

// NewRabbitNotifier connects to the broker and declares a durable queue.
func NewRabbitNotifier(cfg *config.Config, log *zap.Logger) (CompletionNotifier, error) {
	conn, err := amqp091.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		cfg.NotificationsQueue, // name
		true,                   // durable
		false,                  // auto-delete
		false,                  // exclusive
		false,                  // no-wait
		nil,                    // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue '%s': %w", cfg.NotificationsQueue, err)
	}
	log.Info("notifications queue declared", zap.String("queue", cfg.NotificationsQueue))
	return &rabbitNotifier{conn: conn, ch: ch, queue: cfg.NotificationsQueue, log: log.Named("rabbitmq")}, nil
}

func (n *rabbitNotifier) NotifyStoryReady(ctx context.Context, event StoryReadyEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal story ready event: %w", err)
	}
	err = n.ch.PublishWithContext(ctx,
		"",      // default exchange
		n.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish story ready event: %w", err)
	}
	n.log.Debug("story ready event published", zap.String("story_id", event.StoryID))
	return nil
}

func (n *rabbitNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
