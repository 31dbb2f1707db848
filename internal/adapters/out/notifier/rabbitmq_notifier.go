package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/booking-link-engine/internal/config"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/out"
)

// RabbitMqNotifier публикует события движка во внешний обменник.
// Best-effort: неудачная публикация логируется и никогда не влияет на бронь
type RabbitMqNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     *config.Config
	logger  out.LoggerPort
}

func NewRabbitMqNotifier(cfg *config.Config, logger out.LoggerPort) (*RabbitMqNotifier, error) {
	if !cfg.RabbitMq.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, notifier will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMq.AmqpUri)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMq.AmqpUri,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	err = channel.ExchangeDeclare(
		cfg.RabbitMq.NotifyExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		logger.Error("rabbitmq.exchange.declare_failed", out.LogFields{
			"error":    err.Error(),
			"exchange": cfg.RabbitMq.NotifyExchange,
		})
		return nil, err
	}

	return &RabbitMqNotifier{
		conn:    conn,
		channel: channel,
		cfg:     cfg,
		logger:  logger.WithModule("RabbitMqNotifier"),
	}, nil
}

func (n *RabbitMqNotifier) Notify(ctx context.Context, event out.NotificationEvent, payload interface{}) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("notify.marshal_failed", out.LogFields{
			"event": event,
			"error": err.Error(),
		})
		return false
	}

	routingKey := fmt.Sprintf("%s.%s", n.cfg.RabbitMq.NotifyKeyPrefix, event)

	err = n.channel.PublishWithContext(ctx,
		n.cfg.RabbitMq.NotifyExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		n.logger.Error("notify.publish_failed", out.LogFields{
			"event": event,
			"error": err.Error(),
		})
		return false
	}

	n.logger.Debug("notify.published", out.LogFields{
		"event":      event,
		"routingKey": routingKey,
	})
	return true
}

func (n *RabbitMqNotifier) Stop() error {
	if n == nil || n.channel == nil {
		return nil
	}

	if err := n.channel.Close(); err != nil {
		return err
	}
	return n.conn.Close()
}
