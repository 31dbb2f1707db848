package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/booking-link-engine/internal/config"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/in"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/out"
)

// CalendarListener слушает события синхронизации внешних календарей
// и сбрасывает кэш слотов, который эти события делают устаревшим
type CalendarListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.AvailabilityUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

type (
	CalendarResourceType string
	CalendarChangeType   string
)

const (
	CalendarResourceTypeAll   CalendarResourceType = "_all_"
	CalendarResourceTypeOwner CalendarResourceType = "owner"
	CalendarResourceTypeLink  CalendarResourceType = "link"
)

const (
	CalendarChangeTypeChanged CalendarChangeType = "changed"
	CalendarChangeTypeRemoved CalendarChangeType = "removed"
)

type CalendarMessageRoutingKey struct {
	Source       string
	Receiver     string
	ResourceType CalendarResourceType
	ChangeType   CalendarChangeType
}

type CalendarChangeMessage struct {
	OwnerID uuid.UUID `json:"ownerId"`
	LinkID  uuid.UUID `json:"linkId"`
}

func NewCalendarListener(useCase in.AvailabilityUseCase, cfg *config.Config, logger out.LoggerPort) (*CalendarListener, error) {
	if !cfg.RabbitMq.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
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

	return &CalendarListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (l *CalendarListener) Start(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMq.QueueConfig.CalendarQueueName,
		true,  // durable
		true,  // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	err = l.channel.QueueBind(
		queue.Name,
		l.cfg.RabbitMq.QueueConfig.CalendarQueueBind,
		l.cfg.RabbitMq.QueueConfig.CalendarQueueExchange,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	msgs, err := l.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				if err := l.processMessage(ctx, msg); err != nil {
					l.logger.Warn("calendar.message.process_failed", out.LogFields{
						"routingKey": msg.RoutingKey,
						"error":      err.Error(),
					})
					msg.Nack(false, false) // битое сообщение повторять бессмысленно
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	l.logger.Info("calendar.queue.started", out.LogFields{
		"queue": l.cfg.RabbitMq.QueueConfig.CalendarQueueName,
	})

	return nil
}

// Пример routingKey:
// calendar.booking-engine.owner.changed
// calendar.booking-engine.link.changed
// calendar.booking-engine._all_.changed
func (l *CalendarListener) parseRoutingKey(msg amqp.Delivery) (CalendarMessageRoutingKey, error) {
	parts := strings.Split(msg.RoutingKey, ".")

	if len(parts) < 4 {
		return CalendarMessageRoutingKey{}, fmt.Errorf("invalid routing key: %s", msg.RoutingKey)
	}

	return CalendarMessageRoutingKey{
		Source:       parts[0],
		Receiver:     parts[1],
		ResourceType: CalendarResourceType(parts[2]),
		ChangeType:   CalendarChangeType(parts[3]),
	}, nil
}

func (l *CalendarListener) processMessage(ctx context.Context, msg amqp.Delivery) error {
	routingKey, err := l.parseRoutingKey(msg)
	if err != nil {
		return err
	}

	switch routingKey.ResourceType {
	case CalendarResourceTypeAll:
		l.useCase.InvalidateAllCache(ctx)
		l.logger.Info("calendar.message.invalidated_all", out.LogFields{})
		return nil

	case CalendarResourceTypeOwner:
		var change CalendarChangeMessage
		if err := json.Unmarshal(msg.Body, &change); err != nil {
			return err
		}
		l.useCase.InvalidateOwnerCache(ctx, change.OwnerID)
		l.logger.Info("calendar.message.invalidated_owner", out.LogFields{
			"ownerId": change.OwnerID,
		})
		return nil

	case CalendarResourceTypeLink:
		var change CalendarChangeMessage
		if err := json.Unmarshal(msg.Body, &change); err != nil {
			return err
		}
		l.useCase.InvalidateLinkCache(ctx, change.LinkID)
		l.logger.Info("calendar.message.invalidated_link", out.LogFields{
			"linkId": change.LinkID,
		})
		return nil
	}

	// Незнакомые типы ресурсов просто подтверждаем
	return nil
}

func (l *CalendarListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}
