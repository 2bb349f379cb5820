package application

import (
	"context"
	"strings"

	"github.com/truckledger/service-logistics/internal/domain/fleet"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"github.com/truckledger/service-logistics/internal/platform/kafka"
	"go.uber.org/zap"
)

// EventPublisher is the subset of kafka.Producer the services need.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, ce kafka.CloudEvent) error
}

// eventEmitter publishes best-effort domain events. Failures are logged, never returned.
type eventEmitter struct {
	producer EventPublisher
	logger   *zap.Logger
}

func (e eventEmitter) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	if e.producer == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(fleet.Source, eventType, data)
	if err != nil {
		e.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := e.producer.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		e.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// ensurePlate rejects actors operating on another vehicle's data. An empty actor
// is a trusted internal caller such as the Kafka consumer.
func ensurePlate(actorPlate, plate string) error {
	if actorPlate == "" || strings.EqualFold(strings.TrimSpace(actorPlate), strings.TrimSpace(plate)) {
		return nil
	}
	return apperror.NewForbiddenError("vehicle does not belong to this session")
}

func normalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
