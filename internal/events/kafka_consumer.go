package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/truckledger/service-logistics/internal/application"
	"github.com/truckledger/service-logistics/internal/domain/fleet"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"github.com/truckledger/service-logistics/internal/platform/kafka"
	"go.uber.org/zap"
)

// PositionReporter is the part of the tracking service the consumer drives.
type PositionReporter interface {
	ReportPosition(ctx context.Context, actorPlate, plate string, req application.ReportPositionRequest) (*application.PositionResultDTO, error)
}

// PositionEventConsumer feeds GPS samples from the positions topic into tracking,
// so gateways can report without an HTTP session.
type PositionEventConsumer struct {
	consumer *kafka.Consumer
	service  PositionReporter
	logger   *zap.Logger
}

// NewPositionEventConsumer creates a new PositionEventConsumer.
func NewPositionEventConsumer(
	brokers []string,
	groupID string,
	service PositionReporter,
	logger *zap.Logger,
) *PositionEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, fleet.TopicPositions, logger)
	return &PositionEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming position events. This blocks until the context is cancelled.
func (c *PositionEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PositionEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PositionEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from positions topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // malformed, retrying won't help
	}

	switch cloudEvent.Type {
	case fleet.PositionReported:
		return c.handlePositionReported(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled position event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PositionEventConsumer) handlePositionReported(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt fleet.PositionReportedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PositionReportedEvent data", zap.Error(err))
		return nil
	}

	req := application.ReportPositionRequest{Lat: evt.Lat, Lng: evt.Lng}
	if !evt.RecordedAt.IsZero() {
		req.RecordedAt = &evt.RecordedAt
	}

	// The topic is trusted, so no actor plate is checked.
	result, err := c.service.ReportPosition(ctx, "", evt.Plate, req)
	if err != nil {
		if apperror.IsValidation(err) {
			c.logger.Warn("dropping invalid position",
				zap.String("plate", evt.Plate),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to record position",
			zap.String("plate", evt.Plate),
			zap.Error(err),
		)
		return err
	}

	if result.Arrival != nil {
		c.logger.Info("arrival detected from position stream",
			zap.String("plate", result.Plate),
			zap.Int("stop_id", result.Arrival.StopID),
		)
	}
	return nil
}
