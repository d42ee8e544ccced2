// Package notify announces finished maintenance runs on Pub/Sub.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/mmdatafocus/studio_backend/config"
	"github.com/mmdatafocus/studio_backend/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	EventDatesShifted = "dates.shifted"
	EventDataExported = "data.exported"
)

type Event struct {
	Type          string    `json:"type"`
	UserID        string    `json:"userId"`
	SourceMonth   string    `json:"sourceMonth,omitempty"`
	TargetMonth   string    `json:"targetMonth,omitempty"`
	Output        string    `json:"output,omitempty"`
	Total         int       `json:"total"`
	DryRun        bool      `json:"dryRun,omitempty"`
	CorrelationID string    `json:"correlationId"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops events. Used when PUBSUB_TOPIC is not set.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

type PubSubPublisher struct {
	topic *pubsub.Topic
}

func (p *PubSubPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	attrs := map[string]string{
		"type":          event.Type,
		"correlationId": event.CorrelationID,
	}
	if tool, ok := utils.GetToolFromContext(ctx); ok {
		attrs["tool"] = tool
	}
	res := p.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	if _, err := res.Get(ctx); err != nil {
		return errors.Wrapf(err, "publish %s", event.Type)
	}
	return nil
}

// NewPublisher returns a Pub/Sub publisher for config.PubSubTopic, or a
// NopPublisher when no topic is configured.
func NewPublisher(ctx context.Context, logger *logrus.Logger) (Publisher, error) {
	topicName := config.PubSubTopic()
	if topicName == "" {
		return NopPublisher{}, nil
	}
	client, err := config.GetPubSubClient(ctx)
	if err != nil {
		return nil, err
	}
	topic, err := config.CreateTopicIfNotExists(ctx, client, topicName)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.WithField("topic", topicName).Debug("publishing maintenance events")
	}
	return &PubSubPublisher{topic: topic}, nil
}

// PublishQuietly sends event and only logs a failure; the maintenance run has
// already finished by the time it is announced. Missing user and correlation
// ids are taken from ctx.
func PublishQuietly(ctx context.Context, p Publisher, logger *logrus.Logger, event Event) {
	if p == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.UserID == "" {
		event.UserID, _ = utils.GetUserIdFromContext(ctx)
	}
	if event.CorrelationID == "" {
		event.CorrelationID, _ = utils.GetCorrelationIdFromContext(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := p.Publish(ctx, event); err != nil && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"event":          event.Type,
			"correlation_id": event.CorrelationID,
		}).Warn("publish maintenance event failed")
	}
}
