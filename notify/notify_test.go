package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mmdatafocus/studio_backend/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestNewPublisher_WithoutTopic(t *testing.T) {
	t.Setenv("PUBSUB_TOPIC", "")
	p, err := NewPublisher(context.Background(), nil)
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), Event{Type: EventDatesShifted}))
}

func TestEventJSON(t *testing.T) {
	e := Event{
		Type:          EventDatesShifted,
		UserID:        "u-1",
		SourceMonth:   "2025-11",
		TargetMonth:   "2025-06",
		Total:         42,
		CorrelationID: "c-1",
		OccurredAt:    time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "dates.shifted",
		"userId": "u-1",
		"sourceMonth": "2025-11",
		"targetMonth": "2025-06",
		"total": 42,
		"correlationId": "c-1",
		"occurredAt": "2025-12-01T00:00:00Z"
	}`, string(b))
}

func TestPublishQuietly(t *testing.T) {
	logger, hook := test.NewNullLogger()

	rec := &recordingPublisher{}
	PublishQuietly(context.Background(), rec, logger, Event{Type: EventDataExported, Output: "out.json"})
	require.Len(t, rec.events, 1)
	assert.False(t, rec.events[0].OccurredAt.IsZero())
	assert.Empty(t, hook.AllEntries())

	failing := &recordingPublisher{err: errors.New("topic not found")}
	PublishQuietly(context.Background(), failing, logger, Event{Type: EventDataExported, CorrelationID: "c-2"})
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "c-2", hook.LastEntry().Data["correlation_id"])

	PublishQuietly(context.Background(), nil, logger, Event{})
}

func TestPublishQuietly_FillsFromContext(t *testing.T) {
	ctx := utils.SetUserIdInContext(context.Background(), "u-9")
	ctx = utils.SetCorrelationIdInContext(ctx, "c-9")

	rec := &recordingPublisher{}
	PublishQuietly(ctx, rec, nil, Event{Type: EventDatesShifted})
	require.Len(t, rec.events, 1)
	assert.Equal(t, "u-9", rec.events[0].UserID)
	assert.Equal(t, "c-9", rec.events[0].CorrelationID)
}
