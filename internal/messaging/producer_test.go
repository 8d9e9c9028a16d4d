package messaging_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/EngSenku/ensat/internal/events"
	"github.com/EngSenku/ensat/internal/messaging"
	"github.com/EngSenku/ensat/internal/metrics"
	"github.com/EngSenku/ensat/internal/testnats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer_Shared(t *testing.T) {
	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	mockMetrics := metrics.NewMock()

	t.Run("SendMessage_RoundTrip", func(t *testing.T) {
		const subject = "roster.events.roundtrip"

		conn := natsContainer.Connect(t)
		sub, err := conn.SubscribeSync(subject)
		require.NoError(t, err)
		require.NoError(t, conn.Flush())

		producer, err := messaging.NewProducer(natsContainer.URL, subject, logger, mockMetrics)
		require.NoError(t, err)
		defer producer.Close()

		event := events.RosterEvent{
			Type:       events.TypeStudentCreated,
			Student:    events.StudentPayload{ID: 1, Name: "Omar", Email: "omar@ensat.ac.ma", Major: "GI"},
			OccurredAt: time.Now().UTC(),
		}

		require.NoError(t, producer.SendMessage(context.Background(), event))

		msg, err := sub.NextMsg(5 * time.Second)
		require.NoError(t, err)

		var received events.RosterEvent
		require.NoError(t, json.Unmarshal(msg.Data, &received))
		assert.Equal(t, events.TypeStudentCreated, received.Type)
		assert.Equal(t, "Omar", received.Student.Name)
		assert.Equal(t, "GI", received.Student.Major)
	})

	t.Run("SendMessage_UnmarshalableValue", func(t *testing.T) {
		producer, err := messaging.NewProducer(natsContainer.URL, "roster.events.badvalue", logger, mockMetrics)
		require.NoError(t, err)
		defer producer.Close()

		err = producer.SendMessage(context.Background(), make(chan int))
		require.Error(t, err)
	})

	t.Run("NewProducer_UnreachableBroker", func(t *testing.T) {
		_, err := messaging.NewProducer("nats://127.0.0.1:1", "roster.events", logger, mockMetrics)
		require.Error(t, err)
	})
}
