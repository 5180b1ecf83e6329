package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ordering-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageRoutesOrderSubmitted(t *testing.T) {
	handler := NewEventHandler()

	var received *models.OrderSubmittedEvent
	handler.OnOrderSubmitted(func(_ context.Context, event *models.OrderSubmittedEvent) error {
		received = event
		return nil
	})

	event := models.OrderSubmittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderSubmitted,
			Timestamp: time.Now(),
		},
		OrderID:     "order-1",
		TotalAmount: 35,
		Items: []models.OrderItemData{
			{ProductID: "1", Quantity: 2, UnitPrice: 10},
		},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	err = handler.HandleMessage(context.Background(), kafka.Message{Value: payload})
	require.NoError(t, err)

	require.NotNil(t, received)
	assert.Equal(t, "order-1", received.OrderID)
	assert.Equal(t, 35.0, received.TotalAmount)
}

func TestHandleMessageIgnoresUnknownEventTypes(t *testing.T) {
	handler := NewEventHandler()
	handler.OnOrderSubmitted(func(context.Context, *models.OrderSubmittedEvent) error {
		t.Fatal("handler must not fire for unknown event types")
		return nil
	})

	payload, err := json.Marshal(models.BaseEvent{EventID: "evt-2", EventType: "SOMETHING_ELSE"})
	require.NoError(t, err)

	assert.NoError(t, handler.HandleMessage(context.Background(), kafka.Message{Value: payload}))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	handler := NewEventHandler()

	err := handler.HandleMessage(context.Background(), kafka.Message{Value: []byte("{nope")})
	assert.Error(t, err)
}
