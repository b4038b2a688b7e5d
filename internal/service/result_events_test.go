package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestResultEventPublisherMirrorsToRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "results:events")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	publisher := NewResultEventPublisher(client, nil, "results.events", testLogger())
	require.NoError(t, publisher.Publish(ctx, ResultEvent{Type: EventResultPublished, ResultID: 9, IsPublished: true}))

	select {
	case msg := <-sub.Channel():
		var event ResultEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		require.Equal(t, EventResultPublished, event.Type)
		require.Equal(t, uint(9), event.ResultID)
		require.NotEmpty(t, event.Source)
		require.False(t, event.SentAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestResultEventPublisherWithoutSubjectIsNoop(t *testing.T) {
	publisher := NewResultEventPublisher(nil, nil, "", testLogger())
	require.NoError(t, publisher.Publish(context.Background(), ResultEvent{Type: EventResultSubmitted}))
}
