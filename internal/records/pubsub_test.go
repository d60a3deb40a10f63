package records

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"intervai/server/internal/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

type memoryStore struct {
	mu      sync.Mutex
	records []*models.InterviewRecord
}

func (m *memoryStore) Append(_ context.Context, record *models.InterviewRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func TestPublisherAppendPublishesEvent(t *testing.T) {
	_, rdb := setupTestRedis(t)
	ctx := context.Background()
	sub := rdb.Subscribe(ctx, CompletedChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	completed := time.Date(2025, 5, 2, 8, 30, 0, 0, time.UTC)
	score := 8
	require.NoError(t, NewPublisher(rdb).Append(ctx, &models.InterviewRecord{
		UserID: "u-1", UserEmail: "a@example.com", Mode: "core", Level: "hard",
		Score: &score, CompletedAt: completed,
	}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var event CompletedEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, "u-1", event.UserID)
	assert.Equal(t, "a@example.com", event.UserEmail)
	assert.Equal(t, "core", event.Mode)
	require.NotNil(t, event.Score)
	assert.Equal(t, 8, *event.Score)
	assert.True(t, completed.Equal(event.CompletedAt))
}

func TestPublisherAppendWithoutSubscriberFails(t *testing.T) {
	_, rdb := setupTestRedis(t)

	err := NewPublisher(rdb).Append(context.Background(), &models.InterviewRecord{
		UserID: "u-1", Mode: "hr", Level: "easy",
		CompletedAt: time.Date(2025, 5, 2, 8, 30, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSubscriber)
}

func TestSubscriberStoresPublishedRecords(t *testing.T) {
	_, rdb := setupTestRedis(t)
	repo := setupTestRepository(t)
	subscriber := NewSubscriber(rdb, repo, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- subscriber.Run(ctx) }()

	require.Eventually(t, func() bool {
		counts, err := rdb.PubSubNumSub(context.Background(), CompletedChannel).Result()
		return err == nil && counts[CompletedChannel] == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, NewPublisher(rdb).Append(context.Background(), &models.InterviewRecord{
		UserID: "u-9", Mode: "rapid", Level: "medium",
		CompletedAt: time.Date(2025, 5, 2, 8, 30, 0, 0, time.UTC),
	}))

	require.Eventually(t, func() bool {
		records, err := repo.ListByUser(context.Background(), "u-9", 0)
		return err == nil && len(records) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestSubscriberHandleRejectsBadPayloads(t *testing.T) {
	_, rdb := setupTestRedis(t)
	store := &memoryStore{}
	subscriber := NewSubscriber(rdb, store, nil)

	assert.Error(t, subscriber.handle(context.Background(), "not json"))
	assert.Error(t, subscriber.handle(context.Background(), `{"mode":"hr"}`))
	assert.Empty(t, store.records)

	require.NoError(t, subscriber.handle(context.Background(), `{"userId":"u-1","mode":"hr","level":"easy","completedAt":"2025-05-02T08:30:00Z"}`))
	require.Len(t, store.records, 1)
	assert.Equal(t, "hr", store.records[0].Mode)
}

func TestPublisherPing(t *testing.T) {
	_, rdb := setupTestRedis(t)
	assert.NoError(t, NewPublisher(rdb).Ping(context.Background()))
}
