package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"intervai/server/internal/models"
)

// CompletedChannel carries one CompletedEvent per finished interview.
const CompletedChannel = "interview_completed"

// ErrNoSubscriber means a published record reached no subscriber and was lost.
var ErrNoSubscriber = errors.New("no subscriber received the completed interview")

type CompletedEvent struct {
	UserID      string    `json:"userId"`
	UserEmail   string    `json:"userEmail"`
	Mode        string    `json:"mode"`
	Level       string    `json:"level"`
	Score       *int      `json:"score,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

// Publisher is a Store that hands records to subscribers over redis.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) Append(ctx context.Context, record *models.InterviewRecord) error {
	payload, err := json.Marshal(CompletedEvent{
		UserID:      record.UserID,
		UserEmail:   record.UserEmail,
		Mode:        record.Mode,
		Level:       record.Level,
		Score:       record.Score,
		CompletedAt: record.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("encode completed event: %w", err)
	}
	receivers, err := p.rdb.Publish(ctx, CompletedChannel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish completed event: %w", err)
	}
	if receivers == 0 {
		return ErrNoSubscriber
	}
	return nil
}

func (p *Publisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Subscriber drains CompletedChannel into a Store.
type Subscriber struct {
	rdb        *redis.Client
	store      Store
	logger     *zap.Logger
	instanceID string
}

func NewSubscriber(rdb *redis.Client, store Store, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{
		rdb:        rdb,
		store:      store,
		logger:     logger,
		instanceID: uuid.New().String()[:8],
	}
}

// Run blocks until ctx is canceled or the subscription closes.
func (s *Subscriber) Run(ctx context.Context) error {
	sub := s.rdb.Subscribe(ctx, CompletedChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", CompletedChannel, err)
	}
	ch := sub.Channel()
	s.logger.Info("Record subscriber listening",
		zap.String("channel", CompletedChannel), zap.String("instance", s.instanceID))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := s.handle(ctx, msg.Payload); err != nil {
				s.logger.Error("Failed to store completed interview",
					zap.String("instance", s.instanceID), zap.Error(err))
			}
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, payload string) error {
	var event CompletedEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return fmt.Errorf("decode completed event: %w", err)
	}
	if event.UserID == "" {
		return errors.New("completed event has no user")
	}
	return s.store.Append(ctx, &models.InterviewRecord{
		UserID:      event.UserID,
		UserEmail:   event.UserEmail,
		Mode:        event.Mode,
		Level:       event.Level,
		Score:       event.Score,
		CompletedAt: event.CompletedAt,
	})
}
