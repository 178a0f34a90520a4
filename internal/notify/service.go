package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"gymcore/internal/logger"
	"gymcore/internal/metrics"
)

const (
	queueKey      = "notifications"
	failedKey     = "notifications:failed"
	maxDeliveries = 3
)

const (
	EventReservationConfirmed = "reservation_confirmed"
	EventReservationCancelled = "reservation_cancelled"
	EventMembershipRenewed    = "membership_renewed"
	EventMembershipSuspended  = "membership_suspended"
	EventMembershipCancelled  = "membership_cancelled"
)

type Job struct {
	UserID  int       `json:"user_id"`
	Event   string    `json:"event"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Sender is the delivery channel. The real channel (mail, push) lives in an
// external gateway; LogSender is the default stand-in.
type Sender interface {
	Deliver(job Job) error
}

type LogSender struct{}

func (LogSender) Deliver(job Job) error {
	logger.Infof("Notification for user %d [%s]: %s", job.UserID, job.Event, job.Subject)
	return nil
}

// Service queues notifications in redis and drains them from a background
// worker. Fire-and-forget: nothing in a correctness path waits on it.
type Service struct {
	redis  *redis.Client
	sender Sender
}

func New(redisAddr string, sender Sender) *Service {
	if sender == nil {
		sender = LogSender{}
	}
	return &Service{
		redis:  redis.NewClient(&redis.Options{Addr: redisAddr}),
		sender: sender,
	}
}

// NewWithClient injects the redis client, used by tests.
func NewWithClient(client *redis.Client, sender Sender) *Service {
	if sender == nil {
		sender = LogSender{}
	}
	return &Service{redis: client, sender: sender}
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) Enqueue(ctx context.Context, userID int, event, subject, body string) error {
	job := Job{
		UserID:  userID,
		Event:   event,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue %s notification for user %d: %v", event, userID, err)
		metrics.RecordNotification(event, "queue_error")
		return err
	}

	metrics.RecordNotification(event, "queued")
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	if n, err := s.redis.LLen(ctx, queueKey).Result(); err == nil {
		metrics.NotificationQueueLength.Set(float64(n))
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification payload: %v", err)
		return
	}

	job.Tries++
	if err := s.sender.Deliver(job); err != nil {
		logger.Errorf("Notification delivery to user %d failed (attempt %d): %v", job.UserID, job.Tries, err)

		if job.Tries < maxDeliveries {
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			return
		}

		metrics.RecordNotification(job.Event, "failed")
		data, _ := json.Marshal(job)
		s.redis.LPush(context.Background(), failedKey, data)
		return
	}

	metrics.RecordNotification(job.Event, "delivered")
}
