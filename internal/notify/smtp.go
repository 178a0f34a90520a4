package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/redis/go-redis/v9"
)

var ErrNoAddress = errors.New("no email address on file for user")

// Resolver maps a user id to a deliverable address. The identity service
// owns member contact data; this core only reads it.
type Resolver interface {
	EmailFor(ctx context.Context, userID int) (string, error)
}

const emailKeyPrefix = "user:email:"

// RedisResolver reads addresses the identity service publishes into redis,
// the same way loyalty tiers are shared.
type RedisResolver struct {
	client *redis.Client
}

func NewRedisResolver(client *redis.Client) *RedisResolver {
	return &RedisResolver{client: client}
}

func (r *RedisResolver) EmailFor(ctx context.Context, userID int) (string, error) {
	addr, err := r.client.Get(ctx, fmt.Sprintf("%s%d", emailKeyPrefix, userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoAddress
		}
		return "", err
	}
	return addr, nil
}

// SMTPSender delivers queued notifications over plain SMTP.
type SMTPSender struct {
	Host     string
	Port     string
	User     string
	Pass     string
	From     string
	FromName string
	Resolver Resolver
}

func (s SMTPSender) Deliver(job Job) error {
	to, err := s.Resolver.EmailFor(context.Background(), job.UserID)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if s.User != "" && s.Pass != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}

	addr := s.Host + ":" + s.Port
	return smtp.SendMail(addr, auth, s.From, []string{to}, s.message(to, job))
}

func (s SMTPSender) message(to string, job Job) []byte {
	msg := fmt.Sprintf("From: %s <%s>\r\n", s.FromName, s.From)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	msg += "\r\n" + job.Body
	return []byte(msg)
}
