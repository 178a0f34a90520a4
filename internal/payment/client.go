package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"gymcore/internal/logger"
)

// Client talks to the external payment processor over HTTP. Calls run
// through a circuit breaker so a dead processor fails fast instead of
// holding booking and renewal requests on connection timeouts.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(baseURL, apiKey string) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "payment-processor",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: breaker,
	}
}

func (c *Client) VerifyConfirmation(ctx context.Context, confirmationID string) (*Confirmation, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("%s/v1/confirmations/%s", c.baseURL, confirmationID), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			var conf Confirmation
			if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
				return nil, err
			}
			return &conf, nil
		case http.StatusNotFound:
			return nil, ErrConfirmationNotFound
		default:
			return nil, fmt.Errorf("payment processor returned status %d", resp.StatusCode)
		}
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, ErrProcessorUnavailable
		}
		return nil, err
	}

	return result.(*Confirmation), nil
}

func (c *Client) RequestRefund(ctx context.Context, refund RefundRequest) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		body, err := json.Marshal(refund)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/refunds", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("payment processor returned status %d", resp.StatusCode)
		}

		return nil, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return ErrProcessorUnavailable
		}
		return err
	}

	return nil
}
