package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
)

// Publisher pushes transition events to the notification sink. Delivery is
// best-effort: callers log failures and never roll back the transition.
type Publisher interface {
	Publish(ctx context.Context, event models.TransitionEvent) error
}

// APIClient is a resty-backed Publisher talking to the notification service.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a notification client for the given sink base URL.
func NewClient(baseURL, token string) *APIClient {
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)
	if token != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	return &APIClient{httpClient: restyClient}
}

// Publish posts the event to the sink. The sink returns nothing meaningful;
// only transport and status errors are reported.
func (c *APIClient) Publish(ctx context.Context, event models.TransitionEvent) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		Post("/events")
	if err != nil {
		return fmt.Errorf("publish transition event: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("notification sink error: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	return nil
}

// Nop is a Publisher that drops every event, for tests and disabled sinks.
type Nop struct{}

func (Nop) Publish(ctx context.Context, event models.TransitionEvent) error { return nil }
