// Package calcom is a minimal client for the parts of the Cal.com REST API the
// booking service depends on: creating, cancelling, and fetching bookings.
package calcom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// UpstreamError indicates that a call to the scheduling provider failed. Local
// state is never advanced past a failed provider call, so retrying is safe.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("scheduling provider request failed with status %d: %s", e.StatusCode, e.Message)
}

// IsUpstreamError determines whether or not an error came from the scheduling
// provider.
func IsUpstreamError(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream)
}

// BookingInfo describes a booking as the scheduling provider sees it.
type BookingInfo struct {
	UID        string    `json:"uid"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Status     string    `json:"status"`
	MeetingURL string    `json:"meetingUrl"`
	BookingURL string    `json:"bookingUrl"`
}

// CreateBookingRequest carries the fields required to create a booking at the
// provider on behalf of a user.
type CreateBookingRequest struct {
	EventTypeID int               `json:"eventTypeId"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Client talks to the Cal.com API using an API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new scheduling provider client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "unable to encode the request body")
		}
		reqBody = bytes.NewReader(encoded)
	}

	u := fmt.Sprintf("%s%s?apiKey=%s", c.baseURL, path, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return errors.Wrap(err, "unable to build the provider request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UpstreamError{StatusCode: resp.StatusCode, Message: string(msg)}
	}

	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(err, "unable to decode the provider response")
		}
	}

	return nil
}

// CreateBooking creates a booking at the scheduling provider and returns its
// details, including the externally assigned booking identifier.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingInfo, error) {
	var info BookingInfo
	if err := c.do(ctx, http.MethodPost, "/bookings", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetBooking fetches the booking with the given external identifier.
func (c *Client) GetBooking(ctx context.Context, uid string) (*BookingInfo, error) {
	var info BookingInfo
	if err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(uid), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CancelBooking cancels the booking with the given external identifier. The
// provider requires a non-empty cancellation reason.
func (c *Client) CancelBooking(ctx context.Context, uid, reason string) error {
	if reason == "" {
		return errors.New("a cancellation reason is required")
	}
	body := map[string]string{"cancellationReason": reason}
	return c.do(ctx, http.MethodDelete, "/bookings/"+url.PathEscape(uid)+"/cancel", body, nil)
}
