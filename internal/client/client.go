// Package client is the Go consumer of the ordering API: it fetches the
// catalog, runs the shared validation rules as a pre-flight check, and
// submits orders. The server remains the trust boundary; pre-flight exists
// only for fast feedback.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"ordering-service/internal/apperr"
	"ordering-service/internal/models"
	"ordering-service/internal/validation"
)

// ErrSubmissionInFlight is returned when a submission is attempted while a
// previous one by the same client has not settled. Prevents duplicate-order
// races from double-triggered submits.
var ErrSubmissionInFlight = errors.New("order submission already in flight")

// SubmitResult is the confirmation returned by the server on success
type SubmitResult struct {
	OrderID     string    `json:"orderId"`
	TotalAmount float64   `json:"totalAmount"`
	OrderDate   time.Time `json:"orderDate"`
}

// envelope is the response wrapper used by the ordering API
type envelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    json.RawMessage    `json:"data"`
	Errors  []apperr.Violation `json:"errors"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	inFlight   atomic.Bool
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates an API client for the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCategories retrieves the catalog
func (c *Client) FetchCategories(ctx context.Context) ([]models.Category, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/categories", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected catalog status: %d", resp.StatusCode)
	}

	var categories []models.Category
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

// SubmitOrder validates the submission locally, then posts it. Only one
// submission may be in flight at a time; once a request is sent it runs to
// completion and the caller reacts to whatever settles.
func (c *Client) SubmitOrder(ctx context.Context, sub *models.OrderSubmission) (*SubmitResult, error) {
	validation.NormalizeSubmission(sub)
	if violations := validation.ValidateOrder(sub); len(violations) > 0 {
		return nil, &apperr.ValidationError{Violations: violations}
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer c.inFlight.Store(false)

	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		var result SubmitResult
		if err := json.Unmarshal(env.Data, &result); err != nil {
			return nil, fmt.Errorf("failed to decode order confirmation: %w", err)
		}
		return &result, nil

	case http.StatusBadRequest:
		return nil, &apperr.ValidationError{Violations: env.Errors}

	default:
		return nil, fmt.Errorf("order submission failed: %s (status %d)", env.Message, resp.StatusCode)
	}
}

// GetOrder fetches a single persisted order
func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/orders/"+id, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &apperr.NotFoundError{Resource: "order", ID: id}
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order fetch failed: %s (status %d)", env.Message, resp.StatusCode)
	}

	var order models.Order
	if err := json.Unmarshal(env.Data, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	return &order, nil
}

func decodeEnvelope(r io.Reader) (*envelope, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &env, nil
}
