package data

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"option-live/internal/model"

	"github.com/google/uuid"
)

// DefaultURL is the calculation endpoint of the reference pricing service.
const DefaultURL = "http://localhost:5000/api/calculate"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

var (
	// ErrInvalidInputs is returned before any request is made when a field is not a positive finite number.
	ErrInvalidInputs = errors.New("invalid pricing inputs")
	// ErrMalformedResponse is returned when a 2xx body does not match the response contract.
	ErrMalformedResponse = errors.New("malformed pricing response")
	// ErrPartialGreeks is a malformed response that carries some but not all Greeks.
	ErrPartialGreeks = fmt.Errorf("%w: partial greek set", ErrMalformedResponse)
)

// PricingError represents a non-success status from the calculation service.
type PricingError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // For rate limit errors
}

func (e *PricingError) Error() string {
	return e.Message
}

// PricingClient calls the external calculation service.
type PricingClient struct {
	URL    string
	Client *http.Client
	// Cache is optional; nil disables caching.
	Cache  *ResponseCache
	Logger *slog.Logger
}

// NewPricingClient creates a new calculation service client.
// If serviceURL is empty, defaults to DefaultURL. A non-positive timeout defaults to 30s.
func NewPricingClient(serviceURL string, timeout time.Duration) *PricingClient {
	if serviceURL == "" {
		serviceURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PricingClient{
		URL: serviceURL,
		Client: &http.Client{
			Timeout: timeout,
		},
		Logger: slog.Default().With("component", "pricing_client"),
	}
}

// Calculate posts in to the calculation service and returns the decoded result.
// Blocks until the response is read or ctx is done.
func (c *PricingClient) Calculate(ctx context.Context, in model.Inputs) (*model.PricingResult, error) {
	if f, ok := in.Validate(); !ok {
		return nil, fmt.Errorf("%w: %s must be a positive number", ErrInvalidInputs, f)
	}

	log := c.logger()
	key := CacheKey(in)
	if cached, found := c.Cache.Get(key); found {
		log.Debug("cache hit", "key", key[:12])
		return cached, nil
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid service URL: %w", err)
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	log.Debug("request", "method", req.Method, "path", u.Path, "request_id", requestID)

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	duration := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("response", "status", resp.StatusCode, "duration", duration, "request_id", requestID)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Success, continue
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return nil, &PricingError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		return nil, &PricingError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	result, err := DecodeResult(raw)
	if err != nil {
		return nil, err
	}

	c.Cache.Set(key, result)
	return result, nil
}

// DecodeResult parses a calculation service body and enforces the response contract:
// both prices present, Greeks either complete or absent.
func DecodeResult(raw []byte) (*model.PricingResult, error) {
	var wire model.CalculateResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return ToResult(wire)
}

// ToResult validates a wire response and converts it to a PricingResult.
func ToResult(wire model.CalculateResponse) (*model.PricingResult, error) {
	if wire.CallPrice == nil || wire.PutPrice == nil {
		return nil, fmt.Errorf("%w: call_price and put_price are required", ErrMalformedResponse)
	}
	res := &model.PricingResult{
		CallPrice: *wire.CallPrice,
		PutPrice:  *wire.PutPrice,
	}

	present := 0
	fields := wire.GreekFields()
	for _, p := range fields {
		if p != nil {
			present++
		}
	}
	switch present {
	case 0:
		return res, nil
	case len(fields):
		res.Greeks = &model.Greeks{
			DeltaCall: *wire.DeltaCall,
			DeltaPut:  *wire.DeltaPut,
			Gamma:     *wire.Gamma,
			Vega:      *wire.Vega,
			ThetaCall: *wire.ThetaCall,
			ThetaPut:  *wire.ThetaPut,
			RhoCall:   *wire.RhoCall,
			RhoPut:    *wire.RhoPut,
		}
		return res, nil
	default:
		return nil, fmt.Errorf("%w (%d of %d present)", ErrPartialGreeks, present, len(fields))
	}
}

// Kind classifies a Calculate error for logs and metric labels.
func Kind(err error) string {
	var pe *PricingError
	var ne interface{ Timeout() bool }

	switch {
	case err == nil:
		return ""

	case errors.Is(err, context.Canceled):
		return "canceled"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.As(err, &pe):
		return "status"

	case errors.Is(err, ErrMalformedResponse):
		return "malformed"

	case errors.Is(err, ErrInvalidInputs):
		return "invalid_input"

	case errors.As(err, &ne) && ne.Timeout():
		return "timeout"

	default:
		return "transport"
	}
}

func (c *PricingClient) httpClient() *http.Client {
	if c.Client == nil {
		return http.DefaultClient
	}
	return c.Client
}

func (c *PricingClient) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
