package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"option-live/internal/api/models"
	"option-live/internal/data"
	"option-live/internal/metrics"

	"github.com/gin-gonic/gin"
)

// CalculateHandler replays recorded calculation-service responses.
// It never prices anything itself: unknown inputs get a 404.
type CalculateHandler struct {
	mu       sync.RWMutex
	fixtures *data.FixtureSet
	metrics  *metrics.API
	logger   *slog.Logger
}

// NewCalculateHandler creates a handler serving set. m may be nil.
func NewCalculateHandler(set *data.FixtureSet, m *metrics.API, logger *slog.Logger) *CalculateHandler {
	if set == nil {
		set = &data.FixtureSet{}
	}
	if m == nil {
		m = metrics.NewAPI(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CalculateHandler{
		fixtures: set,
		metrics:  m,
		logger:   logger.With("component", "fixture_api"),
	}
}

// SetFixtures swaps the served fixture set.
func (h *CalculateHandler) SetFixtures(set *data.FixtureSet) {
	if set == nil {
		set = &data.FixtureSet{}
	}
	h.mu.Lock()
	h.fixtures = set
	h.mu.Unlock()
}

func (h *CalculateHandler) set() *data.FixtureSet {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fixtures
}

// Calculate handles POST /api/calculate
func (h *CalculateHandler) Calculate(c *gin.Context) {
	var req models.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Requests.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_INPUT",
				Message: fmt.Sprintf("All inputs must be positive numbers: %v", err),
			},
		})
		return
	}

	in := req.Inputs()
	fx, ok := h.set().Match(in)
	if !ok {
		h.metrics.Requests.WithLabelValues("miss").Inc()
		h.logger.Info("no fixture for inputs", "inputs", in)
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "FIXTURE_NOT_FOUND",
				Message: "No recorded response for these inputs",
				Details: map[string]interface{}{"inputs": in},
			},
		})
		return
	}

	if fx.DelayMS > 0 {
		t := time.NewTimer(time.Duration(fx.DelayMS) * time.Millisecond)
		defer t.Stop()
		select {
		case <-t.C:
		case <-c.Request.Context().Done():
			// Client went away; nothing left to answer.
			c.Abort()
			return
		}
	}

	if fx.Status != 0 && (fx.Status < 200 || fx.Status > 299) {
		h.metrics.Requests.WithLabelValues("status").Inc()
		c.JSON(fx.Status, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    statusCode(fx.Status),
				Message: fmt.Sprintf("Recorded failure for fixture %q", fx.Name),
			},
		})
		return
	}

	status := http.StatusOK
	if fx.Status != 0 {
		status = fx.Status
	}
	h.metrics.Requests.WithLabelValues("hit").Inc()
	c.JSON(status, fx.Response)
}

// ListFixtures handles GET /api/v1/fixtures
func (h *CalculateHandler) ListFixtures(c *gin.Context) {
	set := h.set()
	fixtures := make([]models.FixtureInfo, len(set.Fixtures))
	for i, fx := range set.Fixtures {
		status := fx.Status
		if status == 0 {
			status = http.StatusOK
		}
		fixtures[i] = models.FixtureInfo{
			Name:       fx.Name,
			Inputs:     fx.Inputs,
			HasGreeks:  fx.Response.DeltaCall != nil,
			StatusCode: status,
			DelayMS:    fx.DelayMS,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"fixtures":   fixtures,
		"service":    set.Service,
		"updated_at": set.UpdatedAt,
		"count":      len(fixtures),
	})
}

func statusCode(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return "RATE_LIMIT_EXCEEDED"
	case http.StatusBadRequest:
		return "INVALID_INPUT"
	default:
		return "API_ERROR"
	}
}
