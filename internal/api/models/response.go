package models

import "option-live/internal/model"

// FixtureInfo describes one recorded exchange in GET /api/v1/fixtures.
type FixtureInfo struct {
	Name       string       `json:"name,omitempty"`
	Inputs     model.Inputs `json:"inputs"`
	HasGreeks  bool         `json:"has_greeks"`
	StatusCode int          `json:"status_code"`
	DelayMS    int64        `json:"delay_ms,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
