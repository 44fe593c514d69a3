package models

import "option-live/internal/model"

// CalculateRequest is the body of POST /api/calculate.
// gt=0 rejects zero and negative values; required also rejects absent keys.
type CalculateRequest struct {
	StockPrice   float64 `json:"stock_price" binding:"required,gt=0"`
	StrikePrice  float64 `json:"strike_price" binding:"required,gt=0"`
	InterestRate float64 `json:"interest_rate" binding:"required,gt=0"`
	Maturity     float64 `json:"maturity" binding:"required,gt=0"`
	Volatility   float64 `json:"volatility" binding:"required,gt=0"`
}

// Inputs converts the request to the pricing snapshot.
func (r CalculateRequest) Inputs() model.Inputs {
	return model.Inputs{
		StockPrice:   r.StockPrice,
		StrikePrice:  r.StrikePrice,
		InterestRate: r.InterestRate,
		Maturity:     r.Maturity,
		Volatility:   r.Volatility,
	}
}
