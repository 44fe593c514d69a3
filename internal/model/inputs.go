package model

import (
	"math"
	"strconv"
	"strings"
)

// Field names one numeric input of the pricing form.
// Values double as JSON keys on the calculation service.
type Field string

const (
	StockPrice   Field = "stock_price"
	StrikePrice  Field = "strike_price"
	InterestRate Field = "interest_rate"
	Maturity     Field = "maturity"
	Volatility   Field = "volatility"
)

// Fields is the fixed, ordered input set.
var Fields = []Field{StockPrice, StrikePrice, InterestRate, Maturity, Volatility}

// ParseValue parses raw input text as a decimal number. ok is false unless
// the value is a finite number strictly greater than zero. Hex floats such
// as "0x1p4" are not numbers in a form field and are rejected.
func ParseValue(raw string) (v float64, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" || isHex(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, Valid(v)
}

func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Valid reports whether v is usable as a pricing input.
func Valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Inputs is the request body sent to the calculation service.
//
// Example:
//
//	{"stock_price": 100, "strike_price": 100, "interest_rate": 0.05, "maturity": 1, "volatility": 0.2}
type Inputs struct {
	StockPrice   float64 `json:"stock_price" yaml:"stock_price"`
	StrikePrice  float64 `json:"strike_price" yaml:"strike_price"`
	InterestRate float64 `json:"interest_rate" yaml:"interest_rate"`
	Maturity     float64 `json:"maturity" yaml:"maturity"`
	Volatility   float64 `json:"volatility" yaml:"volatility"`
}

// Get returns the value of f.
func (in Inputs) Get(f Field) float64 {
	switch f {
	case StockPrice:
		return in.StockPrice
	case StrikePrice:
		return in.StrikePrice
	case InterestRate:
		return in.InterestRate
	case Maturity:
		return in.Maturity
	case Volatility:
		return in.Volatility
	}
	return 0
}

// Set stores v under f. Unknown fields are ignored.
func (in *Inputs) Set(f Field, v float64) {
	switch f {
	case StockPrice:
		in.StockPrice = v
	case StrikePrice:
		in.StrikePrice = v
	case InterestRate:
		in.InterestRate = v
	case Maturity:
		in.Maturity = v
	case Volatility:
		in.Volatility = v
	}
}

// Validate returns the first invalid field, if any.
func (in Inputs) Validate() (Field, bool) {
	for _, f := range Fields {
		if !Valid(in.Get(f)) {
			return f, false
		}
	}
	return "", true
}

// RecomputeRequest is the snapshot taken when a debounced cycle fires.
// Seq increases monotonically per controller.
type RecomputeRequest struct {
	Seq    uint64
	Inputs Inputs
}
