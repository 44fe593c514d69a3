package model

// CalculateResponse matches the JSON body of the calculation service.
// Every field is a pointer so missing keys can be told apart from zeros.
//
// Example:
//
//	{"call_price": 10.4506, "put_price": 5.5735, "delta_call": 0.6368, ...}
type CalculateResponse struct {
	CallPrice *float64 `json:"call_price" yaml:"call_price"`
	PutPrice  *float64 `json:"put_price" yaml:"put_price"`

	DeltaCall *float64 `json:"delta_call,omitempty" yaml:"delta_call,omitempty"`
	DeltaPut  *float64 `json:"delta_put,omitempty" yaml:"delta_put,omitempty"`
	Gamma     *float64 `json:"gamma,omitempty" yaml:"gamma,omitempty"`
	Vega      *float64 `json:"vega,omitempty" yaml:"vega,omitempty"`
	ThetaCall *float64 `json:"theta_call,omitempty" yaml:"theta_call,omitempty"`
	ThetaPut  *float64 `json:"theta_put,omitempty" yaml:"theta_put,omitempty"`
	RhoCall   *float64 `json:"rho_call,omitempty" yaml:"rho_call,omitempty"`
	RhoPut    *float64 `json:"rho_put,omitempty" yaml:"rho_put,omitempty"`
}

// GreekFields returns the Greek pointers in GreekNames order.
func (r *CalculateResponse) GreekFields() []*float64 {
	return []*float64{r.DeltaCall, r.DeltaPut, r.Gamma, r.Vega, r.ThetaCall, r.ThetaPut, r.RhoCall, r.RhoPut}
}

// NewCalculateResponse converts a result back to its wire shape.
func NewCalculateResponse(res PricingResult) CalculateResponse {
	out := CalculateResponse{
		CallPrice: ptr(res.CallPrice),
		PutPrice:  ptr(res.PutPrice),
	}
	if g := res.Greeks; g != nil {
		out.DeltaCall = ptr(g.DeltaCall)
		out.DeltaPut = ptr(g.DeltaPut)
		out.Gamma = ptr(g.Gamma)
		out.Vega = ptr(g.Vega)
		out.ThetaCall = ptr(g.ThetaCall)
		out.ThetaPut = ptr(g.ThetaPut)
		out.RhoCall = ptr(g.RhoCall)
		out.RhoPut = ptr(g.RhoPut)
	}
	return out
}

func ptr(v float64) *float64 { return &v }
