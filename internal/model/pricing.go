package model

// PricingResult is a successful calculation service response.
// Greeks is nil when the service omitted them; it is never partially filled.
type PricingResult struct {
	CallPrice float64
	PutPrice  float64
	Greeks    *Greeks
}

// Greeks holds the full sensitivity set returned alongside the prices.
type Greeks struct {
	DeltaCall float64
	DeltaPut  float64
	Gamma     float64
	Vega      float64
	ThetaCall float64
	ThetaPut  float64
	RhoCall   float64
	RhoPut    float64
}

// Greek names one sensitivity. Values double as JSON keys on the calculation service.
type Greek string

const (
	DeltaCall Greek = "delta_call"
	DeltaPut  Greek = "delta_put"
	Gamma     Greek = "gamma"
	Vega      Greek = "vega"
	ThetaCall Greek = "theta_call"
	ThetaPut  Greek = "theta_put"
	RhoCall   Greek = "rho_call"
	RhoPut    Greek = "rho_put"
)

// GreekNames lists every Greek in display order.
var GreekNames = []Greek{DeltaCall, DeltaPut, Gamma, Vega, ThetaCall, ThetaPut, RhoCall, RhoPut}

// Get returns the value of g.
func (g Greeks) Get(name Greek) float64 {
	switch name {
	case DeltaCall:
		return g.DeltaCall
	case DeltaPut:
		return g.DeltaPut
	case Gamma:
		return g.Gamma
	case Vega:
		return g.Vega
	case ThetaCall:
		return g.ThetaCall
	case ThetaPut:
		return g.ThetaPut
	case RhoCall:
		return g.RhoCall
	case RhoPut:
		return g.RhoPut
	}
	return 0
}
