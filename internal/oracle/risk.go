package oracle

// RiskPoint is one sample on the illustrative liquidation-risk curve.
type RiskPoint struct {
	Price float64 `json:"price"`
	Risk  float64 `json:"risk"`
}

// RiskCurve samples liquidation risk at evenly spaced prices between
// the current price and the target liquidation price. Risk is 0 at the
// current price and 100 at (or past) the target, rising linearly in
// between. Degenerate inputs (non-positive prices, fewer than two
// steps, equal prices) yield an empty curve rather than an error.
func RiskCurve(current, target float64, steps int) []RiskPoint {
	if current <= 0 || target <= 0 || steps < 2 || current == target {
		return nil
	}

	points := make([]RiskPoint, steps)
	span := target - current
	for i := 0; i < steps; i++ {
		frac := float64(i) / float64(steps-1)
		price := current + span*frac
		risk := frac * 100
		if risk < 0 {
			risk = 0
		} else if risk > 100 {
			risk = 100
		}
		points[i] = RiskPoint{Price: price, Risk: risk}
	}
	return points
}
