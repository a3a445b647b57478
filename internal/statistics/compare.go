package statistics

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Comparison is a Welch t-test between two agents' per-match win indicators.
type Comparison struct {
	Difference float64 // win rate a minus win rate b
	StdError   float64
	TStatistic float64
	DF         int
	PValue     float64 // two-tailed
	EffectSize float64 // Cohen's d
	CI95Low    float64
	CI95High   float64
}

// Compare tests whether a's win rate differs from b's. Both need at least two
// matches for a meaningful result; otherwise PValue is 1.
func Compare(a, b *Statistics) Comparison {
	difference := a.WinRate() - b.WinRate()
	c := Comparison{Difference: difference, PValue: 1}
	if a.Games < 2 || b.Games < 2 {
		return c
	}

	sd1, sd2 := a.StdDev(), b.StdDev()
	n1, n2 := float64(a.Games), float64(b.Games)

	pooled := math.Sqrt(((n1-1)*sd1*sd1 + (n2-1)*sd2*sd2) / (n1 + n2 - 2))
	if pooled > 0 {
		c.EffectSize = difference / pooled
	}

	v1, v2 := sd1*sd1/n1, sd2*sd2/n2
	c.StdError = math.Sqrt(v1 + v2)
	if c.StdError == 0 {
		// Both samples are constant; any difference is exact.
		if difference != 0 {
			c.PValue = 0
		}
		c.CI95Low, c.CI95High = difference, difference
		return c
	}
	c.TStatistic = difference / c.StdError
	c.DF = welchDF(v1, n1, v2, n2)

	t := distuv.StudentsT{Nu: float64(c.DF), Mu: 0, Sigma: 1}
	c.PValue = math.Min(1, math.Max(0, 2*(1-t.CDF(math.Abs(c.TStatistic)))))
	margin := t.Quantile(0.975) * c.StdError
	c.CI95Low = difference - margin
	c.CI95High = difference + margin
	return c
}

// welchDF is the Welch-Satterthwaite approximation, floored and at least one.
func welchDF(v1, n1, v2, n2 float64) int {
	denominator := v1*v1/(n1-1) + v2*v2/(n2-1)
	if denominator == 0 {
		return int(n1 + n2 - 2)
	}
	return max(1, int(math.Floor((v1+v2)*(v1+v2)/denominator)))
}

// Significant reports whether the difference is significant at alpha.
func (c Comparison) Significant(alpha float64) bool {
	return c.PValue < alpha
}

// InterpretEffectSize returns a human-readable interpretation of Cohen's d
func InterpretEffectSize(d float64) string {
	absd := math.Abs(d)
	switch {
	case absd < 0.2:
		return "negligible"
	case absd < 0.5:
		return "small"
	case absd < 0.8:
		return "medium"
	default:
		return "large"
	}
}

// InterpretPValue returns a human-readable interpretation of p-value
func InterpretPValue(p float64, alpha float64) string {
	switch {
	case p < 0.001:
		return "highly significant"
	case p < 0.01:
		return "very significant"
	case p < alpha:
		return "significant"
	case p < 0.10:
		return "marginally significant"
	default:
		return "not significant"
	}
}
