package accuracy

import (
	"math"

	"github.com/Alias1177/numbersff/models"
)

// Pair is one observation for a single stat.
type Pair struct {
	Actual    float64
	Predicted float64
}

// ComputeMetrics returns MAE, MSE, RMSE and R² over pairs.
// R² is the squared Pearson correlation of actual and predicted.
// Any value that cannot be computed as a finite number is left nil.
func ComputeMetrics(pairs []Pair) models.Metrics {
	m := models.Metrics{Count: len(pairs)}
	if len(pairs) == 0 {
		return m
	}

	var absSum, sqSum float64
	for _, p := range pairs {
		d := p.Actual - p.Predicted
		absSum += math.Abs(d)
		sqSum += d * d
	}
	n := float64(len(pairs))
	mse := sqSum / n
	if finite(mse) {
		m.MAE = finiteOrNil(absSum / n)
		m.MSE = models.Float(mse)
		m.RMSE = finiteOrNil(math.Sqrt(mse))
	}

	m.RSquared = rSquared(pairs)
	return m
}

// rSquared is Sxy² / (Sxx·Syy); nil below two pairs or with zero variance.
func rSquared(pairs []Pair) *float64 {
	if len(pairs) < 2 {
		return nil
	}

	var meanA, meanP float64
	for _, p := range pairs {
		meanA += p.Actual
		meanP += p.Predicted
	}
	n := float64(len(pairs))
	meanA /= n
	meanP /= n

	var sxx, syy, sxy float64
	for _, p := range pairs {
		da := p.Actual - meanA
		dp := p.Predicted - meanP
		sxx += da * da
		syy += dp * dp
		sxy += da * dp
	}
	if sxx == 0 || syy == 0 {
		return nil
	}
	return finiteOrNil(sxy * sxy / (sxx * syy))
}

// PairsFor extracts the (actual, predicted) pairs for stat, nulls as zero.
func PairsFor(records []models.AccuracyRecord, stat models.Stat) []Pair {
	pairs := make([]Pair, 0, len(records))
	for _, r := range records {
		pairs = append(pairs, Pair{
			Actual:    r.Actual.Value(stat),
			Predicted: r.Predicted.Value(stat),
		})
	}
	return pairs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrNil(v float64) *float64 {
	if !finite(v) {
		return nil
	}
	return models.Float(v)
}
