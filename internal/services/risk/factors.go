package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Stable factor codes. Weights are keyed on these, never on display names,
// so renaming a label cannot silently change the weighting.
const (
	FactorAmount      = "amount"
	FactorTimeOfDay   = "time_of_day"
	FactorGeolocation = "geolocation"
	FactorDevice      = "device"
	FactorPattern     = "pattern"
)

// factorWeights is the fixed weight table. The combined score is normalized
// by the total weight of the factors actually present, so the sum does not
// need to be 1. Amount carries most of the weight: it is the only factor
// derived from the transaction itself rather than from its surroundings.
var factorWeights = map[string]float64{
	FactorAmount:      0.65,
	FactorTimeOfDay:   0.10,
	FactorGeolocation: 0.10,
	FactorDevice:      0.08,
	FactorPattern:     0.07,
}

// amountFactor scores the transaction amount. The rule is monotone
// non-decreasing in the amount:
//
//	amount <= review threshold          -> 10
//	review < amount <= high threshold   -> 70..80, linear
//	amount > high threshold             -> 80..100, linear, capped
func (s *service) amountFactor(amount decimal.Decimal) Factor {
	a, _ := amount.Float64()
	review := s.config.ReviewAmountThreshold
	high := s.config.HighAmountThreshold

	var score int
	var name, desc string
	switch {
	case a > high:
		score = int(math.Min(100, math.Round(80+(a-high)*40/high)))
		name = "High amount"
		desc = fmt.Sprintf("Transaction above %.0f", high)
	case a > review:
		score = int(math.Round(70 + (a-review)*10/(high-review)))
		name = "Elevated amount"
		desc = fmt.Sprintf("Transaction above %.0f", review)
	default:
		score = 10
		name = "Low amount"
		desc = fmt.Sprintf("Transaction at or below %.0f", review)
	}

	return Factor{Code: FactorAmount, Name: name, Score: score, Description: desc}
}

// timeFactor scores the local hour of the transaction.
func timeFactor(at time.Time) Factor {
	hour := at.Hour()
	switch {
	case hour < 6:
		return Factor{Code: FactorTimeOfDay, Name: "Suspicious hour", Score: 60,
			Description: "Transaction between 00:00 and 06:00"}
	case hour >= 22 || hour < 8:
		return Factor{Code: FactorTimeOfDay, Name: "Atypical hour", Score: 30,
			Description: "Transaction outside business hours"}
	default:
		return Factor{Code: FactorTimeOfDay, Name: "Normal hour", Score: 5,
			Description: "Transaction during business hours"}
	}
}

func locationFactor(loc *LocationContext) Factor {
	if loc.Known {
		return Factor{Code: FactorGeolocation, Name: "Known location", Score: 15,
			Description: "Transaction from a previously seen location"}
	}
	return Factor{Code: FactorGeolocation, Name: "Novel location", Score: 70,
		Description: "Transaction from an unusual location"}
}

func deviceFactor(dev *DeviceContext) Factor {
	if dev.Known {
		return Factor{Code: FactorDevice, Name: "Known device", Score: 10,
			Description: "Transaction from a recognized device"}
	}
	return Factor{Code: FactorDevice, Name: "New device", Score: 50,
		Description: "Transaction from an unrecognized device"}
}

func patternFactor(p *PatternContext) Factor {
	if p.Unusual {
		return Factor{Code: FactorPattern, Name: "Atypical pattern", Score: 45,
			Description: "Amount deviates from the user's recent behaviour"}
	}
	return Factor{Code: FactorPattern, Name: "Normal pattern", Score: 20,
		Description: "Amount consistent with the user's recent behaviour"}
}

// combine computes the weighted average of the present factors, normalized
// by the total weight actually present.
func combine(factors []Factor) int {
	var total, totalWeight float64
	for _, f := range factors {
		w := factorWeights[f.Code]
		total += float64(f.Score) * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(total / totalWeight))
}

func levelFor(score int) string {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 30:
		return LevelMedium
	default:
		return LevelLow
	}
}

func recommendationFor(score int) string {
	switch {
	case score >= 80:
		return RecommendBlock
	case score >= 50:
		return RecommendReview
	default:
		return RecommendApprove
	}
}
