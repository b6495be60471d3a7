package risk

import (
	"math"
	"time"

	"confia/internal/models"

	"github.com/shopspring/decimal"
)

// Novelty detection thresholds.
const (
	// locationToleranceDeg: coordinates within this many degrees of a
	// previously seen location count as known (~100km).
	locationToleranceDeg = 1.0
	// patternMinHistory is the minimum number of prior transfers before the
	// pattern factor is derived; with less history the factor is omitted.
	patternMinHistory = 3
	// patternDeviationRatio: an amount above this multiple of the user's
	// recent average is flagged as unusual.
	patternDeviationRatio = 3.0
)

// BuildContext derives a TransactionContext from the raw request and the
// user's recent ledger history. It is a pure function: novelty of location,
// device and amount pattern is computed deterministically from the history
// passed in, never from randomness.
func BuildContext(userID uint, amount decimal.Decimal, at time.Time, lat, lng *float64, deviceFingerprint string, recent []models.Transaction) TransactionContext {
	tc := TransactionContext{
		UserID:     userID,
		Amount:     amount,
		OccurredAt: at,
	}

	if lat != nil && lng != nil {
		tc.Location = &LocationContext{
			Latitude:  *lat,
			Longitude: *lng,
			Known:     locationSeen(*lat, *lng, recent),
		}
	}

	if deviceFingerprint != "" {
		tc.Device = &DeviceContext{
			Fingerprint: deviceFingerprint,
			Known:       deviceSeen(deviceFingerprint, recent),
		}
	}

	if p, ok := patternFromHistory(amount, recent); ok {
		tc.Pattern = p
	}

	return tc
}

func locationSeen(lat, lng float64, recent []models.Transaction) bool {
	for _, txn := range recent {
		pLat, okLat := metadataFloat(txn.Metadata, models.MetadataKeyLatitude)
		pLng, okLng := metadataFloat(txn.Metadata, models.MetadataKeyLongitude)
		if !okLat || !okLng {
			continue
		}
		if math.Abs(pLat-lat) <= locationToleranceDeg && math.Abs(pLng-lng) <= locationToleranceDeg {
			return true
		}
	}
	return false
}

func deviceSeen(fingerprint string, recent []models.Transaction) bool {
	for _, txn := range recent {
		if v, ok := txn.Metadata[models.MetadataKeyDeviceID]; ok {
			if s, ok := v.(string); ok && s == fingerprint {
				return true
			}
		}
	}
	return false
}

func patternFromHistory(amount decimal.Decimal, recent []models.Transaction) (*PatternContext, bool) {
	var sum decimal.Decimal
	var count int
	for _, txn := range recent {
		if txn.Kind != models.TransactionKindTransfer || txn.Status != models.TransactionStatusCompleted {
			continue
		}
		sum = sum.Add(txn.Amount)
		count++
	}
	if count < patternMinHistory {
		return nil, false
	}

	avg := sum.Div(decimal.NewFromInt(int64(count)))
	threshold := avg.Mul(decimal.NewFromFloat(patternDeviationRatio))
	return &PatternContext{Unusual: amount.GreaterThan(threshold)}, true
}

func metadataFloat(m models.JSON, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
