package score

import (
	"errors"

	"github.com/ppiankov/genuinity/internal/model"
	"github.com/rs/zerolog/log"
)

// NeutralRisk is substituted when a signal has no data to work from.
// Missing ground truth is treated as moderate uncertainty, not as absence of risk.
const NeutralRisk = 0.5

// Outcome is one signal's value and how it was reached
type Outcome struct {
	Value    float64
	Fallback bool
	Reason   string // set when Fallback is true
	Data     map[string]interface{}
}

// noDataError is returned by a lookup that found nothing to score
type noDataError struct {
	reason string
	data   map[string]interface{}
}

func (e *noDataError) Error() string { return "no data: " + e.reason }

func noData(reason string, data map[string]interface{}) error {
	return &noDataError{reason: reason, data: data}
}

// withFallback runs lookup and substitutes fallback when it reports no data.
// Any other error is returned unchanged; a fallback is never a catch-all.
func withFallback(signal model.SignalType, fallback float64, lookup func() (Outcome, error)) (Outcome, error) {
	out, err := lookup()

	var nd *noDataError
	if errors.As(err, &nd) {
		log.Info().
			Str("signal", string(signal)).
			Str("reason", nd.reason).
			Float64("fallback", fallback).
			Msg("No data for signal, using neutral default")

		return Outcome{
			Value:    fallback,
			Fallback: true,
			Reason:   nd.reason,
			Data:     nd.data,
		}, nil
	}
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}
