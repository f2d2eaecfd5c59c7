// Package quote evaluates the configured scenarios and collects a payment
// quote for each of them.
package quote

import (
	"errors"
	"fmt"

	"github.com/iwvelando/reverse-mortgage/internal/config"
	"github.com/iwvelando/reverse-mortgage/pkg/mortgage"
	"go.uber.org/zap"
)

// ErrNoActiveScenarios is returned when the configuration has nothing to evaluate.
var ErrNoActiveScenarios = errors.New("no active scenarios to evaluate")

// Quote holds the outcome of one scenario. Err is set, and Breakdown is
// zero, when the scenario's inputs failed validation.
type Quote struct {
	Name      string
	Inputs    mortgage.Inputs
	Breakdown mortgage.Breakdown
	Err       error
}

// OK reports whether a payment was computed.
func (q Quote) OK() bool {
	return q.Err == nil
}

// GetQuotes computes the Quotes for all active Scenarios. A validation
// failure is recorded on that scenario's Quote and does not stop the rest.
func GetQuotes(logger *zap.Logger, conf config.Configuration) ([]Quote, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var results []Quote
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "quote.GetQuotes"),
			)
			continue
		}

		results = append(results, Evaluate(logger, scenario))
	}

	if len(results) == 0 {
		return nil, ErrNoActiveScenarios
	}

	return results, nil
}

// Evaluate computes the Quote for a single scenario.
func Evaluate(logger *zap.Logger, scenario config.Scenario) Quote {
	if logger == nil {
		logger = zap.NewNop()
	}

	result := Quote{Name: scenario.Name}

	inputs, err := mortgage.ParseRaw(scenario.Raw())
	if err != nil {
		result.Err = err
		logFailure(logger, scenario.Name, err)
		return result
	}
	result.Inputs = inputs

	breakdown, err := mortgage.CalculateBreakdown(inputs)
	if err != nil {
		result.Err = err
		logFailure(logger, scenario.Name, err)
		return result
	}
	result.Breakdown = breakdown

	logger.Debug(fmt.Sprintf("scenario %s: monthly payment %.2f over %d months",
		scenario.Name, breakdown.MonthlyPayment, breakdown.Months),
		zap.String("op", "quote.Evaluate"),
		zap.Bool("capped", breakdown.Capped),
	)
	return result
}

// Failed counts the quotes whose inputs were rejected.
func Failed(quotes []Quote) int {
	n := 0
	for _, q := range quotes {
		if !q.OK() {
			n++
		}
	}
	return n
}

func logFailure(logger *zap.Logger, name string, err error) {
	logger.Warn(fmt.Sprintf("scenario %s rejected", name),
		zap.String("op", "quote.Evaluate"),
		zap.String("kind", mortgage.KindName(err)),
		zap.Error(err),
	)
}
