package mortgage

import (
	"math"

	"github.com/iwvelando/reverse-mortgage/pkg/constants"
	"github.com/iwvelando/reverse-mortgage/pkg/mathutil"
)

// conditionAdjustment scales the property value by its condition.
var conditionAdjustment = map[string]float64{
	constants.ConditionExcellent: 1.0,
	constants.ConditionGood:      0.9,
	constants.ConditionAverage:   0.8,
}

// Breakdown holds every intermediate value of a payment calculation.
type Breakdown struct {
	AdjustedValue       float64 `json:"adjustedValue"`
	Principal           float64 `json:"principal"`
	YoungestAge         int     `json:"youngestAge"`
	LifeExpectancyYears int     `json:"lifeExpectancyYears"`
	Months              int     `json:"months"`
	MonthlyRate         float64 `json:"monthlyRate"`
	AnnuityPayment      float64 `json:"annuityPayment"`
	Capped              bool    `json:"capped"`
	MonthlyPayment      float64 `json:"monthlyPayment"`
}

// Calculate returns the monthly payment for in, rounded to cents.
func Calculate(in Inputs) (float64, error) {
	b, err := CalculateBreakdown(in)
	if err != nil {
		return 0, err
	}
	return b.MonthlyPayment, nil
}

// CalculateRaw validates untyped inputs and calculates the monthly payment.
func CalculateRaw(raw RawInputs) (float64, error) {
	in, err := ParseRaw(raw)
	if err != nil {
		return 0, err
	}
	return Calculate(in)
}

// CalculateBreakdown validates in and computes the monthly payment along
// with the values it was derived from.
func CalculateBreakdown(in Inputs) (Breakdown, error) {
	if err := Validate(in); err != nil {
		return Breakdown{}, err
	}

	var b Breakdown
	b.AdjustedValue = in.PropertyValue * conditionAdjustment[in.PropertyCondition]

	b.YoungestAge = mathutil.MinInt(in.OwnerAge, in.SpouseAge)
	b.LifeExpectancyYears = LifeExpectancyYears(b.YoungestAge)
	b.Months = b.LifeExpectancyYears * constants.MonthsPerYear
	months := float64(b.Months)

	b.Principal = b.AdjustedValue * constants.LoanToValueRatio
	b.MonthlyRate = math.Pow(1+in.InterestRate, 1.0/constants.MonthsPerYear) - 1
	b.AnnuityPayment = AnnuityPayment(b.Principal, b.MonthlyRate, b.Months)

	payment := b.AnnuityPayment
	// Never disburse more than the principal over the horizon.
	if payment*months > b.Principal {
		payment = b.Principal / months
		b.Capped = true
	}

	b.MonthlyPayment = mathutil.Round(payment)
	return b, nil
}

// AnnuityPayment is the level payment that amortizes principal over the
// given number of periods at a periodic rate.
func AnnuityPayment(principal, periodicRate float64, periods int) float64 {
	if periodicRate == 0 {
		return principal / float64(periods)
	}
	return principal * periodicRate / (1 - math.Pow(1+periodicRate, -float64(periods)))
}
