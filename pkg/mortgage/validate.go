package mortgage

import (
	"fmt"
	"strings"

	"github.com/iwvelando/reverse-mortgage/pkg/constants"
	"github.com/iwvelando/reverse-mortgage/pkg/mathutil"
)

// PropertyConditions lists the accepted property conditions in display order.
var PropertyConditions = []string{
	constants.ConditionExcellent,
	constants.ConditionGood,
	constants.ConditionAverage,
}

// MaritalStatuses lists the accepted marital statuses in display order.
var MaritalStatuses = []string{
	constants.StatusMarried,
	constants.StatusSingle,
	constants.StatusDivorced,
}

// Validate checks in against the domain rules and returns a
// *ValidationError for the first violation found.
func Validate(in Inputs) error {
	value := mathutil.FormatNumber(in.PropertyValue)

	if in.PropertyValue <= 0 {
		return newValidationError(ErrInvalidPropertyValue,
			fmt.Sprintf("Property value must be a positive number. You entered: %s.", value))
	}

	if !(in.PropertyValue >= constants.MinPropertyValue && in.PropertyValue <= constants.MaxPropertyValue) {
		return newValidationError(ErrExcessivePropertyValue,
			fmt.Sprintf("Property value must be between 200,000,000 and 900,000,000. You entered: %s.", value))
	}

	if mathutil.MinInt(in.OwnerAge, in.SpouseAge) > constants.MaxYoungestAge {
		return newValidationError(ErrInvalidPropertyValue,
			fmt.Sprintf("Owner and spouse age must not exceed %d.", constants.MaxYoungestAge))
	}

	if in.OwnerAge < constants.MinAge || in.SpouseAge < constants.MinAge {
		return newValidationError(ErrInvalidPropertyValue,
			fmt.Sprintf("Owner and spouse must be at least %d years old. You entered: owner age = %d, spouse age = %d.",
				constants.MinAge, in.OwnerAge, in.SpouseAge))
	}

	if !(in.InterestRate > 0 && in.InterestRate <= 1) {
		return newValidationError(ErrInvalidInterestRate,
			fmt.Sprintf("Interest rate must be between 0 and 1. You entered: %s.", mathutil.FormatNumber(in.InterestRate)))
	}

	if !contains(PropertyConditions, in.PropertyCondition) {
		return newValidationError(ErrInvalidPropertyCondition,
			fmt.Sprintf("Invalid property condition: '%s'. Must be one of %s.",
				in.PropertyCondition, strings.Join(PropertyConditions, ", ")))
	}

	if !contains(MaritalStatuses, in.MaritalStatus) {
		return newValidationError(ErrInvalidMaritalStatus,
			fmt.Sprintf("Invalid marital status: '%s'. Must be one of %s.",
				in.MaritalStatus, strings.Join(MaritalStatuses, ", ")))
	}

	return nil
}

// ValidateRaw runs the type checks of ParseRaw followed by Validate and
// returns the typed inputs when both pass.
func ValidateRaw(raw RawInputs) (Inputs, error) {
	in, err := ParseRaw(raw)
	if err != nil {
		return Inputs{}, err
	}
	if err := Validate(in); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

func contains(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
