package mortgage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/reverse-mortgage/pkg/mathutil"
)

// Inputs holds the six typed parameters of a calculation.
type Inputs struct {
	PropertyValue     float64 `json:"propertyValue" yaml:"propertyValue"`
	PropertyCondition string  `json:"propertyCondition" yaml:"propertyCondition"`
	MaritalStatus     string  `json:"maritalStatus" yaml:"maritalStatus"`
	OwnerAge          int     `json:"ownerAge" yaml:"ownerAge"`
	SpouseAge         int     `json:"spouseAge" yaml:"spouseAge"`
	InterestRate      float64 `json:"interestRate" yaml:"interestRate"`
}

// RawInputs holds the same parameters as they arrive from an untyped source
// such as a YAML document or a JSON body decoded with UseNumber.
type RawInputs struct {
	PropertyValue     interface{}
	PropertyCondition interface{}
	MaritalStatus     interface{}
	OwnerAge          interface{}
	SpouseAge         interface{}
	InterestRate      interface{}
}

// CacheKey renders the inputs canonically; equal inputs give equal keys.
func (in Inputs) CacheKey() string {
	return strings.Join([]string{
		mathutil.FormatNumber(in.PropertyValue),
		in.PropertyCondition,
		in.MaritalStatus,
		strconv.Itoa(in.OwnerAge),
		strconv.Itoa(in.SpouseAge),
		mathutil.FormatNumber(in.InterestRate),
	}, "|")
}

// ParseRaw discriminates the dynamic types of raw and converts them into
// Inputs. Numeric fields of the wrong type fail with ErrDataType, checked in
// the order property value, ages, interest rate. The two enumerated fields
// never fail here; values that are not strings are carried over in a form
// that Validate rejects with the matching kind.
func ParseRaw(raw RawInputs) (Inputs, error) {
	var in Inputs

	value, ok := toFloat(raw.PropertyValue)
	if !ok {
		return in, newValidationError(ErrDataType,
			fmt.Sprintf("Property value must be a number. You entered: %s.", describe(raw.PropertyValue)))
	}

	ownerAge, ownerOK := toInt(raw.OwnerAge)
	spouseAge, spouseOK := toInt(raw.SpouseAge)
	if !ownerOK || !spouseOK {
		return in, newValidationError(ErrDataType,
			fmt.Sprintf("Owner and spouse ages must be integers. You entered: owner age = %s, spouse age = %s.",
				describe(raw.OwnerAge), describe(raw.SpouseAge)))
	}

	rate, ok := toFloat(raw.InterestRate)
	if !ok {
		return in, newValidationError(ErrDataType,
			fmt.Sprintf("Interest rate must be a number. You entered: %s.", describe(raw.InterestRate)))
	}

	in.PropertyValue = value
	in.OwnerAge = ownerAge
	in.SpouseAge = spouseAge
	in.InterestRate = rate
	in.PropertyCondition = toText(raw.PropertyCondition)
	in.MaritalStatus = toText(raw.MaritalStatus)
	return in, nil
}

// RawFromMap builds RawInputs from a decoded document. Both camelCase and
// snake_case keys are recognised; missing keys stay nil.
func RawFromMap(m map[string]interface{}) RawInputs {
	lookup := func(camel, snake string) interface{} {
		if v, ok := m[camel]; ok {
			return v
		}
		return m[snake]
	}
	return RawInputs{
		PropertyValue:     lookup("propertyValue", "property_value"),
		PropertyCondition: lookup("propertyCondition", "property_condition"),
		MaritalStatus:     lookup("maritalStatus", "marital_status"),
		OwnerAge:          lookup("ownerAge", "owner_age"),
		SpouseAge:         lookup("spouseAge", "spouse_age"),
		InterestRate:      lookup("interestRate", "interest_rate"),
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return intFromUint(uint64(n))
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return intFromUint(uint64(n))
	case uint64:
		return intFromUint(n)
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, 0)
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

func intFromUint(n uint64) (int, bool) {
	if n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

func toText(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func describe(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return "nothing"
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
