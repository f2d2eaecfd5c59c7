package mortgage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateScenarios(t *testing.T) {
	tests := []struct {
		name     string
		in       Inputs
		expected float64
	}{
		{
			name:     "excellent married couple",
			in:       Inputs{500_000_000, "excellent", "married", 70, 68, 0.5},
			expected: 1_041_666.67,
		},
		{
			name:     "good condition, both over seventy",
			in:       Inputs{400_000_000, "good", "married", 72, 70, 0.5},
			expected: 1_000_000,
		},
		{
			name:     "average condition, low rate",
			in:       Inputs{250_000_000, "average", "married", 65, 67, 0.07},
			expected: 416_666.67,
		},
		{
			name:     "average condition, high rate",
			in:       Inputs{300_000_000, "average", "married", 70, 68, 0.5},
			expected: 500_000,
		},
		{
			name:     "youngest spouse drives horizon",
			in:       Inputs{300_000_000, "excellent", "married", 75, 65, 0.06},
			expected: 625_000,
		},
		{
			name:     "upper band average",
			in:       Inputs{900_000_000, "average", "single", 70, 65, 0.1},
			expected: 1_500_000,
		},
		{
			name:     "exact half cent rounds to even",
			in:       Inputs{200_000_220, "excellent", "married", 70, 68, 0.5},
			expected: 416_667.12,
		},
		{
			name:     "exact half cent rounds up to even",
			in:       Inputs{200_000_340, "excellent", "married", 70, 68, 0.5},
			expected: 416_667.38,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCalculatePropagatesValidationErrors(t *testing.T) {
	in := validInputs()
	in.PropertyValue = 0
	_, err := Calculate(in)
	assert.ErrorIs(t, err, ErrInvalidPropertyValue)

	in = validInputs()
	in.MaritalStatus = ""
	_, err = Calculate(in)
	assert.ErrorIs(t, err, ErrInvalidMaritalStatus)

	_, err = CalculateRaw(RawInputs{PropertyValue: "lots", OwnerAge: 70, SpouseAge: 68, InterestRate: 0.5})
	assert.ErrorIs(t, err, ErrDataType)
}

func TestCalculateRaw(t *testing.T) {
	got, err := CalculateRaw(RawInputs{
		PropertyValue: 500_000_000, PropertyCondition: "excellent", MaritalStatus: "married",
		OwnerAge: 70, SpouseAge: 68, InterestRate: 0.5,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1_041_666.67, got, 0.001)
}

func TestCalculateBreakdown(t *testing.T) {
	b, err := CalculateBreakdown(Inputs{900_000_000, "average", "married", 70, 65, 0.1})
	require.NoError(t, err)

	assert.InDelta(t, 720_000_000, b.AdjustedValue, 1e-6)
	assert.InDelta(t, 360_000_000, b.Principal, 1e-6)
	assert.Equal(t, 65, b.YoungestAge)
	assert.Equal(t, 20, b.LifeExpectancyYears)
	assert.Equal(t, 240, b.Months)
	assert.InDelta(t, math.Pow(1.1, 1.0/12)-1, b.MonthlyRate, 1e-15)
	assert.Greater(t, b.AnnuityPayment, b.MonthlyPayment)
	assert.True(t, b.Capped)
	assert.InDelta(t, 1_500_000, b.MonthlyPayment, 0.001)
}

func TestCalculateNeverExceedsStraightLine(t *testing.T) {
	values := []float64{200_000_000, 333_333_333, 650_000_000.5, 900_000_000}
	rates := []float64{1e-12, 0.0001, 0.03, 0.25, 1}
	ages := []int{18, 64, 65, 69, 70, 85}

	for _, value := range values {
		for condition, factor := range conditionAdjustment {
			for _, rate := range rates {
				for _, age := range ages {
					in := Inputs{value, condition, "single", age, 85, rate}
					got, err := Calculate(in)
					require.NoError(t, err)

					months := float64(LifeExpectancyYears(age) * 12)
					ceiling := 0.5 * value * factor / months
					assert.LessOrEqual(t, got, ceiling+0.005, "inputs %+v", in)
					assert.Greater(t, got, 0.0)
				}
			}
		}
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	in := Inputs{650_000_000, "good", "divorced", 66, 80, 0.035}
	first, err := Calculate(in)
	require.NoError(t, err)
	second, err := Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMaritalStatusDoesNotChangePayment(t *testing.T) {
	base := validInputs()
	expected, err := Calculate(base)
	require.NoError(t, err)

	for _, status := range MaritalStatuses {
		in := base
		in.MaritalStatus = status
		got, err := Calculate(in)
		require.NoError(t, err)
		assert.Equal(t, expected, got, status)
	}
}

func TestLifeExpectancyYears(t *testing.T) {
	tests := map[int]int{
		18: 25,
		64: 25,
		65: 20,
		69: 20,
		70: 15,
		85: 15,
		120: 15,
		-3: 25,
	}

	for age, expected := range tests {
		assert.Equal(t, expected, LifeExpectancyYears(age), "age %d", age)
	}
}

func TestAnnuityPayment(t *testing.T) {
	// 100,000 over 360 months at 0.5% per month.
	assert.InDelta(t, 599.55, AnnuityPayment(100_000, 0.005, 360), 0.01)
	assert.InDelta(t, 1000, AnnuityPayment(12_000, 0, 12), 1e-9)
}
