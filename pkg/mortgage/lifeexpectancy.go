package mortgage

// LifeExpectancyYears returns the remaining years used as the payout
// horizon for someone of the given age. Any age is accepted; range checks
// happen in Validate.
func LifeExpectancyYears(age int) int {
	switch {
	case age >= 70:
		return 15
	case age >= 65:
		return 20
	default:
		return 25
	}
}
