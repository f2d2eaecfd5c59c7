// Package mortgage computes monthly reverse-mortgage payments.
//
// The package is made of three pure pieces: Validate checks the six inputs
// and fails on the first rule they break, LifeExpectancyYears maps the
// younger applicant's age to a payout horizon, and Calculate amortizes the
// loan principal over that horizon. Nothing here holds state, logs, or
// performs I/O, so every function is safe for concurrent use.
package mortgage
