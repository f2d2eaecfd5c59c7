// Package output provides utilities for formatting and displaying payment quotes.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/reverse-mortgage/internal/quote"
	"github.com/iwvelando/reverse-mortgage/pkg/mathutil"
	"github.com/iwvelando/reverse-mortgage/pkg/mortgage"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PaymentLine is the sentence shown to a person for a computed payment,
// e.g. "... is: 1041666.67" or "... is: 1500000.0".
func PaymentLine(payment float64) string {
	return "The monthly reverse mortgage payment is: " + mathutil.FormatFloatLiteral(payment)
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []quote.Quote) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		_, _ = fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Name)
		if !result.OK() {
			_, _ = fmt.Fprintf(w, "Error (%s): %s\n", mortgage.KindName(result.Err), result.Err)
		} else {
			b := result.Breakdown
			_, _ = p.Fprintf(w, "Adjusted value  | %.2f\n", b.AdjustedValue)
			_, _ = p.Fprintf(w, "Loan principal  | %.2f\n", b.Principal)
			_, _ = p.Fprintf(w, "Horizon         | %d years (%d months, youngest age %d)\n",
				b.LifeExpectancyYears, b.Months, b.YoungestAge)
			_, _ = p.Fprintf(w, "Monthly rate    | %.6f%%\n", b.MonthlyRate*100)
			if b.Capped {
				_, _ = p.Fprintf(w, "Monthly payment | %.2f (straight-line cap)\n", b.MonthlyPayment)
			} else {
				_, _ = p.Fprintf(w, "Monthly payment | %.2f\n", b.MonthlyPayment)
			}
		}
		if len(results) > 1 && i < len(results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat writes one comma-separated row per quote.
func CsvFormat(w io.Writer, results []quote.Quote) error {
	writer := csv.NewWriter(w)
	header := []string{
		"scenario", "property value", "condition", "marital status", "owner age", "spouse age",
		"interest rate", "months", "principal", "monthly payment", "capped", "error kind", "error",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range results {
		in := result.Inputs
		row := []string{result.Name}
		if result.OK() {
			b := result.Breakdown
			row = append(row,
				mathutil.FormatNumber(in.PropertyValue),
				in.PropertyCondition,
				in.MaritalStatus,
				strconv.Itoa(in.OwnerAge),
				strconv.Itoa(in.SpouseAge),
				mathutil.FormatNumber(in.InterestRate),
				strconv.Itoa(b.Months),
				fmt.Sprintf("%.2f", b.Principal),
				fmt.Sprintf("%.2f", b.MonthlyPayment),
				strconv.FormatBool(b.Capped),
				"", "",
			)
		} else {
			row = append(row, "", "", "", "", "", "", "", "", "", "",
				mortgage.KindName(result.Err), result.Err.Error())
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

type jsonQuote struct {
	Name      string              `json:"name"`
	Inputs    *mortgage.Inputs    `json:"inputs,omitempty"`
	Breakdown *mortgage.Breakdown `json:"breakdown,omitempty"`
	ErrorKind string              `json:"errorKind,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// JSONFormat writes the quotes as an indented JSON array.
func JSONFormat(w io.Writer, results []quote.Quote) error {
	out := make([]jsonQuote, 0, len(results))
	for _, result := range results {
		entry := jsonQuote{Name: result.Name}
		if result.OK() {
			in := result.Inputs
			b := result.Breakdown
			entry.Inputs = &in
			entry.Breakdown = &b
		} else {
			entry.ErrorKind = mortgage.KindName(result.Err)
			entry.Error = result.Err.Error()
		}
		out = append(out, entry)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// Currency renders an amount with a dollar sign and thousands separators,
// e.g. "$1,041,666.67".
func Currency(amount float64) string {
	p := message.NewPrinter(language.English)
	if amount < 0 {
		return p.Sprintf("-$%.2f", -amount)
	}
	return p.Sprintf("$%.2f", amount)
}
