// Package console runs the interactive prompt session: it asks for each
// input in turn, re-prompting until the answer is well formed, then prints
// the monthly payment or the validation error.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/reverse-mortgage/pkg/constants"
	"github.com/iwvelando/reverse-mortgage/pkg/mathutil"
	"github.com/iwvelando/reverse-mortgage/pkg/mortgage"
	"github.com/iwvelando/reverse-mortgage/pkg/output"
	"go.uber.org/zap"
)

const (
	promptPropertyValue     = "Enter the property value: "
	promptPropertyCondition = "Enter the property condition (excellent, good, average): "
	promptMaritalStatus     = "Enter your marital status (married, single, divorced): "
	promptOwnerAge          = "Enter the owner's age: "
	promptSpouseAge         = "Enter the spouse's age: "
	promptInterestRate      = "Enter the interest rate (e.g., 0.05 for 5%): "

	retryHint = "Please correct the error and try again."
)

// ErrInputClosed is returned when the input ends before every prompt has
// been answered.
var ErrInputClosed = errors.New("input closed before all values were entered")

// Session reads answers from in and writes prompts and results to out.
type Session struct {
	logger *zap.Logger
	reader *bufio.Reader
	out    io.Writer
}

// NewSession creates a prompt session over the given streams.
func NewSession(logger *zap.Logger, in io.Reader, out io.Writer) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		logger: logger,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Collect prompts for all six inputs in order.
func (s *Session) Collect() (mortgage.Inputs, error) {
	var in mortgage.Inputs
	var err error

	if in.PropertyValue, err = s.promptFloat(promptPropertyValue, checkPropertyValue); err != nil {
		return in, err
	}
	if in.PropertyCondition, err = s.promptChoice(promptPropertyCondition, mortgage.PropertyConditions); err != nil {
		return in, err
	}
	if in.MaritalStatus, err = s.promptChoice(promptMaritalStatus, mortgage.MaritalStatuses); err != nil {
		return in, err
	}
	if in.OwnerAge, err = s.promptInt(promptOwnerAge, checkAge); err != nil {
		return in, err
	}
	if in.SpouseAge, err = s.promptInt(promptSpouseAge, checkAge); err != nil {
		return in, err
	}
	if in.InterestRate, err = s.promptFloat(promptInterestRate, checkInterestRate); err != nil {
		return in, err
	}
	return in, nil
}

// Run collects the inputs and prints the outcome. A validation failure is
// reported on out and returned.
func (s *Session) Run() error {
	in, err := s.Collect()
	if err != nil {
		return err
	}

	payment, err := mortgage.Calculate(in)
	if err != nil {
		s.logger.Debug("calculation rejected",
			zap.String("op", "console.Run"),
			zap.String("kind", mortgage.KindName(err)),
			zap.Error(err),
		)
		fmt.Fprintf(s.out, "Error: %s\n", err)
		fmt.Fprintln(s.out, retryHint)
		return err
	}

	fmt.Fprintln(s.out, output.PaymentLine(payment))
	return nil
}

// readLine prints prompt and returns the trimmed answer. A final line
// without a newline still counts as an answer.
func (s *Session) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)

	line, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (s *Session) promptFloat(prompt string, check func(float64) string) (float64, error) {
	for {
		text, err := s.readLine(prompt)
		if err != nil {
			return 0, err
		}

		if strings.Contains(text, ",") {
			s.reject(fmt.Sprintf("Error: Invalid characters found in input: '%s'. Please use a decimal point instead of a comma.", text))
			continue
		}

		value, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			s.reject(fmt.Sprintf("Error: Invalid value entered: '%s'. Expected a valid float.", text))
			continue
		}

		if msg := check(value); msg != "" {
			s.reject(msg)
			continue
		}
		return value, nil
	}
}

func (s *Session) promptInt(prompt string, check func(int) string) (int, error) {
	for {
		text, err := s.readLine(prompt)
		if err != nil {
			return 0, err
		}

		if strings.Contains(text, ",") {
			s.reject(fmt.Sprintf("Error: Invalid characters found in input: '%s'. Please remove commas.", text))
			continue
		}

		value, err := strconv.Atoi(text)
		if err != nil {
			s.reject(fmt.Sprintf("Error: Invalid value entered: '%s'. Expected a valid integer.", text))
			continue
		}

		if msg := check(value); msg != "" {
			s.reject(msg)
			continue
		}
		return value, nil
	}
}

func (s *Session) promptChoice(prompt string, options []string) (string, error) {
	for {
		text, err := s.readLine(prompt)
		if err != nil {
			return "", err
		}

		value := strings.ToLower(text)
		for _, option := range options {
			if value == option {
				return value, nil
			}
		}
		s.reject(fmt.Sprintf("Error: Invalid value entered: '%s'. Valid options are: %s.", value, strings.Join(options, ", ")))
	}
}

func (s *Session) reject(msg string) {
	s.logger.Debug("input rejected",
		zap.String("op", "console.prompt"),
		zap.String("reason", msg),
	)
	fmt.Fprintln(s.out, msg)
}

func checkPropertyValue(value float64) string {
	switch {
	case value <= 0:
		return fmt.Sprintf("Error: Property value must be a positive number. You entered: %s.", mathutil.FormatFloatLiteral(value))
	case value < constants.MinPropertyValue || value > constants.MaxPropertyValue:
		return fmt.Sprintf("Error: Property value must be between 200,000,000 and 900,000,000. You entered: %s.", mathutil.FormatFloatLiteral(value))
	}
	return ""
}

func checkInterestRate(value float64) string {
	if value <= 0 || value > 1 {
		return fmt.Sprintf("Error: Interest rate must be between 0 and 1. You entered: %s.", mathutil.FormatFloatLiteral(value))
	}
	return ""
}

func checkAge(value int) string {
	if value < constants.MinAge {
		return fmt.Sprintf("Error: Age must be at least %d. You entered: %d.", constants.MinAge, value)
	}
	return ""
}
