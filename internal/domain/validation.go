package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidPrincipal     = errors.New("invalid principal amount")
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
	ErrInvalidInterestRate  = errors.New("invalid interest rate")
	ErrInvalidLoanTerm      = errors.New("invalid loan term")
	ErrInvalidClientName    = errors.New("invalid client name")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrInvalidPhone         = errors.New("invalid phone number")
	ErrPasswordTooWeak      = errors.New("password does not meet requirements")
)

// Validation constants
const (
	MaxClientNameLength = 100
	MinClientNameLength = 1
	MaxPrincipalAmount  = "10000000000" // 10 billion
	MaxInterestRate     = "100"
	MinPasswordLength   = 8
	MaxPasswordLength   = 128
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// ValidatePrincipal validates a loan principal amount.
func ValidatePrincipal(principal decimal.Decimal) error {
	if principal.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: must be positive", ErrInvalidPrincipal)
	}

	maxPrincipal, _ := decimal.NewFromString(MaxPrincipalAmount)
	if principal.GreaterThan(maxPrincipal) {
		return fmt.Errorf("%w: maximum principal is %s", ErrInvalidPrincipal, MaxPrincipalAmount)
	}

	if !hasAmountScale(principal) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidPrincipal, AmountScale)
	}

	return nil
}

// ValidatePaymentAmount validates a repayment amount. Money is stored at
// AmountScale digits, so finer-grained amounts are rejected rather than
// silently rounded.
func ValidatePaymentAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositivePayment
	}

	if !hasAmountScale(amount) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidPaymentAmount, AmountScale)
	}

	return nil
}

// hasAmountScale reports whether the value is exactly representable at
// AmountScale digits. Trailing zeros beyond the scale are fine.
func hasAmountScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}

// ValidateInterestRate validates an annual interest rate in percent.
func ValidateInterestRate(rate decimal.Decimal) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: must be positive", ErrInvalidInterestRate)
	}

	maxRate, _ := decimal.NewFromString(MaxInterestRate)
	if rate.GreaterThan(maxRate) {
		return fmt.Errorf("%w: rate cannot exceed %s%%", ErrInvalidInterestRate, MaxInterestRate)
	}

	return nil
}

// ValidateLoanTerm validates that the end date falls strictly after the
// start date.
func ValidateLoanTerm(startDate, endDate time.Time) error {
	if !endDate.After(startDate) {
		return fmt.Errorf("%w: end date must be after start date", ErrInvalidLoanTerm)
	}

	return nil
}

// ValidateClientName validates a client name.
func ValidateClientName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinClientNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidClientName)
	}

	if len(name) > MaxClientNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidClientName, MaxClientNameLength)
	}

	return nil
}

// ValidateEmail validates email format.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePhone validates a phone number (10 to 15 digits, optional +).
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(strings.TrimSpace(phone)) {
		return ErrInvalidPhone
	}

	return nil
}

// ValidatePassword validates password strength.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)

	if !hasUpper || !hasLower || !hasNumber {
		return fmt.Errorf("%w: must contain uppercase, lowercase, and numbers", ErrPasswordTooWeak)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
