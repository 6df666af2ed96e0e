package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidatePrincipal(t *testing.T) {
	t.Parallel()

	if err := ValidatePrincipal(decimal.NewFromFloat(2500.75)); err != nil {
		t.Fatalf("expected valid principal, got %v", err)
	}

	if err := ValidatePrincipal(decimal.Zero); !errors.Is(err, ErrInvalidPrincipal) {
		t.Fatalf("expected ErrInvalidPrincipal for zero, got %v", err)
	}

	if err := ValidatePrincipal(decimal.NewFromInt(-10)); !errors.Is(err, ErrInvalidPrincipal) {
		t.Fatalf("expected ErrInvalidPrincipal for negative, got %v", err)
	}

	huge := decimal.RequireFromString(MaxPrincipalAmount).Add(decimal.NewFromInt(1))
	if err := ValidatePrincipal(huge); !errors.Is(err, ErrInvalidPrincipal) {
		t.Fatalf("expected ErrInvalidPrincipal for oversized principal, got %v", err)
	}

	if err := ValidatePrincipal(decimal.RequireFromString("1000.005")); !errors.Is(err, ErrInvalidPrincipal) {
		t.Fatalf("expected ErrInvalidPrincipal for sub-penny principal, got %v", err)
	}

	// Trailing zeros beyond two places do not change the value.
	if err := ValidatePrincipal(decimal.RequireFromString("1000.0000")); err != nil {
		t.Fatalf("expected trailing zeros to be accepted, got %v", err)
	}
}

func TestValidatePaymentAmount(t *testing.T) {
	t.Parallel()

	if err := ValidatePaymentAmount(decimal.RequireFromString("888.49")); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidatePaymentAmount(decimal.RequireFromString("10.000")); err != nil {
		t.Fatalf("expected trailing zeros to be accepted, got %v", err)
	}

	if err := ValidatePaymentAmount(decimal.Zero); !errors.Is(err, ErrNonPositivePayment) {
		t.Fatalf("expected ErrNonPositivePayment for zero, got %v", err)
	}

	if err := ValidatePaymentAmount(decimal.NewFromInt(-5)); !errors.Is(err, ErrNonPositivePayment) {
		t.Fatalf("expected ErrNonPositivePayment for negative, got %v", err)
	}

	if err := ValidatePaymentAmount(decimal.RequireFromString("0.001")); !errors.Is(err, ErrInvalidPaymentAmount) {
		t.Fatalf("expected ErrInvalidPaymentAmount for sub-penny amount, got %v", err)
	}

	if err := ValidatePaymentAmount(decimal.RequireFromString("100.125")); !errors.Is(err, ErrInvalidPaymentAmount) {
		t.Fatalf("expected ErrInvalidPaymentAmount for three decimal places, got %v", err)
	}
}

func TestValidateInterestRate(t *testing.T) {
	t.Parallel()

	if err := ValidateInterestRate(decimal.NewFromFloat(12.5)); err != nil {
		t.Fatalf("expected valid rate, got %v", err)
	}

	if err := ValidateInterestRate(decimal.NewFromInt(100)); err != nil {
		t.Fatalf("expected 100%% to be accepted, got %v", err)
	}

	if err := ValidateInterestRate(decimal.Zero); !errors.Is(err, ErrInvalidInterestRate) {
		t.Fatalf("expected ErrInvalidInterestRate for zero, got %v", err)
	}

	if err := ValidateInterestRate(decimal.NewFromFloat(100.01)); !errors.Is(err, ErrInvalidInterestRate) {
		t.Fatalf("expected ErrInvalidInterestRate above 100%%, got %v", err)
	}
}

func TestValidateLoanTerm(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	if err := ValidateLoanTerm(start, start.AddDate(1, 0, 0)); err != nil {
		t.Fatalf("expected valid term, got %v", err)
	}

	if err := ValidateLoanTerm(start, start); !errors.Is(err, ErrInvalidLoanTerm) {
		t.Fatalf("expected ErrInvalidLoanTerm for zero-length term, got %v", err)
	}

	if err := ValidateLoanTerm(start, start.AddDate(-1, 0, 0)); !errors.Is(err, ErrInvalidLoanTerm) {
		t.Fatalf("expected ErrInvalidLoanTerm for inverted dates, got %v", err)
	}
}

func TestValidateClientName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateClientName("Asha Devi"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateClientName("   ")
		if !errors.Is(err, ErrInvalidClientName) {
			t.Fatalf("expected ErrInvalidClientName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxClientNameLength+1)
		err := ValidateClientName(tooLong)
		if !errors.Is(err, ErrInvalidClientName) {
			t.Fatalf("expected ErrInvalidClientName, got %v", err)
		}
	})
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	if err := ValidateEmail("USER@example.com"); err != nil {
		t.Fatalf("expected valid email, got %v", err)
	}

	if err := ValidateEmail("invalid-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestValidatePhone(t *testing.T) {
	t.Parallel()

	if err := ValidatePhone("+919876543210"); err != nil {
		t.Fatalf("expected valid phone, got %v", err)
	}

	if err := ValidatePhone("9876543210"); err != nil {
		t.Fatalf("expected valid phone without prefix, got %v", err)
	}

	if err := ValidatePhone("12345"); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone for short number, got %v", err)
	}

	if err := ValidatePhone("98-76-54-32-10"); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone for separators, got %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	if err := ValidatePassword("StrongPass1"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}

	if err := ValidatePassword("short1A"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak for short password, got %v", err)
	}

	if err := ValidatePassword(strings.Repeat("A", MaxPasswordLength+1)); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak for overly long password, got %v", err)
	}

	if err := ValidatePassword("alllowercase1"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak for missing upper case, got %v", err)
	}

	if err := ValidatePassword("NoDigitsHere"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak for missing digits, got %v", err)
	}
}
