package util

import (
	"fmt"
	"regexp"
)

var (
	currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)
	phoneRe    = regexp.MustCompile(`^(\+974|974)?\d{8}$`)
	pinRe      = regexp.MustCompile(`^\d{4}$`)
)

// ValidateAmount checks that an amount is positive and below the hard cap.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %f", amount)
	}
	if amount >= 10000000 {
		return fmt.Errorf("amount too large, got %f", amount)
	}
	return nil
}

// ValidateCurrency checks a 3-letter uppercase currency code.
func ValidateCurrency(code string) error {
	if !currencyRe.MatchString(code) {
		return fmt.Errorf("invalid currency code: %q", code)
	}
	return nil
}

// ValidateCategory checks a spend category (empty is allowed, defaults to general).
func ValidateCategory(category string) error {
	if category == "" {
		return nil
	}
	if len(category) > 20 {
		return fmt.Errorf("category too long, max 20 characters")
	}
	return nil
}

// ValidateQatarPhone checks a Qatari phone number (optional +974/974 prefix).
func ValidateQatarPhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRe.MatchString(phone) {
		return fmt.Errorf("invalid Qatari phone: %q", phone)
	}
	return nil
}

// ValidatePIN checks an optional 4-digit PIN.
func ValidatePIN(pin string) error {
	if pin == "" {
		return nil
	}
	if !pinRe.MatchString(pin) {
		return fmt.Errorf("PIN must be 4 digits")
	}
	return nil
}
