package domain

import (
	"fmt"
	"regexp"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._\-]{3,32}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ValidateUsername checks the login identifier format.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-32 characters (letters, digits, . _ -)")
	}
	return nil
}

// ValidateCurrency checks if a currency code is ISO 4217.
func ValidateCurrency(currency string) error {
	if !currencyRegex.MatchString(currency) {
		return fmt.Errorf("invalid currency code: %s", currency)
	}
	return nil
}

// ValidatePositiveAmount checks that an amount is positive (in centavos).
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

// ValidateOffer checks catalog invariants before an offer is written.
func ValidateOffer(o *BonusOffer) error {
	if o.Name == "" {
		return fmt.Errorf("offer name is required")
	}
	if !ValidOfferKind(o.Kind) {
		return fmt.Errorf("unknown offer kind: %s", o.Kind)
	}
	if o.Percentage < 0 || o.Percentage > 1000 {
		return fmt.Errorf("percentage must be between 0 and 1000")
	}
	if o.Fixed < 0 {
		return fmt.Errorf("fixed amount must not be negative")
	}
	if o.MinDeposit < 0 {
		return fmt.Errorf("min deposit must not be negative")
	}
	if o.MaxBonus != nil && *o.MaxBonus < 0 {
		return fmt.Errorf("max bonus must not be negative")
	}
	if o.RolloverMultiplier < 0.1 {
		return fmt.Errorf("rollover multiplier must be at least 0.1")
	}
	if o.RtpPercentage < 0 || o.RtpPercentage > 100 {
		return fmt.Errorf("rtp percentage must be between 0 and 100")
	}
	return nil
}
