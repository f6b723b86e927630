package ledger

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	passwordMinLength = 6
	passwordMaxLength = 20
	passwordSymbols   = "!@#$%^&*()-_=+[]{}|;:,.<>?"
)

var (
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	symbolPattern = regexp.MustCompile(`^[A-Za-z]{1,5}$`)
)

// validSymbol reports whether s is a well-formed ticker symbol.
func validSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}

// validEmail reports whether s is structurally an email address.
func validEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// validPassword enforces the strength policy: 6-20 characters with at least
// one lowercase letter, one uppercase letter, one digit, and one symbol from
// the allowed set.
func validPassword(s string) bool {
	if len(s) < passwordMinLength || len(s) > passwordMaxLength {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// parseShares parses a share count, requiring a positive whole number.
func parseShares(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseCashAmount parses a whole-dollar amount and checks it against the
// inclusive [min, max] range.
func parseCashAmount(s string, min, max int64) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < min || n > max {
		return 0, false
	}
	return n, true
}

// Distinct user-facing messages, one per validation rule.
const (
	msgUsernameRequired     = "must provide a username"
	msgUsernameTaken        = "username is already taken"
	msgEmailRequired        = "must provide an email address"
	msgEmailInvalid         = "must provide a valid email address"
	msgEmailTaken           = "email is already taken"
	msgPasswordRequired     = "must provide a password"
	msgConfirmationRequired = "must confirm password"
	msgPasswordMismatch     = "password and confirmation must match"
	msgPasswordWeak         = "password must be 6-20 characters with at least one lowercase letter, one uppercase letter, one number, and one symbol"
	msgStartingCashRequired = "must provide a starting cash amount"
	msgStartingCashRange    = "starting cash must be a whole number between 100 and 10,000,000"
	msgSharesInvalid        = "shares must be a positive whole number"
	msgCannotAfford         = "you cannot afford that purchase"
	msgNoHolding            = "you do not own shares in this company"
	msgTooManyShares        = "you do not own that many shares"
	msgDepositRequired      = "must provide an amount to deposit"
	msgDepositRange         = "deposit must be a whole number between 1 and 10,000,000"
	msgCashAtCap            = "account has reached the cash limit of $10,000,000.00"
	msgDepositOverCap       = "deposit would exceed the cash limit of $10,000,000.00"
	msgResetCashRequired    = "must provide a new cash amount"
	msgResetCashRange       = "new cash must be a whole number between 100 and 10,000,000"
)
