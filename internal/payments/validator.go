package payments

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Brand labels reported on successful authorizations.
const (
	BrandVisa       = "visa"
	BrandMastercard = "mastercard"
	BrandPayPal     = "paypal"
)

// StatusCaptured is the terminal state of a simulated charge.
const StatusCaptured = "captured"

const (
	msgUnsupported   = "Only Visa and Mastercard are supported."
	msgInvalidNumber = "Invalid card number."
	msgInvalidExpiry = "Card expiry date is invalid or in the past."
)

var (
	visaPattern       = regexp.MustCompile(`^4\d+$`)
	mastercardPattern = regexp.MustCompile(`^(5[1-5]\d{14}|(222[1-9]|22[3-9]\d|2[3-6]\d{2}|27[0-1]\d|2720)\d{12})$`)
	digitsOnly        = regexp.MustCompile(`^\d+$`)
	nonDigit          = regexp.MustCompile(`\D`)
)

// NormalizeNumber drops every non-digit rune, so numbers typed with
// spaces or dashes validate the same as bare digits.
func NormalizeNumber(number string) string {
	return nonDigit.ReplaceAllString(number, "")
}

// UnsupportedCardError is returned for every card-side rejection: an
// unrecognized brand, a failed checksum, or a bad expiry. Callers match
// it with errors.As and surface Message verbatim.
type UnsupportedCardError struct {
	Message string
}

func (e *UnsupportedCardError) Error() string {
	return e.Message
}

// Card carries the raw input for a card charge. Number may still
// contain the spaces or dashes the buyer typed; ChargeCard normalizes
// it before any check runs.
type Card struct {
	Number      string
	ExpiryMonth int
	ExpiryYear  int
}

// Authorization is the record of a successful simulated charge.
type Authorization struct {
	Status     string          `json:"status"`
	Brand      string          `json:"brand"`
	LastFour   string          `json:"last_four,omitempty"`
	Reference  string          `json:"reference"`
	Amount     decimal.Decimal `json:"amount"`
	PayerEmail string          `json:"payer_email,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
}

// Validator simulates a payment gateway locally: brand detection,
// checksum and expiry checks for cards, and an always-approving wallet
// path.
type Validator interface {
	ChargeCard(card Card, amount decimal.Decimal) (Authorization, error)
	ChargeWallet(payerEmail string, amount decimal.Decimal) (Authorization, error)
}

type validator struct {
	now     func() time.Time
	entropy func() ([4]byte, error)
}

// Option overrides a validator dependency, used by tests to pin the
// clock and the reference bytes.
type Option func(*validator)

func WithClock(now func() time.Time) Option {
	return func(v *validator) { v.now = now }
}

func WithEntropy(entropy func() ([4]byte, error)) Option {
	return func(v *validator) { v.entropy = entropy }
}

func NewValidator(opts ...Option) Validator {
	v := &validator{
		now:     time.Now,
		entropy: randomBytes,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ChargeCard strips non-digits from the number, then validates brand,
// checksum and expiry in that order, so an American Express number is
// rejected as unsupported before its checksum is ever looked at.
func (v *validator) ChargeCard(card Card, amount decimal.Decimal) (Authorization, error) {
	number := NormalizeNumber(card.Number)

	brand, err := detectBrand(number)
	if err != nil {
		return Authorization{}, err
	}
	if !luhnValid(number) {
		return Authorization{}, &UnsupportedCardError{Message: msgInvalidNumber}
	}
	if !v.expiryValid(card.ExpiryMonth, card.ExpiryYear) {
		return Authorization{}, &UnsupportedCardError{Message: msgInvalidExpiry}
	}

	reference, err := v.reference("PAY")
	if err != nil {
		return Authorization{}, err
	}

	return Authorization{
		Status:    StatusCaptured,
		Brand:     brand,
		LastFour:  number[len(number)-4:],
		Reference: reference,
		Amount:    amount.Round(2),
		PaidAt:    v.now(),
	}, nil
}

// ChargeWallet approves unconditionally; the wallet provider is trusted
// to have validated the payer on its side.
func (v *validator) ChargeWallet(payerEmail string, amount decimal.Decimal) (Authorization, error) {
	reference, err := v.reference("PP")
	if err != nil {
		return Authorization{}, err
	}

	return Authorization{
		Status:     StatusCaptured,
		Brand:      BrandPayPal,
		Reference:  reference,
		Amount:     amount.Round(2),
		PayerEmail: payerEmail,
		PaidAt:     v.now(),
	}, nil
}

func detectBrand(number string) (string, error) {
	if !digitsOnly.MatchString(number) {
		return "", &UnsupportedCardError{Message: msgUnsupported}
	}

	switch length := len(number); {
	case visaPattern.MatchString(number) && (length == 13 || length == 16 || length == 19):
		return BrandVisa, nil
	case mastercardPattern.MatchString(number):
		return BrandMastercard, nil
	default:
		return "", &UnsupportedCardError{Message: msgUnsupported}
	}
}

// luhnValid runs the mod-10 checksum right to left.
func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		digit, err := strconv.Atoi(string(number[i]))
		if err != nil {
			return false
		}
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

// expiryValid accepts the current month: a card is good through the
// last instant of its expiry month.
func (v *validator) expiryValid(month, year int) bool {
	if month < 1 || month > 12 {
		return false
	}

	endOfMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return !v.now().UTC().After(endOfMonth.Add(-time.Nanosecond))
}

func (v *validator) reference(prefix string) (string, error) {
	raw, err := v.entropy()
	if err != nil {
		return "", fmt.Errorf("payments: generating reference: %w", err)
	}
	return fmt.Sprintf("%s-%X", prefix, raw[:]), nil
}

func randomBytes() ([4]byte, error) {
	var raw [4]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return [4]byte{}, err
	}
	return raw, nil
}
