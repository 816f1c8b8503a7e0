// Package validation screens lead submissions for obvious junk before they
// reach the form backend.
package validation

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalid is wrapped by every *FieldError.
var ErrInvalid = errors.New("validation failed")

// User-facing messages
const (
	MsgEmailRequired   = "Email is required"
	MsgEmailInvalid    = "Please enter a valid email address."
	MsgEmailDisposable = "Please use a non-disposable email address."
	MsgEmailFake       = "Please enter your real email address."
	MsgPhoneRequired   = "Phone number is required"
	MsgPhoneInvalid    = "Please enter a valid phone number."
	MsgTooFast         = "Please take your time filling out the form."
	MsgHoneypot        = "Something went wrong. Please try again."
)

// MinFillDuration is how long a human needs at least to fill the form.
const MinFillDuration = 2 * time.Second

// DefaultRegion is assumed for numbers without a leading +.
const DefaultRegion = "US"

// FieldError describes why one field was rejected.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var disposableDomains = []string{
	"tempmail.com", "throwaway.com", "mailinator.com", "guerrillamail.com",
	"temp-mail.org", "10minutemail.com", "fakeinbox.com", "trashmail.com",
	"tempinbox.com", "dispostable.com", "sharklasers.com", "yopmail.com",
	"getnada.com",
}

var fakeLocalParts = []string{
	"test", "fake", "asdf", "qwerty", "admin", "user",
	"example", "sample", "demo",
}

var phoneSequences = []string{"1234567890", "0987654321", "1234512345"}

// Email checks syntax, disposable domains and placeholder local parts.
func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &FieldError{Field: "email", Message: MsgEmailRequired}
	}
	if !emailPattern.MatchString(email) {
		return &FieldError{Field: "email", Message: MsgEmailInvalid}
	}

	local, domain, _ := strings.Cut(strings.ToLower(email), "@")
	if slices.Contains(disposableDomains, domain) {
		return &FieldError{Field: "email", Message: MsgEmailDisposable}
	}
	for _, p := range fakeLocalParts {
		if local == p || strings.HasPrefix(local, p+"123") {
			return &FieldError{Field: "email", Message: MsgEmailFake}
		}
	}
	return nil
}

// Phone checks that phone parses as a valid number and is not an obvious
// fake: long runs of one digit, keyboard sequences, or two digits making up
// more than 70% of the number.
func Phone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return &FieldError{Field: "phone", Message: MsgPhoneRequired}
	}

	num, err := phonenumbers.Parse(phone, DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return &FieldError{Field: "phone", Message: MsgPhoneInvalid}
	}

	if LooksFake(phone) {
		return &FieldError{Field: "phone", Message: MsgPhoneInvalid}
	}
	return nil
}

// LooksFake applies the digit heuristics on their own.
func LooksFake(phone string) bool {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) == 0 {
		return true
	}
	cleaned := string(digits)

	if len(cleaned) >= 6 && strings.Count(cleaned, cleaned[:1]) == len(cleaned) {
		return true
	}
	for _, seq := range phoneSequences {
		if strings.Contains(cleaned, seq) {
			return true
		}
	}

	var counts [10]int
	for _, d := range digits {
		counts[d-'0']++
	}
	slices.Sort(counts[:])
	return float64(counts[9]+counts[8])/float64(len(digits)) > 0.7
}

// IsBot reports whether the form was submitted faster than a person could.
func IsBot(startedAt, now time.Time) bool {
	return now.Sub(startedAt) < MinFillDuration
}

// Message extracts the user-facing message from err.
func Message(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}
