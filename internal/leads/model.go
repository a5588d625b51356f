package leads

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// StatusNew is the lifecycle state assigned to every accepted submission.
// Leads are created once and never mutated by this pipeline.
const StatusNew = "new"

const (
	maxNameLen        = 100
	minNameLen        = 2
	maxEmailLen       = 254
	minMessageLen     = 10
	maxMessageLen     = 2000
	maxCarInterest    = 200
	maxOpaqueFieldLen = 500
	minPhoneDigits    = 7
	maxPhoneDigits    = 15
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigitPattern = regexp.MustCompile(`[^0-9]`)
)

// SubmitLeadRequest is the untrusted request body for a lead submission.
type SubmitLeadRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Message       string `json:"message"`
	CarOfInterest string `json:"carOfInterest"`
	CarID         string `json:"carId"`
	PageURL       string `json:"pageUrl"`
	UserAgent     string `json:"userAgent"`
}

// Validate applies required-field constraints in order: name, email, message.
// The first failing field wins. Optional fields never block a submission.
// Lengths are counted in runes so multibyte names are not over- or
// under-counted.
func (r *SubmitLeadRequest) Validate() error {
	name := utf8.RuneCountInString(strings.TrimSpace(r.Name))
	if name < minNameLen || name > maxNameLen {
		return ErrInvalidName
	}

	email := strings.ToLower(strings.TrimSpace(r.Email))
	if email == "" || utf8.RuneCountInString(email) > maxEmailLen || !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	message := utf8.RuneCountInString(strings.TrimSpace(r.Message))
	if message < minMessageLen || message > maxMessageLen {
		return ErrInvalidMessage
	}

	return nil
}

// Lead is the sanitized record handed to the persistence store.
// Optional fields use nil as the absent sentinel so the store receives NULLs.
type Lead struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         *string   `json:"phone"`
	Message       string    `json:"message"`
	CarOfInterest *string   `json:"car_of_interest"`
	CarID         *string   `json:"car_id"`
	PageURL       string    `json:"page_url"`
	UserAgent     string    `json:"user_agent"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// Normalize builds the persistable record from a validated request:
// email lower-cased, phone reduced to digits, carId nulled unless it is a
// 36-character UUID, opaque fields truncated at 500 characters.
func (r *SubmitLeadRequest) Normalize() *Lead {
	return &Lead{
		Name:          strings.TrimSpace(r.Name),
		Email:         strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:         normalizePhone(r.Phone),
		Message:       strings.TrimSpace(r.Message),
		CarOfInterest: optional(truncate(strings.TrimSpace(r.CarOfInterest), maxCarInterest)),
		CarID:         normalizeCarID(r.CarID),
		PageURL:       truncate(r.PageURL, maxOpaqueFieldLen),
		UserAgent:     truncate(r.UserAgent, maxOpaqueFieldLen),
		Status:        StatusNew,
	}
}

// normalizePhone strips non-numeric characters and drops values outside the
// 7-15 digit range. A malformed phone is treated as absent, not as an error.
func normalizePhone(raw string) *string {
	digits := nonDigitPattern.ReplaceAllString(raw, "")
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return nil
	}
	return &digits
}

// normalizeCarID accepts only canonical 36-character UUIDs; anything else is
// coerced to nil rather than rejected.
func normalizeCarID(raw string) *string {
	id := strings.TrimSpace(raw)
	if len(id) != 36 {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	return &id
}

// truncate cuts s to max runes. Cutting on a rune boundary keeps the value
// valid UTF-8; a byte slice could split a multibyte character and the
// database would reject the record.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
