package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) err() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// MinPasswordLength is the shortest password accepted at login or sign-up.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

func checkEmail(ve *ValidationError, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		ve.add("email", "is required")
	} else if !emailPattern.MatchString(email) {
		ve.add("email", "is invalid")
	}
}

func checkPassword(ve *ValidationError, password string) {
	if password == "" {
		ve.add("password", "is required")
	} else if len(password) < MinPasswordLength {
		ve.add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
}

func checkName(ve *ValidationError, field, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		ve.add(field, "is required")
	} else if len([]rune(name)) < 2 {
		ve.add(field, "must be at least 2 characters")
	}
}

// ValidateCredentials checks a login payload.
func ValidateCredentials(c *Credentials) error {
	var ve ValidationError
	checkEmail(&ve, c.Email)
	checkPassword(&ve, c.Password)
	return ve.err()
}

// ValidateRegistration checks a sign-up payload. confirm must repeat the password.
func ValidateRegistration(r *Registration, confirm string) error {
	var ve ValidationError
	checkName(&ve, "firstName", r.FirstName)
	checkName(&ve, "lastName", r.LastName)
	checkEmail(&ve, r.Email)
	checkPassword(&ve, r.Password)
	if confirm == "" {
		ve.add("confirmPassword", "is required")
	} else if confirm != r.Password {
		ve.add("confirmPassword", "does not match password")
	}
	return ve.err()
}

// ValidateClientForm checks a client payload. Only the name is required;
// a contact email, when given, must look like one.
func ValidateClientForm(f *ClientForm) error {
	var ve ValidationError
	name := strings.TrimSpace(f.Name)
	if name == "" {
		ve.add("name", "is required")
	} else if len([]rune(name)) > 200 {
		ve.add("name", "must be 200 characters or fewer")
	}
	if email := strings.TrimSpace(f.ContactEmail); email != "" && !emailPattern.MatchString(email) {
		ve.add("contactEmail", "is invalid")
	}
	return ve.err()
}

// ValidateClientUpdate checks the fields a client update sets.
func ValidateClientUpdate(u *ClientUpdate) error {
	f := &ClientForm{Name: "unchanged"}
	if u.Name != nil {
		f.Name = *u.Name
	}
	if u.ContactEmail != nil {
		f.ContactEmail = *u.ContactEmail
	}
	return ValidateClientForm(f)
}

// ValidateUserForm checks a user payload. The password is required only
// when creating.
func ValidateUserForm(f *UserForm, creating bool) error {
	var ve ValidationError
	checkEmail(&ve, f.Email)
	if strings.TrimSpace(f.FirstName) == "" {
		ve.add("firstName", "is required")
	}
	if strings.TrimSpace(f.LastName) == "" {
		ve.add("lastName", "is required")
	}
	if !f.Role.IsValid() {
		ve.add("role", fmt.Sprintf("invalid value %q", f.Role))
	}
	if creating || f.Password != "" {
		checkPassword(&ve, f.Password)
	}
	return ve.err()
}

// ValidateUserUpdate checks the fields a user update sets.
func ValidateUserUpdate(u *UserUpdate) error {
	var ve ValidationError
	if u.Email != nil {
		checkEmail(&ve, *u.Email)
	}
	if u.FirstName != nil && strings.TrimSpace(*u.FirstName) == "" {
		ve.add("firstName", "is required")
	}
	if u.LastName != nil && strings.TrimSpace(*u.LastName) == "" {
		ve.add("lastName", "is required")
	}
	if u.Role != nil && !u.Role.IsValid() {
		ve.add("role", fmt.Sprintf("invalid value %q", *u.Role))
	}
	if u.Password != nil {
		checkPassword(&ve, *u.Password)
	}
	return ve.err()
}

// ValidatePaymentForm checks a card entry against now, rejecting expired cards.
func ValidatePaymentForm(f *PaymentForm, now time.Time) error {
	var ve ValidationError

	digits := strings.ReplaceAll(f.CardNumber, " ", "")
	if digits == "" {
		ve.add("cardNumber", "is required")
	} else if !isDigits(digits) || len(digits) < 12 || len(digits) > 19 {
		ve.add("cardNumber", "must be 12 to 19 digits")
	}

	month, mErr := strconv.Atoi(f.ExpiryMonth)
	if mErr != nil || month < 1 || month > 12 {
		ve.add("expiryMonth", "must be between 1 and 12")
	}
	year, yErr := strconv.Atoi(f.ExpiryYear)
	if yErr != nil || year < 1000 {
		ve.add("expiryYear", "must be a four-digit year")
	}
	if mErr == nil && yErr == nil && month >= 1 && month <= 12 && year >= 1000 {
		if year*100+month < now.Year()*100+int(now.Month()) {
			ve.add("expiryYear", "card has expired")
		}
	}

	if len(f.CVV) < 3 || len(f.CVV) > 4 || !isDigits(f.CVV) {
		ve.add("cvv", "must be 3 or 4 digits")
	}
	if strings.TrimSpace(f.CardholderName) == "" {
		ve.add("cardholderName", "is required")
	}
	return ve.err()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
