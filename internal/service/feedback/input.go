package feedback

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

const (
	maxContentLen  = 5000
	maxCategoryLen = 50
)

// SubmitInput holds a feedback submission. The author identity comes from
// the request context, never from the body.
type SubmitInput struct {
	Category     string
	Content      string
	ContactEmail *string
	Metadata     map[string]any
}

// Validate checks all fields and collects all errors.
func (i SubmitInput) Validate() error {
	var errs []domain.FieldError

	content := strings.TrimSpace(i.Content)
	if content == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		errs = append(errs, domain.FieldError{Field: "content", Message: "max 5000 characters"})
	}
	if utf8.RuneCountInString(strings.TrimSpace(i.Category)) > maxCategoryLen {
		errs = append(errs, domain.FieldError{Field: "category", Message: "max 50 characters"})
	}
	if i.ContactEmail != nil {
		if email := strings.TrimSpace(*i.ContactEmail); email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				errs = append(errs, domain.FieldError{Field: "contact_email", Message: "invalid email"})
			}
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// trimOrNil trims whitespace. Returns nil if result is empty.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
