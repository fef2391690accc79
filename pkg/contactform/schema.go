// Package contactform holds the field rules for contact submissions.
// The same Schema is applied by the HTTP handler and by the Go client so
// both sides accept exactly the same payloads.
package contactform

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Submission is a contact form payload after defaults are applied.
type Submission struct {
	Name    string `json:"name" validate:"min=2"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"min=2"`
	Message string `json:"message" validate:"min=10"`
}

// Payload is the wire form of a submission. A nil Subject means the field
// was absent from the request body.
type Payload struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Subject *string `json:"subject"`
	Message string  `json:"message"`
}

// Payload converts a submission back to its wire form.
func (s Submission) Payload() Payload {
	subject := s.Subject
	return Payload{
		Name:    s.Name,
		Email:   s.Email,
		Subject: &subject,
		Message: s.Message,
	}
}

// FieldErrors maps a JSON field name to a user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return strings.Join(parts, "; ")
}

// Result is the outcome of Check. Errors is nil when the payload is valid.
type Result struct {
	Submission Submission
	Errors     FieldErrors
}

// OK reports whether the payload passed every rule.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Option configures a Schema.
type Option func(*Schema)

// WithDefaultSubject substitutes subject when the payload omits the field.
// An explicitly empty subject is still rejected.
func WithDefaultSubject(subject string) Option {
	return func(s *Schema) {
		s.defaultSubject = subject
	}
}

// Schema validates contact payloads. It is safe for concurrent use.
type Schema struct {
	validate       *validator.Validate
	defaultSubject string
}

// New builds a Schema.
func New(opts ...Option) *Schema {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	s := &Schema{validate: v}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultSubject returns the configured fallback subject, or "".
func (s *Schema) DefaultSubject() string {
	return s.defaultSubject
}

// Check applies defaults and validates p. It never panics and has no side
// effects, so checking the same payload twice yields the same Result.
func (s *Schema) Check(p Payload) Result {
	sub := Submission{
		Name:    p.Name,
		Email:   p.Email,
		Message: p.Message,
	}
	switch {
	case p.Subject != nil:
		sub.Subject = *p.Subject
	case s.defaultSubject != "":
		sub.Subject = s.defaultSubject
	}

	err := s.validate.Struct(sub)
	if err == nil {
		return Result{Submission: sub}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Result{Submission: sub, Errors: FieldErrors{"body": "Invalid submission."}}
	}

	fieldErrs := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := fieldErrs[fe.Field()]; seen {
			continue
		}
		fieldErrs[fe.Field()] = message(fe)
	}
	return Result{Submission: sub, Errors: fieldErrs}
}

// CheckSubmission validates a fully populated submission.
func (s *Schema) CheckSubmission(sub Submission) Result {
	return s.Check(sub.Payload())
}

func message(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "email":
		return "Please enter a valid email address."
	case "required":
		if fe.Field() == "email" {
			return "Please enter a valid email address."
		}
		return fmt.Sprintf("%s is required.", label)
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

func fieldLabel(field string) string {
	if field == "" {
		return "Field"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
