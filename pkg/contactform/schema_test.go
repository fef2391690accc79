package contactform_test

import (
	"reflect"
	"strings"
	"testing"

	"portfolio-contact/api/pkg/contactform"
)

func strPtr(s string) *string { return &s }

func validPayload() contactform.Payload {
	return contactform.Payload{
		Name:    "Jo",
		Email:   "a@b.com",
		Subject: strPtr("Hi"),
		Message: "1234567890",
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		mutate     func(p *contactform.Payload)
		wantFields []string
	}{
		{
			name:   "minimal valid payload",
			mutate: func(p *contactform.Payload) {},
		},
		{
			name:       "name too short",
			mutate:     func(p *contactform.Payload) { p.Name = "J" },
			wantFields: []string{"name"},
		},
		{
			name:       "empty name",
			mutate:     func(p *contactform.Payload) { p.Name = "" },
			wantFields: []string{"name"},
		},
		{
			name:       "malformed email",
			mutate:     func(p *contactform.Payload) { p.Email = "not-an-email" },
			wantFields: []string{"email"},
		},
		{
			name:       "empty email",
			mutate:     func(p *contactform.Payload) { p.Email = "" },
			wantFields: []string{"email"},
		},
		{
			name:       "subject too short",
			mutate:     func(p *contactform.Payload) { p.Subject = strPtr("H") },
			wantFields: []string{"subject"},
		},
		{
			name:       "absent subject without default",
			mutate:     func(p *contactform.Payload) { p.Subject = nil },
			wantFields: []string{"subject"},
		},
		{
			name:       "message of nine characters",
			mutate:     func(p *contactform.Payload) { p.Message = "123456789" },
			wantFields: []string{"message"},
		},
		{
			name:   "multibyte name counts characters",
			mutate: func(p *contactform.Payload) { p.Name = "éé" },
		},
		{
			name: "every field invalid",
			mutate: func(p *contactform.Payload) {
				*p = contactform.Payload{Name: "x", Email: "@", Subject: strPtr(""), Message: "short"}
			},
			wantFields: []string{"email", "message", "name", "subject"},
		},
	}

	schema := contactform.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validPayload()
			tt.mutate(&p)

			res := schema.Check(p)

			if len(tt.wantFields) == 0 {
				if !res.OK() {
					t.Fatalf("expected valid payload, got errors %v", res.Errors)
				}
				return
			}
			if res.OK() {
				t.Fatalf("expected errors for %v, got none", tt.wantFields)
			}
			if len(res.Errors) != len(tt.wantFields) {
				t.Errorf("expected %d field errors, got %v", len(tt.wantFields), res.Errors)
			}
			for _, f := range tt.wantFields {
				if msg, ok := res.Errors[f]; !ok || msg == "" {
					t.Errorf("expected error for field %q, got %v", f, res.Errors)
				}
			}
		})
	}
}

func TestCheck_DefaultSubject(t *testing.T) {
	t.Parallel()
	schema := contactform.New(contactform.WithDefaultSubject("Portfolio inquiry"))

	p := validPayload()
	p.Subject = nil
	res := schema.Check(p)
	if !res.OK() {
		t.Fatalf("expected default subject to satisfy schema, got %v", res.Errors)
	}
	if res.Submission.Subject != "Portfolio inquiry" {
		t.Errorf("expected default subject, got %q", res.Submission.Subject)
	}

	// An explicitly empty subject is not "absent".
	p.Subject = strPtr("")
	res = schema.Check(p)
	if _, ok := res.Errors["subject"]; !ok {
		t.Errorf("expected subject error for explicit empty subject, got %v", res.Errors)
	}
}

func TestCheck_Idempotent(t *testing.T) {
	t.Parallel()
	schema := contactform.New()
	p := contactform.Payload{Name: "J", Email: "bad", Subject: strPtr("Hi"), Message: "1234567890"}

	first := schema.Check(p)
	second := schema.Check(p)
	if first.OK() != second.OK() {
		t.Fatal("expected identical outcome on repeated checks")
	}
	if !reflect.DeepEqual(first.Errors, second.Errors) {
		t.Errorf("expected identical error maps, got %v and %v", first.Errors, second.Errors)
	}
}

func TestFieldErrors_Error(t *testing.T) {
	t.Parallel()
	fe := contactform.FieldErrors{"name": "too short", "email": "invalid"}
	got := fe.Error()
	if !strings.HasPrefix(got, "email: invalid") {
		t.Errorf("expected fields sorted alphabetically, got %q", got)
	}
}

func TestCheckSubmission(t *testing.T) {
	t.Parallel()
	schema := contactform.New(contactform.WithDefaultSubject("ignored"))
	res := schema.CheckSubmission(contactform.Submission{Name: "Jo", Email: "a@b.com", Subject: "", Message: "1234567890"})
	if _, ok := res.Errors["subject"]; !ok {
		t.Errorf("expected submitted empty subject to be rejected, got %v", res.Errors)
	}
}
