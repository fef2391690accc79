package contact

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"portfolio-contact/api/pkg/clients/email"
	"portfolio-contact/api/pkg/contactform"
)

const subjectPrefix = "Contact Website: "

var textBody = texttemplate.Must(texttemplate.New("text").Parse(`Name: {{.Name}}
Email: {{.Email}}
Subject: {{.Subject}}

Message:
{{.Message}}
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 600px;">
  <h2>New message from the website</h2>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Subject:</strong> {{.Subject}}</p>
  <hr style="border: 1px solid #eee; margin: 15px 0;">
  <div>
    <strong>Message:</strong>
    <p style="white-space: pre-line;">{{.Message}}</p>
  </div>
</div>
`))

// composeNotification renders the owner notification for sub. The record
// id is never part of the email. From and To are left to the mail client.
func composeNotification(sub contactform.Submission) (email.Message, error) {
	var text, html bytes.Buffer
	if err := textBody.Execute(&text, sub); err != nil {
		return email.Message{}, fmt.Errorf("failed to render text body: %w", err)
	}
	if err := htmlBody.Execute(&html, sub); err != nil {
		return email.Message{}, fmt.Errorf("failed to render html body: %w", err)
	}

	return email.Message{
		ReplyTo:  sub.Email,
		Subject:  subjectPrefix + sub.Subject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
