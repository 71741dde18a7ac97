package mailer

import (
	"fmt"
	"strings"
)

// Template holds the configured subject and body texts.
// Placeholders: {account_group}, {department}, {from_date}, {to_date}.
type Template struct {
	Subject           string
	Body              string
	NoActivitySubject string
	NoActivityBody    string
}

// Vars are the values substituted into a template
type Vars struct {
	Group    string
	FromDate string
	ToDate   string
}

const defaultNoActivityBody = "Dear {account_group} Team,\n\n" +
	"No %s activity occurred for your account group during {from_date} to {to_date}.\n\n" +
	"If you have questions, contact treasurer@apache.org.\n\n" +
	"Best regards,\nApache Software Foundation Treasury"

// WithDefaults fills in the no-activity texts when they are not configured.
// title names the source in the default body, e.g. "Ramp".
func (t Template) WithDefaults(title string) Template {
	if t.NoActivitySubject == "" {
		t.NoActivitySubject = t.Subject + " (No Activity)"
	}
	if t.NoActivityBody == "" {
		t.NoActivityBody = fmt.Sprintf(defaultNoActivityBody, title)
	}
	return t
}

// Fill substitutes vars into text. Unknown placeholders are left as they are.
func Fill(text string, vars Vars) string {
	return strings.NewReplacer(
		"{account_group}", vars.Group,
		"{department}", vars.Group,
		"{from_date}", vars.FromDate,
		"{to_date}", vars.ToDate,
	).Replace(text)
}

// Statement builds the message carrying a group's statement
func (t Template) Statement(to string, vars Vars, attachment *Attachment) Message {
	return Message{
		To:         to,
		Subject:    Fill(t.Subject, vars),
		Body:       Fill(t.Body, vars),
		Attachment: attachment,
	}
}

// NoActivity builds the notice sent when a group had no records
func (t Template) NoActivity(to string, vars Vars) Message {
	return Message{
		To:      to,
		Subject: Fill(t.NoActivitySubject, vars),
		Body:    Fill(t.NoActivityBody, vars),
	}
}
