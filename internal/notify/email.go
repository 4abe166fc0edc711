// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Contact is the data of a contact form notification.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Subject   string
	Message   string
	Country   string
	Client    string
}

var (
	messageRenderer = goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps()))
	messagePolicy   = bluemonday.UGCPolicy()
)

var contactTemplate = template.Must(template.New("contact").Parse(`<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> {{.FirstName}} {{.LastName}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Phone:</strong> {{if .Phone}}{{.Phone}}{{else}}Not provided{{end}}</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
{{- if .Country}}
<p><strong>Country:</strong> {{.Country}}</p>
{{- end}}
{{- if .Client}}
<p><strong>Client:</strong> {{.Client}}</p>
{{- end}}
<hr/>
<p><strong>Message:</strong></p>
{{.Body}}`))

// ContactSubject formats the notification subject line.
func ContactSubject(c Contact) string {
	return fmt.Sprintf("New Contact: %s - from %s %s", c.Subject, c.FirstName, c.LastName)
}

// RenderMessage converts a visitor's message to safe HTML. Markdown is
// rendered with hard line breaks, raw HTML is dropped and the output is
// sanitised.
func RenderMessage(message string) template.HTML {
	var buf bytes.Buffer
	if err := messageRenderer.Convert([]byte(message), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(message) + "</p>")
	}
	return template.HTML(messagePolicy.Sanitize(buf.String()))
}

// ContactMessage builds the notification e-mail for a contact submission.
func ContactMessage(from string, to []string, c Contact) (Message, error) {
	var buf bytes.Buffer
	err := contactTemplate.Execute(&buf, struct {
		Contact
		Body template.HTML
	}{c, RenderMessage(c.Message)})
	if err != nil {
		return Message{}, fmt.Errorf("rendering contact email: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Name: %s %s\nEmail: %s\n", c.FirstName, c.LastName, c.Email)
	phone := c.Phone
	if phone == "" {
		phone = "Not provided"
	}
	fmt.Fprintf(&text, "Phone: %s\nSubject: %s\n\n%s\n", phone, c.Subject, c.Message)

	return Message{
		From:    from,
		To:      to,
		Subject: ContactSubject(c),
		HTML:    buf.String(),
		Text:    text.String(),
		ReplyTo: c.Email,
	}, nil
}
