package email

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/jwalitptl/clinic-directory/internal/model"
)

var templates = template.Must(template.New("email").Parse(`
{{define "lead"}}New partner lead from the landing page.

Clinic:  {{.ClinicName}}
Contact: {{.ContactName}} <{{.Email}}>
{{- if .Phone}}
Phone:   {{.Phone}}{{end}}
Country: {{.Country}}{{if .City}} / {{.City}}{{end}}
{{- if .Message}}

{{.Message}}{{end}}
{{end}}

{{define "submitted"}}{{.ClinicName}} submitted profile changes for review.

Clinic id: {{.ClinicID}}
Submitted: {{.At.Format "2006-01-02 15:04 MST"}}
{{end}}

{{define "published"}}The profile changes for {{.ClinicName}} were approved and are now live.

Public page: /clinics/{{.Slug}}
{{end}}

{{define "rejected"}}The profile changes for {{.ClinicName}} were rejected.

Reason: {{.Reason}}

The draft remains editable and can be resubmitted.
{{end}}
`))

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

type leadView struct {
	ClinicName, ContactName, Email, Phone, Country, City, Message string
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func LeadCreated(to []string, lead *model.PartnerLead) (Message, error) {
	body, err := render("lead", leadView{
		ClinicName:  lead.ClinicName,
		ContactName: lead.ContactName,
		Email:       lead.Email,
		Phone:       deref(lead.Phone),
		Country:     lead.Country,
		City:        deref(lead.City),
		Message:     deref(lead.Message),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "New partner lead: " + lead.ClinicName, Body: body}, nil
}

func DraftSubmitted(to []string, ev *model.ModerationEvent) (Message, error) {
	body, err := render("submitted", ev)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Awaiting moderation: " + ev.ClinicName, Body: body}, nil
}

func ClinicPublished(to []string, ev *model.ModerationEvent) (Message, error) {
	body, err := render("published", ev)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Published: " + ev.ClinicName, Body: body}, nil
}

func DraftRejected(to []string, ev *model.ModerationEvent) (Message, error) {
	body, err := render("rejected", ev)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Changes rejected: " + ev.ClinicName, Body: body}, nil
}
