package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type requestReceivedEmailData struct {
	baseEmailData
	RequesterName string
	AnimalName    string
	RequestNumber string
}

type appointmentEmailData struct {
	baseEmailData
	RequesterName string
	AnimalName    string
	VisitDate     string
	SlotTime      string
}

type evaluationResultEmailData struct {
	baseEmailData
	RequesterName string
	AnimalName    string
	Advanced      bool
}

type adoptionDecisionEmailData struct {
	baseEmailData
	RequesterName string
	AnimalName    string
	RequestNumber string
	ContractRef   string
	Reason        string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
