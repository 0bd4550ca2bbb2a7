package email

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
)

func TestCheckInCodeProducesPNG(t *testing.T) {
	png, err := CheckInCode("https://portal.refugiopatitas.mx", uuid.New())
	if err != nil {
		t.Fatalf("CheckInCode() error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestRenderEmailTemplates(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     any
		contains string
	}{
		{
			"confirmation includes slot",
			"appointment_confirmed.html",
			appointmentEmailData{
				baseEmailData: baseEmailData{Title: "t", Heading: "h"},
				RequesterName: "Ana",
				AnimalName:    "Luna",
				VisitDate:     "2026-03-12",
				SlotTime:      "10:00",
			},
			"10:00",
		},
		{
			"approval includes contract ref",
			"adoption_approved.html",
			adoptionDecisionEmailData{
				baseEmailData: baseEmailData{Title: "t", Heading: "h"},
				RequesterName: "Ana",
				AnimalName:    "Luna",
				RequestNumber: "ADR-2026-0001",
				ContractRef:   "CONTRATO-042",
			},
			"CONTRATO-042",
		},
		{
			"rejection includes reason",
			"adoption_rejected.html",
			adoptionDecisionEmailData{
				baseEmailData: baseEmailData{Title: "t", Heading: "h"},
				RequesterName: "Ana",
				AnimalName:    "Luna",
				RequestNumber: "ADR-2026-0002",
				Reason:        "sin respuesta del solicitante",
			},
			"sin respuesta del solicitante",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := renderEmailTemplate(tt.template, tt.data)
			if err != nil {
				t.Fatalf("renderEmailTemplate() error = %v", err)
			}
			if !bytes.Contains([]byte(html), []byte(tt.contains)) {
				t.Errorf("rendered template missing %q", tt.contains)
			}
		})
	}
}
