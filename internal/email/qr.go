package email

import (
	"fmt"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// CheckInCode renders the PNG QR code attached to visit confirmations.
// Front desk scans it to pull up the appointment on arrival.
func CheckInCode(baseURL string, appointmentID uuid.UUID) ([]byte, error) {
	url := fmt.Sprintf("%s/check-in/%s", baseURL, appointmentID)
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode check-in code: %w", err)
	}
	return png, nil
}
