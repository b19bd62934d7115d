package qr

import (
	"encoding/json"

	"github.com/skip2/go-qrcode"

	"grosave/internal/models"
)

// Generator renders pickup QR codes. The payload is the same verification
// data the store counter types in manually, so scanning and manual entry
// go through the identical check.
type Generator struct {
	Size int
}

func NewGenerator() *Generator {
	return &Generator{Size: 256}
}

type pickupPayload struct {
	OrderID          string `json:"orderId"`
	OrderNumber      string `json:"orderNumber"`
	VerificationCode string `json:"verificationCode"`
	PickupDate       string `json:"pickupDate"`
}

func (g *Generator) OrderQR(order models.Order) ([]byte, error) {
	payload := pickupPayload{
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		VerificationCode: order.VerificationCode,
		PickupDate:       order.PickupDate.Format("2006-01-02"),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, g.Size)
}
