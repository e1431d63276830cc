package response

import (
	"time"

	"maibpay/internal/domain/entities"
)

type PaymentResponse struct {
	PaymentID   string  `json:"payment_id"`
	PayerID     string  `json:"payer_id"`
	PayableID   string  `json:"payable_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Status      string  `json:"status"`

	TransactionID string `json:"transaction_id,omitempty"`
	GatewayURL    string `json:"gateway_url,omitempty"`
	State         string `json:"state,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromPayment(p entities.Payment) PaymentResponse {
	resp := PaymentResponse{
		PaymentID:   p.ID,
		PayerID:     p.PayerID,
		PayableID:   p.PayableID,
		Amount:      p.Amount,
		Description: p.Description,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Detail != nil {
		resp.TransactionID = p.Detail.TransactionID
		resp.GatewayURL = p.Detail.GatewayURL
		resp.State = string(p.Detail.State)
	}
	return resp
}

type RevertResponse struct {
	PaymentID string `json:"payment_id"`
	Reverted  bool   `json:"reverted"`
}
