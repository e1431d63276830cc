package request

// PaymentCreateRequest is the payload for initiating a payment.
//
// `client_ip` is the true payer address when the caller fronts real traffic;
// when omitted the driver falls back to its configured placeholder.

type PaymentCreateRequest struct {
	PayerID     string  `json:"payer_id" binding:"required"`
	PayableID   string  `json:"payable_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description" binding:"required"`
	ClientIP    string  `json:"client_ip"`
}

// PaymentRevertRequest optionally narrows a reversal to a partial amount;
// without it the payment's full original amount is reversed.

type PaymentRevertRequest struct {
	Amount *float64 `json:"amount"`
}
