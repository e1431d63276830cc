package entities

import "time"

// PaymentStatus is the host-level outcome of a payment.
//
// A payment starts pending and is moved to succeeded/failed exactly once, either
// by the synchronous return check or by the periodic status reconciliation.

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// TransactionState is the canonical state of the gateway transaction.
//
// ACTIVE is the only non-terminal state. FINISHED, CANCELED and RETURNED are
// terminal and must never be left once reached.

type TransactionState string

const (
	TransactionStateActive   TransactionState = "ACTIVE"
	TransactionStateFinished TransactionState = "FINISHED"
	TransactionStateCanceled TransactionState = "CANCELED"
	TransactionStateReturned TransactionState = "RETURNED"
)

// Terminal reports whether no further transition is permitted from s.
func (s TransactionState) Terminal() bool {
	switch s {
	case TransactionStateFinished, TransactionStateCanceled, TransactionStateReturned:
		return true
	}
	return false
}

// TransactionRecord is the per-payment ledger slot written by the gateway driver.
//
//   - TransactionID is gateway-assigned, opaque, and set exactly once.
//   - GatewayURL is derived from TransactionID and the configured client handler;
//     it is stored for convenience but TransactionID is the source of truth.
//   - State is mutated only by the reconciliation step.
//   - ProcessStartAt gates when reconciliation may query the gateway.

type TransactionRecord struct {
	TransactionID  string           `json:"transaction_id"`
	GatewayURL     string           `json:"gateway_url"`
	State          TransactionState `json:"state"`
	ProcessStartAt time.Time        `json:"process_start_at"`
}

// Payment is the payment entity persisted by the service.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (status-index): status
//
// Detail holds the gateway transaction record; it is nil until the payment has
// been registered with the gateway. At most one transaction per payment.

type Payment struct {
	ID          string        `json:"id"`
	PayerID     string        `json:"payer_id"`
	PayableID   string        `json:"payable_id"`
	Amount      float64       `json:"amount"`
	Description string        `json:"description"`
	ClientIP    string        `json:"client_ip,omitempty"`
	Status      PaymentStatus `json:"status"`

	Detail *TransactionRecord `json:"detail,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Initiated reports whether a gateway transaction has already been registered.
func (p Payment) Initiated() bool {
	return p.Detail != nil && p.Detail.TransactionID != ""
}
