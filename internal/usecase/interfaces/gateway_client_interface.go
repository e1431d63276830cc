package interfaces

import (
	"context"
	"fmt"
)

// GatewayRejection is a rejection reported by the gateway itself (an "error"
// field in an otherwise successful exchange), as opposed to a transport
// failure. Callers distinguish the two with errors.As.
type GatewayRejection struct {
	Command string
	Message string
}

func (e *GatewayRejection) Error() string {
	return fmt.Sprintf("gateway rejected command %q: %s", e.Command, e.Message)
}

// TransactionResult is the decoded answer of the gateway's transaction-result
// call (ECOMM command=c). Field names follow the gateway vocabulary.
type TransactionResult struct {
	Result     string // e.g. "OK", "FAILED"
	ResultCode string // gateway numeric result code
}

// IGatewayClient abstracts the authenticated transport to the MAIB ECOMM
// merchant handler. Implementations own mutual TLS, timeouts and response
// decoding; they return transport-level failures as errors.
type IGatewayClient interface {
	// RegisterSMSTransaction registers a new SMS-method transaction and returns
	// the gateway-assigned transaction id.
	RegisterSMSTransaction(ctx context.Context, amount float64, currency int, clientIP, description, language string) (string, error)

	// TransactionResult fetches the final result of a transaction, as used by
	// the synchronous return-redirect check.
	TransactionResult(ctx context.Context, transactionID, clientIP string) (TransactionResult, error)

	// TransactionStatus fetches the gateway's payment-server state (RESULT_PS)
	// for a transaction, as used by the periodic status check.
	TransactionStatus(ctx context.Context, transactionID, clientIP string) (string, error)

	// RevertTransaction requests a reversal; the returned string is the
	// gateway's RESULT field.
	RevertTransaction(ctx context.Context, transactionID string, amount float64) (string, error)

	// CloseDay triggers the end-of-day settlement batch close.
	CloseDay(ctx context.Context) error
}
