package interfaces

import (
	"context"

	"maibpay/internal/domain/entities"
)

// IPaymentDriver is the mandatory contract every gateway driver satisfies.
//
// CreatePayment is idempotent: when the payment already carries a transaction
// id it returns the payment unchanged and performs no gateway call. On success
// it returns a copy with the transaction record filled in; persisting that copy
// is the caller's job, so a failed registration never leaves partial state.
type IPaymentDriver interface {
	CreatePayment(ctx context.Context, p entities.Payment) (entities.Payment, error)

	// IsSuccessfulPayment reports whether the gateway confirms the payment.
	// Transport failures yield false, never an error; safe to call from the
	// payer's return-redirect path.
	IsSuccessfulPayment(ctx context.Context, p entities.Payment) bool
}

// Optional driver capabilities. The host asserts for these explicitly instead
// of relying on a driver type hierarchy.

// IRevertable is satisfied by drivers that support reversals.
type IRevertable interface {
	// RevertTransaction reverses the stored transaction, for the given amount
	// or the full original amount when nil. True iff the gateway answered OK.
	// Ledger state is not touched; reversal bookkeeping is a host concern.
	RevertTransaction(ctx context.Context, p entities.Payment, amount *float64) (bool, error)
}

// IDayClosable is satisfied by drivers whose gateway requires an end-of-day
// settlement close.
type IDayClosable interface {
	CloseDay(ctx context.Context) error
}

// IStatusCheckable is satisfied by drivers that can report the canonical
// transaction state, enabling the periodic status-check job.
type IStatusCheckable interface {
	PaymentStatus(ctx context.Context, p entities.Payment) (entities.TransactionState, error)
}
