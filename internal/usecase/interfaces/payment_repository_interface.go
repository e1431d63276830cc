package interfaces

import (
	"context"

	"maibpay/internal/domain/entities"
)

// IPaymentRepository persists payments.
//
// GetByID returns a zero-value Payment (empty ID) when nothing is found.
type IPaymentRepository interface {
	Create(ctx context.Context, p entities.Payment) (entities.Payment, error)
	GetByID(ctx context.Context, id string) (entities.Payment, error)
	Update(ctx context.Context, p entities.Payment) (entities.Payment, error)
	ListByStatus(ctx context.Context, status entities.PaymentStatus) ([]entities.Payment, error)
}
