package interfaces

import (
	"context"

	"maibpay/internal/domain/entities"
)

// IEventPublisher announces payment state changes to downstream consumers.
//
// Publishing is best-effort from the use case's point of view: a delivery
// failure must not roll back the state transition that triggered it.
type IEventPublisher interface {
	PublishStateChanged(ctx context.Context, p entities.Payment) error
}
