package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"maibpay/internal/domain/entities"
	"maibpay/internal/usecase/interfaces"
	"maibpay/pkg/metrics"
)

var (
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrInvalidPaymentID        = errors.New("invalid payment id")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrMissingDescription      = errors.New("missing description")
	ErrRevertNotSupported      = errors.New("driver does not support reversal")
	ErrDayCloseNotSupported    = errors.New("driver does not support day close")
	ErrStatusCheckNotSupported = errors.New("driver does not support status checks")
)

// Reconciliation waits this long after registration before querying the
// gateway, giving the payer time to act and avoiding a race with the
// synchronous return check.
const statusCheckGracePeriod = 10 * time.Minute

// InitiatePaymentInput carries the monetary facts needed to open a payment.
type InitiatePaymentInput struct {
	PayerID     string
	PayableID   string
	Amount      float64
	Description string
	ClientIP    string
}

// IPaymentUseCase is the host-side orchestration around the gateway driver:
// it owns the Payment records and drives them from pending to a terminal
// status.
//
// Concurrency precondition: at most one concurrent status check per payment.
// The reconciler runner satisfies this by sweeping sequentially; deployments
// running several sweepers need a per-payment claim on top.
type IPaymentUseCase interface {
	Initiate(ctx context.Context, in InitiatePaymentInput) (entities.Payment, error)
	RegisterTransaction(ctx context.Context, id string) (entities.Payment, error)
	GetByID(ctx context.Context, id string) (entities.Payment, error)
	ConfirmReturn(ctx context.Context, id string) (entities.Payment, error)
	CheckPaymentStatus(ctx context.Context, id string) (entities.Payment, error)
	SweepPending(ctx context.Context) (int, error)
	Revert(ctx context.Context, id string, amount *float64) (bool, error)
	CloseDay(ctx context.Context) error
}

type PaymentUseCase struct {
	repo      interfaces.IPaymentRepository
	driver    interfaces.IPaymentDriver
	publisher interfaces.IEventPublisher
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(repo interfaces.IPaymentRepository, driver interfaces.IPaymentDriver, publisher interfaces.IEventPublisher) *PaymentUseCase {
	return &PaymentUseCase{repo: repo, driver: driver, publisher: publisher}
}

// Initiate creates a pending payment record and registers it with the
// gateway. A failed registration leaves the record without a transaction id,
// so RegisterTransaction can safely retry it later.
func (u *PaymentUseCase) Initiate(ctx context.Context, in InitiatePaymentInput) (entities.Payment, error) {
	log.Printf("[payment][usecase] initiate start payer_id=%s payable_id=%s amount=%.2f", in.PayerID, in.PayableID, in.Amount)
	if in.Amount <= 0 {
		return entities.Payment{}, ErrInvalidAmount
	}
	if strings.TrimSpace(in.Description) == "" {
		return entities.Payment{}, ErrMissingDescription
	}
	if u.driver == nil {
		return entities.Payment{}, errors.New("payment driver not configured")
	}

	now := time.Now().UTC()
	p := entities.Payment{
		ID:          uuid.NewString(),
		PayerID:     strings.TrimSpace(in.PayerID),
		PayableID:   strings.TrimSpace(in.PayableID),
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		ClientIP:    strings.TrimSpace(in.ClientIP),
		Status:      entities.PaymentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := u.repo.Create(ctx, p)
	if err != nil {
		log.Printf("[payment][usecase] create failed payment_id=%s err=%v", p.ID, err)
		return entities.Payment{}, err
	}

	registered, err := u.registerAndPersist(ctx, created)
	if err != nil {
		// The pending record stays behind without a transaction id; callers
		// may retry via RegisterTransaction.
		return entities.Payment{}, err
	}
	log.Printf("[payment][usecase] initiate success payment_id=%s transaction_id=%s", registered.ID, registered.Detail.TransactionID)
	return registered, nil
}

// RegisterTransaction (re-)registers an existing payment with the gateway.
// Idempotent: a payment that already carries a transaction id is returned
// unchanged, with no gateway call and no write.
func (u *PaymentUseCase) RegisterTransaction(ctx context.Context, id string) (entities.Payment, error) {
	p, err := u.load(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.Initiated() {
		return p, nil
	}
	return u.registerAndPersist(ctx, p)
}

func (u *PaymentUseCase) registerAndPersist(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	registered, err := u.driver.CreatePayment(ctx, p)
	if err != nil {
		log.Printf("[payment][usecase] registration failed payment_id=%s err=%v", p.ID, err)
		return entities.Payment{}, err
	}
	if !registered.Initiated() {
		// Driver contract violation; never persist a payment in this shape.
		return entities.Payment{}, ErrRegistrationFailed
	}

	registered.UpdatedAt = time.Now().UTC()
	updated, err := u.repo.Update(ctx, registered)
	if err != nil {
		log.Printf("[payment][usecase] persist failed payment_id=%s err=%v", p.ID, err)
		return entities.Payment{}, err
	}
	return updated, nil
}

func (u *PaymentUseCase) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	return u.load(ctx, id)
}

// ConfirmReturn is invoked on the payer's return-redirect path. It asks the
// gateway for the transaction result and marks the payment succeeded on an
// explicit OK; anything else leaves the payment pending for the periodic
// status check to resolve.
func (u *PaymentUseCase) ConfirmReturn(ctx context.Context, id string) (entities.Payment, error) {
	p, err := u.load(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.Status != entities.PaymentStatusPending || !p.Initiated() {
		return p, nil
	}

	if !u.driver.IsSuccessfulPayment(ctx, p) {
		log.Printf("[payment][usecase] return check inconclusive payment_id=%s", p.ID)
		return p, nil
	}
	return u.succeed(ctx, p)
}

// CheckPaymentStatus is the periodic reconciliation step. It is the only
// mechanism that completes a payment whose return redirect never happened,
// and it never moves a payment out of a terminal state.
func (u *PaymentUseCase) CheckPaymentStatus(ctx context.Context, id string) (entities.Payment, error) {
	p, err := u.load(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.Status != entities.PaymentStatusPending || !p.Initiated() {
		return p, nil
	}
	if p.Detail.State.Terminal() {
		return p, nil
	}
	if time.Since(p.Detail.ProcessStartAt) < statusCheckGracePeriod {
		metrics.IncReconciliation("deferred")
		return p, nil
	}

	checker, ok := u.driver.(interfaces.IStatusCheckable)
	if !ok {
		return entities.Payment{}, ErrStatusCheckNotSupported
	}

	state, err := checker.PaymentStatus(ctx, p)
	if err != nil {
		metrics.IncReconciliation("error")
		log.Printf("[payment][usecase] status check failed payment_id=%s err=%v", p.ID, err)
		return entities.Payment{}, err
	}

	switch state {
	case entities.TransactionStateFinished:
		return u.succeed(ctx, p)
	case entities.TransactionStateCanceled, entities.TransactionStateReturned:
		return u.fail(ctx, p, state)
	case entities.TransactionStateActive:
		// Still awaiting the payer; next sweep will look again.
		metrics.IncReconciliation("active")
		return p, nil
	}
	metrics.IncReconciliation("error")
	return entities.Payment{}, ErrUnknownGatewayState
}

// SweepPending runs the status check over every pending payment, one at a
// time. Sequential on purpose: the status check assumes at most one
// concurrent reconciliation per payment. Errors on individual payments are
// logged and do not stop the sweep.
func (u *PaymentUseCase) SweepPending(ctx context.Context) (int, error) {
	payments, err := u.repo.ListByStatus(ctx, entities.PaymentStatusPending)
	if err != nil {
		return 0, err
	}

	checked := 0
	for _, p := range payments {
		if _, err := u.CheckPaymentStatus(ctx, p.ID); err != nil {
			log.Printf("[payment][usecase] sweep item failed payment_id=%s err=%v", p.ID, err)
			continue
		}
		checked++
	}
	return checked, nil
}

// Revert asks the driver to reverse the payment's transaction. Advisory: the
// boolean mirrors the gateway's answer and the ledger slot is not changed.
func (u *PaymentUseCase) Revert(ctx context.Context, id string, amount *float64) (bool, error) {
	revertable, ok := u.driver.(interfaces.IRevertable)
	if !ok {
		return false, ErrRevertNotSupported
	}

	p, err := u.load(ctx, id)
	if err != nil {
		return false, err
	}

	ok, err = revertable.RevertTransaction(ctx, p, amount)
	if err != nil {
		log.Printf("[payment][usecase] revert failed payment_id=%s err=%v", p.ID, err)
		return false, err
	}
	log.Printf("[payment][usecase] revert payment_id=%s ok=%t", p.ID, ok)
	return ok, nil
}

func (u *PaymentUseCase) CloseDay(ctx context.Context) error {
	closable, ok := u.driver.(interfaces.IDayClosable)
	if !ok {
		return ErrDayCloseNotSupported
	}
	return closable.CloseDay(ctx)
}

func (u *PaymentUseCase) load(ctx context.Context, id string) (entities.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Payment{}, ErrInvalidPaymentID
	}

	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.ID == "" {
		return entities.Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (u *PaymentUseCase) succeed(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	p.Detail.State = entities.TransactionStateFinished
	p.Status = entities.PaymentStatusSucceeded
	updated, err := u.persistTransition(ctx, p)
	if err != nil {
		return entities.Payment{}, err
	}
	metrics.IncReconciliation("succeeded")
	log.Printf("[payment][usecase] payment succeeded payment_id=%s", p.ID)
	return updated, nil
}

func (u *PaymentUseCase) fail(ctx context.Context, p entities.Payment, state entities.TransactionState) (entities.Payment, error) {
	p.Detail.State = state
	p.Status = entities.PaymentStatusFailed
	updated, err := u.persistTransition(ctx, p)
	if err != nil {
		return entities.Payment{}, err
	}
	metrics.IncReconciliation("failed")
	log.Printf("[payment][usecase] payment failed payment_id=%s state=%s", p.ID, state)
	return updated, nil
}

func (u *PaymentUseCase) persistTransition(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	p.UpdatedAt = time.Now().UTC()
	updated, err := u.repo.Update(ctx, p)
	if err != nil {
		log.Printf("[payment][usecase] transition persist failed payment_id=%s err=%v", p.ID, err)
		return entities.Payment{}, err
	}

	if u.publisher != nil {
		// Best effort; a publish failure must not undo the transition.
		if err := u.publisher.PublishStateChanged(ctx, updated); err != nil {
			log.Printf("[payment][usecase] event publish failed payment_id=%s err=%v", p.ID, err)
		}
	}
	return updated, nil
}
