package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"maibpay/internal/config"
	"maibpay/internal/domain/entities"
	"maibpay/internal/usecase/interfaces"
	"maibpay/pkg/metrics"
)

var (
	ErrRegistrationFailed  = errors.New("transaction registration failed")
	ErrUnknownGatewayState = errors.New("unknown gateway payment state")
	ErrNotInitiated        = errors.New("payment has no gateway transaction")
)

// The gateway contract is single-currency: ISO 4217 numeric code for MDL.
// Known limitation; multi-currency would need a different merchant agreement.
const currencyMDL = 498

const registrationMethodSMS = "sms"

// MaibDriver drives the MAIB ECOMM gateway.
//
// It implements the base IPaymentDriver contract plus all three optional
// capabilities. The driver never persists anything itself: CreatePayment
// returns an updated copy of the payment and leaves the single write to the
// caller, so a failed registration leaves no partial state behind.
type MaibDriver struct {
	client interfaces.IGatewayClient
	cfg    config.GatewayConfig
}

var _ interfaces.IPaymentDriver = (*MaibDriver)(nil)
var _ interfaces.IRevertable = (*MaibDriver)(nil)
var _ interfaces.IDayClosable = (*MaibDriver)(nil)
var _ interfaces.IStatusCheckable = (*MaibDriver)(nil)

func NewMaibDriver(client interfaces.IGatewayClient, cfg config.GatewayConfig) *MaibDriver {
	return &MaibDriver{client: client, cfg: cfg}
}

// CreatePayment registers a gateway transaction for p and fills its detail
// slot. Idempotent: an already-initiated payment is returned unchanged and no
// gateway call is made.
func (d *MaibDriver) CreatePayment(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	if p.Initiated() {
		log.Printf("[payment][driver] already initiated payment_id=%s transaction_id=%s", p.ID, p.Detail.TransactionID)
		return p, nil
	}

	transactionID, err := d.registerTransaction(ctx, p)
	if err != nil {
		return p, err
	}

	metrics.PaymentsRegisteredTotal.Inc()
	log.Printf("[payment][driver] transaction registered payment_id=%s transaction_id=%s", p.ID, transactionID)

	p.Detail = &entities.TransactionRecord{
		TransactionID:  transactionID,
		GatewayURL:     d.GatewayURL(transactionID),
		State:          entities.TransactionStateActive,
		ProcessStartAt: time.Now().UTC(),
	}
	return p, nil
}

func (d *MaibDriver) registerTransaction(ctx context.Context, p entities.Payment) (string, error) {
	if d.cfg.Method != registrationMethodSMS {
		return "", fmt.Errorf("%w: unsupported method %q", ErrRegistrationFailed, d.cfg.Method)
	}

	language := d.cfg.Language
	if language == "" {
		language = "en"
	}

	transactionID, err := d.client.RegisterSMSTransaction(ctx, p.Amount, currencyMDL, d.clientIP(p), p.Description, language)
	if err != nil {
		var rejection *interfaces.GatewayRejection
		if errors.As(err, &rejection) {
			log.Printf("[payment][driver] registration rejected payment_id=%s err=%v", p.ID, err)
			return "", fmt.Errorf("%w: %s", ErrRegistrationFailed, rejection.Message)
		}
		log.Printf("[payment][driver] registration transport failure payment_id=%s err=%v", p.ID, err)
		return "", err
	}
	if transactionID == "" {
		log.Printf("[payment][driver] registration returned no transaction id payment_id=%s", p.ID)
		return "", fmt.Errorf("%w: gateway returned no transaction id", ErrRegistrationFailed)
	}
	return transactionID, nil
}

// IsSuccessfulPayment checks the gateway's transaction result synchronously.
// Any failure, transport included, yields false; the payer's return-redirect
// handler must be able to poll this without raising.
func (d *MaibDriver) IsSuccessfulPayment(ctx context.Context, p entities.Payment) bool {
	if !p.Initiated() {
		return false
	}

	result, err := d.client.TransactionResult(ctx, p.Detail.TransactionID, d.clientIP(p))
	if err != nil {
		log.Printf("[payment][driver] result check failed payment_id=%s err=%v", p.ID, err)
		return false
	}
	return result.Result == "OK"
}

// PaymentStatus maps the gateway's payment-server state onto the canonical
// TransactionState. Unknown values are a hard error: an ambiguous state must
// never be treated as a terminal outcome.
func (d *MaibDriver) PaymentStatus(ctx context.Context, p entities.Payment) (entities.TransactionState, error) {
	if !p.Initiated() {
		return "", ErrNotInitiated
	}

	status, err := d.client.TransactionStatus(ctx, p.Detail.TransactionID, d.clientIP(p))
	if err != nil {
		return "", err
	}

	switch status {
	case "RETURNED":
		return entities.TransactionStateReturned, nil
	case "CANCELLED": // gateway spelling
		return entities.TransactionStateCanceled, nil
	case "ACTIVE":
		return entities.TransactionStateActive, nil
	case "FINISHED":
		return entities.TransactionStateFinished, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGatewayState, status)
}

// RevertTransaction reverses the stored transaction for the given amount, or
// the payment's full amount when nil. True iff the gateway answered OK. The
// ledger slot is left untouched.
func (d *MaibDriver) RevertTransaction(ctx context.Context, p entities.Payment, amount *float64) (bool, error) {
	if !p.Initiated() {
		return false, ErrNotInitiated
	}

	revertAmount := p.Amount
	if amount != nil {
		revertAmount = *amount
	}

	result, err := d.client.RevertTransaction(ctx, p.Detail.TransactionID, revertAmount)
	if err != nil {
		return false, err
	}
	log.Printf("[payment][driver] revert payment_id=%s result=%s", p.ID, result)
	return result == "OK", nil
}

// CloseDay triggers the gateway's end-of-day settlement batch close.
func (d *MaibDriver) CloseDay(ctx context.Context) error {
	return d.client.CloseDay(ctx)
}

// GatewayURL derives the payer redirect URL from a transaction id. The id is
// query-escaped with spaces as %20 so base64 ids survive the round trip.
func (d *MaibDriver) GatewayURL(transactionID string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(transactionID), "+", "%20")
	return d.cfg.ClientHandler + "?trans_id=" + escaped
}

func (d *MaibDriver) clientIP(p entities.Payment) string {
	if p.ClientIP != "" {
		return p.ClientIP
	}
	return d.cfg.ClientIP
}
