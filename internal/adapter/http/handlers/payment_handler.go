package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"maibpay/internal/adapter/http/dto/request"
	"maibpay/internal/adapter/http/dto/response"
	"maibpay/internal/usecase"
	"maibpay/pkg"
)

// PaymentHandler handles HTTP requests for gateway payments.

type PaymentHandler struct {
	usecase usecase.IPaymentUseCase
}

func NewPaymentHandler(uc usecase.IPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{usecase: uc}
}

// CreatePayment initiates a payment and returns the payer redirect URL.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req request.PaymentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[payment][handler] invalid payload err=%v", err)
		appErr := pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	created, err := h.usecase.Initiate(c.Request.Context(), usecase.InitiatePaymentInput{
		PayerID:     req.PayerID,
		PayableID:   req.PayableID,
		Amount:      req.Amount,
		Description: req.Description,
		ClientIP:    req.ClientIP,
	})
	if err != nil {
		log.Printf("[payment][handler] create failed err=%v", err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] create success payment_id=%s transaction_id=%s", created.ID, created.Detail.TransactionID)

	c.JSON(http.StatusCreated, response.FromPayment(created))
}

// GetPayment returns a payment by id.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id := c.Param("id")

	p, err := h.usecase.GetByID(c.Request.Context(), id)
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromPayment(p))
}

// RegisterTransaction retries gateway registration for a payment whose first
// attempt failed. No-op when the payment already has a transaction.
func (h *PaymentHandler) RegisterTransaction(c *gin.Context) {
	id := c.Param("id")
	log.Printf("[payment][handler] register start payment_id=%s", id)

	p, err := h.usecase.RegisterTransaction(c.Request.Context(), id)
	if err != nil {
		log.Printf("[payment][handler] register failed payment_id=%s err=%v", id, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromPayment(p))
}

// ConfirmReturn is hit when the payer comes back from the gateway.
func (h *PaymentHandler) ConfirmReturn(c *gin.Context) {
	id := c.Param("id")
	log.Printf("[payment][handler] return start payment_id=%s", id)

	p, err := h.usecase.ConfirmReturn(c.Request.Context(), id)
	if err != nil {
		log.Printf("[payment][handler] return failed payment_id=%s err=%v", id, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] return success payment_id=%s status=%s", p.ID, p.Status)

	c.JSON(http.StatusOK, response.FromPayment(p))
}

// RevertPayment requests a gateway reversal for a payment.
func (h *PaymentHandler) RevertPayment(c *gin.Context) {
	id := c.Param("id")

	// An absent or empty body means "revert the full amount".
	var req request.PaymentRevertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Amount = nil
	}

	reverted, err := h.usecase.Revert(c.Request.Context(), id, req.Amount)
	if err != nil {
		log.Printf("[payment][handler] revert failed payment_id=%s err=%v", id, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.RevertResponse{PaymentID: id, Reverted: reverted})
}

// CloseDay triggers the gateway's end-of-day settlement close.
func (h *PaymentHandler) CloseDay(c *gin.Context) {
	if err := h.usecase.CloseDay(c.Request.Context()); err != nil {
		log.Printf("[payment][handler] close-day failed err=%v", err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] close-day success")

	c.Status(http.StatusNoContent)
}

func mapPaymentError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidPaymentID),
		errors.Is(err, usecase.ErrInvalidAmount),
		errors.Is(err, usecase.ErrMissingDescription):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrNotInitiated):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_INITIATED", "Payment has no gateway transaction", http.StatusConflict)
	case errors.Is(err, usecase.ErrRegistrationFailed):
		return pkg.NewDomainErrorSimple("REGISTRATION_FAILED", "Gateway refused the transaction registration", http.StatusBadGateway)
	case errors.Is(err, usecase.ErrRevertNotSupported),
		errors.Is(err, usecase.ErrDayCloseNotSupported),
		errors.Is(err, usecase.ErrStatusCheckNotSupported):
		return pkg.NewDomainErrorSimple("NOT_SUPPORTED", "Driver does not support this operation", http.StatusNotImplemented)
	default:
		return pkg.NewDomainErrorSimple("INTERNAL_ERROR", "Internal error", http.StatusInternalServerError)
	}
}
