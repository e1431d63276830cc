package routes

import (
	"maibpay/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathPayments = "/payments"
	PathCloseDay = "/close-day"
)

func addPaymentRoutes(rg *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	payments := rg.Group(PathPayments)
	{
		payments.POST("", paymentHandler.CreatePayment)
		payments.GET("/:id", paymentHandler.GetPayment)
		payments.POST("/:id/register", paymentHandler.RegisterTransaction)
		payments.GET("/:id/return", paymentHandler.ConfirmReturn)
		payments.POST("/:id/revert", paymentHandler.RevertPayment)
	}

	rg.POST(PathCloseDay, paymentHandler.CloseDay)
}
