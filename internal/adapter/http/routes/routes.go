package routes

import (
	"context"
	"log"
	"strconv"

	_ "maibpay/docs" // This will be auto-generated
	"maibpay/internal/adapter/http/handlers"
	repository2 "maibpay/internal/adapter/persistence/repository"
	"maibpay/internal/config"
	"maibpay/internal/infrastructure/database"
	"maibpay/internal/infrastructure/events"
	"maibpay/internal/infrastructure/gateway"
	"maibpay/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

// Run will start the server
func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	getRoutes(cfg)

	err = router.Run(":" + strconv.Itoa(cfg.HTTP.Port))
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes(cfg config.Config) {
	ddb := database.ConnectDynamoDB(context.Background())

	paymentRepo := repository2.NewPaymentDynamoRepository(ddb, cfg.Storage.PaymentsTable)

	gatewayClient, err := gateway.NewECommClient(cfg.Gateway)
	if err != nil {
		log.Fatalf("Failed to configure gateway client: %v", err)
	}

	driver := usecase.NewMaibDriver(gatewayClient, cfg.Gateway)
	publisher := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)

	paymentUseCase := usecase.NewPaymentUseCase(paymentRepo, driver, publisher)
	paymentHandler := handlers.NewPaymentHandler(paymentUseCase)

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addPaymentRoutes(v1, paymentHandler)
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}
