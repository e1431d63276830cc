package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	repository2 "maibpay/internal/adapter/persistence/repository"
	"maibpay/internal/config"
	"maibpay/internal/infrastructure/database"
	"maibpay/internal/infrastructure/events"
	"maibpay/internal/infrastructure/gateway"
	"maibpay/internal/usecase"
)

// The reconciler sweeps pending payments on a fixed cadence and runs the
// status check for each, one at a time. Run exactly one instance per table:
// the status check assumes at most one concurrent reconciliation per payment.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[reconciler] failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ddb := database.ConnectDynamoDB(ctx)
	paymentRepo := repository2.NewPaymentDynamoRepository(ddb, cfg.Storage.PaymentsTable)

	gatewayClient, err := gateway.NewECommClient(cfg.Gateway)
	if err != nil {
		log.Fatalf("[reconciler] failed to configure gateway client: %v", err)
	}

	driver := usecase.NewMaibDriver(gatewayClient, cfg.Gateway)
	publisher := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)
	paymentUseCase := usecase.NewPaymentUseCase(paymentRepo, driver, publisher)

	log.Printf("[reconciler] starting interval=%s table=%s", cfg.Reconcile.Interval, cfg.Storage.PaymentsTable)

	ticker := time.NewTicker(cfg.Reconcile.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[reconciler] shutting down")
			return
		case <-ticker.C:
			checked, err := paymentUseCase.SweepPending(ctx)
			if err != nil {
				log.Printf("[reconciler] sweep failed err=%v", err)
				continue
			}
			log.Printf("[reconciler] sweep done checked=%d", checked)
		}
	}
}
