package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"maibpay/internal/config"
	"maibpay/internal/domain/entities"
	"maibpay/internal/usecase/interfaces"
	mock_interfaces "maibpay/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func testGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		MerchantHandler: "https://gw.example/mh",
		ClientHandler:   "https://pay.example/ch",
		Language:        "en",
		Method:          "sms",
		ClientIP:        "127.0.0.1",
	}
}

func testPayment() entities.Payment {
	return entities.Payment{
		ID:          "pay-1",
		PayerID:     "payer-1",
		PayableID:   "order-1",
		Amount:      150.00,
		Description: "Order order-1",
		Status:      entities.PaymentStatusPending,
	}
}

func TestMaibDriver_CreatePayment(t *testing.T) {
	t.Run("registers transaction and fills detail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		client.EXPECT().
			RegisterSMSTransaction(gomock.Any(), 150.00, 498, "127.0.0.1", "Order order-1", "en").
			Return("T1", nil)

		p, err := d.CreatePayment(context.Background(), testPayment())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Detail == nil {
			t.Fatal("expected detail to be set")
		}
		if p.Detail.TransactionID != "T1" {
			t.Fatalf("expected transaction id T1, got %q", p.Detail.TransactionID)
		}
		if p.Detail.State != entities.TransactionStateActive {
			t.Fatalf("expected ACTIVE state, got %s", p.Detail.State)
		}
		if p.Detail.GatewayURL != "https://pay.example/ch?trans_id=T1" {
			t.Fatalf("unexpected gateway url: %s", p.Detail.GatewayURL)
		}
		if time.Since(p.Detail.ProcessStartAt) > time.Minute {
			t.Fatalf("process_start_at not set to now: %s", p.Detail.ProcessStartAt)
		}
	})

	t.Run("idempotent when already initiated", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		initiated := testPayment()
		initiated.Detail = &entities.TransactionRecord{TransactionID: "T1", State: entities.TransactionStateActive}

		// No RegisterSMSTransaction expectation: a second call must not
		// reach the gateway.
		p, err := d.CreatePayment(context.Background(), initiated)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Detail.TransactionID != "T1" {
			t.Fatalf("detail changed: %+v", p.Detail)
		}
	})

	t.Run("payment client ip takes precedence", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		p := testPayment()
		p.ClientIP = "203.0.113.7"

		client.EXPECT().
			RegisterSMSTransaction(gomock.Any(), 150.00, 498, "203.0.113.7", "Order order-1", "en").
			Return("T1", nil)

		if _, err := d.CreatePayment(context.Background(), p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("gateway rejection is a registration failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		client.EXPECT().
			RegisterSMSTransaction(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", &interfaces.GatewayRejection{Command: "v", Message: "invalid merchant"})

		p, err := d.CreatePayment(context.Background(), testPayment())
		if !errors.Is(err, ErrRegistrationFailed) {
			t.Fatalf("expected ErrRegistrationFailed, got %v", err)
		}
		if p.Detail != nil {
			t.Fatal("detail must stay empty after failed registration")
		}
	})

	t.Run("missing transaction id is a registration failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		client.EXPECT().
			RegisterSMSTransaction(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", nil)

		_, err := d.CreatePayment(context.Background(), testPayment())
		if !errors.Is(err, ErrRegistrationFailed) {
			t.Fatalf("expected ErrRegistrationFailed, got %v", err)
		}
	})

	t.Run("transport failure propagates unchanged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		transportErr := errors.New("dial tcp: timeout")
		client.EXPECT().
			RegisterSMSTransaction(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", transportErr)

		p, err := d.CreatePayment(context.Background(), testPayment())
		if !errors.Is(err, transportErr) {
			t.Fatalf("expected transport error, got %v", err)
		}
		if errors.Is(err, ErrRegistrationFailed) {
			t.Fatalf("transport failure must not be wrapped as registration failure: %v", err)
		}
		if p.Detail != nil {
			t.Fatal("detail must stay empty after transport failure")
		}
	})

	t.Run("unsupported method fails without gateway call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		cfg := testGatewayConfig()
		cfg.Method = "dms"
		d := NewMaibDriver(client, cfg)

		_, err := d.CreatePayment(context.Background(), testPayment())
		if !errors.Is(err, ErrRegistrationFailed) {
			t.Fatalf("expected ErrRegistrationFailed, got %v", err)
		}
	})
}

func TestMaibDriver_GatewayURL(t *testing.T) {
	d := NewMaibDriver(nil, testGatewayConfig())

	cases := map[string]string{
		"abc def": "https://pay.example/ch?trans_id=abc%20def",
		"T1":      "https://pay.example/ch?trans_id=T1",
		"a+b/c==": "https://pay.example/ch?trans_id=a%2Bb%2Fc%3D%3D",
	}
	for id, want := range cases {
		if got := d.GatewayURL(id); got != want {
			t.Fatalf("GatewayURL(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestMaibDriver_IsSuccessfulPayment(t *testing.T) {
	initiated := testPayment()
	initiated.Detail = &entities.TransactionRecord{TransactionID: "T1"}

	t.Run("ok result", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		client.EXPECT().
			TransactionResult(gomock.Any(), "T1", "127.0.0.1").
			Return(interfaces.TransactionResult{Result: "OK", ResultCode: "000"}, nil)

		if !d.IsSuccessfulPayment(context.Background(), initiated) {
			t.Fatal("expected true for OK result")
		}
	})

	t.Run("non-ok result", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		client.EXPECT().
			TransactionResult(gomock.Any(), "T1", "127.0.0.1").
			Return(interfaces.TransactionResult{Result: "FAILED"}, nil)

		if d.IsSuccessfulPayment(context.Background(), initiated) {
			t.Fatal("expected false for non-OK result")
		}
	})

	t.Run("transport failure yields false, not an error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		client.EXPECT().
			TransactionResult(gomock.Any(), "T1", "127.0.0.1").
			Return(interfaces.TransactionResult{}, errors.New("tls handshake failed"))

		if d.IsSuccessfulPayment(context.Background(), initiated) {
			t.Fatal("expected false on transport failure")
		}
	})

	t.Run("not initiated", func(t *testing.T) {
		d := NewMaibDriver(nil, testGatewayConfig())
		if d.IsSuccessfulPayment(context.Background(), testPayment()) {
			t.Fatal("expected false for payment without transaction")
		}
	})
}

func TestMaibDriver_PaymentStatus(t *testing.T) {
	initiated := testPayment()
	initiated.Detail = &entities.TransactionRecord{TransactionID: "T1"}

	mapping := map[string]entities.TransactionState{
		"RETURNED":  entities.TransactionStateReturned,
		"CANCELLED": entities.TransactionStateCanceled,
		"ACTIVE":    entities.TransactionStateActive,
		"FINISHED":  entities.TransactionStateFinished,
	}
	for gatewayStatus, want := range mapping {
		t.Run(gatewayStatus, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			client := mock_interfaces.NewMockIGatewayClient(ctrl)
			d := NewMaibDriver(client, testGatewayConfig())

			client.EXPECT().
				TransactionStatus(gomock.Any(), "T1", "127.0.0.1").
				Return(gatewayStatus, nil)

			got, err := d.PaymentStatus(context.Background(), initiated)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Fatalf("expected %s, got %s", want, got)
			}
		})
	}

	t.Run("unknown status is a hard error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		client.EXPECT().
			TransactionStatus(gomock.Any(), "T1", "127.0.0.1").
			Return("WEIRD", nil)

		_, err := d.PaymentStatus(context.Background(), initiated)
		if !errors.Is(err, ErrUnknownGatewayState) {
			t.Fatalf("expected ErrUnknownGatewayState, got %v", err)
		}
	})

	t.Run("not initiated", func(t *testing.T) {
		d := NewMaibDriver(nil, testGatewayConfig())
		_, err := d.PaymentStatus(context.Background(), testPayment())
		if !errors.Is(err, ErrNotInitiated) {
			t.Fatalf("expected ErrNotInitiated, got %v", err)
		}
	})
}

func TestMaibDriver_RevertTransaction(t *testing.T) {
	initiated := testPayment()
	initiated.Detail = &entities.TransactionRecord{TransactionID: "T1"}

	t.Run("full amount by default", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		client.EXPECT().
			RevertTransaction(gomock.Any(), "T1", 150.00).
			Return("OK", nil)

		ok, err := d.RevertTransaction(context.Background(), initiated, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatal("expected true for OK result")
		}
	})

	t.Run("partial amount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		amount := 50.00
		client.EXPECT().
			RevertTransaction(gomock.Any(), "T1", 50.00).
			Return("OK", nil)

		ok, err := d.RevertTransaction(context.Background(), initiated, &amount)
		if err != nil || !ok {
			t.Fatalf("expected ok, got ok=%t err=%v", ok, err)
		}
	})

	t.Run("non-ok result is a boolean failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		client := mock_interfaces.NewMockIGatewayClient(ctrl)
		d := NewMaibDriver(client, testGatewayConfig())

		client.EXPECT().
			RevertTransaction(gomock.Any(), "T1", 150.00).
			Return("FAILED", nil)

		ok, err := d.RevertTransaction(context.Background(), initiated, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatal("expected false for non-OK result")
		}
	})

	t.Run("not initiated", func(t *testing.T) {
		d := NewMaibDriver(nil, testGatewayConfig())
		_, err := d.RevertTransaction(context.Background(), testPayment(), nil)
		if !errors.Is(err, ErrNotInitiated) {
			t.Fatalf("expected ErrNotInitiated, got %v", err)
		}
	})
}

func TestMaibDriver_CloseDay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	client := mock_interfaces.NewMockIGatewayClient(ctrl)
	d := NewMaibDriver(client, testGatewayConfig())

	client.EXPECT().CloseDay(gomock.Any()).Return(nil)

	if err := d.CloseDay(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
