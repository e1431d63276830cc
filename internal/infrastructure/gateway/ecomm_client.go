package gateway

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"maibpay/internal/config"
	"maibpay/internal/usecase/interfaces"
	"maibpay/pkg/metrics"
)

// ECOMM protocol commands understood by the merchant handler.
const (
	cmdRegisterSMS = "v"
	cmdResult      = "c"
	cmdRevert      = "r"
	cmdCloseDay    = "b"
)

var ErrMissingMerchantHandler = errors.New("missing merchant handler URL")

// ECommClient talks to the MAIB ECOMM merchant handler.
//
// Every call is a form POST authenticated with the merchant's client
// certificate; responses are plain-text "KEY: value" lines. Amounts go over
// the wire in minor units.
type ECommClient struct {
	httpClient *http.Client
	baseURL    string
}

var _ interfaces.IGatewayClient = (*ECommClient)(nil)

func NewECommClient(cfg config.GatewayConfig) (*ECommClient, error) {
	if cfg.MerchantHandler == "" {
		log.Printf("[gateway][ecomm] missing merchant handler URL")
		return nil, ErrMissingMerchantHandler
	}

	transport := &http.Transport{}
	if cfg.CertFile != "" {
		cert, err := loadClientCertificate(cfg.CertFile, cfg.KeyFile, cfg.KeyPassword)
		if err != nil {
			log.Printf("[gateway][ecomm] failed loading client certificate err=%v", err)
			return nil, err
		}
		transport.TLSClientConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		log.Printf("[gateway][ecomm] client certificate loaded cert_file=%s", cfg.CertFile)
	}

	return &ECommClient{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		baseURL:    cfg.MerchantHandler,
	}, nil
}

func (c *ECommClient) RegisterSMSTransaction(ctx context.Context, amount float64, currency int, clientIP, description, language string) (string, error) {
	fields, err := c.post(ctx, cmdRegisterSMS, url.Values{
		"amount":         {minorUnits(amount)},
		"currency":       {strconv.Itoa(currency)},
		"client_ip_addr": {clientIP},
		"description":    {description},
		"language":       {language},
		"msg_type":       {"SMS"},
	})
	if err != nil {
		return "", err
	}
	return fields["TRANSACTION_ID"], nil
}

func (c *ECommClient) TransactionResult(ctx context.Context, transactionID, clientIP string) (interfaces.TransactionResult, error) {
	fields, err := c.post(ctx, cmdResult, url.Values{
		"trans_id":       {transactionID},
		"client_ip_addr": {clientIP},
	})
	if err != nil {
		return interfaces.TransactionResult{}, err
	}
	return interfaces.TransactionResult{
		Result:     fields["RESULT"],
		ResultCode: fields["RESULT_CODE"],
	}, nil
}

func (c *ECommClient) TransactionStatus(ctx context.Context, transactionID, clientIP string) (string, error) {
	fields, err := c.post(ctx, cmdResult, url.Values{
		"trans_id":       {transactionID},
		"client_ip_addr": {clientIP},
	})
	if err != nil {
		return "", err
	}
	return fields["RESULT_PS"], nil
}

func (c *ECommClient) RevertTransaction(ctx context.Context, transactionID string, amount float64) (string, error) {
	fields, err := c.post(ctx, cmdRevert, url.Values{
		"trans_id": {transactionID},
		"amount":   {minorUnits(amount)},
	})
	if err != nil {
		return "", err
	}
	return fields["RESULT"], nil
}

func (c *ECommClient) CloseDay(ctx context.Context) error {
	fields, err := c.post(ctx, cmdCloseDay, url.Values{})
	if err != nil {
		return err
	}
	log.Printf("[gateway][ecomm] close-day result=%s", fields["RESULT"])
	return nil
}

func (c *ECommClient) post(ctx context.Context, command string, form url.Values) (map[string]string, error) {
	form.Set("command", command)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		metrics.IncGatewayRequest(command, "error")
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncGatewayRequest(command, "error")
		log.Printf("[gateway][ecomm] request failed command=%s err=%v", command, err)
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncGatewayRequest(command, "error")
		return nil, fmt.Errorf("gateway response read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.IncGatewayRequest(command, "error")
		log.Printf("[gateway][ecomm] unexpected status command=%s status=%d", command, resp.StatusCode)
		return nil, fmt.Errorf("gateway answered status %d", resp.StatusCode)
	}

	fields, err := parseFields(command, string(body))
	if err != nil {
		metrics.IncGatewayRequest(command, "rejected")
		log.Printf("[gateway][ecomm] command rejected command=%s err=%v", command, err)
		return nil, err
	}

	metrics.IncGatewayRequest(command, "ok")
	return fields, nil
}

// parseFields decodes the gateway's "KEY: value" line format. An "error" key
// means the gateway rejected the command.
func parseFields(command, body string) (map[string]string, error) {
	fields := make(map[string]string)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if msg, ok := fields["error"]; ok {
		return nil, &interfaces.GatewayRejection{Command: command, Message: msg}
	}
	return fields, nil
}

// minorUnits renders a major-unit amount as the integer minor-unit string the
// gateway expects (e.g. 150.00 -> "15000").
func minorUnits(amount float64) string {
	return strconv.FormatInt(int64(math.Round(amount*100)), 10)
}

func loadClientCertificate(certFile, keyFile, password string) (tls.Certificate, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return tls.Certificate{}, err
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return tls.Certificate{}, err
	}

	// Merchant keys issued by the bank are often password-protected PEM.
	block, _ := pem.Decode(keyPEM)
	if block != nil && x509.IsEncryptedPEMBlock(block) {
		der, err := x509.DecryptPEMBlock(block, []byte(password))
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("decrypting key file: %w", err)
		}
		keyPEM = pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der})
	}

	return tls.X509KeyPair(certPEM, keyPEM)
}
