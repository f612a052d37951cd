package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fiadolabs/fiado/internal/clock"
	"github.com/fiadolabs/fiado/internal/config"
	"go.uber.org/zap"
)

// Config carries the gateway credentials and transport material.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	ReceiverKey  string

	CertFile string
	KeyFile  string
	CertB64  string
	KeyB64   string

	// InsecureSkipVerify is honored outside production only.
	InsecureSkipVerify bool
}

// LoadConfig derives the gateway config from the application config.
func LoadConfig(cfg config.Config) Config {
	return Config{
		BaseURL:            cfg.Pix.BaseURL,
		ClientID:           cfg.Pix.ClientID,
		ClientSecret:       cfg.Pix.ClientSecret,
		ReceiverKey:        cfg.Pix.ReceiverKey,
		CertFile:           cfg.Pix.CertFile,
		KeyFile:            cfg.Pix.KeyFile,
		CertB64:            cfg.Pix.CertB64,
		KeyB64:             cfg.Pix.KeyB64,
		InsecureSkipVerify: !cfg.IsProduction(),
	}
}

// Client talks to the Pix gateway over mutual TLS. It performs no retries of
// its own; callers own retry policy.
type Client struct {
	baseURL     string
	receiverKey string
	client      *http.Client
	tokens      *tokenSource
	log         *zap.Logger
}

// New builds the gateway client. The client certificate is loaded from files
// when paths are set, otherwise from the base64 pair when present.
func New(cfg Config, clk clock.Clock, log *zap.Logger) (*Client, error) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}

	cert, ok, err := loadCertificate(cfg)
	if err != nil {
		return nil, err
	}
	if ok {
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	if cfg.InsecureSkipVerify {
		tlsCfg.InsecureSkipVerify = true
	}

	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: &http.Transport{TLSClientConfig: tlsCfg},
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		receiverKey: cfg.ReceiverKey,
		client:      httpClient,
		tokens:      newTokenSource(cfg, httpClient, clk),
		log:         log.Named("gateway.client"),
	}, nil
}

func loadCertificate(cfg Config) (tls.Certificate, bool, error) {
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		certPEM, err := os.ReadFile(cfg.CertFile)
		if err != nil {
			return tls.Certificate{}, false, fmt.Errorf("%w: %v", ErrInvalidCertificate, err)
		}
		keyPEM, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return tls.Certificate{}, false, fmt.Errorf("%w: %v", ErrInvalidCertificate, err)
		}
		cert, err := tls.X509KeyPair(certPEM, keyPEM)
		if err != nil {
			return tls.Certificate{}, false, fmt.Errorf("%w: %v", ErrInvalidCertificate, err)
		}
		return cert, true, nil
	}

	if cfg.CertB64 != "" && cfg.KeyB64 != "" {
		certPEM, err := base64.StdEncoding.DecodeString(cfg.CertB64)
		if err != nil {
			return tls.Certificate{}, false, fmt.Errorf("%w: %v", ErrInvalidCertificate, err)
		}
		keyPEM, err := base64.StdEncoding.DecodeString(cfg.KeyB64)
		if err != nil {
			return tls.Certificate{}, false, fmt.Errorf("%w: %v", ErrInvalidCertificate, err)
		}
		cert, err := tls.X509KeyPair(certPEM, keyPEM)
		if err != nil {
			return tls.Certificate{}, false, fmt.Errorf("%w: %v", ErrInvalidCertificate, err)
		}
		return cert, true, nil
	}

	return tls.Certificate{}, false, nil
}

// ReceiverKey is the Pix key charges are issued against.
func (c *Client) ReceiverKey() string {
	return c.receiverKey
}

func (c *Client) CreateCharge(ctx context.Context, txid string, req CreateChargeRequest) (Charge, error) {
	var out Charge
	if err := c.doJSON(ctx, http.MethodPut, "/pix/v2/cob/"+txid, req, &out, ""); err != nil {
		return Charge{}, err
	}
	return out, nil
}

func (c *Client) GetCharge(ctx context.Context, txid string) (Charge, error) {
	var out Charge
	if err := c.doJSON(ctx, http.MethodGet, "/pix/v2/cob/"+txid, nil, &out, ""); err != nil {
		return Charge{}, err
	}
	return out, nil
}

func (c *Client) GetQRCode(ctx context.Context, locID int64) (QRCode, error) {
	var out QRCode
	if err := c.doJSON(ctx, http.MethodGet, "/pix/v2/loc/"+strconv.FormatInt(locID, 10)+"/qrcode", nil, &out, ""); err != nil {
		return QRCode{}, err
	}
	return out, nil
}

func (c *Client) Transfer(ctx context.Context, req TransferRequest) (TransferResult, error) {
	var out TransferResult
	if err := c.doJSON(ctx, http.MethodPost, "/banking/v2/pix", req, &out, req.IdempotencyKey); err != nil {
		return TransferResult{}, err
	}
	return out, nil
}

func (c *Client) RegisterWebhook(ctx context.Context, webhookURL string) error {
	body := map[string]string{"webhookUrl": webhookURL}
	return c.doJSON(ctx, http.MethodPut, "/pix/v2/webhook/"+c.receiverKey, body, nil, "")
}

func (c *Client) GetWebhook(ctx context.Context) (Webhook, error) {
	var out Webhook
	if err := c.doJSON(ctx, http.MethodGet, "/pix/v2/webhook/"+c.receiverKey, nil, &out, ""); err != nil {
		return Webhook{}, err
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, idempotencyKey string) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("x-id-idempotente", idempotencyKey)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))

	c.log.Debug("gateway_request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int64("duration_ms", time.Since(started).Milliseconds()),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}

var _ API = (*Client)(nil)
