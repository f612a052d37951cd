// Command setup-webhook registers the Pix webhook for the configured
// receiver key and prints what the provider has on record. Run it once
// after deploying the API behind a public URL.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fiadolabs/fiado/internal/clock"
	"github.com/fiadolabs/fiado/internal/config"
	"github.com/fiadolabs/fiado/internal/gateway"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "setup-webhook:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.PublicURL == "" {
		return fmt.Errorf("PUBLIC_URL is required to register a webhook")
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	client, err := gateway.New(gateway.LoadConfig(cfg), clock.New(), log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	webhookURL := strings.TrimRight(cfg.PublicURL, "/") + "/webhook/pix/" + cfg.WebhookSecret
	if err := client.RegisterWebhook(ctx, webhookURL); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}

	registered, err := client.GetWebhook(ctx)
	if err != nil {
		return fmt.Errorf("confirm webhook: %w", err)
	}

	fmt.Println("webhook registered")
	fmt.Println("  url:", registered.WebhookURL)
	fmt.Println("  key:", registered.Chave)
	return nil
}
