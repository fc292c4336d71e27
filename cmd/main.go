package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"phone-verify/internal/config"
	"phone-verify/internal/delivery"
	"phone-verify/internal/logging"
	"phone-verify/internal/tui"
)

const (
	defaultScreenLogDir = ".phone-verify"
	cleanupInterval     = time.Minute
	shutdownTimeout     = 10 * time.Second
)

type options struct {
	backend string
	addr    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "phone-verify",
		Short: "Verify a phone number with a one-time SMS code",
		Long: `phone-verify sends a one-time code to a phone number and checks the code
the user types in. Without a subcommand it opens the verification screen.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScreen(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "gateway backend: local, http or zitadel (overrides GATEWAY_BACKEND)")

	screen := &cobra.Command{
		Use:   "screen",
		Short: "Open the verification screen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScreen(cmd.Context(), opts)
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the verification API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	serve.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides HTTP_ADDR)")

	root.AddCommand(screen, serve)
	return root
}

// loadConfig loads .env and the environment, then applies flag overrides.
func loadConfig(opts *options) (*config.Config, bool, error) {
	envLoaded := godotenv.Load() == nil

	cfg, err := config.Load()
	if err != nil {
		return nil, envLoaded, err
	}
	if opts.backend != "" {
		cfg.GatewayBackend = opts.backend
	}
	if opts.addr != "" {
		cfg.HTTPAddr = opts.addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, envLoaded, err
	}
	return cfg, envLoaded, nil
}

func logEnvSource(logger *logging.Logger, envLoaded bool) {
	if envLoaded {
		logger.Info("environment variables loaded from .env file")
	} else {
		logger.Warn(".env file not found, using system environment variables")
	}
}

func runScreen(ctx context.Context, opts *options) error {
	cfg, envLoaded, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// The screen owns the terminal, so logs always go to a file.
	logDir := cfg.LogDir
	if logDir == "" {
		logDir = defaultScreenLogDir
	}
	logger, err := logging.NewLogger(logDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logger.Close()
	logEnvSource(logger, envLoaded)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	b.runCleanup(ctx)

	m := tui.New(ctx, b.gateway, tui.Config{
		CodeLength:         cfg.CodeLength,
		DefaultCountryCode: cfg.DefaultCountryCode,
		SendTimeout:        cfg.SendTimeout(),
		NotifyTimeout:      cfg.NotifyTimeout(),
	}, logger)

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("screen: %w", err)
	}

	if fm, ok := final.(*tui.Model); ok {
		if cred := fm.Credential(); cred != nil {
			fmt.Printf("Verified %s (token valid until %s)\n", cred.Phone, cred.ExpiresAt.Format(time.RFC3339))
		}
	}
	return nil
}

func runServe(ctx context.Context, opts *options) error {
	cfg, envLoaded, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logger.Close()
	logEnvSource(logger, envLoaded)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	b.runCleanup(ctx)

	otpHandler := delivery.NewOTPHandler(b.gateway, cfg.DefaultCountryCode, cfg.SendTimeout(), logger)
	var tokenHandler *delivery.TokenHandler
	if b.sessions != nil {
		tokenHandler = delivery.NewTokenHandler(b.sessions)
	}

	app := delivery.NewApp(delivery.AppConfig{
		AllowOrigins:   cfg.CORSAllowOrigins,
		RequestLogging: true,
	}, otpHandler, tokenHandler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.HTTPAddr, "backend", cfg.GatewayBackend)
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
