// ABOUTME: Entry point for the shopd catalog and order server
// ABOUTME: Subcommands: serve, init, health

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/jackfgibson/rapProject/internal/api"
	"github.com/jackfgibson/rapProject/internal/auth"
	"github.com/jackfgibson/rapProject/internal/checkout"
	"github.com/jackfgibson/rapProject/internal/config"
	"github.com/jackfgibson/rapProject/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                     ____
  _ __ __ _ _ __    / / _|_   _| | |
 | '__/ _' | '_ \  ( _| |_| | | | | |
 | | | (_| | |_) |  \__ \ |_| |_| | |
 |_|  \__,_| .__/  rackets & paddles
           |_|
`

// getConfigPath returns the path to the shopd config file.
// Priority: SHOPD_CONFIG env var > ./shopd.yaml
func getConfigPath() string {
	if envPath := os.Getenv("SHOPD_CONFIG"); envPath != "" {
		return envPath
	}
	return "shopd.yaml"
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: shopd <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the shop server")
		fmt.Println("  init     Write a default config file")
		fmt.Println("  health   Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger configures the process-wide slog logger from config.
func setupLogger(cfg config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newIssuer builds the token issuer from config.
func newIssuer(cfg *config.Config) (*auth.TokenIssuer, error) {
	return auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
}

// openSnapshotter opens the snapshot backend named by config.
func openSnapshotter(cfg config.StoreConfig) (store.Snapshotter, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return store.NewSQLiteSnapshotter(cfg.Path)
	default:
		return store.NewFileSnapshotter(cfg.Path)
	}
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return err
	}
	setupLogger(cfg.Logging)
	logger := slog.Default()

	snap, err := openSnapshotter(cfg.Store)
	if err != nil {
		return err
	}

	st, err := store.Open(snap)
	if err != nil {
		snap.Close()
		return err
	}
	defer st.Close()

	issuer, err := newIssuer(cfg)
	if err != nil {
		return err
	}

	proc := checkout.New(st, st)
	server := api.NewServer(st, proc, issuer, cfg.Auth.BcryptCost)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: api.NewRouter(server),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("shop server listening", "addr", cfg.Server.HTTPAddr, "backend", cfg.Store.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

const defaultConfig = `server:
  http_addr: ":8080"

store:
  backend: file          # file | sqlite
  path: data/shop.json   # use data/shop.db for sqlite

auth:
  jwt_secret: ${SHOP_JWT_SECRET}
  token_ttl: 1h          # 1h to 24h
  bcrypt_cost: 10

logging:
  level: info
  format: text           # text | json
`

func runInit() error {
	path := getConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Wrote default config to %s\n", path)
	fmt.Println("Set SHOP_JWT_SECRET (at least 32 bytes) before starting the server.")
	return nil
}

func runHealth(ctx context.Context) error {
	addr := "http://localhost:8080"
	if len(os.Args) > 2 {
		addr = os.Args[2]
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+"/health", nil)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		color.Red("UNREACHABLE (%v)", err)
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var health struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(body, &health); err != nil || health.Status != "OK" {
		color.Red("UNHEALTHY (%s)", body)
		return fmt.Errorf("unexpected health response")
	}

	green := color.New(color.FgGreen)
	green.Printf("OK")
	fmt.Printf("  %s\n", health.Timestamp)
	return nil
}
