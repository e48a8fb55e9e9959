// ABOUTME: Operator CLI for bootstrapping the shop store
// ABOUTME: Subcommands: create-admin, seed, health (run against a stopped server)

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/jackfgibson/rapProject/internal/auth"
	"github.com/jackfgibson/rapProject/internal/config"
	"github.com/jackfgibson/rapProject/internal/seed"
	"github.com/jackfgibson/rapProject/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: shop-admin <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  create-admin --username NAME   Create an admin account in the store")
		fmt.Println("  seed --file FILE               Load TOML fixtures into the store")
		fmt.Println("  health [URL]                   Check a running server")
		fmt.Println()
		fmt.Println("create-admin and seed open the store directly; stop the server first.")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "create-admin":
		err = runCreateAdmin(ctx, os.Args[2:])
	case "seed":
		err = runSeed(ctx, os.Args[2:])
	case "health":
		err = runHealth(ctx, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// getConfigPath returns the path to the shopd config file.
// Priority: SHOPD_CONFIG env var > ./shopd.yaml
func getConfigPath() string {
	if envPath := os.Getenv("SHOPD_CONFIG"); envPath != "" {
		return envPath
	}
	return "shopd.yaml"
}

// openStore opens the store the same way shopd does.
func openStore(cfg *config.Config) (*store.Store, error) {
	var snap store.Snapshotter
	var err error
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		snap, err = store.NewSQLiteSnapshotter(cfg.Store.Path)
	default:
		snap, err = store.NewFileSnapshotter(cfg.Store.Path)
	}
	if err != nil {
		return nil, err
	}
	return store.Open(snap)
}

func runCreateAdmin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	username := fs.String("username", "", "admin username (required)")
	email := fs.String("email", "", "admin email")
	fs.Parse(args)

	if *username == "" {
		return fmt.Errorf("--username is required")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return err
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	user, err := st.CreateUser(ctx, store.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		First:        "Admin",
		Last:         "User",
		Role:         store.RoleAdmin,
	})
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	green.Print("Created admin account ")
	cyan.Println(user.Username)
	return nil
}

// promptPassword reads and confirms a password without echoing when stdin is
// a terminal.
func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Print("Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	fmt.Print("Confirm: ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("password must not be empty")
	}
	return string(first), nil
}

func runSeed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "seed.toml", "fixture file to load")
	fs.Parse(args)

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return err
	}

	fixture, err := seed.Load(*file)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := seed.Apply(ctx, st, fixture, cfg.Auth.BcryptCost); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("Seeded %d products and %d users from %s\n",
		len(fixture.Products), len(fixture.Users), *file)
	return nil
}

func runHealth(ctx context.Context, args []string) error {
	addr := "http://localhost:8080"
	if len(args) > 0 {
		addr = args[0]
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+"/health", nil)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &health); err != nil || health.Status != "OK" {
		return fmt.Errorf("unexpected health response: %s", body)
	}

	color.Green("OK")
	return nil
}
