// Package main - Entry point for the pricing-detective session API server
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"pricing-detective/internal/config"
	"pricing-detective/internal/container"
	"pricing-detective/internal/logging"
)

func main() {
	cfgPath := flag.String("config", "", "config file (.json, .yaml or .hcl)")
	addr := flag.String("addr", "", "listen address (overrides server.address)")
	flag.Parse()

	path := *cfgPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("configuration loaded", zap.String("path", path), zap.String("backend", cfg.Backend.BaseURL))

	app := container.New(cfg, logging.Logger)

	// Initial quota load; the view can retry through /api/v1/session/trial.
	if _, err := app.Engine().LoadTrialStatus(ctx); err != nil {
		logging.Warn("initial trial status load failed", zap.Error(err))
	}

	fmt.Printf("Pricing Detective session API v%s\n", config.Version)
	fmt.Printf("   API:     %s/api/v1/session\n", baseURL(cfg.Server.Address))
	fmt.Printf("   Backend: %s\n", cfg.Backend.BaseURL)
	fmt.Println()

	if err := app.Server(config.Version).ListenAndServe(ctx, cfg.Server.Address); err != nil {
		logging.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

// baseURL turns a listen address into a URL a browser on this machine can open
func baseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
