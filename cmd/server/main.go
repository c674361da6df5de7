package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ofuangka/smart/internal/adapters/homeassistant"
	"github.com/ofuangka/smart/internal/adapters/lirc"
	"github.com/ofuangka/smart/internal/adapters/roku"
	"github.com/ofuangka/smart/internal/aggregator"
	"github.com/ofuangka/smart/internal/config"
	"github.com/ofuangka/smart/internal/dispatch"
	httpapi "github.com/ofuangka/smart/internal/http"
	"github.com/ofuangka/smart/internal/http/handlers"
	"github.com/ofuangka/smart/internal/logging"
	"github.com/ofuangka/smart/internal/misstracker"
	"github.com/ofuangka/smart/internal/poller"
	"github.com/ofuangka/smart/internal/resolver"
	devicesvc "github.com/ofuangka/smart/internal/services/device"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("config errors", "err", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("using config", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lircClient := lirc.NewClient(cfg.LIRCStatusCommand, cfg.LIRCSendCommand)
	rokuClient := roku.NewClient(cfg.RokuURI, cfg.Timeout)
	haClient := homeassistant.NewClient(cfg.HomeAssistantURI, cfg.HomeAssistantToken, cfg.Timeout)

	agg := aggregator.New(lircClient, rokuClient, haClient, aggregator.Options{
		Timeout: cfg.Timeout,
		Domains: cfg.HomeAssistantDomains,
	}, logger.With("component", "aggregator"))

	tracker := misstracker.New(cfg.MissThreshold, cfg.MissCooldown, logger.With("component", "misstracker"))
	go tracker.Run(ctx, cfg.MissSweepInterval)

	lookup := resolver.New(agg, tracker, logger.With("component", "resolver"))
	dispatcher := dispatch.New(lircClient, rokuClient, haClient, cfg.MaxArgLength, logger.With("component", "dispatch"))

	svc := devicesvc.New(agg, lookup, dispatcher, rokuClient, haClient, devicesvc.Options{
		Timeout:      cfg.Timeout,
		MaxArgLength: cfg.MaxArgLength,
	}, logger.With("component", "service"))

	discovery := poller.New(agg, cfg.RefreshInterval, logger.With("component", "poller"))
	go discovery.Run(ctx)

	api := handlers.New(svc, discovery, agg, logging.Version(), logger.With("component", "http"))

	// A list request runs a full discovery, so handlers get a few connector timeouts of headroom.
	handlerTimeout := 4 * cfg.Timeout
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           httpapi.NewRouter(api, handlerTimeout),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      handlerTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting", "addr", httpServer.Addr, "version", logging.Version())
	if err := httpapi.RunServer(ctx, httpServer); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server terminated with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
