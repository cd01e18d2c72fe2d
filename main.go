// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
l2i18n localizes game dialog markup on the fly and serves an operator admin API.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Dhousefe/aCisDsec/config"
	"github.com/Dhousefe/aCisDsec/core/audit"
	"github.com/Dhousefe/aCisDsec/core/command"
	"github.com/Dhousefe/aCisDsec/core/dictionary"
	"github.com/Dhousefe/aCisDsec/core/pipeline"
	"github.com/Dhousefe/aCisDsec/core/rescache"
	"github.com/Dhousefe/aCisDsec/core/session"
	"github.com/Dhousefe/aCisDsec/i18n"
	"github.com/Dhousefe/aCisDsec/server/router"
	"github.com/Dhousefe/aCisDsec/server/routes"
)

const (
	// Values for http.Server timeouts.
	// ref: gosec: G112
	readHeaderTimeout time.Duration = 15 * time.Second
	readTimeout       time.Duration = 15 * time.Second
	writeTimeout      time.Duration = 10 * time.Second
	idleTimeout       time.Duration = 30 * time.Second
)

var (
	errChmodSocket = errors.New("failed to change unix socket permissions")
	errChownSocket = errors.New("failed to change unix socket ownership")
)

// main is the entry point of the application.
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

// run orchestrates the application startup and graceful shutdown.
//
//nolint:funlen
func run() error {
	audit.SetDefaultLogger()

	if err := config.Global.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := i18n.Setup(); err != nil {
		return fmt.Errorf("failed to initialize i18n engine: %w", err)
	}

	log.Info().Msg("Initialized i18n engine")

	admin, err := setupTranslation()
	if err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if !config.Global.Admin.Enabled {
		log.Info().Msg("Admin API disabled")

		s := <-quit
		log.Info().Str("signal", s.String()).Msg("Shutdown signal received")

		return nil
	}

	router := router.NewRouter()
	router.DefineRoutes(admin)
	router.RegisterMiddleware()

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	// Channel to listen for server errors
	serverErrors := make(chan error, 1)

	go func() {
		listener, err := chooseListener()
		if err != nil {
			serverErrors <- fmt.Errorf("failed to create listener: %w", err)

			return
		}

		serverErrors <- server.Serve(listener)
	}()

	// Block until a shutdown signal or a server error is received
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case s := <-quit:
		log.Info().Str("signal", s.String()).Msg("Shutdown signal received")
		log.Info().Msg("Shutting down server...")

		deadline := time.Duration(config.Global.Admin.ShutdownSeconds) * time.Second

		ctx, cancel := context.WithTimeout(context.Background(), deadline)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
	}

	log.Info().Msg("Server exited gracefully")

	return nil
}

// setupTranslation builds the localization components from the configuration.
func setupTranslation() (*routes.Admin, error) {
	cfg := config.Global.Translation

	dicts := dictionary.NewRegistry(cfg.DictionaryDir, cfg.DictionaryPattern)

	// Supported locales are loaded up front so the first resolution does not
	// pay for the file read. A missing file only disables that locale.
	for _, locale := range cfg.SupportedLocales {
		store, err := dicts.Activate(locale)
		if err != nil {
			log.Warn().Err(err).Str("locale", locale).Msg("Dictionary not loaded")

			continue
		}

		log.Info().
			Str("locale", locale).
			Int("entries", store.Len()).
			Int("untranslated", len(store.Untranslated())).
			Msg("Loaded dictionary")
	}

	cache, err := rescache.New(config.Global.Cache.Compress)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolution cache: %w", err)
	}

	rules, err := pipeline.LoadRules(cfg.RulesFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.RulesFile).Msg("Using default button tiers")
	}

	p, err := pipeline.New(pipeline.Options{
		Dictionaries:       dicts,
		Cache:              cache,
		Rules:              rules,
		MaxLength:          cfg.MaxLength,
		Root:               cfg.DataRoot,
		DisableMaterialize: !cfg.Materialize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	sessions := session.NewManager(dicts, p, session.State{
		Locale:  cfg.DefaultLocale,
		Enabled: cfg.Enabled,
	})

	return &routes.Admin{
		Pipeline: p,
		Sessions: sessions,
		Commands: command.NewHandler(sessions),
	}, nil
}

func chooseListener() (net.Listener, error) {
	// Check if we should use a Unix domain socket
	if config.Global.Basic.UnixSocket != "" {
		unixAddr := config.Global.Basic.UnixSocket

		unixListener, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", unixAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to start Unix socket listener on %v: %w", unixAddr, err)
		}

		if err = setupSocket(); err != nil {
			_ = unixListener.Close()

			return nil, err
		}

		log.Info().
			Str("address", unixAddr).
			Msg("Listening on Unix domain socket")

		return unixListener, nil
	}

	// Otherwise, fall back to TCP listener
	addr := net.JoinHostPort(config.Global.Basic.Host, config.Global.Basic.Port)

	tcpListener, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start TCP listener on %v: %w", addr, err)
	}

	addr = tcpListener.Addr().String()

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		_ = tcpListener.Close()

		return nil, fmt.Errorf("failed to parse listener address %q: %w", addr, err)
	}

	log.Info().
		Str("address", addr).
		Str("port", port).
		Str("url", fmt.Sprintf("http://localhost:%v/stats", port)).
		Msg("Listening on address")

	return tcpListener, nil
}

func setupSocket() error {
	cfg := config.Global.Basic

	if cfg.UnixSocket == "" {
		return nil
	}

	uid, gid := -1, -1

	var err error

	if cfg.UnixSocketUser != "" {
		uid, err = parseUserOrGroupID(cfg.UnixSocketUser, "user")
		if err != nil {
			return err
		}
	}

	if cfg.UnixSocketGroup != "" {
		gid, err = parseUserOrGroupID(cfg.UnixSocketGroup, "group")
		if err != nil {
			return err
		}
	}

	if uid != -1 || gid != -1 {
		if err := os.Chown(cfg.UnixSocket, uid, gid); err != nil {
			return fmt.Errorf("%w: %w", errChownSocket, err)
		}
	}

	if err := os.Chmod(cfg.UnixSocket, cfg.UnixSocketPermissions); err != nil {
		return fmt.Errorf("%w: %w", errChmodSocket, err)
	}

	return nil
}

// parseUserOrGroupID accepts a numeric id or a name looked up on the system.
// kind is "user" or "group".
func parseUserOrGroupID(value, kind string) (int, error) {
	if id, err := strconv.Atoi(value); err == nil {
		return id, nil
	}

	var idStr string

	if kind == "user" {
		u, err := user.Lookup(value)
		if err != nil {
			return -1, fmt.Errorf("failed to lookup user '%s': %w", value, err)
		}

		idStr = u.Uid
	} else {
		g, err := user.LookupGroup(value)
		if err != nil {
			return -1, fmt.Errorf("failed to lookup group '%s': %w", value, err)
		}

		idStr = g.Gid
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return -1, fmt.Errorf("failed to parse %s ID from looked-up value '%s': %w", kind, value, err)
	}

	return id, nil
}
