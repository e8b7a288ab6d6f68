package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/config"
	"github.com/roomledger/roomledger/internal/httpapi"
	"github.com/roomledger/roomledger/internal/mail"
	"github.com/roomledger/roomledger/internal/service"
	"github.com/roomledger/roomledger/internal/storage/sqlite"
	"github.com/roomledger/roomledger/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
		slog.Info("SMTP mailer configured", "host", cfg.SMTPHost)
	} else {
		mailer = mail.LogMailer{}
		slog.Warn("No SMTP relay configured; mail goes to the log")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	tokenIssuer := auth.NewTokenIssuer(store, cfg.AuthTokenTTL)

	api := &httpapi.API{
		Auth:    service.NewAuthService(authenticator, jwtManager, tokenIssuer, store, mailer, cfg.BaseURL),
		Rooms:   service.NewRoomService(store, jwtManager),
		Entries: service.NewEntryService(store),
		Ledger:  service.NewLedgerService(store),
		JWT:     jwtManager,
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, api.Router()); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
