package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/infaq/internal/config"
	"github.com/MrJamesThe3rd/infaq/internal/database"
	"github.com/MrJamesThe3rd/infaq/internal/export"
	infaqHttp "github.com/MrJamesThe3rd/infaq/internal/http"
	"github.com/MrJamesThe3rd/infaq/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/infaq/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/infaq/internal/http/importcsv"
	summaryHandler "github.com/MrJamesThe3rd/infaq/internal/http/summary"
	txHandler "github.com/MrJamesThe3rd/infaq/internal/http/transaction"
	userHandler "github.com/MrJamesThe3rd/infaq/internal/http/user"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/infaq/internal/ledger/store"
	"github.com/MrJamesThe3rd/infaq/internal/report"
	"github.com/MrJamesThe3rd/infaq/internal/summary"
	"github.com/MrJamesThe3rd/infaq/internal/user"
	userStore "github.com/MrJamesThe3rd/infaq/internal/user/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Driver() == database.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755); err != nil {
			slog.Error("failed to create database directory", "error", err)
			os.Exit(1)
		}
	}

	if err := database.Migrate(cfg.Driver(), cfg.ConnectionString()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.Driver(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := ledgerStore.New(db, cfg.DB.Timeout)

	var (
		ledgerService = ledger.NewService(store, summary.NewAggregator(store))
		reportService = report.NewService(store, report.Limits{
			Default: cfg.Ledger.RecentDefault,
			Max:     cfg.Ledger.RecentMax,
		})
		userService   = user.NewService(userStore.New(db))
		exportService = export.NewService(reportService)
	)

	var (
		transactionH = txHandler.NewHandler(ledgerService, reportService, userService)
		summaryH     = summaryHandler.NewHandler(ledgerService, reportService)
		importH      = importHandler.NewHandler(ledgerService, userService)
		exportH      = exportHandler.NewHandler(exportService)
		userH        = userHandler.NewHandler(userService)
	)

	authenticator := auth.New(cfg.Auth.JWTSecret, auth.Actor{
		ID:   cfg.Auth.DefaultActorID,
		Name: cfg.Auth.DefaultActorName,
	})
	if !authenticator.Enabled() {
		slog.Warn("AUTH_JWT_SECRET is empty, every request acts as the default actor", "actor_id", cfg.Auth.DefaultActorID)
	}

	router := infaqHttp.New(
		infaqHttp.Options{AllowedOrigins: cfg.CORS.AllowedOrigins, Timeout: cfg.Server.Timeout},
		authenticator,
		transactionH, summaryH, importH, exportH, userH,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port, "db_driver", cfg.DB.Driver)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
