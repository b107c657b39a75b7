package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/ecofuelconnect/ecofuelconnect/internal/config"
	"github.com/ecofuelconnect/ecofuelconnect/internal/database"
	ecoHttp "github.com/ecofuelconnect/ecofuelconnect/internal/http"
	payoutHandler "github.com/ecofuelconnect/ecofuelconnect/internal/http/payout"
	rewardHandler "github.com/ecofuelconnect/ecofuelconnect/internal/http/reward"
	wasteHandler "github.com/ecofuelconnect/ecofuelconnect/internal/http/waste"
	"github.com/ecofuelconnect/ecofuelconnect/internal/payout"
	payoutStore "github.com/ecofuelconnect/ecofuelconnect/internal/payout/store"
	"github.com/ecofuelconnect/ecofuelconnect/internal/reward"
	rewardStore "github.com/ecofuelconnect/ecofuelconnect/internal/reward/store"
	"github.com/ecofuelconnect/ecofuelconnect/internal/waste"
	wasteStore "github.com/ecofuelconnect/ecofuelconnect/internal/waste/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		rewardService = reward.NewService(rewardStore.New(db))
		wasteService  = waste.NewService(wasteStore.New(db), rewardService)
		payoutService = payout.NewService(payoutStore.New(db))
	)

	var (
		wasteH  = wasteHandler.NewHandler(wasteService)
		rewardH = rewardHandler.NewHandler(rewardService, payoutService)
		payoutH = payoutHandler.NewHandler(payoutService)
	)

	router := ecoHttp.New(cfg.Auth.JWTSecret, wasteH, rewardH, payoutH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
