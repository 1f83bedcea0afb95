package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brickshare/config"
	"brickshare/gateway"
	"brickshare/native/factory"
	"brickshare/native/object"
	"brickshare/native/oracle"
	"brickshare/native/roles"
	"brickshare/native/vaults"
	"brickshare/observability/logging"
	"brickshare/storage"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.toml", "path to the objectd configuration file")
	flag.Parse()

	logger := logging.Setup("objectd", os.Getenv("BRICKSHARE_LOG_LEVEL"))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	secret := cfg.JWTSecret
	if env := os.Getenv("BRICKSHARE_JWT_SECRET"); env != "" {
		secret = env
	}
	if secret == "" {
		logger.Error("missing JWT secret: set JWTSecret in the config or BRICKSHARE_JWT_SECRET")
		os.Exit(1)
	}

	store, err := storage.NewStore(cfg.DBPath, nil)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	registry := roles.NewRegistry()
	multisig, err := config.ParseAddress(cfg.OwnersMultisig)
	if err != nil {
		logger.Error("invalid owners multisig address", "error", err)
		os.Exit(1)
	}
	registry.SetOwnersMultisig(multisig)
	for _, admin := range cfg.Administrators {
		addr, err := config.ParseAddress(admin)
		if err != nil {
			logger.Error("invalid administrator address", "value", admin, "error", err)
			os.Exit(1)
		}
		registry.AddAdministrator(addr)
	}
	factoryAddr, err := config.ParseAddress(cfg.FactoryAddress)
	if err != nil {
		logger.Error("invalid factory address", "error", err)
		os.Exit(1)
	}
	registry.AddFactory(factoryAddr)

	treasuryAddr, err := config.ParseAddress(cfg.TreasuryAddress)
	if err != nil {
		logger.Error("invalid treasury address", "error", err)
		os.Exit(1)
	}
	poolAddr, err := config.ParseAddress(cfg.EarningsPoolAddress)
	if err != nil {
		logger.Error("invalid earnings pool address", "error", err)
		os.Exit(1)
	}
	programAddr, err := config.ParseAddress(cfg.ReferralProgramAddress)
	if err != nil {
		logger.Error("invalid referral program address", "error", err)
		os.Exit(1)
	}
	fundAddr, err := config.ParseAddress(cfg.BuyBackFundAddress)
	if err != nil {
		logger.Error("invalid buyback fund address", "error", err)
		os.Exit(1)
	}

	pricer := oracle.NewManager()
	for _, asset := range cfg.Assets {
		rate, err := asset.ParseRate()
		if err != nil {
			logger.Error("invalid asset rate", "asset", asset.Symbol, "error", err)
			os.Exit(1)
		}
		if err := pricer.RegisterAsset(asset.Symbol, rate, asset.Decimals); err != nil {
			logger.Error("failed to register asset", "asset", asset.Symbol, "error", err)
			os.Exit(1)
		}
	}

	pause := roles.NewPause(registry)

	engine := object.NewEngine()
	engine.SetState(store)
	engine.SetAuthority(registry)
	engine.SetPauser(pause)
	engine.SetPricer(pricer)
	engine.SetTreasury(treasuryAddr)

	objectFactory := factory.New(engine, registry, store, factoryAddr)

	pool := vaults.NewEarningsPool(store, engine, pricer, poolAddr)
	pool.SetAuthority(registry)
	pool.SetPauser(pause)
	pool.SetTreasury(treasuryAddr)

	program, err := vaults.NewReferralProgram(store, pricer, programAddr, cfg.ReferralRewardBps)
	if err != nil {
		logger.Error("failed to build referral program", "error", err)
		os.Exit(1)
	}
	program.SetAuthority(registry)
	program.SetPauser(pause)
	program.SetTreasury(treasuryAddr)
	engine.SetReferralHook(program)

	fund := vaults.NewBuyBackFund(store, engine, pricer, fundAddr)
	fund.SetAuthority(registry)
	fund.SetPauser(pause)
	fund.SetTreasury(treasuryAddr)

	server := gateway.NewServer(gateway.Options{
		Engine:    engine,
		Factory:   objectFactory,
		Pool:      pool,
		Program:   program,
		Fund:      fund,
		Lister:    store,
		JWTSecret: secret,
		RateLimit: cfg.RateLimitPerMinute,
		Logger:    logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("objectd listening", "addr", cfg.ListenAddress, "db", cfg.DBPath)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
