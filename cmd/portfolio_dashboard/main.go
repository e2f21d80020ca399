package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/app/service"
	"portfolio_dashboard/internal/infrastructure/configloader"
	"portfolio_dashboard/internal/infrastructure/httpclient"
	evmclient "portfolio_dashboard/internal/infrastructure/network/client"
	"portfolio_dashboard/internal/infrastructure/restapi"
	"portfolio_dashboard/internal/pkg/cache"
	"portfolio_dashboard/internal/pkg/logger"
	"portfolio_dashboard/internal/pkg/metrics"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

const defaultConnectionTimeout = 10 * time.Second

// newChainClient dials the RPC endpoint. An unconfigured endpoint is not
// fatal at startup: the services report a configuration error per call,
// which the UI renders as a static screen.
func newChainClient(cfg *configloader.Config, zapLogger *zap.Logger) port.BlockchainClient {
	if !configloader.IsConfigured(cfg.Chain.RPCEndpoint) {
		zapLogger.Warn("RPC endpoint not configured, on-chain operations disabled")
		return nil
	}

	privateKey := ""
	if configloader.IsConfigured(cfg.Transfer.PrivateKey) {
		privateKey = cfg.Transfer.PrivateKey
	}

	client, err := evmclient.NewEVMClient(
		cfg.Chain.RPCEndpoint,
		cfg.Chain.TokenContract,
		cfg.Chain.ChainID,
		privateKey,
		defaultConnectionTimeout,
		time.Duration(cfg.Chain.RPCTimeoutMs)*time.Millisecond,
		zapLogger,
	)
	if err != nil {
		zapLogger.Warn("Failed to connect to RPC endpoint, on-chain operations disabled", zap.Error(err))
		return nil
	}
	return client
}

func main() {
	// The level is atomic so it can be raised once the configuration is loaded.
	logLevel := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = logLevel
	zapLogger, err := zapCfg.Build()
	if err != nil {
		os.Stderr.WriteString("CRITICAL: failed to initialize zap logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer zapLogger.Sync()

	// Route the package-level slog logging through zap so there is a single
	// output stream.
	logger.SetHandler(zapslog.NewHandler(zapLogger.Core(), &zapslog.HandlerOptions{}))
	appLogger := logger.NewSlogAdapter()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yml"
	}
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		zapLogger.Fatal("Failed to load configuration", zap.String("path", cfgPath), zap.Error(err))
	}
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	if lvl, perr := zapcore.ParseLevel(cfg.Logging.Level); perr == nil {
		logLevel.SetLevel(lvl)
	} else {
		zapLogger.Warn("Invalid logging level in configuration, keeping info",
			zap.String("level", cfg.Logging.Level))
	}

	metrics.MustRegisterMetrics()

	store := cache.New(time.Duration(cfg.Cache.FreshnessWindowSeconds) * time.Second)

	explorerClient := httpclient.NewEtherscanClient(
		cfg.Explorer.BaseURL,
		cfg.Explorer.APIKey,
		time.Duration(cfg.Explorer.RequestTimeoutMillis)*time.Millisecond,
		cfg.Explorer.RateLimitPerSec,
		cfg.Explorer.RateLimitBurst,
		zapLogger,
	)
	priceClient := httpclient.NewCoinGeckoClient(
		cfg.PriceAPI.BaseURL,
		cfg.PriceAPI.AssetID,
		time.Duration(cfg.PriceAPI.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)

	blockchainClient := newChainClient(cfg, zapLogger)

	priceSvc := service.NewPriceService(priceClient, store, appLogger,
		cfg.PriceAPI.FallbackPriceUSD,
		time.Duration(cfg.PriceAPI.RequestTimeoutMillis)*time.Millisecond)
	historySvc := service.NewHistoryService(explorerClient, store, appLogger, cfg)
	chartSvc := service.NewChartService(historySvc, store, appLogger, cfg)
	portfolioSvc := service.NewPortfolioService(blockchainClient, priceSvc, historySvc, chartSvc, store, appLogger, cfg)
	transferSvc := service.NewTransferService(blockchainClient, store, appLogger, cfg)

	handler := restapi.NewPortfolioHandler(portfolioSvc, historySvc, chartSvc, transferSvc)
	router := restapi.SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited")
}
