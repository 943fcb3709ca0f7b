package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/realmwatch/salesbot/internal/config"
	"github.com/realmwatch/salesbot/internal/eth"
	"github.com/realmwatch/salesbot/internal/market"
	"github.com/realmwatch/salesbot/internal/notify"
	"github.com/realmwatch/salesbot/internal/poller"
	"github.com/realmwatch/salesbot/internal/rpc"
	"github.com/realmwatch/salesbot/internal/sales"
	"go.uber.org/zap"
)

var Version = "dev" // Overridden by release build script

const (
	defaultOpenseaApiUrl = "https://api.opensea.io/api/v2/events"
	defaultPollInterval  = 60 * time.Second
	defaultFetchSize     = 10
	defaultRPCPort       = 8080
)

func init() {
	logger := zap.Must(zap.NewProduction())
	if config.Get().LogZapMode == "development" {
		logger = zap.Must(zap.NewDevelopment())
	}
	zap.ReplaceGlobals(logger)
}

func main() {
	zap.L().Info("Starting realmwatch/salesbot...",
		zap.String("Version", Version))

	// Main context: canceled when we want to stop normal operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Get()
	if cfg.DiscordToken == "" {
		zap.L().Fatal("DISCORD_TOKEN is not set")
	}
	if cfg.DiscordChannelID == "" {
		zap.L().Fatal("DISCORD_CHANNEL_ID is not set")
	}

	collections, err := cfg.Collections()
	if err != nil {
		zap.L().Fatal("Failed to parse collections", zap.Error(err))
	}
	if len(collections) == 0 {
		zap.L().Fatal("No collections configured")
	}
	trackers := buildTrackers(collections)

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		zap.L().Fatal("Failed to create Discord session", zap.Error(err))
	}
	session.ShouldRetryOnRateLimit = true
	session.ShouldReconnectOnError = true
	if err := session.Open(); err != nil {
		zap.L().Fatal("Failed to open Discord session", zap.Error(err))
	}

	notifier := notify.NewDiscordNotifier(session, cfg.DiscordChannelID)
	if err := notifier.Announce("✅ Bot initiated"); err != nil {
		zap.L().Warn("Failed to post startup message", zap.Error(err))
	}

	ethClient, err := eth.CreateEthClient()
	if err != nil {
		zap.L().Fatal("Failed to create RPC client", zap.Error(err))
	}

	// One connection pool for both marketplace APIs, for the process lifetime.
	httpClient := &http.Client{Timeout: 30 * time.Second}
	fetchers := map[market.Kind]market.SaleFetcher{
		market.KindRonin:   market.NewRoninFetcher(cfg.RoninApiUrl, cfg.RoninApiKey, httpClient),
		market.KindOpenSea: market.NewOpenSeaFetcher(openseaApiUrl(cfg), cfg.OpenseaApiKey, httpClient),
	}
	processor := sales.NewProcessor(eth.NewDefaultQuantityResolver(ethClient), notifier)

	closeRpcServer := rpc.StartRPCServer(rpcPort(cfg), Version, trackers, ctx)

	salesPoller := poller.NewPoller(fetchers, processor, trackers, pollInterval(cfg), fetchSize(cfg))
	pollerDone := make(chan struct{})
	go func() {
		salesPoller.Run(ctx)
		close(pollerDone)
	}()

	// Catch up to two signals: first for graceful, second to force
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	doneCh := make(chan struct{})

	go func() {
		<-sigCh
		zap.L().Info("Received shutdown signal, initiating graceful shutdown...")

		// 1. Stop new requests on RPC
		closeRpcServer()

		// 2. Cancel main context, telling the poller to stop
		cancel()
		<-pollerDone

		// 3. Close the Discord session
		if err := session.Close(); err != nil {
			zap.L().Warn("Error closing Discord session", zap.Error(err))
		}

		// 4. Close the RPC client
		ethClient.Close()

		// 5. Signal that cleanup is done
		close(doneCh)

		// If a second signal arrives, force an immediate exit
		<-sigCh
		zap.L().Error("Received second signal, forcing shutdown")
		os.Exit(1)
	}()

	// Wait for either normal context cancellation or graceful shutdown completion
	select {
	case <-ctx.Done():
	case <-doneCh:
	}

	zap.L().Info("Shutdown complete")
	_ = zap.L().Sync()
}

func buildTrackers(collections []config.CollectionConfig) []*sales.CollectionTracker {
	trackers := make([]*sales.CollectionTracker, 0, len(collections))
	for _, c := range collections {
		trackers = append(trackers, sales.NewCollectionTracker(c.Name, c.Contract, c.Slug, market.Kind(c.Market)))
	}
	return trackers
}

func openseaApiUrl(cfg config.Config) string {
	if cfg.OpenseaApiUrl != "" {
		return cfg.OpenseaApiUrl
	}
	return defaultOpenseaApiUrl
}

func pollInterval(cfg config.Config) time.Duration {
	if cfg.PollIntervalSeconds > 0 {
		return time.Duration(cfg.PollIntervalSeconds) * time.Second
	}
	return defaultPollInterval
}

func fetchSize(cfg config.Config) int {
	if cfg.FetchSize > 0 {
		return cfg.FetchSize
	}
	return defaultFetchSize
}

func rpcPort(cfg config.Config) int {
	if cfg.RPCPort > 0 {
		return cfg.RPCPort
	}
	return defaultRPCPort
}
