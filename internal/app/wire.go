package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	s3blob "github.com/Akanimoh12/iPredict/internal/blob/s3"
	"github.com/Akanimoh12/iPredict/internal/cache/redis"
	"github.com/Akanimoh12/iPredict/internal/config"
	"github.com/Akanimoh12/iPredict/internal/contract"
	"github.com/Akanimoh12/iPredict/internal/crypto"
	"github.com/Akanimoh12/iPredict/internal/domain"
	"github.com/Akanimoh12/iPredict/internal/notify"
	"github.com/Akanimoh12/iPredict/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency the application modes
// need. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	// Chain bindings
	EthClient  *ethclient.Client
	Caller     *contract.Caller
	Transactor *contract.Transactor // nil when no wallet key is configured
	Filterer   *contract.Filterer

	// Stores
	ActivityStore   domain.ActivityStore
	StatsStore      domain.StatsStore
	CheckpointStore domain.CheckpointStore

	// Caches
	MarketCache domain.MarketCache
	RateLimiter domain.RateLimiter
	LockManager domain.LockManager
	SignalBus   domain.SignalBus

	// Blob storage
	BlobWriter domain.BlobWriter
	BlobReader domain.BlobReader
	Archiver   domain.Archiver

	// Notifications
	Notifier *notify.Notifier
}

// needsS3 returns true when the mode archives activity to object storage.
func needsS3(cfg *config.Config) bool {
	switch strings.ToLower(cfg.Mode) {
	case "index", "full":
		return cfg.Indexer.Enabled && cfg.Indexer.RetentionDays > 0
	default:
		return false
	}
}

// servesArchive returns true when the mode exposes the archive read API,
// which requires object storage credentials to be configured.
func servesArchive(cfg *config.Config) bool {
	switch strings.ToLower(cfg.Mode) {
	case "serve", "full":
		return cfg.Server.Enabled && cfg.S3.AccessKey != ""
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Chain ---
	ethClient, err := ethclient.DialContext(ctx, cfg.Chain.RPCURL)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: dial rpc: %w", err)
	}
	closers = append(closers, ethClient.Close)

	contractAddr := cfg.ContractAddress()
	deps.EthClient = ethClient
	deps.Caller = contract.NewCaller(ethClient, contractAddr)
	deps.Filterer = contract.NewFilterer(ethClient, contractAddr)

	// Wallet is optional; without one the admin API is simply not served.
	if cfg.Wallet.PrivateKey != "" || cfg.Wallet.KeyfilePath != "" {
		key, err := crypto.Load(crypto.KeySource{
			RawKey:      cfg.Wallet.PrivateKey,
			KeyfilePath: cfg.Wallet.KeyfilePath,
			Password:    cfg.Wallet.KeyPassword,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: load wallet key: %w", err)
		}
		deps.Transactor = contract.NewTransactor(ethClient, contractAddr, key, cfg.Chain.ChainID)
	}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.ActivityStore = postgres.NewActivityStore(pool)
	deps.StatsStore = postgres.NewStatsStore(pool)
	deps.CheckpointStore = postgres.NewCheckpointStore(pool)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MaxRetries:   cfg.Redis.MaxRetries,
		TLSEnabled:   cfg.Redis.TLSEnabled,
		CacheTTL:     time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second,
		StreamMaxLen: int64(cfg.Redis.StreamMaxLen),
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.MarketCache = redis.NewMarketCache(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- S3 blob storage ---
	// The indexing side needs the writer and archiver; the API side only
	// needs the reader, to serve the archived activity history.
	if needsS3(cfg) || servesArchive(cfg) {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.BlobReader = s3blob.NewReader(s3Client)
		if needsS3(cfg) {
			deps.BlobWriter = s3blob.NewWriter(s3Client)
			deps.Archiver = s3blob.NewActivityArchiver(
				deps.BlobWriter,
				deps.ActivityStore,
				cfg.Indexer.RetentionDays,
			)
		}
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
