package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies IPREDICT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known IPREDICT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Chain ──
	setStr(&cfg.Chain.RPCURL, "IPREDICT_CHAIN_RPC_URL")
	setInt64(&cfg.Chain.ChainID, "IPREDICT_CHAIN_ID")

	// ── Contract ──
	setStr(&cfg.Contract.Address, "IPREDICT_CONTRACT_ADDRESS")
	setUint64(&cfg.Contract.DeployBlock, "IPREDICT_CONTRACT_DEPLOY_BLOCK")

	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "IPREDICT_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.KeyfilePath, "IPREDICT_WALLET_KEYFILE_PATH")
	setStr(&cfg.Wallet.KeyPassword, "IPREDICT_WALLET_KEY_PASSWORD")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "IPREDICT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "IPREDICT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "IPREDICT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "IPREDICT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "IPREDICT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "IPREDICT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "IPREDICT_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "IPREDICT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "IPREDICT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "IPREDICT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "IPREDICT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "IPREDICT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "IPREDICT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "IPREDICT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "IPREDICT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "IPREDICT_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.CacheTTLSeconds, "IPREDICT_REDIS_CACHE_TTL_SECONDS")
	setInt(&cfg.Redis.StreamMaxLen, "IPREDICT_REDIS_STREAM_MAX_LEN")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "IPREDICT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "IPREDICT_S3_REGION")
	setStr(&cfg.S3.Bucket, "IPREDICT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "IPREDICT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "IPREDICT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "IPREDICT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "IPREDICT_S3_FORCE_PATH_STYLE")

	// ── Poll ──
	setDuration(&cfg.Poll.Market, "IPREDICT_POLL_MARKET")
	setDuration(&cfg.Poll.List, "IPREDICT_POLL_LIST")
	setDuration(&cfg.Poll.Account, "IPREDICT_POLL_ACCOUNT")

	// ── Indexer ──
	setBool(&cfg.Indexer.Enabled, "IPREDICT_INDEXER_ENABLED")
	setDuration(&cfg.Indexer.PollInterval, "IPREDICT_INDEXER_POLL_INTERVAL")
	setUint64(&cfg.Indexer.BatchBlocks, "IPREDICT_INDEXER_BATCH_BLOCKS")
	setUint64(&cfg.Indexer.Confirmations, "IPREDICT_INDEXER_CONFIRMATIONS")
	setInt(&cfg.Indexer.RetentionDays, "IPREDICT_INDEXER_RETENTION_DAYS")
	setDuration(&cfg.Indexer.ArchiveInterval, "IPREDICT_INDEXER_ARCHIVE_INTERVAL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "IPREDICT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "IPREDICT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "IPREDICT_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.AdminAPIKey, "IPREDICT_SERVER_ADMIN_API_KEY")
	setInt(&cfg.Server.RateLimit, "IPREDICT_SERVER_RATE_LIMIT")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "IPREDICT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "IPREDICT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "IPREDICT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "IPREDICT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "IPREDICT_MODE")
	setStr(&cfg.LogLevel, "IPREDICT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
