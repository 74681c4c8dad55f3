package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// MarketCache implements domain.MarketCache using Redis hashes with JSON-
// serialized Market data, plus JSON list pages keyed by pagination window.
//
// Key schema:
//
//	ipredict:market:{id}                - hash with field "data" containing JSON
//	ipredict:markets:{offset}:{limit}   - string with a JSON array of markets
//	ipredict:markets:pages              - set of live page keys, for invalidation
type MarketCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMarketCache creates a MarketCache backed by the given Client.
func NewMarketCache(c *Client) *MarketCache {
	return &MarketCache{rdb: c.Underlying(), ttl: c.cacheTTL}
}

const pageSetKey = "ipredict:markets:pages"

func marketKey(id uint64) string {
	return "ipredict:market:" + strconv.FormatUint(id, 10)
}

func pageKey(offset, limit int) string {
	return fmt.Sprintf("ipredict:markets:%d:%d", offset, limit)
}

// Set stores a Market in the cache with the configured TTL.
func (mc *MarketCache) Set(ctx context.Context, market domain.Market) error {
	data, err := json.Marshal(market)
	if err != nil {
		return fmt.Errorf("redis: marshal market %d: %w", market.ID, err)
	}

	key := marketKey(market.ID)

	pipe := mc.rdb.TxPipeline()
	pipe.HSet(ctx, key, "data", data)
	pipe.Expire(ctx, key, mc.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set market %d: %w", market.ID, err)
	}
	return nil
}

// Get retrieves a Market by its ID from the cache.
// It returns domain.ErrNotFound when the key does not exist.
func (mc *MarketCache) Get(ctx context.Context, id uint64) (domain.Market, error) {
	data, err := mc.rdb.HGet(ctx, marketKey(id), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("redis: get market %d: %w", id, err)
	}

	var market domain.Market
	if err := json.Unmarshal(data, &market); err != nil {
		return domain.Market{}, fmt.Errorf("redis: unmarshal market %d: %w", id, err)
	}
	return market, nil
}

// SetPage stores one pagination window of the market list and records its key
// in the page set so InvalidatePages can find it later.
func (mc *MarketCache) SetPage(ctx context.Context, offset, limit int, markets []domain.Market) error {
	data, err := json.Marshal(markets)
	if err != nil {
		return fmt.Errorf("redis: marshal market page (%d,%d): %w", offset, limit, err)
	}

	key := pageKey(offset, limit)

	pipe := mc.rdb.TxPipeline()
	pipe.Set(ctx, key, data, mc.ttl)
	pipe.SAdd(ctx, pageSetKey, key)
	pipe.Expire(ctx, pageSetKey, mc.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set market page (%d,%d): %w", offset, limit, err)
	}
	return nil
}

// GetPage retrieves one pagination window of the market list.
// It returns domain.ErrNotFound when the page is not cached.
func (mc *MarketCache) GetPage(ctx context.Context, offset, limit int) ([]domain.Market, error) {
	data, err := mc.rdb.Get(ctx, pageKey(offset, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get market page (%d,%d): %w", offset, limit, err)
	}

	var markets []domain.Market
	if err := json.Unmarshal(data, &markets); err != nil {
		return nil, fmt.Errorf("redis: unmarshal market page (%d,%d): %w", offset, limit, err)
	}
	return markets, nil
}

// Invalidate removes a single Market from the cache. List pages that contain
// it are cleared separately via InvalidatePages.
func (mc *MarketCache) Invalidate(ctx context.Context, id uint64) error {
	if err := mc.rdb.Del(ctx, marketKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate market %d: %w", id, err)
	}
	return nil
}

// InvalidatePages drops every cached market-list page. Called whenever an
// on-chain event may have changed list contents or ordering.
func (mc *MarketCache) InvalidatePages(ctx context.Context) error {
	keys, err := mc.rdb.SMembers(ctx, pageSetKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis: list market pages: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := mc.rdb.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.Del(ctx, pageSetKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: invalidate market pages: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.MarketCache = (*MarketCache)(nil)
