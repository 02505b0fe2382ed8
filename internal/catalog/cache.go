package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/secufur/commerce-api/internal/types"
)

const (
	listingTTL    = time.Minute
	generationKey = "products:gen"
)

// Cache stores serialized listing responses in Redis. A generation counter is
// folded into every key; bumping it on product writes invalidates all listing
// entries without scanning the keyspace. All failures degrade to DB reads.
type Cache struct {
	rdb *redis.Client
}

// NewCacheFromEnv connects to Redis when REDIS_ADDR is set; otherwise the
// catalog runs uncached.
func NewCacheFromEnv() *Cache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Info().Msg("REDIS_ADDR not set, catalog cache disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, catalog cache disabled")
		return nil
	}

	log.Info().Str("addr", addr).Msg("catalog cache connected")
	return &Cache{rdb: rdb}
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) listingKey(ctx context.Context, category, search string, limit int) string {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if err != nil && err != redis.Nil {
		gen = 0
	}
	return fmt.Sprintf("products:v%d:%s:%s:%d", gen, category, search, limit)
}

func (c *Cache) GetListing(ctx context.Context, category, search string, limit int) ([]types.ListedProduct, bool) {
	data, err := c.rdb.Get(ctx, c.listingKey(ctx, category, search, limit)).Bytes()
	if err != nil {
		return nil, false
	}

	var listing []types.ListedProduct
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, false
	}
	return listing, true
}

func (c *Cache) SetListing(ctx context.Context, category, search string, limit int, listing []types.ListedProduct) {
	data, err := json.Marshal(listing)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.listingKey(ctx, category, search, limit), data, listingTTL).Err(); err != nil {
		log.Debug().Err(err).Msg("failed to cache product listing")
	}
}

// Invalidate bumps the listing generation.
func (c *Cache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		log.Debug().Err(err).Msg("failed to invalidate product listings")
	}
}
