package kb

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type cachedClient struct {
	redis    *redis.Client
	client   Client
	cacheTTL time.Duration
}

func (*cachedClient) searchCacheKey(query string) string {
	sum := sha1.Sum([]byte(query))
	return fmt.Sprintf("kb:search:%s", hex.EncodeToString(sum[:]))
}

// Search serves repeated queries from redis. Entries age out with the TTL;
// writes do not invalidate searches because a search result set cannot be
// mapped back to the queries that produced it. Fix sessions tolerate a stale
// approach list: a replayed method is skipped by the orchestrator anyway.
func (c *cachedClient) Search(ctx context.Context, query string) ([]Problem, error) {
	key := c.searchCacheKey(query)
	data, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var problems []Problem
		if e := gob.NewDecoder(bytes.NewBufferString(data)).Decode(&problems); e == nil {
			return problems, nil
		}
		// Undecodable entry, fall through to the origin.
	} else if err != redis.Nil {
		return nil, fmt.Errorf("CachedKBClient.Search: %w", err)
	}
	problems, err := c.client.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("CachedKBClient.Search: %w", err)
	}
	var buf bytes.Buffer
	if e := gob.NewEncoder(&buf).Encode(problems); e == nil {
		c.redis.Set(ctx, key, buf.String(), c.cacheTTL)
	}
	return problems, nil
}

func (c *cachedClient) PostProblem(ctx context.Context, title, description string, tags []string) (string, error) {
	return c.client.PostProblem(ctx, title, description, tags)
}

func (c *cachedClient) PostApproach(ctx context.Context, problemID, angle, method, status string) (string, error) {
	return c.client.PostApproach(ctx, problemID, angle, method, status)
}

func (c *cachedClient) UpdateApproachStatus(ctx context.Context, approachID, status string) error {
	return c.client.UpdateApproachStatus(ctx, approachID, status)
}

func NewCachedClient(redis *redis.Client, client Client, cacheTTL time.Duration) Client {
	return &cachedClient{
		redis:    redis,
		client:   client,
		cacheTTL: cacheTTL,
	}
}
