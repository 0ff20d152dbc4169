package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PermissionCache caches the rendered permission strings of a role in
// Redis. Keys are per-role, so one invalidation covers every user
// holding that role.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPermissionCache connects to Redis. When Redis is unreachable the
// cache degrades to a no-op instead of failing startup.
func NewPermissionCache(host string, port int, password string, db int, ttlSeconds int) *PermissionCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client = nil
	}

	return &PermissionCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

func (c *PermissionCache) cacheKey(roleID uuid.UUID) string {
	return "roleperms:" + roleID.String()
}

// Get returns the cached permission strings for a role, or nil on miss
// or cache unavailability.
func (c *PermissionCache) Get(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	if c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, c.cacheKey(roleID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var perms []string
	if err := json.Unmarshal(data, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// Set caches a role's permission strings.
func (c *PermissionCache) Set(ctx context.Context, roleID uuid.UUID, perms []string) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.cacheKey(roleID), data, c.ttl).Err()
}

// Invalidate drops the cached entry for a role. Called after role
// permission updates.
func (c *PermissionCache) Invalidate(ctx context.Context, roleID uuid.UUID) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.cacheKey(roleID)).Err()
}

// Close releases the Redis connection.
func (c *PermissionCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
