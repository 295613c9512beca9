package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// DocListKeyPrefix is the prefix for cached document listings
	DocListKeyPrefix = "doc_list:"

	// DefaultDocListTTL bounds staleness if an invalidation is ever missed
	DefaultDocListTTL = 5 * time.Minute
)

// Store is the subset of redis operations the listing cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// DocListCache caches per-user and per-workspace document listings.
// Listings are invalidated whenever a document is ingested or deleted and
// whenever a workspace is deleted, so reads after a write are always fresh.
type DocListCache struct {
	client Store
	ttl    time.Duration
}

func NewDocListCache(client Store, ttl time.Duration) *DocListCache {
	if ttl == 0 {
		ttl = DefaultDocListTTL
	}
	return &DocListCache{client: client, ttl: ttl}
}

func (c *DocListCache) userKey(userID uuid.UUID) string {
	return DocListKeyPrefix + "user:" + userID.String()
}

func (c *DocListCache) workspaceKey(workspaceID uuid.UUID) string {
	return DocListKeyPrefix + "workspace:" + workspaceID.String()
}

// GetUserListing loads a cached listing into dest. Returns false on miss.
func (c *DocListCache) GetUserListing(ctx context.Context, userID uuid.UUID, dest interface{}) (bool, error) {
	return c.get(ctx, c.userKey(userID), dest)
}

// GetWorkspaceListing loads a cached workspace listing into dest. Returns false on miss.
func (c *DocListCache) GetWorkspaceListing(ctx context.Context, workspaceID uuid.UUID, dest interface{}) (bool, error) {
	return c.get(ctx, c.workspaceKey(workspaceID), dest)
}

func (c *DocListCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, key)
	if IsNil(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// Treat a corrupt entry as a miss
		_ = c.client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetUserListing stores a user-scoped listing
func (c *DocListCache) SetUserListing(ctx context.Context, userID uuid.UUID, listing interface{}) error {
	return c.set(ctx, c.userKey(userID), listing)
}

// SetWorkspaceListing stores a workspace-scoped listing
func (c *DocListCache) SetWorkspaceListing(ctx context.Context, workspaceID uuid.UUID, listing interface{}) error {
	return c.set(ctx, c.workspaceKey(workspaceID), listing)
}

func (c *DocListCache) set(ctx context.Context, key string, listing interface{}) error {
	raw, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl)
}

// Invalidate drops the owner's listing, and the workspace listing when set
func (c *DocListCache) Invalidate(ctx context.Context, userID uuid.UUID, workspaceID *uuid.UUID) error {
	keys := []string{c.userKey(userID)}
	if workspaceID != nil {
		keys = append(keys, c.workspaceKey(*workspaceID))
	}
	return c.client.Del(ctx, keys...)
}
