package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Rate limiting key patterns:
// - ratelimit:{user_id}:upload_session - init/complete/presign/delete calls
// - ratelimit:{user_id}:upload_part    - per-part proxy calls
// - ratelimit:{user_id}:upload_abort   - abort calls
// - ratelimit:{user_id}:structure      - course structure mutations

// RateLimitConfig contains configuration for rate limiting
type RateLimitConfig struct {
	SessionLimit    int           // Max session-level upload calls per window
	SessionWindow   time.Duration
	PartLimit       int           // Max part uploads per window
	PartWindow      time.Duration
	AbortLimit      int           // Max aborts per window
	AbortWindow     time.Duration
	StructureLimit  int           // Max structure mutations per window
	StructureWindow time.Duration
}

// DefaultRateLimitConfig mirrors the per-minute windows the admin surface was
// tuned for: part uploads get a much wider window than session-level calls.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		SessionLimit:    5,
		SessionWindow:   60 * time.Second,
		PartLimit:       50,
		PartWindow:      60 * time.Second,
		AbortLimit:      10,
		AbortWindow:     60 * time.Second,
		StructureLimit:  5,
		StructureWindow: 60 * time.Second,
	}
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	Allowed   bool          // Whether the action is allowed
	Remaining int           // Remaining actions in the window
	ResetIn   time.Duration // Time until the window resets
	Limit     int           // The limit for this action
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
	}
}

// AllowUploadSession checks if a user can open, presign, complete or delete an upload
func (r *RateLimiter) AllowUploadSession(ctx context.Context, userID string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:upload_session", userID)
	return r.checkLimit(ctx, key, r.config.SessionLimit, r.config.SessionWindow)
}

// AllowUploadPart checks if a user can upload another part
func (r *RateLimiter) AllowUploadPart(ctx context.Context, userID string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:upload_part", userID)
	return r.checkLimit(ctx, key, r.config.PartLimit, r.config.PartWindow)
}

// AllowUploadAbort checks if a user can abort an upload session
func (r *RateLimiter) AllowUploadAbort(ctx context.Context, userID string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:upload_abort", userID)
	return r.checkLimit(ctx, key, r.config.AbortLimit, r.config.AbortWindow)
}

// AllowStructure checks if a user can mutate a course structure
func (r *RateLimiter) AllowStructure(ctx context.Context, userID string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:structure", userID)
	return r.checkLimit(ctx, key, r.config.StructureLimit, r.config.StructureWindow)
}

// checkLimit performs the actual rate limit check using a fixed window counter
func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	// Use Lua script for atomic increment and check
	script := goredis.NewScript(`
		local key = KEYS[1]
		local limit = tonumber(ARGV[1])
		local window = tonumber(ARGV[2])

		local current = redis.call('GET', key)
		if current == false then
			current = 0
		else
			current = tonumber(current)
		end

		local ttl = redis.call('TTL', key)
		if ttl < 0 then
			ttl = window
		end

		if current < limit then
			redis.call('INCR', key)
			if ttl == window then
				redis.call('EXPIRE', key, window)
			end
			return {1, limit - current - 1, ttl}
		else
			return {0, 0, ttl}
		end
	`)

	result, err := script.Run(ctx, r.client, []string{key}, limit, int(window.Seconds())).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) < 3 {
		return nil, fmt.Errorf("unexpected rate limit result format")
	}

	allowed := resultSlice[0].(int64) == 1
	remaining := int(resultSlice[1].(int64))
	resetIn := time.Duration(resultSlice[2].(int64)) * time.Second

	return &RateLimitResult{
		Allowed:   allowed,
		Remaining: remaining,
		ResetIn:   resetIn,
		Limit:     limit,
	}, nil
}

// Reset resets the rate limit for a specific key (admin operation)
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// ResetUser resets all rate limits for a user
func (r *RateLimiter) ResetUser(ctx context.Context, userID string) error {
	keys := []string{
		fmt.Sprintf("ratelimit:%s:upload_session", userID),
		fmt.Sprintf("ratelimit:%s:upload_part", userID),
		fmt.Sprintf("ratelimit:%s:upload_abort", userID),
		fmt.Sprintf("ratelimit:%s:structure", userID),
	}
	return r.client.Del(ctx, keys...).Err()
}
