package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/courserate-backend/internal/domain"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
)

const (
	courseKeyPrefix = "courserate:course:slug:"
	holdKeyPrefix   = "courserate:course:hold:"

	// invalidationHold bounds how long a reader that loaded a row before a commit
	// may still write it back after the invalidation.
	invalidationHold = 5 * time.Second
)

// setUnlessHeld refuses the write while an invalidation hold exists for the slug.
var setUnlessHeld = goredis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// CourseCache caches course rows by slug. Misses and backend failures both read as a miss.
type CourseCache interface {
	Get(ctx context.Context, slug string) (*domain.Course, bool)
	Set(ctx context.Context, course *domain.Course)
	Invalidate(ctx context.Context, slug string)
	Close() error
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type redisCourseCache struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

// NewRedisCourseCache connects and pings Redis. An empty address yields the noop cache.
func NewRedisCourseCache(log *logger.Logger, cfg RedisConfig) (CourseCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return NewNoopCourseCache(), nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewCourseCacheFromClient(log, rdb, cfg.TTL), nil
}

func NewCourseCacheFromClient(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) CourseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisCourseCache{
		log: log.With("service", "RedisCourseCache"),
		rdb: rdb,
		ttl: ttl,
	}
}

// Keys share a hash tag so the script and pipeline stay on one cluster slot.
func courseKey(slug string) string {
	return courseKeyPrefix + "{" + strings.TrimSpace(slug) + "}"
}

func holdKey(slug string) string {
	return holdKeyPrefix + "{" + strings.TrimSpace(slug) + "}"
}

func (c *redisCourseCache) Get(ctx context.Context, slug string) (*domain.Course, bool) {
	raw, err := c.rdb.Get(ctx, courseKey(slug)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("course cache get failed", "slug", slug, "error", err)
		}
		return nil, false
	}
	var course domain.Course
	if err := json.Unmarshal(raw, &course); err != nil {
		c.log.Warn("course cache decode failed", "slug", slug, "error", err)
		return nil, false
	}
	return &course, true
}

func (c *redisCourseCache) Set(ctx context.Context, course *domain.Course) {
	if course == nil || course.Slug == "" {
		return
	}
	raw, err := json.Marshal(course)
	if err != nil {
		return
	}
	keys := []string{courseKey(course.Slug), holdKey(course.Slug)}
	if err := setUnlessHeld.Run(ctx, c.rdb, keys, raw, c.ttl.Milliseconds()).Err(); err != nil {
		c.log.Warn("course cache set failed", "slug", course.Slug, "error", err)
	}
}

func (c *redisCourseCache) Invalidate(ctx context.Context, slug string) {
	if strings.TrimSpace(slug) == "" {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, courseKey(slug))
		p.Set(ctx, holdKey(slug), 1, invalidationHold)
		return nil
	})
	if err != nil {
		c.log.Warn("course cache invalidate failed", "slug", slug, "error", err)
	}
}

func (c *redisCourseCache) Close() error {
	return c.rdb.Close()
}

type noopCourseCache struct{}

func NewNoopCourseCache() CourseCache { return noopCourseCache{} }

func (noopCourseCache) Get(context.Context, string) (*domain.Course, bool) { return nil, false }
func (noopCourseCache) Set(context.Context, *domain.Course)                {}
func (noopCourseCache) Invalidate(context.Context, string)                 {}
func (noopCourseCache) Close() error                                       { return nil }

// RedisClient exposes the underlying client for health collectors. Nil for the noop cache.
func RedisClient(c CourseCache) goredis.UniversalClient {
	if rc, ok := c.(*redisCourseCache); ok {
		return rc.rdb
	}
	return nil
}
