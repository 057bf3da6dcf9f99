package guard

import (
	"context"
	"net/url"
	"strings"
	"time"

	"site-assistant-be/internal/pkg/logger"
	"site-assistant-be/internal/repository/contract"
	"site-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const domainCacheTTL = 5 * time.Minute

// OriginChecker verifies that a chat request's Origin header matches the
// domain registered for the website. Registered domains are cached in
// Redis so the hot path rarely touches the database.
type OriginChecker struct {
	websites contract.WebsiteRepository
	redis    *redis.Client // optional, nil disables caching
	log      logger.ILogger
}

func NewOriginChecker(websites contract.WebsiteRepository, redisClient *redis.Client, log logger.ILogger) *OriginChecker {
	return &OriginChecker{
		websites: websites,
		redis:    redisClient,
		log:      log,
	}
}

// Allowed reports whether origin may talk to the website. A missing
// Origin header is rejected: the widget always sends one, so anything
// without it is not a browser embed.
func (c *OriginChecker) Allowed(ctx context.Context, websiteId uuid.UUID, origin string) (bool, error) {
	if strings.TrimSpace(origin) == "" {
		return false, nil
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Hostname() == "" {
		return false, nil
	}
	host := strings.ToLower(parsed.Hostname())

	domain, err := c.registeredDomain(ctx, websiteId)
	if err != nil {
		return false, err
	}
	if domain == "" {
		return false, nil
	}

	return hostMatches(host, domain), nil
}

func (c *OriginChecker) registeredDomain(ctx context.Context, websiteId uuid.UUID) (string, error) {
	cacheKey := "website:domain:" + websiteId.String()

	if c.redis != nil {
		cached, err := c.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			c.log.Warn("guard", "redis domain lookup failed, falling back to db", map[string]interface{}{
				"website_id": websiteId.String(),
				"error":      err.Error(),
			})
		}
	}

	website, err := c.websites.FindOne(ctx, specification.ByID{ID: websiteId})
	if err != nil {
		return "", err
	}
	if website == nil {
		return "", nil
	}

	domain := strings.ToLower(website.Domain)
	if c.redis != nil {
		if err := c.redis.Set(ctx, cacheKey, domain, domainCacheTTL).Err(); err != nil {
			c.log.Warn("guard", "redis domain cache write failed", map[string]interface{}{
				"website_id": websiteId.String(),
				"error":      err.Error(),
			})
		}
	}

	return domain, nil
}

// hostMatches accepts an exact match or a single www. prefix difference
// in either direction.
func hostMatches(host, domain string) bool {
	if host == domain {
		return true
	}
	if "www."+host == domain {
		return true
	}
	if host == "www."+domain {
		return true
	}
	return false
}
