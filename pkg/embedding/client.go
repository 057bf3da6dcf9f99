package embedding

import (
	"context"
	"strings"
	"time"

	"site-assistant-be/internal/apperror"
	"site-assistant-be/internal/pkg/logger"
)

const maxAttempts = 3

// Client wraps a Provider with input validation and bounded retries.
type Client struct {
	provider Provider
	log      logger.ILogger
}

func NewClient(provider Provider, log logger.ILogger) *Client {
	return &Client{
		provider: provider,
		log:      log,
	}
}

func (c *Client) Generate(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.NewEmbeddingError("cannot embed empty text", nil)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		values, err := c.provider.Generate(ctx, text)
		if err == nil && len(values) == 0 {
			err = apperror.NewEmbeddingError("provider returned no embedding data", nil)
		}
		if err == nil {
			return values, nil
		}
		lastErr = err

		c.log.Warn("embedding", "embedding attempt failed", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})

		if attempt == maxAttempts {
			break
		}

		backoff := time.Duration(1<<(attempt-1)) * time.Second
		select {
		case <-ctx.Done():
			return nil, apperror.NewEmbeddingError("embedding cancelled", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return nil, apperror.NewEmbeddingError("embedding provider exhausted retries", lastErr)
}
