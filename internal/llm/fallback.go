package llm

import (
	"context"
	"log/slog"
)

// FallbackClient wraps a primary client with a fallback provider. If the
// primary fails, it automatically retries with the fallback.
type FallbackClient struct {
	primary    Client
	fallback   Client
	logger     *slog.Logger
	onFallback func()
}

// NewFallbackClient creates a new fallback-enabled client. If fallback is
// nil, the client only uses the primary provider. onFallback, when non-nil,
// is called each time the fallback provider is attempted.
func NewFallbackClient(primary, fallback Client, logger *slog.Logger, onFallback func()) *FallbackClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackClient{
		primary:    primary,
		fallback:   fallback,
		logger:     logger,
		onFallback: onFallback,
	}
}

// Complete sends a completion request to the primary provider, retrying with
// the fallback on failure.
func (c *FallbackClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	c.logger.Warn("primary LLM failed, attempting fallback",
		"error", err.Error(),
		"fallback_available", c.fallback != nil,
	)

	if c.fallback == nil {
		return Response{}, err
	}
	if c.onFallback != nil {
		c.onFallback()
	}

	fallbackResp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback LLM also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return Response{}, fallbackErr
	}

	c.logger.Info("fallback LLM succeeded after primary failure")
	return fallbackResp, nil
}
