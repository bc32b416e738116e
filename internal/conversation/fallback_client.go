package conversation

import (
	"context"
	"fmt"

	"github.com/nadine-ai/resubmission-copilot/pkg/logging"
)

// FallbackLLMClient chains two providers: justification drafts go to the
// primary, and only a primary failure reaches the fallback. With no
// fallback configured the primary's error passes through unchanged.
type FallbackLLMClient struct {
	primary  LLMClient
	fallback LLMClient
	logger   *logging.Logger
}

// NewFallbackLLMClient wires the provider chain. fallback may be nil.
func NewFallbackLLMClient(primary, fallback LLMClient, logger *logging.Logger) *FallbackLLMClient {
	if primary == nil {
		panic("conversation: primary llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackLLMClient{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Complete tries the primary provider and falls back on failure. When
// both fail, the returned error carries both causes so the 502 surfaced
// to the claims team is diagnosable from one log line.
func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	if c.fallback == nil {
		return LLMResponse{}, err
	}
	c.logger.Warn("primary text generation failed, trying fallback",
		"model", req.Model,
		"error", err,
	)

	resp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback text generation failed too",
			"primary_error", err,
			"fallback_error", fallbackErr,
		)
		return LLMResponse{}, fmt.Errorf("conversation: all providers failed: primary: %v; fallback: %w", err, fallbackErr)
	}

	c.logger.Info("fallback provider answered after primary failure", "model", req.Model)
	return resp, nil
}
