package llm

import (
	"context"
	"time"
)

// timeoutGenerator bounds every Generate call with a deadline.
type timeoutGenerator struct {
	inner   Generator
	timeout time.Duration
}

// WithTimeout wraps a Generator so each call runs under its own deadline.
func WithTimeout(g Generator, timeout time.Duration) Generator {
	return &timeoutGenerator{inner: g, timeout: timeout}
}

func (t *timeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, prompt)
}

func (t *timeoutGenerator) Provider() string {
	return t.inner.Provider()
}
