package ai

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
)

type timeoutProvider struct {
	inner Provider
	run   func(ctx context.Context, fn func(context.Context) (string, error)) (string, error)
}

// WithTimeout bounds every Generate call on inner to d. There is no retry:
// a call that exceeds d fails with a *TransportError.
func WithTimeout(inner Provider, d time.Duration) Provider {
	t := timeout.New[string](timeout.Config{
		DefaultTimeout: d,
	})

	return &timeoutProvider{
		inner: inner,
		run: func(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
			return t.Execute(ctx, d, fn)
		},
	}
}

func (p *timeoutProvider) Generate(ctx context.Context, req Request) (string, error) {
	out, err := p.run(ctx, func(ctx context.Context) (string, error) {
		return p.inner.Generate(ctx, req)
	})
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return "", err
		}
		return "", &TransportError{Provider: "timeout", Err: err}
	}
	return out, nil
}
