package ai

import (
	"context"
	"errors"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/johnquangdev/meeting-whisperer/pkg/config"
	"github.com/johnquangdev/meeting-whisperer/pkg/jobcontext"
)

// RetryPolicy bounds provider-call retries inside one stage
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxElapsed      time.Duration
}

// RetryPolicyFromConfig builds the policy from AI settings
func RetryPolicyFromConfig(cfg *config.AIConfig) RetryPolicy {
	return RetryPolicy{
		InitialInterval: cfg.RetryInitialWait,
		MaxElapsed:      cfg.RetryMaxElapsed,
	}
}

// retry runs fn until it succeeds, fails permanently, the policy's elapsed
// budget runs out or ctx is done. A zero MaxElapsed runs fn once.
func retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	if policy.MaxElapsed <= 0 {
		return fn()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = policy.InitialInterval
	if bo.InitialInterval <= 0 {
		bo.InitialInterval = time.Second
	}
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = policy.MaxElapsed

	op := func() error {
		err := fn()
		if err != nil && !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}

// isTransient reports whether a provider error is worth retrying
func isTransient(err error) bool {
	if errors.Is(err, ErrMalformedOutput) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return jobcontext.IsTransient(err)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
