// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for talking to the model provider.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// MaxRetryAfter caps how long a server-provided Retry-After may make us wait.
var MaxRetryAfter = time.Minute

const (
	defaultMaxRetries = 3

	// StatusOverloaded is Anthropic's "overloaded" status code.
	StatusOverloaded = 529
)

// Retryable reports whether a response status is worth retrying: rate
// limiting (429) or provider overload (529).
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == StatusOverloaded
}

// DoWithRetry executes an HTTP request and retries retryable statuses with
// exponential backoff: RetryBaseDelay, then double each attempt. A
// Retry-After header given in seconds replaces the computed delay, capped
// at MaxRetryAfter.
//
// When maxRetries is 0 the default (3) is used. The request body must be
// replayable (http.NewRequest sets GetBody for in-memory readers). If the
// context is cancelled during a backoff wait the function returns
// ctx.Err(). After exhausting retries the last response is returned so the
// caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, log logrus.FieldLogger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if log == nil {
		log = discardLogger()
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if d, ok := retryAfter(resp.Header); ok {
			backoff = d
		}
		log.WithFields(logrus.Fields{
			"status":  resp.StatusCode,
			"attempt": attempt + 1,
			"max":     maxRetries,
			"backoff": backoff,
		}).Warn("request throttled, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// retryAfter parses a Retry-After header expressed in whole seconds.
func retryAfter(h http.Header) (time.Duration, bool) {
	v := h.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	d := time.Duration(secs) * time.Second
	if d > MaxRetryAfter {
		d = MaxRetryAfter
	}
	return d, true
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
