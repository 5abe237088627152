// Package backend is the gateway to the hotel platform API: bearer auth,
// response envelopes, rate limiting and retries for reads.
package backend

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"yisu_backoffice/internal/adapters/observability"
	"yisu_backoffice/internal/domain"
)

// Auth supplies the bearer token and reacts to 401 responses.
type Auth interface {
	Token() string
	Unauthorized(ctx context.Context)
}

type Client struct {
	base    string
	hc      *http.Client
	auth    Auth
	rl      *rate.Limiter
	timeout time.Duration
}

func New(base string, auth Auth, timeout time.Duration, rps int) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: timeout},
		auth:    auth,
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
		timeout: timeout,
	}
}

// envelope is the backend's {success, msg, data} wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

type call struct {
	method   string
	path     string
	body     any
	out      any
	readOnly bool // safe to retry
	public   bool // no bearer token, 401 does not end the session
}

const maxAttempts = 3

// do performs one logical call with client-side rate limiting, retries for
// read-only calls (network errors, 429 and transient 5xx, honoring
// Retry-After) and envelope decoding into c.out. All attempts share a single
// deadline of one timeout.
func (c *Client) do(ctx context.Context, cl call) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.rl.Wait(ctx); err != nil {
		return &domain.TransportError{Op: cl.path, Err: err}
	}

	attempts := 1
	if cl.readOnly {
		attempts = maxAttempts
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		retry, wait, err := c.once(ctx, cl)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || i == attempts-1 {
			break
		}
		if wait == 0 {
			wait = backoff(i)
		}
		if !sleepCtx(ctx, wait) {
			return &domain.TransportError{Op: cl.path, Err: ctx.Err()}
		}
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, cl call) (retry bool, wait time.Duration, err error) {
	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return false, 0, fmt.Errorf("%s: encode body: %w", cl.path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.base+cl.path, body)
	if err != nil {
		return false, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "yisu-backoffice/1.0")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if !cl.public && c.auth != nil {
		if tok := c.auth.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveBackend(cl.path, 0, time.Since(start))
		if ctx.Err() != nil {
			return false, 0, &domain.TransportError{Op: cl.path, Err: ctx.Err()}
		}
		return true, 0, &domain.TransportError{Op: cl.path, Err: err}
	}
	defer resp.Body.Close()
	observability.ObserveBackend(cl.path, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return true, 0, &domain.TransportError{Op: cl.path, Status: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized && !cl.public:
		log.Warn().Str("path", cl.path).Msg("backend rejected credentials, clearing session")
		if c.auth != nil {
			c.auth.Unauthorized(ctx)
		}
		return false, 0, fmt.Errorf("%s: %w", cl.path, domain.ErrUnauthorized)

	case resp.StatusCode == http.StatusForbidden:
		return false, 0, fmt.Errorf("%s: %w", cl.path, domain.ErrForbidden)

	case resp.StatusCode == http.StatusNotFound:
		if msg := envelopeMsg(raw); msg != "" {
			return false, 0, fmt.Errorf("%s: %w: %s", cl.path, domain.ErrNotFound, msg)
		}
		return false, 0, fmt.Errorf("%s: %w", cl.path, domain.ErrNotFound)

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return true, retryAfter(resp), &domain.TransportError{
			Op: cl.path, Status: resp.StatusCode, Err: errors.New(snippet(raw)),
		}

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		// 4xx with a readable envelope is an application failure
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Success != nil && !*env.Success {
			return false, 0, &domain.AppError{Msg: env.Msg}
		}
		return false, 0, &domain.TransportError{
			Op: cl.path, Status: resp.StatusCode, Err: errors.New(snippet(raw)),
		}
	}

	return false, 0, decode(cl.path, raw, cl.out)
}

// decode unwraps an envelope when present; bare JSON bodies decode directly.
func decode(path string, raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// a JSON array or scalar has no envelope
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return &domain.TransportError{Op: path, Err: fmt.Errorf("decode: %w", err)}
		}
		return nil
	}
	if env.Success == nil {
		if out != nil {
			if err := json.Unmarshal(raw, out); err != nil {
				return &domain.TransportError{Op: path, Err: fmt.Errorf("decode: %w", err)}
			}
		}
		return nil
	}
	if !*env.Success {
		return &domain.AppError{Msg: env.Msg}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &domain.TransportError{Op: path, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func envelopeMsg(raw []byte) string {
	var env envelope
	if json.Unmarshal(raw, &env) != nil {
		return ""
	}
	return env.Msg
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 256 {
		s = s[:256]
	}
	if s == "" {
		return "empty body"
	}
	return s
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns 100ms, 200ms, 400ms... with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
