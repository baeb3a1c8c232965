// Package smoke probes a freshly built image for basic liveness before it
// is pushed.
//
// The probe mirrors the image's own HEALTHCHECK contract: an HTTP GET
// against the service's /health path, retried on a fixed schedule. The
// container boot and teardown live in the docker package; this package
// only owns the HTTP side and the host-port pick.
package smoke

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// Schedule is the probe retry schedule: up to Retries attempts, Interval
// apart, each with its own request Timeout. The zero value is not usable;
// callers build it from the smoke configuration.
type Schedule struct {
	Retries  int
	Interval time.Duration
	Timeout  time.Duration
}

// Probe polls baseURL+path until it answers with a 2xx status or the
// schedule is exhausted. A freshly started service typically refuses
// connections for the first attempt or two while it boots, so every
// failure short of schedule exhaustion is silent.
//
// Returns a KindSmoke CLIError carrying the last observed failure when
// the service never becomes healthy.
func Probe(ctx context.Context, baseURL, path string, sched Schedule) error {
	url := baseURL + path
	client := &http.Client{Timeout: sched.Timeout}

	var lastErr error
	for attempt := 0; attempt < sched.Retries; attempt++ {
		// Space out attempts after the first. The wait is context-aware
		// so an operator interrupt cancels the probe immediately.
		if attempt > 0 {
			select {
			case <-time.After(sched.Interval):
			case <-ctx.Done():
				return model.WrapCLIError(model.KindSmoke, "health probe cancelled", ctx.Err())
			}
		}

		lastErr = probeOnce(ctx, client, url)
		if lastErr == nil {
			return nil
		}
	}

	return model.WrapCLIError(model.KindSmoke,
		fmt.Sprintf("service never became healthy at %s after %d attempts", url, sched.Retries),
		lastErr)
}

// probeOnce issues a single GET and maps any non-2xx status to an error.
func probeOnce(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// FreeHostPort asks the OS for an available TCP port by binding to port 0
// and reading back the assigned port. Binding to all interfaces matches
// the address space Docker publishes on, avoiding false positives from
// loopback-only checks.
//
// The listener is closed before returning, so there is a small window in
// which another process could grab the port; in practice `docker run`
// follows immediately.
func FreeHostPort() (int, error) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, fmt.Errorf("no free host port available: %w", err)
	}
	defer func() { _ = listener.Close() }()

	addr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("unexpected listener address type %T", listener.Addr())
	}
	return addr.Port, nil
}
