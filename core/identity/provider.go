// Package identity derives the stable per-visitor device identifier used to
// meter the free analysis quota.
//
// The identifier is computed at most once per process. Concurrent callers that
// arrive before the first computation finishes wait on that computation rather
// than starting their own. A failed computation is not cached; no random
// identifier is ever substituted for a missing one.
package identity

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"pricing-detective/core/types"
	"pricing-detective/internal/errors"
	"pricing-detective/internal/logging"
)

// Fingerprinter computes a device identifier from client characteristics
type Fingerprinter interface {
	Fingerprint(ctx context.Context) (string, error)
}

// Provider memoizes the device identifier for the process lifetime
type Provider struct {
	fingerprinter Fingerprinter
	logger        *zap.Logger

	group singleflight.Group

	mu sync.RWMutex
	id types.DeviceID
}

// NewProvider creates a provider backed by fp
func NewProvider(fp Fingerprinter, logger *zap.Logger) *Provider {
	return &Provider{
		fingerprinter: fp,
		logger:        logging.Or(logger),
	}
}

const flightKey = "device-id"

// DeviceID returns the cached identifier, computing it on first use
func (p *Provider) DeviceID(ctx context.Context) (types.DeviceID, error) {
	if id, ok := p.cached(); ok {
		return id, nil
	}

	// The shared computation outlives any single caller; each caller
	// stops waiting when its own context ends.
	flight := context.WithoutCancel(ctx)
	ch := p.group.DoChan(flightKey, func() (interface{}, error) {
		// A previous flight may have finished between the cache check and Do.
		if id, ok := p.cached(); ok {
			return id, nil
		}

		raw, err := p.fingerprinter.Fingerprint(flight)
		if err != nil {
			return nil, errors.Identity("device fingerprint unavailable", err)
		}
		if raw == "" {
			return nil, errors.Identity("device fingerprint was empty", nil)
		}

		id := types.DeviceID(raw)
		p.mu.Lock()
		p.id = id
		p.mu.Unlock()

		p.logger.Debug("device identity computed", zap.String("device_id", raw))
		return id, nil
	})

	select {
	case <-ctx.Done():
		return "", errors.Identity("device fingerprint unavailable", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			p.logger.Warn("device identity unavailable", zap.Error(res.Err), zap.Bool("shared", res.Shared))
			return "", res.Err
		}
		p.logger.Debug("device identity resolved", zap.Bool("shared", res.Shared))
		return res.Val.(types.DeviceID), nil
	}
}

func (p *Provider) cached() (types.DeviceID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.id, p.id != ""
}
