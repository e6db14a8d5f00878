package panorama

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrRendererUnavailable is returned once the rendering library has failed to
// load. The failure is sticky for the process lifetime; a restart (page
// reload, in the original UI) is the recovery path.
var ErrRendererUnavailable = errors.New("panorama renderer unavailable")

// LoadFunc fetches and installs the external rendering library.
type LoadFunc func(ctx context.Context) error

// RendererProvider guards access to the external rendering library.
type RendererProvider interface {
	// EnsureLoaded loads the library exactly once per process. Concurrent
	// and repeated calls share a single load; the terminal outcome
	// (ready or failed) is memoized.
	EnsureLoaded(ctx context.Context) error
}

// Provider is the process-wide RendererProvider. Injection points take the
// interface so tests can fake the library without any network.
type Provider struct {
	load LoadFunc
	sf   singleflight.Group

	mu   sync.Mutex
	done bool
	err  error
}

func NewProvider(load LoadFunc) *Provider {
	return &Provider{load: load}
}

func (p *Provider) EnsureLoaded(ctx context.Context) error {
	p.mu.Lock()
	if p.done {
		err := p.err
		p.mu.Unlock()
		return err
	}
	p.mu.Unlock()

	_, err, _ := p.sf.Do("load", func() (interface{}, error) {
		p.mu.Lock()
		if p.done {
			err := p.err
			p.mu.Unlock()
			return nil, err
		}
		p.mu.Unlock()

		// The load is process-wide, not owned by any one viewer: run it
		// detached so an unmounting caller cannot turn its own
		// cancellation into the sticky failure.
		err := p.load(context.WithoutCancel(ctx))
		if err != nil {
			err = errors.Join(ErrRendererUnavailable, err)
		}

		p.mu.Lock()
		p.done = true
		p.err = err
		p.mu.Unlock()
		return nil, err
	})
	return err
}
