package panorama

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrViewerUnmounted = errors.New("viewer has been unmounted")
	ErrNoSession       = errors.New("no panorama configured")
	ErrHotspotRange    = errors.New("hotspot index out of range")
)

// Hotspot is a clickable annotated region on the panorama, positioned by
// angular coordinates in degrees.
type Hotspot struct {
	Pitch float64 `json:"pitch" yaml:"pitch"`
	Yaw   float64 `json:"yaw" yaml:"yaw"`
	Title string  `json:"title" yaml:"title"`
	Text  string  `json:"text" yaml:"text"`
}

// Session is one rendered panorama: an image plus its realized hotspots and
// the transient tooltip state. At most one tooltip is open at a time.
type Session struct {
	ImageURL string
	AutoLoad bool
	hotspots []Hotspot
	open     int // index of the open tooltip, -1 when none
}

func (s *Session) Hotspots() []Hotspot { return s.hotspots }

// Viewer owns the panorama lifecycle: it loads the rendering library through
// its provider, tears down the previous session on every reconfiguration
// (full rebind, never an incremental patch) and keeps the at-most-one-open
// tooltip invariant.
type Viewer struct {
	provider RendererProvider

	mu      sync.Mutex
	mounted bool
	session *Session
}

func NewViewer(provider RendererProvider) *Viewer {
	return &Viewer{provider: provider, mounted: true}
}

// Configure binds the viewer to a new image and hotspot set. Any previous
// session is destroyed first. If the rendering library cannot be loaded the
// viewer stays in the unavailable state: no panorama is drawn and hotspot
// clicks are inert.
func (v *Viewer) Configure(ctx context.Context, imageURL string, hotspots []Hotspot, autoLoad bool) error {
	err := v.provider.EnsureLoaded(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		// The view went away while the library was loading; drop the result.
		return ErrViewerUnmounted
	}
	v.session = nil
	if err != nil {
		return err
	}
	hs := make([]Hotspot, len(hotspots))
	copy(hs, hotspots)
	v.session = &Session{
		ImageURL: imageURL,
		AutoLoad: autoLoad,
		hotspots: hs,
		open:     -1,
	}
	return nil
}

// Available reports whether a panorama is currently drawn.
func (v *Viewer) Available() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted && v.session != nil
}

// HotspotCount returns the number of rendered hotspots; zero when the
// renderer is unavailable or nothing is configured.
func (v *Viewer) HotspotCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session == nil {
		return 0
	}
	return len(v.session.hotspots)
}

// OpenHotspot opens the tooltip for the hotspot at index i, closing any
// previously open tooltip first.
func (v *Viewer) OpenHotspot(i int) (Hotspot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return Hotspot{}, ErrViewerUnmounted
	}
	if v.session == nil {
		return Hotspot{}, ErrNoSession
	}
	if i < 0 || i >= len(v.session.hotspots) {
		return Hotspot{}, ErrHotspotRange
	}
	v.session.open = i
	return v.session.hotspots[i], nil
}

// OpenTooltip returns the hotspot whose tooltip is open, if any.
func (v *Viewer) OpenTooltip() (Hotspot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session == nil || v.session.open < 0 {
		return Hotspot{}, false
	}
	return v.session.hotspots[v.session.open], true
}

// CloseTooltip dismisses the open tooltip. No-op when none is open.
func (v *Viewer) CloseTooltip() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.session != nil {
		v.session.open = -1
	}
}

// Unmount destroys the current session and marks the viewer dead. Late
// results from in-flight loads are discarded.
func (v *Viewer) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mounted = false
	v.session = nil
}
