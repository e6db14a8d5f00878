package panorama_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vision-360/safety-lms/internal/panorama"
)

func someHotspots() []panorama.Hotspot {
	return []panorama.Hotspot{
		{Pitch: -10, Yaw: -30, Title: "Forklift Operating Area", Text: "keep clear"},
		{Pitch: -8, Yaw: 35, Title: "Loading Bay", Text: "secure vehicles"},
		{Pitch: -2, Yaw: -10, Title: "PPE", Text: "helmets required"},
	}
}

func TestProviderLoadsExactlyOnce(t *testing.T) {
	var loads int32
	p := panorama.NewProvider(func(ctx context.Context) error {
		atomic.AddInt32(&loads, 1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.EnsureLoaded(context.Background()); err != nil {
				t.Errorf("ensure: %v", err)
			}
		}()
	}
	wg.Wait()
	if err := p.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("repeat ensure: %v", err)
	}
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Fatalf("library must load exactly once, loaded %d times", n)
	}
}

func TestCanceledCallerDoesNotPoisonLoad(t *testing.T) {
	var loads int32
	p := panorama.NewProvider(func(ctx context.Context) error {
		atomic.AddInt32(&loads, 1)
		return ctx.Err()
	})

	// A viewer that unmounts mid-load cancels its own context; the shared
	// library load must not inherit that cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.EnsureLoaded(ctx); err != nil {
		t.Fatalf("load must run detached from the caller, got %v", err)
	}
	if err := p.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("later mount must find the renderer ready, got %v", err)
	}
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Fatalf("library must load exactly once, loaded %d times", n)
	}
}

func TestFailedLoadIsSticky(t *testing.T) {
	var loads int32
	p := panorama.NewProvider(func(ctx context.Context) error {
		atomic.AddInt32(&loads, 1)
		return errors.New("script blocked")
	})

	if err := p.EnsureLoaded(context.Background()); !errors.Is(err, panorama.ErrRendererUnavailable) {
		t.Fatalf("want ErrRendererUnavailable, got %v", err)
	}
	// No automatic retry.
	if err := p.EnsureLoaded(context.Background()); !errors.Is(err, panorama.ErrRendererUnavailable) {
		t.Fatalf("failure must be memoized, got %v", err)
	}
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Fatalf("failed load must not retry, loaded %d times", n)
	}
}

func TestFailedLoadLeavesViewerInert(t *testing.T) {
	p := panorama.NewProvider(func(ctx context.Context) error {
		return errors.New("network block")
	})
	v := panorama.NewViewer(p)

	err := v.Configure(context.Background(), "/assets/scene.jpeg", someHotspots(), true)
	if !errors.Is(err, panorama.ErrRendererUnavailable) {
		t.Fatalf("want ErrRendererUnavailable, got %v", err)
	}
	if v.Available() {
		t.Fatal("no panorama may be drawn when the renderer is unavailable")
	}
	if v.HotspotCount() != 0 {
		t.Fatal("no hotspot may be rendered when the renderer is unavailable")
	}
	if _, err := v.OpenHotspot(0); !errors.Is(err, panorama.ErrNoSession) {
		t.Fatalf("hotspot clicks must be inert, got %v", err)
	}
}

func TestConfigureRendersAllHotspots(t *testing.T) {
	v := panorama.NewViewer(panorama.NewProvider(func(ctx context.Context) error { return nil }))
	hs := someHotspots()

	if err := v.Configure(context.Background(), "/assets/scene.jpeg", hs, true); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if got := v.HotspotCount(); got != len(hs) {
		t.Fatalf("want %d hotspots, got %d", len(hs), got)
	}
	h, err := v.OpenHotspot(1)
	if err != nil {
		t.Fatal(err)
	}
	if h.Pitch != hs[1].Pitch || h.Yaw != hs[1].Yaw {
		t.Fatalf("hotspot position mismatch: %+v vs %+v", h, hs[1])
	}
}

func TestAtMostOneTooltipOpen(t *testing.T) {
	v := panorama.NewViewer(panorama.NewProvider(func(ctx context.Context) error { return nil }))
	if err := v.Configure(context.Background(), "/assets/scene.jpeg", someHotspots(), true); err != nil {
		t.Fatal(err)
	}

	if _, err := v.OpenHotspot(0); err != nil {
		t.Fatal(err)
	}
	if _, err := v.OpenHotspot(2); err != nil {
		t.Fatal(err)
	}
	open, ok := v.OpenTooltip()
	if !ok {
		t.Fatal("expected an open tooltip")
	}
	if open.Title != "PPE" {
		t.Fatalf("open tooltip must be the most recently clicked, got %q", open.Title)
	}

	v.CloseTooltip()
	if _, ok := v.OpenTooltip(); ok {
		t.Fatal("tooltip must close")
	}

	if _, err := v.OpenHotspot(99); !errors.Is(err, panorama.ErrHotspotRange) {
		t.Fatalf("want ErrHotspotRange, got %v", err)
	}
}

func TestReconfigureIsFullRebind(t *testing.T) {
	v := panorama.NewViewer(panorama.NewProvider(func(ctx context.Context) error { return nil }))
	ctx := context.Background()

	if err := v.Configure(ctx, "/assets/scene-1.jpeg", someHotspots(), true); err != nil {
		t.Fatal(err)
	}
	if _, err := v.OpenHotspot(0); err != nil {
		t.Fatal(err)
	}

	// New image: previous session (including its open tooltip) is torn down.
	next := []panorama.Hotspot{{Pitch: 1, Yaw: 2, Title: "Exit Route", Text: "keep clear"}}
	if err := v.Configure(ctx, "/assets/scene-2.jpeg", next, true); err != nil {
		t.Fatal(err)
	}
	if _, ok := v.OpenTooltip(); ok {
		t.Fatal("rebind must not carry over tooltip state")
	}
	if got := v.HotspotCount(); got != 1 {
		t.Fatalf("want 1 hotspot after rebind, got %d", got)
	}
}

func TestUnmountDiscardsLateResults(t *testing.T) {
	release := make(chan struct{})
	p := panorama.NewProvider(func(ctx context.Context) error {
		<-release
		return nil
	})
	v := panorama.NewViewer(p)

	done := make(chan error, 1)
	go func() {
		done <- v.Configure(context.Background(), "/assets/scene.jpeg", someHotspots(), true)
	}()

	v.Unmount()
	close(release)
	if err := <-done; !errors.Is(err, panorama.ErrViewerUnmounted) {
		t.Fatalf("late configure must be discarded, got %v", err)
	}
	if v.Available() {
		t.Fatal("unmounted viewer must not hold a session")
	}
}
