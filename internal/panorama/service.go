package panorama

import (
	"context"
	"errors"
	"sync"
)

var ErrNoTour = errors.New("no tour for this lesson")

// Service hands out at most one live Viewer per (user, lesson) over a shared
// renderer provider. Viewers are created when the lesson's panorama view
// opens and discarded when the user navigates away; the provider's load
// state outlives all of them.
type Service struct {
	provider RendererProvider
	tours    Tours

	mu      sync.Mutex
	viewers map[string]*Viewer
}

func NewService(provider RendererProvider, tours Tours) *Service {
	return &Service{
		provider: provider,
		tours:    tours,
		viewers:  make(map[string]*Viewer),
	}
}

func viewerKey(userID, lessonTitle string) string { return userID + "/" + lessonTitle }

// Tour returns the configuration for a lesson, if one exists.
func (s *Service) Tour(lessonTitle string) (TourConfig, bool) {
	return s.tours.ForLesson(lessonTitle)
}

// Open configures the viewer for (user, lesson) from the lesson's tour,
// creating it if needed. Re-opening an existing viewer is a full rebind.
func (s *Service) Open(ctx context.Context, userID, lessonTitle string) (*Viewer, error) {
	cfg, ok := s.tours.ForLesson(lessonTitle)
	if !ok {
		return nil, ErrNoTour
	}

	key := viewerKey(userID, lessonTitle)
	s.mu.Lock()
	v, ok := s.viewers[key]
	if !ok {
		v = NewViewer(s.provider)
		s.viewers[key] = v
	}
	s.mu.Unlock()

	if err := v.Configure(ctx, cfg.ImageURL, cfg.Hotspots, true); err != nil {
		return nil, err
	}
	return v, nil
}

// Viewer returns the live viewer for (user, lesson), if one is open.
func (s *Service) Viewer(userID, lessonTitle string) (*Viewer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.viewers[viewerKey(userID, lessonTitle)]
	return v, ok
}

// Discard unmounts and drops the viewer, if any. Safe to call when none
// exists.
func (s *Service) Discard(userID, lessonTitle string) {
	key := viewerKey(userID, lessonTitle)
	s.mu.Lock()
	v, ok := s.viewers[key]
	if ok {
		delete(s.viewers, key)
	}
	s.mu.Unlock()
	if ok {
		v.Unmount()
	}
}
