package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yaokonan/terrain-booking/internal/domain/sport"
	"github.com/yaokonan/terrain-booking/internal/platform/logging"
	"github.com/yaokonan/terrain-booking/internal/platform/resilience"
)

// DefaultSportCatalogTTL is how long a fetched sport list stays fresh.
const DefaultSportCatalogTTL = 5 * time.Minute

type SportCatalogProvider interface {
	FetchActiveSports(ctx context.Context) ([]sport.Sport, error)
}

// SportCatalogService keeps the upstream sport list behind a TTL. A failed
// refresh keeps the previously loaded items so callers can still render a
// list while surfacing the error once.
type SportCatalogService struct {
	provider SportCatalogProvider
	logger   *logging.Logger
	ttl      time.Duration
	now      func() time.Time

	flight resilience.SingleFlight

	mu        sync.RWMutex
	items     []sport.Sport
	fetchedAt time.Time
}

func NewSportCatalogService(provider SportCatalogProvider, ttl time.Duration, logger *logging.Logger) *SportCatalogService {
	if ttl <= 0 {
		ttl = DefaultSportCatalogTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SportCatalogService{
		provider: provider,
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
	}
}

// EnsureFresh returns the cached sports without a fetch while the TTL holds,
// otherwise refetches from upstream. Concurrent stale reads collapse into one
// upstream call. When the fetch fails and a previous list exists, that list
// is returned alongside the error.
func (s *SportCatalogService) EnsureFresh(ctx context.Context) ([]sport.Sport, error) {
	ctx, span := startUsecaseSpan(ctx, "SportCatalogService.EnsureFresh")
	defer span.End()

	if items, ok := s.freshSnapshot(); ok {
		return items, nil
	}

	value, err, _ := s.flight.Do("sport-catalog", func() (any, error) {
		// A concurrent caller may have refreshed while this one waited.
		if items, ok := s.freshSnapshot(); ok {
			return items, nil
		}

		items, fetchErr := s.provider.FetchActiveSports(ctx)
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch active sports: %w: %w", ErrDependencyUnavailable, fetchErr)
		}

		s.mu.Lock()
		s.items = items
		s.fetchedAt = s.now()
		s.mu.Unlock()

		return snapshotSports(items), nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "sport catalog refresh failed", "error", err)
		if stale := s.staleSnapshot(); stale != nil {
			return stale, err
		}
		return nil, err
	}

	items, _ := value.([]sport.Sport)
	return items, nil
}

// Invalidate clears the freshness timestamp; the next EnsureFresh always
// refetches. The items themselves are kept as the stale fallback.
func (s *SportCatalogService) Invalidate() {
	s.mu.Lock()
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

// Search filters the currently cached items by name. It never fetches and
// never touches the cache state; callers wanting freshness run EnsureFresh
// first.
func (s *SportCatalogService) Search(query string) []sport.Sport {
	return sport.Filter(s.staleSnapshot(), query)
}

// FindByID looks a sport up in the current items without triggering a fetch.
func (s *SportCatalogService) FindByID(sportID int64) (sport.Sport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == sportID {
			return item, true
		}
	}
	return sport.Sport{}, false
}

// Len reports the number of cached items regardless of freshness.
func (s *SportCatalogService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *SportCatalogService) freshSnapshot() ([]sport.Sport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fetchedAt.IsZero() || s.now().Sub(s.fetchedAt) >= s.ttl {
		return nil, false
	}
	return snapshotSports(s.items), true
}

func (s *SportCatalogService) staleSnapshot() []sport.Sport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return nil
	}
	return snapshotSports(s.items)
}

func snapshotSports(items []sport.Sport) []sport.Sport {
	out := make([]sport.Sport, len(items))
	copy(out, items)
	return out
}
