package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/yaokonan/terrain-booking/internal/platform/logging"
)

const (
	warmStatusSuccess = "success"
	warmStatusFailed  = "failed"

	defaultWarmWorkers = 4
)

type WarmResult struct {
	RegionCount  int                `json:"region_count"`
	SuccessCount int                `json:"success_count"`
	FailedCount  int                `json:"failed_count"`
	WorkerCount  int                `json:"worker_count"`
	Regions      []RegionWarmResult `json:"regions"`
}

type RegionWarmResult struct {
	Region     string `json:"region"`
	Sports     int    `json:"sports"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// CatalogWarmService refreshes the per-region sport catalogs ahead of demand.
// Regions are warmed concurrently through a bounded worker pool; the service
// can also run itself on an interval in the background.
type CatalogWarmService struct {
	catalogs   map[string]*SportCatalogService
	logger     *logging.Logger
	maxWorkers int

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	bg        conc.WaitGroup
}

func NewCatalogWarmService(catalogs map[string]*SportCatalogService, maxWorkers int, logger *logging.Logger) *CatalogWarmService {
	if maxWorkers <= 0 {
		maxWorkers = defaultWarmWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CatalogWarmService{
		catalogs:   catalogs,
		logger:     logger,
		maxWorkers: maxWorkers,
		stop:       make(chan struct{}),
	}
}

// WarmAll invalidates and refetches every region's catalog. Each region is
// one pool task; the aggregated rows come back sorted by region name.
func (s *CatalogWarmService) WarmAll(ctx context.Context) (WarmResult, error) {
	ctx, span := startUsecaseSpan(ctx, "CatalogWarmService.WarmAll")
	defer span.End()

	result := WarmResult{RegionCount: len(s.catalogs)}
	if len(s.catalogs) == 0 {
		return result, nil
	}

	workerCount := s.maxWorkers
	if workerCount > len(s.catalogs) {
		workerCount = len(s.catalogs)
	}
	result.WorkerCount = workerCount

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return WarmResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	rows := make(chan RegionWarmResult, len(s.catalogs))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for region, catalog := range s.catalogs {
		region, catalog := region, catalog
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RegionWarmResult{Region: region}

			catalog.Invalidate()
			items, warmErr := catalog.EnsureFresh(ctx)
			row.Sports = len(items)
			row.DurationMs = time.Since(start).Milliseconds()

			if warmErr != nil {
				row.Status = warmStatusFailed
				row.Message = warmErr.Error()
				failedCount.Add(1)
			} else {
				row.Status = warmStatusSuccess
				successCount.Add(1)
			}

			rows <- row
		}); err != nil {
			workers.Done()
			return WarmResult{}, fmt.Errorf("submit warm task: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Regions = append(result.Regions, row)
	}
	sort.SliceStable(result.Regions, func(i, j int) bool {
		return result.Regions[i].Region < result.Regions[j].Region
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "catalog warm pass finished",
		"regions", result.RegionCount, "success", result.SuccessCount, "failed", result.FailedCount)

	return result, nil
}

// RunEvery warms all regions on the given interval until Stop is called.
func (s *CatalogWarmService) RunEvery(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.startOnce.Do(func() {
		s.bg.Go(func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-s.stop:
					return
				case <-ticker.C:
					if _, err := s.WarmAll(context.Background()); err != nil {
						s.logger.Warn("background catalog warm failed", "error", err)
					}
				}
			}
		})
	})
}

// Stop ends the background loop and waits for it, swallowing a panicked pass.
func (s *CatalogWarmService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	if recovered := s.bg.WaitAndRecover(); recovered != nil {
		s.logger.Error("background catalog warm panicked", "panic", recovered.Value)
	}
}
