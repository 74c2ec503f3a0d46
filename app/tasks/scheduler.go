package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ideaoasis/ideaoasis/app/cfg"
	"github.com/ideaoasis/ideaoasis/app/database"
	"github.com/ideaoasis/ideaoasis/app/ideas"
	"github.com/ideaoasis/ideaoasis/app/sources"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// enrichBatchSize bounds how many unscored ideas each tick enqueues.
const enrichBatchSize = 20

// qualityScanInterval paces the periodic validation sweep.
const qualityScanInterval = time.Hour

// refreshInterval paces the full re-enrichment pass that keeps trend
// data from going stale.
const refreshInterval = 24 * time.Hour

type Scheduler struct {
	configCache *sources.ConfigCache
	ideaRepo    database.IdeaRepository
	fetcher     *sources.Fetcher
	normalizer  *ideas.Normalizer
	enricher    *ideas.Enricher
	monitor     *ideas.QualityMonitor

	interval    time.Duration
	workerCount int

	mu              sync.Mutex
	nextFetchAt     map[string]time.Time
	lastQualityScan time.Time
	lastRefresh     time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(configCache *sources.ConfigCache, ideaRepo database.IdeaRepository,
	fetcher *sources.Fetcher, normalizer *ideas.Normalizer, enricher *ideas.Enricher,
	monitor *ideas.QualityMonitor) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache: configCache,
		ideaRepo:    ideaRepo,
		fetcher:     fetcher,
		normalizer:  normalizer,
		enricher:    enricher,
		monitor:     monitor,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		nextFetchAt: make(map[string]time.Time),
		lastRefresh: time.Now(),
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	s.enqueueSourceFetches()
	s.enqueueEnrichment()
	s.enqueueRefresh()
	s.enqueueQualityScan()
}

func (s *Scheduler) enqueueSourceFetches() {
	configs := s.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	now := time.Now().UTC()

	for _, config := range configs {
		s.mu.Lock()
		due := s.nextFetchAt[config.Name].Before(now) || s.nextFetchAt[config.Name].IsZero()
		if due {
			s.nextFetchAt[config.Name] = now.Add(time.Duration(config.Settings.RefreshInterval) * time.Second)
		}
		s.mu.Unlock()

		if !due {
			slog.Debug("Source not due for refresh yet", "source", config.Name)
			continue
		}

		task := NewFetchSourceTask(config, s.fetcher, s.normalizer)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue FetchSourceTask", "source", config.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueEnrichment() {
	pending, err := s.ideaRepo.ListIdeasNeedingEnrichment(enrichBatchSize)
	if err != nil {
		slog.Warn("Failed to list ideas needing enrichment", "error", err)
		return
	}

	for _, idea := range pending {
		task := NewEnrichIdeaTask(idea.ID, s.enricher)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue EnrichIdeaTask", "idea", idea.ID, "error", err)
		}
	}
}

// enqueueRefresh schedules the daily full re-enrichment so stored
// trend data tracks the market instead of the ingestion date.
func (s *Scheduler) enqueueRefresh() {
	s.mu.Lock()
	due := time.Since(s.lastRefresh) >= refreshInterval
	if due {
		s.lastRefresh = time.Now()
	}
	s.mu.Unlock()

	if !due {
		return
	}

	task := NewEnrichAllTask(s.enricher)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue EnrichAllTask", "error", err)
	}
}

func (s *Scheduler) enqueueQualityScan() {
	s.mu.Lock()
	due := time.Since(s.lastQualityScan) >= qualityScanInterval
	if due {
		s.lastQualityScan = time.Now()
	}
	s.mu.Unlock()

	if !due {
		return
	}

	task := NewQualityScanTask(s.ideaRepo, s.monitor)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue QualityScanTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "subject", task.GetSubject(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			// The retry goroutine joins the WaitGroup so Stop waits it
			// out before closing the queue.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()

				timer := time.NewTimer(retryDelay)
				defer timer.Stop()

				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				case <-timer.C:
				}

				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
