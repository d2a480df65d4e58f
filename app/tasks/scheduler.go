package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"hnpulse/app/cfg"
	"hnpulse/app/config"
	"hnpulse/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	sources      map[string]*config.Source
	articleRepo  database.ArticleRepository
	snapshotRepo database.SnapshotRepository
	httpClient   *http.Client
	userAgent    string
	interval     time.Duration
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface

	mu       sync.Mutex
	nextPoll map[string]time.Time
}

func NewScheduler(sources map[string]*config.Source, articleRepo database.ArticleRepository,
	snapshotRepo database.SnapshotRepository, httpClient *http.Client) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		sources:      sources,
		articleRepo:  articleRepo,
		snapshotRepo: snapshotRepo,
		httpClient:   httpClient,
		userAgent:    cfg.UserAgent,
		interval:     time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:  cfg.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 100),
		nextPoll:     make(map[string]time.Time),
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

		s.enqueueDueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
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

func (s *Scheduler) enqueueDueTasks() {
	if len(s.sources) == 0 {
		slog.Debug("No source configurations found")
		return
	}

	now := time.Now().UTC()

	for name, source := range s.sources {
		if !source.Settings.Enabled {
			slog.Debug("Source disabled, skipping PollSourceTask", "source", name)
			continue
		}

		s.mu.Lock()
		next, seen := s.nextPoll[name]
		s.mu.Unlock()

		if seen && next.After(now) {
			slog.Debug("Source not due for polling yet", "source", name, "next_poll_at", next)
			continue
		}

		pollTask := NewPollSourceTask(name, source, s.httpClient, s.articleRepo, s.snapshotRepo, s.userAgent, s.workerCount)
		if err := s.EnqueueTask(pollTask); err != nil {
			slog.Warn("Failed to enqueue PollSourceTask", "source", name, "error", err)
			continue
		}

		s.mu.Lock()
		s.nextPoll[name] = now.Add(source.Settings.GetPollInterval())
		s.mu.Unlock()
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

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
