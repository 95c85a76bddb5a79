package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/talentbase/eventsync/app/cfg"
	"github.com/talentbase/eventsync/app/database"
	"github.com/talentbase/eventsync/app/importer"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	credentialRepo database.CredentialRepository
	reconciler     *importer.Reconciler
	interval       time.Duration
	importInterval time.Duration
	workerCount    int
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	taskQueue      chan TaskInterface
}

func NewScheduler(credentialRepo database.CredentialRepository, reconciler *importer.Reconciler) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		credentialRepo: credentialRepo,
		reconciler:     reconciler,
		interval:       time.Duration(cfg.SchedulerInterval) * time.Second,
		importInterval: time.Duration(cfg.ImportInterval) * time.Second,
		workerCount:    cfg.WorkerCount,
		ctx:            ctx,
		cancel:         cancel,
		taskQueue:      make(chan TaskInterface, 300),
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

// enqueueTasks schedules an import pass for every credential whose next
// import time has passed. Only Meetup credentials get periodic passes;
// Eventbrite data arrives through the webhook.
func (s *Scheduler) enqueueTasks() {
	creds, err := s.credentialRepo.GetCredentialsDueForImport(importer.SocialNetworkMeetup)
	if err != nil {
		slog.Warn("Failed to load credentials due for import", "error", err)
		return
	}
	if len(creds) == 0 {
		slog.Debug("No credentials due for import")
		return
	}

	slog.Debug("Scheduling credential imports", "count", len(creds))

	for _, cred := range creds {
		task := NewImportCredentialTask(cred, s.reconciler, s.credentialRepo, s.importInterval)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue ImportCredentialTask", "user_id", cred.UserID, "error", err)
		}
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

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "user_id", task.GetUserID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

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
