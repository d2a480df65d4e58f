package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hnpulse/app/cfg"
	"hnpulse/app/config"
)

type stubTask struct {
	Task
	mu       sync.Mutex
	runs     int
	failures int
}

func newStubTask(failures int) *stubTask {
	return &stubTask{
		Task:     NewTask(TaskTypePollSource, "stub"),
		failures: failures,
	}
}

func (t *stubTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs++
	if t.runs <= t.failures {
		return errors.New("stub failure")
	}
	return nil
}

func (t *stubTask) runCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs
}

func testScheduler(t *testing.T, sources map[string]*config.Source) *Scheduler {
	t.Helper()
	cfg.SetForTesting(&cfg.Cfg{
		WorkerCount:       2,
		SchedulerInterval: 1,
		UserAgent:         "test-agent",
	})
	return NewScheduler(sources, nil, nil, nil).(*Scheduler)
}

func TestNewTaskDefaults(t *testing.T) {
	task := NewTask(TaskTypePollSource, "frontpage")

	if task.ID == "" {
		t.Error("Expected task ID to be set")
	}
	if task.GetType() != TaskTypePollSource {
		t.Errorf("Expected type %s, got %s", TaskTypePollSource, task.GetType())
	}
	if task.GetSourceName() != "frontpage" {
		t.Errorf("Expected source name 'frontpage', got '%s'", task.GetSourceName())
	}
	if task.GetMaxRetries() != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, task.GetMaxRetries())
	}
	if task.GetDuration() != 0 {
		t.Errorf("Expected zero duration before start, got %v", task.GetDuration())
	}
}

func TestTaskRetryCounter(t *testing.T) {
	task := NewTask(TaskTypePollSource, "frontpage")

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Errorf("Expected no retries left after %d increments", DefaultMaxRetries)
	}
}

func TestEnqueueTaskQueueFull(t *testing.T) {
	scheduler := testScheduler(t, nil)
	scheduler.taskQueue = make(chan TaskInterface, 1)

	if err := scheduler.EnqueueTask(newStubTask(0)); err != nil {
		t.Fatalf("Expected first enqueue to succeed, got %v", err)
	}
	if err := scheduler.EnqueueTask(newStubTask(0)); err == nil {
		t.Error("Expected error when queue is full")
	}
}

func TestEnqueueDueTasksRespectsInterval(t *testing.T) {
	sources := map[string]*config.Source{
		"frontpage": {
			Name: "frontpage",
			URL:  "https://example.com/best",
			Kind: config.KindSite,
			Settings: config.SourceSettings{
				Enabled:      true,
				PollInterval: 3600,
			},
		},
		"disabled": {
			Name:     "disabled",
			URL:      "https://example.com/other",
			Kind:     config.KindSite,
			Settings: config.SourceSettings{Enabled: false},
		},
	}
	scheduler := testScheduler(t, sources)

	scheduler.enqueueDueTasks()
	if len(scheduler.taskQueue) != 1 {
		t.Fatalf("Expected 1 enqueued task, got %d", len(scheduler.taskQueue))
	}

	task := <-scheduler.taskQueue
	if task.GetSourceName() != "frontpage" {
		t.Errorf("Expected task for 'frontpage', got '%s'", task.GetSourceName())
	}

	// The source was just scheduled, so a second sweep enqueues nothing.
	scheduler.enqueueDueTasks()
	if len(scheduler.taskQueue) != 0 {
		t.Errorf("Expected no tasks before poll interval elapses, got %d", len(scheduler.taskQueue))
	}
}

func TestExecuteTaskRetriesOnFailure(t *testing.T) {
	scheduler := testScheduler(t, nil)

	task := newStubTask(1)
	scheduler.executeTask(0, task)

	if task.GetRetryCount() != 1 {
		t.Errorf("Expected retry count 1 after failure, got %d", task.GetRetryCount())
	}

	// The retry is re-enqueued after a backoff delay.
	deadline := time.After(3 * time.Second)
	select {
	case retried := <-scheduler.taskQueue:
		scheduler.executeTask(0, retried)
	case <-deadline:
		t.Fatal("Expected failed task to be re-enqueued")
	}

	if task.runCount() != 2 {
		t.Errorf("Expected 2 executions, got %d", task.runCount())
	}
}

func TestSchedulerLifecycle(t *testing.T) {
	scheduler := testScheduler(t, nil)

	scheduler.Start()
	task := newStubTask(0)
	if err := scheduler.EnqueueTask(task); err != nil {
		t.Fatalf("Expected enqueue to succeed, got %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for task.runCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	scheduler.Stop()

	if task.runCount() != 1 {
		t.Errorf("Expected task to run once, got %d", task.runCount())
	}
}
