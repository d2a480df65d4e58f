package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background task processing and by
// the API to trigger on-demand polls.
// Example usage:
//
//	scheduler := NewScheduler(sources, articleRepo, snapshotRepo, httpClient)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewPollSourceTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
