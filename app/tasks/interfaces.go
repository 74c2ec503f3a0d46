package tasks

// TaskSchedulerInterface exposes background task processing to the
// rest of the application: queue management and worker pool lifecycle.
// Example usage:
//
//	scheduler := NewScheduler(configCache, ideaRepo, fetcher, normalizer, enricher, monitor)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewEnrichIdeaTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
