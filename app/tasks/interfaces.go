package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API layer to manage background import
// processing: queue management, worker pool control, and on-demand imports.
// Example usage:
//
//	scheduler := NewScheduler(credentialRepo, reconciler)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewImportCredentialTask(cred, reconciler, credentialRepo, importInterval))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
