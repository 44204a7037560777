package model

// TaskStatus represents the status of a patch task
type TaskStatus string

const (
	// TaskStatusPending means the task is queued but not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusChecking means the remote timestamp is being probed
	TaskStatusChecking TaskStatus = "Checking"

	// TaskStatusUpToDate means the local file is already current
	TaskStatusUpToDate TaskStatus = "UpToDate"

	// TaskStatusDownloading means the archive download is in progress
	TaskStatusDownloading TaskStatus = "Downloading"

	// TaskStatusExtracting means the downloaded archive is being unpacked
	TaskStatusExtracting TaskStatus = "Extracting"

	// TaskStatusStopped means the task was cancelled
	TaskStatusStopped TaskStatus = "Stopped"

	// TaskStatusCompleted means the patch was applied successfully
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusError means the task failed with an error
	TaskStatusError TaskStatus = "Error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is in an active state
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusChecking || ts == TaskStatusDownloading ||
		ts == TaskStatusExtracting
}

// IsFinished returns true if the task reached a terminal state
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusUpToDate || ts == TaskStatusCompleted ||
		ts == TaskStatusStopped || ts == TaskStatusError
}
