package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/talentbase/eventsync/app/database"
)

func TestNewTaskDefaults(t *testing.T) {
	task := NewTask(TaskTypeImportCredential, 7)

	if task.GetID() == "" {
		t.Error("Expected task to get a generated id")
	}
	if task.GetType() != TaskTypeImportCredential {
		t.Errorf("Expected type %s, got %s", TaskTypeImportCredential, task.GetType())
	}
	if task.GetUserID() != 7 {
		t.Errorf("Expected user id 7, got %d", task.GetUserID())
	}
	if task.GetRetryCount() != 0 {
		t.Errorf("Expected retry count 0, got %d", task.GetRetryCount())
	}
	if task.GetMaxRetries() != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, task.GetMaxRetries())
	}

	other := NewTask(TaskTypeImportCredential, 7)
	if other.GetID() == task.GetID() {
		t.Error("Expected each task to get a unique id")
	}
}

func TestTaskRetryCounting(t *testing.T) {
	task := NewTask(TaskTypeImportCredential, 7)

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected task to be retryable at retry count %d", task.GetRetryCount())
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Errorf("Expected task to be exhausted after %d retries", DefaultMaxRetries)
	}
}

func TestTaskDuration(t *testing.T) {
	task := NewTask(TaskTypeImportCredential, 7)

	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before the task starts")
	}

	task.Start()
	time.Sleep(time.Millisecond)

	if task.GetDuration() <= 0 {
		t.Error("Expected positive duration after the task starts")
	}
}

func TestImportCredentialTaskHonorsCanceledContext(t *testing.T) {
	cred := database.UserCredential{ID: "cred-1", UserID: 7}
	task := NewImportCredentialTask(cred, nil, nil, time.Hour)

	if task.GetType() != TaskTypeImportCredential {
		t.Errorf("Expected type %s, got %s", TaskTypeImportCredential, task.GetType())
	}
	if task.GetUserID() != 7 {
		t.Errorf("Expected user id 7, got %d", task.GetUserID())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := task.Execute(ctx); err == nil {
		t.Error("Expected canceled context to abort the task")
	}
}
