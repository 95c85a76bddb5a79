package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talentbase/eventsync/app/database"
	"github.com/talentbase/eventsync/app/importer"
)

// ImportCredentialTask runs one credential's full import pass. Vendor-side
// and per-record failures are handled (logged and skipped) inside the
// reconciler; an error here means the local database failed, which is worth
// a task retry.
type ImportCredentialTask struct {
	Task
	Credential     database.UserCredential
	reconciler     *importer.Reconciler
	credentialRepo database.CredentialRepository
	importInterval time.Duration
}

func NewImportCredentialTask(cred database.UserCredential, reconciler *importer.Reconciler,
	credentialRepo database.CredentialRepository, importInterval time.Duration) *ImportCredentialTask {
	return &ImportCredentialTask{
		Task:           NewTask(TaskTypeImportCredential, cred.UserID),
		Credential:     cred,
		reconciler:     reconciler,
		credentialRepo: credentialRepo,
		importInterval: importInterval,
	}
}

func (t *ImportCredentialTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.reconciler.RunCredential(ctx, t.Credential); err != nil {
		return fmt.Errorf("credential import pass failed: %w", err)
	}

	nextImport := time.Now().UTC().Add(t.importInterval)
	if err := t.credentialRepo.UpdateNextImport(t.Credential.ID, nextImport); err != nil {
		return fmt.Errorf("failed to schedule next import: %w", err)
	}

	slog.Info("Task completed",
		"type", "ImportCredential",
		"user_id", t.Credential.UserID,
		"social_network_id", t.Credential.SocialNetworkID,
		"duration", t.GetDuration(),
		"next_import_at", nextImport)

	return nil
}
