package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

var _ ActivityRepository = (*ActivityRepositoryImpl)(nil)

// ActivityRepositoryImpl handles database operations for activity feed entries
type ActivityRepositoryImpl struct {
	db *DB
}

func NewActivityRepository(db *DB) *ActivityRepositoryImpl {
	return &ActivityRepositoryImpl{db: db}
}

// GetActivityByKey retrieves an activity by its natural key.
func (r *ActivityRepositoryImpl) GetActivityByKey(userID int64, activityType int, sourceTable, sourceID, params string) (*Activity, error) {
	var activity Activity
	err := r.db.QueryRow(`
		SELECT id, user_id, type, source_table, source_id, params, added_at
		FROM activities
		WHERE user_id = ? AND type = ? AND source_table = ? AND source_id = ? AND params = ?
	`, userID, activityType, sourceTable, sourceID, params).Scan(
		&activity.ID, &activity.UserID, &activity.Type, &activity.SourceTable,
		&activity.SourceID, &activity.Params, &activity.AddedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	return &activity, nil
}

// UpsertActivity inserts an activity unless an identical one already exists.
// Activities are append-only; a matching row is simply reused.
func (r *ActivityRepositoryImpl) UpsertActivity(activity Activity) (string, error) {
	existing, err := r.GetActivityByKey(activity.UserID, activity.Type,
		activity.SourceTable, activity.SourceID, activity.Params)
	if err != nil {
		return "", fmt.Errorf("failed to check existing activity: %w", err)
	}

	if existing != nil {
		return existing.ID, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO activities (id, user_id, type, source_table, source_id, params)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, activity.UserID, activity.Type, activity.SourceTable, activity.SourceID, activity.Params)
	if err != nil {
		return "", fmt.Errorf("failed to insert activity: %w", err)
	}

	return id, nil
}

func (r *ActivityRepositoryImpl) GetActivityCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM activities").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get activity count: %w", err)
	}
	return count, nil
}
