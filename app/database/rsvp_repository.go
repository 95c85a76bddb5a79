package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

var _ RSVPRepository = (*RSVPRepositoryImpl)(nil)

// RSVPRepositoryImpl handles database operations for RSVP records
type RSVPRepositoryImpl struct {
	db *DB
}

func NewRSVPRepository(db *DB) *RSVPRepositoryImpl {
	return &RSVPRepositoryImpl{db: db}
}

// GetRSVPByKey retrieves an RSVP by its natural key.
func (r *RSVPRepositoryImpl) GetRSVPByKey(vendorRSVPID, candidateID string, socialNetworkID int64, eventID string) (*RSVP, error) {
	var rsvp RSVP
	err := r.db.QueryRow(`
		SELECT id, vendor_rsvp_id, candidate_id, event_id, social_network_id, status, responded_at, created_at
		FROM rsvps
		WHERE vendor_rsvp_id = ? AND candidate_id = ? AND social_network_id = ? AND event_id = ?
	`, vendorRSVPID, candidateID, socialNetworkID, eventID).Scan(
		&rsvp.ID, &rsvp.VendorRSVPID, &rsvp.CandidateID, &rsvp.EventID,
		&rsvp.SocialNetworkID, &rsvp.Status, &rsvp.RespondedAt, &rsvp.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rsvp: %w", err)
	}

	return &rsvp, nil
}

// UpsertRSVP inserts an RSVP or overwrites the status and response time of
// the row matching the natural key.
func (r *RSVPRepositoryImpl) UpsertRSVP(rsvp RSVP) (string, error) {
	existing, err := r.GetRSVPByKey(rsvp.VendorRSVPID, rsvp.CandidateID, rsvp.SocialNetworkID, rsvp.EventID)
	if err != nil {
		return "", fmt.Errorf("failed to check existing rsvp: %w", err)
	}

	if existing != nil {
		_, err = r.db.Exec(`
			UPDATE rsvps
			SET status = ?, responded_at = ?
			WHERE id = ?
		`, rsvp.Status, rsvp.RespondedAt, existing.ID)
		if err != nil {
			return "", fmt.Errorf("failed to update rsvp: %w", err)
		}
		return existing.ID, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO rsvps (id, vendor_rsvp_id, candidate_id, event_id, social_network_id, status, responded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, rsvp.VendorRSVPID, rsvp.CandidateID, rsvp.EventID, rsvp.SocialNetworkID,
		rsvp.Status, rsvp.RespondedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert rsvp: %w", err)
	}

	return id, nil
}

func (r *RSVPRepositoryImpl) GetRSVPCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM rsvps").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get rsvp count: %w", err)
	}
	return count, nil
}
