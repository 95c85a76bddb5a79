package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

var _ CandidateRepository = (*CandidateRepositoryImpl)(nil)

// CandidateRepositoryImpl handles database operations for candidates, their
// provenance records, and the candidate/event/RSVP junction table.
type CandidateRepositoryImpl struct {
	db *DB
}

func NewCandidateRepository(db *DB) *CandidateRepositoryImpl {
	return &CandidateRepositoryImpl{db: db}
}

// GetSourceByKey retrieves a candidate source by its natural key.
func (r *CandidateRepositoryImpl) GetSourceByKey(description, notes string) (*CandidateSource, error) {
	var source CandidateSource
	err := r.db.QueryRow(`
		SELECT id, description, notes, domain_id, created_at
		FROM candidate_sources
		WHERE description = ? AND notes = ?
	`, description, notes).Scan(
		&source.ID, &source.Description, &source.Notes, &source.DomainID, &source.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate source: %w", err)
	}

	return &source, nil
}

func (r *CandidateRepositoryImpl) UpsertSource(source CandidateSource) (string, error) {
	existing, err := r.GetSourceByKey(source.Description, source.Notes)
	if err != nil {
		return "", fmt.Errorf("failed to check existing candidate source: %w", err)
	}

	if existing != nil {
		_, err = r.db.Exec(`
			UPDATE candidate_sources
			SET domain_id = ?
			WHERE id = ?
		`, source.DomainID, existing.ID)
		if err != nil {
			return "", fmt.Errorf("failed to update candidate source: %w", err)
		}
		return existing.ID, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO candidate_sources (id, description, notes, domain_id)
		VALUES (?, ?, ?, ?)
	`, id, source.Description, source.Notes, source.DomainID)
	if err != nil {
		return "", fmt.Errorf("failed to insert candidate source: %w", err)
	}

	return id, nil
}

// GetCandidateByKey retrieves a candidate by its natural key.
func (r *CandidateRepositoryImpl) GetCandidateByKey(firstName, lastName string, ownerUserID int64, sourceID string, sourceProductID int64) (*Candidate, error) {
	var candidate Candidate
	err := r.db.QueryRow(`
		SELECT id, first_name, last_name, email, owner_user_id, source_id, source_product_id, status, added_at
		FROM candidates
		WHERE first_name = ? AND last_name = ? AND owner_user_id = ? AND source_id = ? AND source_product_id = ?
	`, firstName, lastName, ownerUserID, sourceID, sourceProductID).Scan(
		&candidate.ID, &candidate.FirstName, &candidate.LastName, &candidate.Email,
		&candidate.OwnerUserID, &candidate.SourceID, &candidate.SourceProductID,
		&candidate.Status, &candidate.AddedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	return &candidate, nil
}

// UpsertCandidate inserts a candidate or updates the mutable fields (email,
// status, added_at) of the row matching the natural key.
func (r *CandidateRepositoryImpl) UpsertCandidate(candidate Candidate) (string, error) {
	existing, err := r.GetCandidateByKey(candidate.FirstName, candidate.LastName,
		candidate.OwnerUserID, candidate.SourceID, candidate.SourceProductID)
	if err != nil {
		return "", fmt.Errorf("failed to check existing candidate: %w", err)
	}

	if existing != nil {
		_, err = r.db.Exec(`
			UPDATE candidates
			SET email = ?, status = ?, added_at = ?
			WHERE id = ?
		`, candidate.Email, candidate.Status, candidate.AddedAt, existing.ID)
		if err != nil {
			return "", fmt.Errorf("failed to update candidate: %w", err)
		}
		return existing.ID, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO candidates (id, first_name, last_name, email, owner_user_id, source_id, source_product_id, status, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, candidate.FirstName, candidate.LastName, candidate.Email, candidate.OwnerUserID,
		candidate.SourceID, candidate.SourceProductID, candidate.Status, candidate.AddedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert candidate: %w", err)
	}

	return id, nil
}

func (r *CandidateRepositoryImpl) GetCandidateCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM candidates").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get candidate count: %w", err)
	}
	return count, nil
}

// GetEventRSVPByKey retrieves a candidate/event/RSVP link by its three ids.
func (r *CandidateRepositoryImpl) GetEventRSVPByKey(candidateID, eventID, rsvpID string) (*CandidateEventRSVP, error) {
	var link CandidateEventRSVP
	err := r.db.QueryRow(`
		SELECT id, candidate_id, event_id, rsvp_id, created_at
		FROM candidate_event_rsvps
		WHERE candidate_id = ? AND event_id = ? AND rsvp_id = ?
	`, candidateID, eventID, rsvpID).Scan(
		&link.ID, &link.CandidateID, &link.EventID, &link.RSVPID, &link.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate event rsvp: %w", err)
	}

	return &link, nil
}

func (r *CandidateRepositoryImpl) UpsertEventRSVP(link CandidateEventRSVP) (string, error) {
	existing, err := r.GetEventRSVPByKey(link.CandidateID, link.EventID, link.RSVPID)
	if err != nil {
		return "", fmt.Errorf("failed to check existing candidate event rsvp: %w", err)
	}

	if existing != nil {
		return existing.ID, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO candidate_event_rsvps (id, candidate_id, event_id, rsvp_id)
		VALUES (?, ?, ?, ?)
	`, id, link.CandidateID, link.EventID, link.RSVPID)
	if err != nil {
		return "", fmt.Errorf("failed to insert candidate event rsvp: %w", err)
	}

	return id, nil
}
