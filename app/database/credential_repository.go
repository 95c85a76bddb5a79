package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ CredentialRepository = (*CredentialRepositoryImpl)(nil)

// CredentialRepositoryImpl handles database operations for user credentials
type CredentialRepositoryImpl struct {
	db *DB
}

func NewCredentialRepository(db *DB) *CredentialRepositoryImpl {
	return &CredentialRepositoryImpl{db: db}
}

const credentialColumns = `id, user_id, social_network_id, access_token, refresh_token,
	       member_id, enabled, next_import_at, created_at, updated_at`

func (r *CredentialRepositoryImpl) scanCredential(row interface{ Scan(...any) error }) (*UserCredential, error) {
	var cred UserCredential
	err := row.Scan(
		&cred.ID, &cred.UserID, &cred.SocialNetworkID, &cred.AccessToken, &cred.RefreshToken,
		&cred.MemberID, &cred.Enabled, &cred.NextImportAt, &cred.CreatedAt, &cred.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *CredentialRepositoryImpl) GetCredential(id string) (*UserCredential, error) {
	cred, err := r.scanCredential(r.db.QueryRow(`
		SELECT `+credentialColumns+`
		FROM user_credentials
		WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	return cred, nil
}

// GetCredentials returns credentials for a social network, optionally filtered
// to a single platform user (userID = 0 means all users).
func (r *CredentialRepositoryImpl) GetCredentials(socialNetworkID int64, userID int64) ([]UserCredential, error) {
	query := `
		SELECT ` + credentialColumns + `
		FROM user_credentials
		WHERE social_network_id = ? AND enabled = 1`
	args := []any{socialNetworkID}

	if userID != 0 {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY user_id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	defer rows.Close()

	var creds []UserCredential
	for rows.Next() {
		cred, err := r.scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential row: %w", err)
		}
		creds = append(creds, *cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credential rows: %w", err)
	}

	return creds, nil
}

// GetCredentialsDueForImport returns enabled credentials whose next import
// time has passed (or was never set).
func (r *CredentialRepositoryImpl) GetCredentialsDueForImport(socialNetworkID int64) ([]UserCredential, error) {
	rows, err := r.db.Query(`
		SELECT `+credentialColumns+`
		FROM user_credentials
		WHERE social_network_id = ? AND enabled = 1
		  AND (next_import_at IS NULL OR next_import_at <= ?)
		ORDER BY user_id
		LIMIT 50
	`, socialNetworkID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials due for import: %w", err)
	}
	defer rows.Close()

	var creds []UserCredential
	for rows.Next() {
		cred, err := r.scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential row: %w", err)
		}
		creds = append(creds, *cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credential rows: %w", err)
	}

	return creds, nil
}

// UpsertCredential inserts or updates a credential keyed by (user_id, social_network_id).
func (r *CredentialRepositoryImpl) UpsertCredential(cred UserCredential) (string, error) {
	var existingID string
	err := r.db.QueryRow(`
		SELECT id FROM user_credentials
		WHERE user_id = ? AND social_network_id = ?
	`, cred.UserID, cred.SocialNetworkID).Scan(&existingID)

	if err == sql.ErrNoRows {
		id := uuid.NewString()
		_, err = r.db.Exec(`
			INSERT INTO user_credentials (id, user_id, social_network_id, access_token, refresh_token, member_id, enabled)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, cred.UserID, cred.SocialNetworkID, cred.AccessToken, cred.RefreshToken, cred.MemberID, cred.Enabled)
		if err != nil {
			return "", fmt.Errorf("failed to insert credential: %w", err)
		}
		return id, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check existing credential: %w", err)
	}

	_, err = r.db.Exec(`
		UPDATE user_credentials
		SET access_token = ?, refresh_token = ?, member_id = ?, enabled = ?, updated_at = ?
		WHERE id = ?
	`, cred.AccessToken, cred.RefreshToken, cred.MemberID, cred.Enabled, time.Now().UTC(), existingID)
	if err != nil {
		return "", fmt.Errorf("failed to update credential: %w", err)
	}

	return existingID, nil
}

// UpdateAccessToken persists freshly refreshed vendor tokens.
func (r *CredentialRepositoryImpl) UpdateAccessToken(id string, accessToken, refreshToken string) error {
	_, err := r.db.Exec(`
		UPDATE user_credentials
		SET access_token = ?, refresh_token = ?, updated_at = ?
		WHERE id = ?
	`, accessToken, refreshToken, time.Now().UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to update access token: %w", err)
	}

	return nil
}

func (r *CredentialRepositoryImpl) UpdateNextImport(id string, nextImport time.Time) error {
	_, err := r.db.Exec(`
		UPDATE user_credentials
		SET next_import_at = ?, updated_at = ?
		WHERE id = ?
	`, nextImport, time.Now().UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to update next import time: %w", err)
	}

	return nil
}

func (r *CredentialRepositoryImpl) GetCredentialCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM user_credentials").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get credential count: %w", err)
	}
	return count, nil
}
