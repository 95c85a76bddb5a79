package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ EventRepository = (*EventRepositoryImpl)(nil)

// EventRepositoryImpl handles database operations for imported events
type EventRepositoryImpl struct {
	db *DB
}

func NewEventRepository(db *DB) *EventRepositoryImpl {
	return &EventRepositoryImpl{db: db}
}

const eventColumns = `id, user_id, social_network_id, vendor_event_id, title, description, url,
	       group_id, group_url_name, start_at, end_at, venue_name, address, city, state, zip,
	       country, max_attendees, created_at, updated_at`

func (r *EventRepositoryImpl) scanEvent(row interface{ Scan(...any) error }) (*Event, error) {
	var event Event
	err := row.Scan(
		&event.ID, &event.UserID, &event.SocialNetworkID, &event.VendorEventID,
		&event.Title, &event.Description, &event.URL,
		&event.GroupID, &event.GroupURLName, &event.StartAt, &event.EndAt,
		&event.VenueName, &event.Address, &event.City, &event.State, &event.Zip,
		&event.Country, &event.MaxAttendees, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventByVendorID retrieves an event by its natural key.
func (r *EventRepositoryImpl) GetEventByVendorID(userID, socialNetworkID int64, vendorEventID string) (*Event, error) {
	event, err := r.scanEvent(r.db.QueryRow(`
		SELECT `+eventColumns+`
		FROM events
		WHERE user_id = ? AND social_network_id = ? AND vendor_event_id = ?
	`, userID, socialNetworkID, vendorEventID))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event by vendor ID: %w", err)
	}

	return event, nil
}

// GetEventsSince returns a user's stored events starting at or after the given time.
func (r *EventRepositoryImpl) GetEventsSince(userID, socialNetworkID int64, since time.Time) ([]Event, error) {
	rows, err := r.db.Query(`
		SELECT `+eventColumns+`
		FROM events
		WHERE user_id = ? AND social_network_id = ? AND start_at >= ?
		ORDER BY start_at
	`, userID, socialNetworkID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// UpsertEvent inserts a new event or overwrites the mutable fields of an
// existing row found by (user_id, social_network_id, vendor_event_id). The
// vendor's current data always wins; there is no timestamp-based conflict
// resolution.
func (r *EventRepositoryImpl) UpsertEvent(event Event) (string, error) {
	existing, err := r.GetEventByVendorID(event.UserID, event.SocialNetworkID, event.VendorEventID)
	if err != nil {
		return "", fmt.Errorf("failed to check existing event: %w", err)
	}

	if existing != nil {
		_, err = r.db.Exec(`
			UPDATE events
			SET title = ?, description = ?, url = ?, group_id = ?, group_url_name = ?,
			    start_at = ?, end_at = ?, venue_name = ?, address = ?, city = ?,
			    state = ?, zip = ?, country = ?, max_attendees = ?, updated_at = ?
			WHERE id = ?
		`, event.Title, event.Description, event.URL, event.GroupID, event.GroupURLName,
			event.StartAt, event.EndAt, event.VenueName, event.Address, event.City,
			event.State, event.Zip, event.Country, event.MaxAttendees, time.Now().UTC(),
			existing.ID)
		if err != nil {
			return "", fmt.Errorf("failed to update event: %w", err)
		}
		return existing.ID, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO events (id, user_id, social_network_id, vendor_event_id, title, description,
		                    url, group_id, group_url_name, start_at, end_at, venue_name, address,
		                    city, state, zip, country, max_attendees)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, event.UserID, event.SocialNetworkID, event.VendorEventID, event.Title, event.Description,
		event.URL, event.GroupID, event.GroupURLName, event.StartAt, event.EndAt, event.VenueName,
		event.Address, event.City, event.State, event.Zip, event.Country, event.MaxAttendees)
	if err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}

	return id, nil
}

func (r *EventRepositoryImpl) GetEventCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", err)
	}
	return count, nil
}
