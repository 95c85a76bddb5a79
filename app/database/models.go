package database

import (
	"time"
)

// UserCredential holds one platform user's tokens for one social network.
type UserCredential struct {
	ID              string // Database UUID
	UserID          int64  // Platform user owning the credential
	SocialNetworkID int64
	AccessToken     string
	RefreshToken    string
	MemberID        string // Vendor-side member identifier
	Enabled         bool
	NextImportAt    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Event is a calendar event mirrored from a vendor into the local store.
// Keyed by (user_id, social_network_id, vendor_event_id).
type Event struct {
	ID              string // Database UUID
	UserID          int64
	SocialNetworkID int64
	VendorEventID   string
	Title           string
	Description     string
	URL             string
	GroupID         string
	GroupURLName    string
	StartAt         *time.Time
	EndAt           *time.Time
	VenueName       string
	Address         string
	City            string
	State           string
	Zip             string
	Country         string
	MaxAttendees    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CandidateSource records where a candidate came from (e.g. "RSVP to event X").
// Keyed by (description, notes).
type CandidateSource struct {
	ID          string
	Description string
	Notes       string
	DomainID    int64
	CreatedAt   time.Time
}

// Candidate is a person record shared across the platform.
// Keyed by (first_name, last_name, owner_user_id, source_id, source_product_id).
type Candidate struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	OwnerUserID     int64
	SourceID        string
	SourceProductID int64
	Status          string
	AddedAt         *time.Time
}

// RSVP is a normalized response record tied to a candidate and event.
// Keyed by (vendor_rsvp_id, candidate_id, social_network_id, event_id).
type RSVP struct {
	ID              string
	VendorRSVPID    string
	CandidateID     string
	EventID         string
	SocialNetworkID int64
	Status          string
	RespondedAt     *time.Time
	CreatedAt       time.Time
}

// CandidateEventRSVP links a candidate, an event, and an RSVP.
type CandidateEventRSVP struct {
	ID          string
	CandidateID string
	EventID     string
	RSVPID      string
	CreatedAt   time.Time
}

// Activity is a user-facing feed entry.
// Keyed by (user_id, type, source_table, source_id, params).
type Activity struct {
	ID          string
	UserID      int64
	Type        int
	SourceTable string
	SourceID    string
	Params      string // JSON payload rendered by the activity feed
	AddedAt     time.Time
}
