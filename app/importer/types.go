package importer

import (
	"context"
	"errors"
	"time"

	"github.com/talentbase/eventsync/app/database"
)

// Social network ids match the rows seeded by the initial migration.
const (
	SocialNetworkMeetup     int64 = 13
	SocialNetworkEventbrite int64 = 18
)

// Source product ids identify which importer created a candidate.
const (
	SourceProductMeetup     int64 = 2
	SourceProductEventbrite int64 = 3
)

// ActivityTypeRSVPEvent is the activity feed type code for "member RSVP'd to
// an event".
const ActivityTypeRSVPEvent = 23

// ErrUnauthorized is returned by Client.FetchRSVPs when the vendor rejects
// the credential mid-run (HTTP 401). It is distinct from an empty result: the
// reconciler stops fetching RSVPs for the remaining events of that credential
// but still moves on to the next credential.
var ErrUnauthorized = errors.New("vendor rejected credentials")

// RSVP is one vendor-side response to an event invitation, before any
// attendee data has been fetched.
type RSVP struct {
	VendorRSVPID  string
	VendorEventID string
	MemberID      string
	Response      string // "yes", "no", "waitlist"
	RespondedAt   time.Time
}

// Attendee carries one RSVP's data through the upsert chain. Stages never
// mutate their input; each returns a copy with its own id filled in, so a
// stage's output states exactly what has been persisted so far.
type Attendee struct {
	FirstName   string
	LastName    string
	Email       string
	MemberID    string
	BadgeImage  string
	RSVP        RSVP
	Event       database.Event
	UserID      int64
	NetworkID   int64
	ProductID   int64 // source product id attached before the chain runs
	SourceID    string
	CandidateID string
	RSVPID      string
	JunctionID  string
	ActivityID  string
}

// Client is one vendor's API adapter. Implementations are selected per
// credential; all methods operate within the session the client was built
// with.
type Client interface {
	Vendor() string
	FetchEvents(ctx context.Context) ([]database.Event, error)
	FetchRSVPs(ctx context.Context, event database.Event) ([]RSVP, error)
	FetchAttendee(ctx context.Context, rsvp RSVP) (Attendee, error)
	RefreshToken(ctx context.Context) error
}

// ClientFactory builds a vendor client for one validated credential.
type ClientFactory func(cred database.UserCredential) (Client, error)
