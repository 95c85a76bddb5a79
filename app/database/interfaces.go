package database

import (
	"time"
)

type CredentialRepository interface {
	GetCredential(id string) (*UserCredential, error)
	GetCredentials(socialNetworkID int64, userID int64) ([]UserCredential, error)
	GetCredentialsDueForImport(socialNetworkID int64) ([]UserCredential, error)
	GetCredentialCount() (int, error)

	UpsertCredential(cred UserCredential) (string, error)
	UpdateAccessToken(id string, accessToken, refreshToken string) error
	UpdateNextImport(id string, nextImport time.Time) error
}

type EventRepository interface {
	GetEventByVendorID(userID, socialNetworkID int64, vendorEventID string) (*Event, error)
	GetEventsSince(userID, socialNetworkID int64, since time.Time) ([]Event, error)
	GetEventCount() (int, error)

	UpsertEvent(event Event) (string, error)
}

type CandidateRepository interface {
	GetSourceByKey(description, notes string) (*CandidateSource, error)
	UpsertSource(source CandidateSource) (string, error)

	GetCandidateByKey(firstName, lastName string, ownerUserID int64, sourceID string, sourceProductID int64) (*Candidate, error)
	UpsertCandidate(candidate Candidate) (string, error)
	GetCandidateCount() (int, error)

	GetEventRSVPByKey(candidateID, eventID, rsvpID string) (*CandidateEventRSVP, error)
	UpsertEventRSVP(link CandidateEventRSVP) (string, error)
}

type RSVPRepository interface {
	GetRSVPByKey(vendorRSVPID, candidateID string, socialNetworkID int64, eventID string) (*RSVP, error)
	GetRSVPCount() (int, error)

	UpsertRSVP(rsvp RSVP) (string, error)
}

type ActivityRepository interface {
	GetActivityByKey(userID int64, activityType int, sourceTable, sourceID, params string) (*Activity, error)
	GetActivityCount() (int, error)

	UpsertActivity(activity Activity) (string, error)
}
