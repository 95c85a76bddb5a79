package importer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/talentbase/eventsync/app/database"
)

// Writer persists one attendee through the fixed upsert sequence:
// source -> candidate -> rsvp -> candidate_event_rsvp -> activity.
// Every stage is a natural-key upsert, so replaying identical vendor data
// resolves to the same row ids instead of creating duplicates.
type Writer struct {
	candidateRepo database.CandidateRepository
	rsvpRepo      database.RSVPRepository
	activityRepo  database.ActivityRepository
}

func NewWriter(candidateRepo database.CandidateRepository, rsvpRepo database.RSVPRepository,
	activityRepo database.ActivityRepository) *Writer {
	return &Writer{
		candidateRepo: candidateRepo,
		rsvpRepo:      rsvpRepo,
		activityRepo:  activityRepo,
	}
}

// Stage persists one piece of an attendee and returns the attendee with the
// resulting id attached.
type Stage func(Attendee) (Attendee, error)

// Stages returns the upsert chain in execution order.
func (w *Writer) Stages() []Stage {
	return []Stage{
		w.SaveSource,
		w.SaveCandidate,
		w.SaveRSVP,
		w.SaveEventRSVP,
		w.SaveActivity,
	}
}

// Run threads an attendee through the full chain. A stage error aborts the
// remaining stages for this attendee; rows written by earlier stages stay
// committed (there is no transaction spanning the chain).
func (w *Writer) Run(attendee Attendee) (Attendee, error) {
	var err error
	for _, stage := range w.Stages() {
		attendee, err = stage(attendee)
		if err != nil {
			return attendee, err
		}
	}
	return attendee, nil
}

// SaveSource upserts the provenance record describing where this candidate
// came from. The description names only the event: source_id is part of the
// candidate natural key, so a response change ("yes" to "no") must resolve to
// the same source and update the candidate instead of duplicating it.
func (w *Writer) SaveSource(attendee Attendee) (Attendee, error) {
	source := database.CandidateSource{
		Description: fmt.Sprintf("RSVP'd to %s", attendee.Event.Title),
		Notes:       fmt.Sprintf("Member of %s", attendee.Event.GroupURLName),
	}

	id, err := w.candidateRepo.UpsertSource(source)
	if err != nil {
		return attendee, fmt.Errorf("failed to save attendee source: %w", err)
	}

	attendee.SourceID = id
	return attendee, nil
}

// SaveCandidate upserts the attendee as a platform candidate. A re-imported
// attendee with the same key fields updates added_at in place.
func (w *Writer) SaveCandidate(attendee Attendee) (Attendee, error) {
	addedAt := attendee.RSVP.RespondedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}

	candidate := database.Candidate{
		FirstName:       attendee.FirstName,
		LastName:        attendee.LastName,
		Email:           attendee.Email,
		OwnerUserID:     attendee.UserID,
		SourceID:        attendee.SourceID,
		SourceProductID: attendee.ProductID,
		AddedAt:         &addedAt,
	}

	id, err := w.candidateRepo.UpsertCandidate(candidate)
	if err != nil {
		return attendee, fmt.Errorf("failed to save attendee as candidate: %w", err)
	}

	attendee.CandidateID = id
	return attendee, nil
}

// SaveRSVP upserts the normalized response record.
func (w *Writer) SaveRSVP(attendee Attendee) (Attendee, error) {
	respondedAt := attendee.RSVP.RespondedAt

	rsvp := database.RSVP{
		VendorRSVPID:    attendee.RSVP.VendorRSVPID,
		CandidateID:     attendee.CandidateID,
		EventID:         attendee.Event.ID,
		SocialNetworkID: attendee.NetworkID,
		Status:          attendee.RSVP.Response,
	}
	if !respondedAt.IsZero() {
		rsvp.RespondedAt = &respondedAt
	}

	id, err := w.rsvpRepo.UpsertRSVP(rsvp)
	if err != nil {
		return attendee, fmt.Errorf("failed to save rsvp: %w", err)
	}

	attendee.RSVPID = id
	return attendee, nil
}

// SaveEventRSVP upserts the junction row linking candidate, event, and RSVP.
func (w *Writer) SaveEventRSVP(attendee Attendee) (Attendee, error) {
	link := database.CandidateEventRSVP{
		CandidateID: attendee.CandidateID,
		EventID:     attendee.Event.ID,
		RSVPID:      attendee.RSVPID,
	}

	id, err := w.candidateRepo.UpsertEventRSVP(link)
	if err != nil {
		return attendee, fmt.Errorf("failed to save candidate event rsvp: %w", err)
	}

	attendee.JunctionID = id
	return attendee, nil
}

// activityParams is the JSON payload rendered by the activity feed.
type activityParams struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Response   string `json:"response"`
	EventTitle string `json:"eventTitle"`
	Creator    string `json:"creator"`
}

// SaveActivity upserts the feed entry announcing the RSVP.
func (w *Writer) SaveActivity(attendee Attendee) (Attendee, error) {
	params, err := json.Marshal(activityParams{
		FirstName:  attendee.FirstName,
		LastName:   attendee.LastName,
		Response:   attendee.RSVP.Response,
		EventTitle: attendee.Event.Title,
		Creator:    attendee.Event.GroupURLName,
	})
	if err != nil {
		return attendee, fmt.Errorf("failed to marshal activity params: %w", err)
	}

	activity := database.Activity{
		UserID:      attendee.UserID,
		Type:        ActivityTypeRSVPEvent,
		SourceTable: "rsvps",
		SourceID:    attendee.RSVPID,
		Params:      string(params),
	}

	id, err := w.activityRepo.UpsertActivity(activity)
	if err != nil {
		return attendee, fmt.Errorf("failed to save rsvp activity: %w", err)
	}

	attendee.ActivityID = id
	return attendee, nil
}
