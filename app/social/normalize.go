package social

import (
	"errors"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/talentbase/eventsync/app/database"
)

// normalizeMeetupEvent maps one vendor event into the platform's canonical
// event record. Events without venue data cannot be imported and produce an
// error so the caller can log and drop them; nothing here panics on a
// malformed event.
func normalizeMeetupEvent(session Session, raw meetupEvent) (database.Event, error) {
	if raw.ID == "" {
		return database.Event{}, errors.New("event has no vendor id")
	}
	if raw.Venue == nil {
		return database.Event{}, errors.New("event has no venue")
	}

	start := time.UnixMilli(raw.Time).UTC()

	event := database.Event{
		UserID:          session.UserID,
		SocialNetworkID: session.SocialNetworkID,
		VendorEventID:   raw.ID,
		Title:           raw.Name,
		Description:     raw.Description,
		URL:             raw.EventURL,
		StartAt:         &start,
		VenueName:       raw.Venue.Name,
		Address:         raw.Venue.Address1,
		City:            cases.Title(language.English).String(raw.Venue.City),
		State:           raw.Venue.State, // vendor-supplied, best effort
		Zip:             raw.Venue.Zip,
		Country:         raw.Venue.Country,
		MaxAttendees:    raw.RSVPLimit,
	}

	// End time is derivable only when the vendor supplies a duration.
	if raw.Duration > 0 {
		end := start.Add(time.Duration(raw.Duration) * time.Millisecond)
		event.EndAt = &end
	}

	if raw.Group != nil {
		if raw.Group.ID != 0 {
			event.GroupID = strconv.FormatInt(raw.Group.ID, 10)
		}
		event.GroupURLName = raw.Group.URLName
	}

	return event, nil
}
