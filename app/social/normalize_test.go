package social

import (
	"testing"
	"time"
)

func testSession() Session {
	return Session{
		CredentialID:    "cred-1",
		UserID:          7,
		SocialNetworkID: 13,
		MemberID:        "99",
		AccessToken:     "token",
	}
}

func TestNormalizeMeetupEvent(t *testing.T) {
	raw := meetupEvent{
		ID:          "223588917",
		Name:        "Go Meetup",
		Description: "Monthly Go talks",
		EventURL:    "https://www.meetup.com/golang-sf/events/223588917/",
		Time:        time.Date(2017, 3, 15, 19, 0, 0, 0, time.UTC).UnixMilli(),
		Duration:    2 * 60 * 60 * 1000,
		RSVPLimit:   120,
		Venue: &meetupVenue{
			Name:     "The Loft",
			Address1: "123 Market St",
			City:     "san francisco",
			State:    "CA",
			Zip:      "94105",
			Country:  "us",
		},
		Group: &meetupGroup{ID: 555, URLName: "golang-sf"},
	}

	event, err := normalizeMeetupEvent(testSession(), raw)
	if err != nil {
		t.Fatal(err)
	}

	if event.UserID != 7 {
		t.Errorf("Expected user id 7, got %d", event.UserID)
	}
	if event.SocialNetworkID != 13 {
		t.Errorf("Expected social network id 13, got %d", event.SocialNetworkID)
	}
	if event.VendorEventID != "223588917" {
		t.Errorf("Expected vendor event id '223588917', got '%s'", event.VendorEventID)
	}
	if event.Title != "Go Meetup" {
		t.Errorf("Expected title 'Go Meetup', got '%s'", event.Title)
	}

	wantStart := time.Date(2017, 3, 15, 19, 0, 0, 0, time.UTC)
	if event.StartAt == nil || !event.StartAt.Equal(wantStart) {
		t.Errorf("Expected start %v, got %v", wantStart, event.StartAt)
	}

	wantEnd := wantStart.Add(2 * time.Hour)
	if event.EndAt == nil || !event.EndAt.Equal(wantEnd) {
		t.Errorf("Expected end %v, got %v", wantEnd, event.EndAt)
	}

	if event.City != "San Francisco" {
		t.Errorf("Expected title-cased city 'San Francisco', got '%s'", event.City)
	}
	if event.State != "CA" {
		t.Errorf("Expected state 'CA', got '%s'", event.State)
	}
	if event.GroupID != "555" {
		t.Errorf("Expected group id '555', got '%s'", event.GroupID)
	}
	if event.GroupURLName != "golang-sf" {
		t.Errorf("Expected group url name 'golang-sf', got '%s'", event.GroupURLName)
	}
	if event.MaxAttendees != 120 {
		t.Errorf("Expected max attendees 120, got %d", event.MaxAttendees)
	}
}

func TestNormalizeMeetupEventWithoutVenue(t *testing.T) {
	raw := meetupEvent{
		ID:   "223588917",
		Name: "Go Meetup",
		Time: time.Now().UnixMilli(),
	}

	if _, err := normalizeMeetupEvent(testSession(), raw); err == nil {
		t.Error("Expected venue-less event to be rejected")
	}
}

func TestNormalizeMeetupEventWithoutID(t *testing.T) {
	raw := meetupEvent{
		Name:  "Go Meetup",
		Venue: &meetupVenue{City: "Austin"},
	}

	if _, err := normalizeMeetupEvent(testSession(), raw); err == nil {
		t.Error("Expected event without vendor id to be rejected")
	}
}

func TestNormalizeMeetupEventWithoutDuration(t *testing.T) {
	raw := meetupEvent{
		ID:    "223588917",
		Name:  "Go Meetup",
		Time:  time.Date(2017, 3, 15, 19, 0, 0, 0, time.UTC).UnixMilli(),
		Venue: &meetupVenue{City: "Austin"},
	}

	event, err := normalizeMeetupEvent(testSession(), raw)
	if err != nil {
		t.Fatal(err)
	}

	if event.EndAt != nil {
		t.Errorf("Expected no end time without a duration, got %v", event.EndAt)
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		full      string
		firstName string
		lastName  string
	}{
		{"Kamran A", "Kamran", "A"},
		{"Ann", "Ann", ""},
		{"Mary Jane Watson", "Mary", "Jane Watson"},
		{"  padded  name  ", "padded", "name"},
		{"", "", ""},
	}

	for _, tt := range tests {
		firstName, lastName := splitName(tt.full)
		if firstName != tt.firstName || lastName != tt.lastName {
			t.Errorf("splitName(%q) = (%q, %q), expected (%q, %q)",
				tt.full, firstName, lastName, tt.firstName, tt.lastName)
		}
	}
}
