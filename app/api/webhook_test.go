package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talentbase/eventsync/app/database"
	"github.com/talentbase/eventsync/app/importer"
)

// fakeOrderFetcher returns a canned order resolution without hitting a vendor.
type fakeOrderFetcher struct {
	attendee      importer.Attendee
	vendorEventID string
	err           error
	calls         int
}

func (f *fakeOrderFetcher) FetchOrderAttendee(ctx context.Context, orderURL string) (importer.Attendee, string, error) {
	f.calls++
	if f.err != nil {
		return importer.Attendee{}, "", f.err
	}
	return f.attendee, f.vendorEventID, nil
}

type webhookEnv struct {
	server        *gin.Engine
	fetcher       *fakeOrderFetcher
	credRepo      database.CredentialRepository
	eventRepo     database.EventRepository
	candidateRepo database.CandidateRepository
	rsvpRepo      database.RSVPRepository
}

func newWebhookEnv(t *testing.T) *webhookEnv {
	t.Helper()

	db, err := database.NewConnection(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	credRepo := database.NewCredentialRepository(db)
	eventRepo := database.NewEventRepository(db)
	candidateRepo := database.NewCandidateRepository(db)
	rsvpRepo := database.NewRSVPRepository(db)
	activityRepo := database.NewActivityRepository(db)

	writer := importer.NewWriter(candidateRepo, rsvpRepo, activityRepo)
	reconciler := importer.NewReconciler(credRepo, eventRepo, writer, nil, time.Time{})

	respondedAt := time.Date(2017, 3, 10, 18, 30, 0, 0, time.UTC)
	fetcher := &fakeOrderFetcher{
		attendee: importer.Attendee{
			FirstName: "Ann",
			LastName:  "Lee",
			Email:     "ann@example.com",
			MemberID:  "att-1",
			RSVP: importer.RSVP{
				VendorRSVPID:  "812345",
				VendorEventID: "ev-100",
				Response:      "yes",
				RespondedAt:   respondedAt,
			},
		},
		vendorEventID: "ev-100",
	}

	newOrderFetcher := func(cred database.UserCredential) (OrderFetcher, error) {
		return fetcher, nil
	}

	handler := NewHandler(credRepo, eventRepo, candidateRepo, rsvpRepo, activityRepo,
		writer, reconciler, nil, newOrderFetcher)
	server := NewServer(handler, "secret")

	return &webhookEnv{
		server:        server,
		fetcher:       fetcher,
		credRepo:      credRepo,
		eventRepo:     eventRepo,
		candidateRepo: candidateRepo,
		rsvpRepo:      rsvpRepo,
	}
}

func (env *webhookEnv) seedEventbriteUser(t *testing.T, userID int64) {
	t.Helper()

	_, err := env.credRepo.UpsertCredential(database.UserCredential{
		UserID:          userID,
		SocialNetworkID: importer.SocialNetworkEventbrite,
		AccessToken:     "access-token",
		MemberID:        "member-1",
		Enabled:         true,
	})
	if err != nil {
		t.Fatal(err)
	}

	start := time.Date(2017, 3, 15, 19, 0, 0, 0, time.UTC)
	_, err = env.eventRepo.UpsertEvent(database.Event{
		UserID:          userID,
		SocialNetworkID: importer.SocialNetworkEventbrite,
		VendorEventID:   "ev-100",
		Title:           "Tech Job Fair",
		StartAt:         &start,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func (env *webhookEnv) post(t *testing.T, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("Failed to parse response body %q: %v", w.Body.String(), err)
	}
	return w, parsed
}

func TestWebhookTestAction(t *testing.T) {
	env := newWebhookEnv(t)

	w, body := env.post(t, "/webhooks/eventbrite/7",
		`{"config":{"action":"test","user_id":"7"}}`)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if body["message"] != "Webhook received" {
		t.Errorf("Expected ack message, got %v", body["message"])
	}
	if body["status_code"] != float64(200) {
		t.Errorf("Expected status_code 200 in body, got %v", body["status_code"])
	}
	if env.fetcher.calls != 0 {
		t.Errorf("Expected no order fetch for the test action, got %d calls", env.fetcher.calls)
	}
}

func TestWebhookOrderPlaced(t *testing.T) {
	env := newWebhookEnv(t)
	env.seedEventbriteUser(t, 7)

	w, body := env.post(t, "/webhooks/eventbrite/7",
		`{"config":{"action":"order.placed","user_id":"7"},"api_url":"https://www.eventbriteapi.com/v3/orders/812345/"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%v)", w.Code, body)
	}
	if env.fetcher.calls != 1 {
		t.Errorf("Expected 1 order fetch, got %d", env.fetcher.calls)
	}

	count, err := env.candidateRepo.GetCandidateCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 candidate persisted, got %d", count)
	}

	rsvpCount, err := env.rsvpRepo.GetRSVPCount()
	if err != nil {
		t.Fatal(err)
	}
	if rsvpCount != 1 {
		t.Errorf("Expected 1 RSVP persisted, got %d", rsvpCount)
	}
}

func TestWebhookOrderPlacedIsIdempotent(t *testing.T) {
	env := newWebhookEnv(t)
	env.seedEventbriteUser(t, 7)

	payload := `{"config":{"action":"order.placed","user_id":"7"},"api_url":"https://www.eventbriteapi.com/v3/orders/812345/"}`
	env.post(t, "/webhooks/eventbrite/7", payload)
	env.post(t, "/webhooks/eventbrite/7", payload)

	count, err := env.candidateRepo.GetCandidateCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 candidate after duplicate notification, got %d", count)
	}

	rsvpCount, err := env.rsvpRepo.GetRSVPCount()
	if err != nil {
		t.Fatal(err)
	}
	if rsvpCount != 1 {
		t.Errorf("Expected 1 RSVP after duplicate notification, got %d", rsvpCount)
	}
}

func TestWebhookOrderPlacedUnknownEvent(t *testing.T) {
	env := newWebhookEnv(t)
	env.seedEventbriteUser(t, 7)
	env.fetcher.vendorEventID = "ev-does-not-exist"

	w, body := env.post(t, "/webhooks/eventbrite/7",
		`{"config":{"action":"order.placed","user_id":"7"},"api_url":"https://www.eventbriteapi.com/v3/orders/812345/"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if body["status_code"] != float64(500) {
		t.Errorf("Expected status_code 500 in body, got %v", body["status_code"])
	}
}

func TestWebhookOrderPlacedMissingAPIURL(t *testing.T) {
	env := newWebhookEnv(t)
	env.seedEventbriteUser(t, 7)

	w, _ := env.post(t, "/webhooks/eventbrite/7",
		`{"config":{"action":"order.placed","user_id":"7"}}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 for a payload without api_url, got %d", w.Code)
	}
	if env.fetcher.calls != 0 {
		t.Errorf("Expected no order fetch without api_url, got %d calls", env.fetcher.calls)
	}
}

func TestWebhookOrderPlacedNoCredential(t *testing.T) {
	env := newWebhookEnv(t)

	w, _ := env.post(t, "/webhooks/eventbrite/999",
		`{"config":{"action":"order.placed","user_id":"999"},"api_url":"https://www.eventbriteapi.com/v3/orders/812345/"}`)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 for a user without a credential, got %d", w.Code)
	}
}

func TestWebhookUnknownActionIgnored(t *testing.T) {
	env := newWebhookEnv(t)

	w, body := env.post(t, "/webhooks/eventbrite/7",
		`{"config":{"action":"attendee.updated","user_id":"7"}}`)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for an unknown action, got %d", w.Code)
	}
	if body["message"] != "Action ignored" {
		t.Errorf("Expected 'Action ignored', got %v", body["message"])
	}
	if env.fetcher.calls != 0 {
		t.Errorf("Expected no order fetch for an unknown action, got %d calls", env.fetcher.calls)
	}
}

func TestWebhookInvalidUserID(t *testing.T) {
	env := newWebhookEnv(t)

	w, _ := env.post(t, "/webhooks/eventbrite/not-a-number",
		`{"config":{"action":"test"}}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a non-numeric user id, got %d", w.Code)
	}
}

func TestAPIRequiresAccessKey(t *testing.T) {
	env := newWebhookEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/credentials", nil)
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without an API key, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/credentials", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 with a valid API key, got %d", w.Code)
	}
}
