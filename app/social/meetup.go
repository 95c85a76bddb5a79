package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/talentbase/eventsync/app/database"
	"github.com/talentbase/eventsync/app/importer"
	"github.com/talentbase/eventsync/app/metrics"
)

var _ importer.Client = (*Meetup)(nil)

// Meetup is the Meetup API adapter. All calls run within the session the
// client was constructed with; refreshed tokens are written back to the
// credential store.
type Meetup struct {
	session    Session
	config     *VendorConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	credRepo   database.CredentialRepository

	// group organizer lookups repeat per event; cache them for the run
	groupCache map[string]*meetupGroup
}

func NewMeetup(session Session, config *VendorConfig, credRepo database.CredentialRepository, userAgent string) *Meetup {
	return &Meetup{
		session: session,
		config:  config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.Settings.Timeout) * time.Second,
		},
		limiter:    rate.NewLimiter(rate.Limit(config.Settings.RateLimit), config.Settings.RateBurst),
		userAgent:  userAgent,
		credRepo:   credRepo,
		groupCache: make(map[string]*meetupGroup),
	}
}

func (m *Meetup) Vendor() string {
	return "meetup"
}

type meetupMeta struct {
	Next string `json:"next"`
}

type meetupVenue struct {
	Name     string `json:"name"`
	Address1 string `json:"address_1"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

type meetupGroup struct {
	ID        int64  `json:"id"`
	URLName   string `json:"urlname"`
	Organizer *struct {
		MemberID int64 `json:"member_id"`
	} `json:"organizer"`
}

type meetupEvent struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	EventURL    string       `json:"event_url"`
	Time        int64        `json:"time"`     // ms since epoch
	Duration    int64        `json:"duration"` // ms
	RSVPLimit   int          `json:"rsvp_limit"`
	Venue       *meetupVenue `json:"venue"`
	Group       *meetupGroup `json:"group"`
}

type meetupRSVP struct {
	RSVPID   int64  `json:"rsvp_id"`
	Response string `json:"response"`
	MTime    int64  `json:"mtime"` // ms since epoch
	Member   struct {
		MemberID int64  `json:"member_id"`
		Name     string `json:"name"`
	} `json:"member"`
	Event struct {
		ID string `json:"id"`
	} `json:"event"`
}

type meetupMember struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo struct {
		PhotoLink string `json:"photo_link"`
		ThumbLink string `json:"thumb_link"`
	} `json:"photo"`
}

type meetupEventsPage struct {
	Results []meetupEvent `json:"results"`
	Meta    meetupMeta    `json:"meta"`
}

type meetupRSVPsPage struct {
	Results []meetupRSVP `json:"results"`
	Meta    meetupMeta   `json:"meta"`
}

type meetupGroupsPage struct {
	Results []meetupGroup `json:"results"`
}

// FetchEvents pages through the member's events, keeping only those whose
// group organizer is the authenticated member. Pagination follows the
// response's next link and stops when it is absent or a page fetch fails.
func (m *Meetup) FetchEvents(ctx context.Context) ([]database.Event, error) {
	pageURL := fmt.Sprintf("%s/2/events?member_id=self&status=upcoming,past&page=100", m.config.BaseURL)

	var events []database.Event
	for pageURL != "" {
		body, status, err := m.doGet(ctx, pageURL, "events")
		if err != nil {
			slog.Warn("Event page fetch failed, stopping pagination", "user_id", m.session.UserID,
				"member_id", m.session.MemberID, "error", err)
			break
		}
		if status != http.StatusOK {
			slog.Warn("Event page returned non-OK status, stopping pagination",
				"user_id", m.session.UserID, "member_id", m.session.MemberID, "status", status)
			break
		}

		var page meetupEventsPage
		if err := json.Unmarshal(body, &page); err != nil {
			slog.Warn("Failed to decode event page, stopping pagination",
				"user_id", m.session.UserID, "error", err)
			break
		}

		for _, raw := range page.Results {
			if !m.organizedBySelf(ctx, raw) {
				continue
			}
			event, err := normalizeMeetupEvent(m.session, raw)
			if err != nil {
				slog.Error("Skipping event", "vendor_event_id", raw.ID, "name", raw.Name, "error", err)
				continue
			}
			events = append(events, event)
		}

		pageURL = page.Meta.Next
	}

	return events, nil
}

// FetchRSVPs pages through one event's RSVPs. A 401 anywhere in the
// pagination returns ErrUnauthorized so the caller can abort the rest of the
// credential's RSVP pass; any other page failure ends pagination with the
// items collected so far.
func (m *Meetup) FetchRSVPs(ctx context.Context, event database.Event) ([]importer.RSVP, error) {
	pageURL := fmt.Sprintf("%s/2/rsvps?event_id=%s&page=100", m.config.BaseURL, event.VendorEventID)

	var rsvps []importer.RSVP
	for pageURL != "" {
		body, status, err := m.doGet(ctx, pageURL, "rsvps")
		if err != nil {
			slog.Warn("RSVP page fetch failed, stopping pagination", "user_id", m.session.UserID,
				"event", event.VendorEventID, "error", err)
			break
		}
		if status == http.StatusUnauthorized {
			return nil, importer.ErrUnauthorized
		}
		if status != http.StatusOK {
			slog.Warn("RSVP page returned non-OK status, stopping pagination",
				"user_id", m.session.UserID, "event", event.VendorEventID, "status", status)
			break
		}

		var page meetupRSVPsPage
		if err := json.Unmarshal(body, &page); err != nil {
			slog.Warn("Failed to decode RSVP page, stopping pagination",
				"user_id", m.session.UserID, "event", event.VendorEventID, "error", err)
			break
		}

		for _, raw := range page.Results {
			rsvps = append(rsvps, importer.RSVP{
				VendorRSVPID:  strconv.FormatInt(raw.RSVPID, 10),
				VendorEventID: raw.Event.ID,
				MemberID:      strconv.FormatInt(raw.Member.MemberID, 10),
				Response:      raw.Response,
				RespondedAt:   time.UnixMilli(raw.MTime).UTC(),
			})
		}

		pageURL = page.Meta.Next
	}

	return rsvps, nil
}

// FetchAttendee fetches the full member profile behind one RSVP and maps it
// into the attendee record the writer chain consumes.
func (m *Meetup) FetchAttendee(ctx context.Context, rsvp importer.RSVP) (importer.Attendee, error) {
	u := fmt.Sprintf("%s/2/member/%s", m.config.BaseURL, rsvp.MemberID)

	body, status, err := m.doGet(ctx, u, "member")
	if err != nil {
		return importer.Attendee{}, fmt.Errorf("failed to fetch member %s: %w", rsvp.MemberID, err)
	}
	if status != http.StatusOK {
		return importer.Attendee{}, fmt.Errorf("member fetch returned status %d", status)
	}

	var member meetupMember
	if err := json.Unmarshal(body, &member); err != nil {
		return importer.Attendee{}, fmt.Errorf("failed to decode member %s: %w", rsvp.MemberID, err)
	}

	firstName, lastName := splitName(member.Name)

	attendee := importer.Attendee{
		FirstName: firstName,
		LastName:  lastName,
		Email:     member.Email,
		MemberID:  rsvp.MemberID,
		RSVP:      rsvp,
	}
	if member.Photo.ThumbLink != "" {
		attendee.BadgeImage = fmt.Sprintf("<img src=%q/>", member.Photo.ThumbLink)
	}

	return attendee, nil
}

// RefreshToken probes token validity with a lightweight authenticated GET and
// exchanges the stored refresh token for a new access token on failure. The
// new token is persisted before the pass continues.
func (m *Meetup) RefreshToken(ctx context.Context) error {
	if m.tokenValid(ctx) {
		return nil
	}

	if m.session.RefreshToken == "" {
		return errors.New("access token invalid and no refresh token stored")
	}

	conf := &oauth2.Config{
		ClientID:     m.config.ClientID,
		ClientSecret: m.config.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: m.config.AuthURL},
	}

	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: m.session.RefreshToken}).Token()
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	m.session.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		m.session.RefreshToken = token.RefreshToken
	}

	if err := m.credRepo.UpdateAccessToken(m.session.CredentialID, m.session.AccessToken, m.session.RefreshToken); err != nil {
		return fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	slog.Info("Vendor token refreshed", "user_id", m.session.UserID, "vendor", m.Vendor(),
		"member_id", m.session.MemberID)
	return nil
}

func (m *Meetup) tokenValid(ctx context.Context) bool {
	_, status, err := m.doGet(ctx, m.config.BaseURL+"/2/member/self", "member_self")
	return err == nil && status == http.StatusOK
}

// organizedBySelf reports whether the event's group organizer is the
// authenticated member. Group lookups are cached for the run.
func (m *Meetup) organizedBySelf(ctx context.Context, raw meetupEvent) bool {
	if raw.Group == nil {
		return false
	}

	groupID := strconv.FormatInt(raw.Group.ID, 10)
	group, ok := m.groupCache[groupID]
	if !ok {
		u := fmt.Sprintf("%s/2/groups?group_id=%s&fields=organizer", m.config.BaseURL, groupID)
		body, status, err := m.doGet(ctx, u, "groups")
		if err != nil || status != http.StatusOK {
			slog.Warn("Group fetch failed, skipping event", "user_id", m.session.UserID,
				"group_id", groupID, "vendor_event_id", raw.ID, "error", err)
			return false
		}

		var page meetupGroupsPage
		if err := json.Unmarshal(body, &page); err != nil || len(page.Results) == 0 {
			return false
		}
		group = &page.Results[0]
		m.groupCache[groupID] = group
	}

	return group.Organizer != nil &&
		strconv.FormatInt(group.Organizer.MemberID, 10) == m.session.MemberID
}

func (m *Meetup) doGet(ctx context.Context, url, endpoint string) ([]byte, int, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.session.AccessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", m.userAgent)

	metrics.IncVendorAPICall(m.Vendor(), endpoint)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// splitName splits a vendor-supplied full name into first and last parts.
// Everything after the first word goes into the last name.
func splitName(full string) (string, string) {
	fields := strings.Fields(strings.TrimSpace(full))
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
