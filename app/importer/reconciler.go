package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talentbase/eventsync/app/database"
	"github.com/talentbase/eventsync/app/metrics"
)

// Reconciler drives the per-credential import pass: fetch and upsert events,
// then fetch RSVPs per stored event and thread each attendee through the
// writer chain. Vendor and data-shape errors are logged and skipped; only
// infrastructure errors (the local database failing) abort a pass.
type Reconciler struct {
	credentialRepo database.CredentialRepository
	eventRepo      database.EventRepository
	writer         *Writer
	newClient      ClientFactory
	importStart    time.Time
}

func NewReconciler(credentialRepo database.CredentialRepository, eventRepo database.EventRepository,
	writer *Writer, newClient ClientFactory, importStart time.Time) *Reconciler {
	return &Reconciler{
		credentialRepo: credentialRepo,
		eventRepo:      eventRepo,
		writer:         writer,
		newClient:      newClient,
		importStart:    importStart,
	}
}

// Run processes every enabled credential for a social network, optionally
// filtered to one platform user (userID = 0 means all). Credentials are
// processed one at a time; a failure in one credential's pass never blocks
// the next credential.
func (r *Reconciler) Run(ctx context.Context, socialNetworkID int64, userID int64) error {
	creds, err := r.credentialRepo.GetCredentials(socialNetworkID, userID)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	for _, cred := range creds {
		if err := r.RunCredential(ctx, cred); err != nil {
			slog.Error("Credential import pass failed", "user_id", cred.UserID,
				"social_network_id", cred.SocialNetworkID, "error", err)
		}
	}

	return nil
}

// RunCredential executes one credential's full import pass.
func (r *Reconciler) RunCredential(ctx context.Context, cred database.UserCredential) error {
	start := time.Now()
	metrics.ImportRuns.Inc()
	defer metrics.ObserveImportDuration(start)

	if err := validateCredential(cred); err != nil {
		slog.Warn("Skipping credential with missing fields", "user_id", cred.UserID,
			"social_network_id", cred.SocialNetworkID, "error", err)
		return nil
	}

	client, err := r.newClient(cred)
	if err != nil {
		metrics.ImportErrors.Inc()
		return fmt.Errorf("failed to build vendor client: %w", err)
	}

	if err := client.RefreshToken(ctx); err != nil {
		metrics.ImportErrors.Inc()
		slog.Warn("Token refresh failed, skipping credential", "user_id", cred.UserID,
			"vendor", client.Vendor(), "member_id", cred.MemberID, "error", err)
		return nil
	}

	if err := r.importEvents(ctx, client, cred); err != nil {
		return err
	}

	return r.importRSVPs(ctx, client, cred)
}

// importEvents fetches the vendor's events and upserts them by natural key.
func (r *Reconciler) importEvents(ctx context.Context, client Client, cred database.UserCredential) error {
	events, err := client.FetchEvents(ctx)
	if err != nil {
		metrics.ImportErrors.Inc()
		slog.Error("Failed to fetch events", "user_id", cred.UserID, "vendor", client.Vendor(),
			"member_id", cred.MemberID, "error", err)
		return nil
	}

	imported := 0
	for _, event := range events {
		if _, err := r.eventRepo.UpsertEvent(event); err != nil {
			return fmt.Errorf("failed to upsert event %s: %w", event.VendorEventID, err)
		}
		imported++
	}
	metrics.EventsImported.Add(float64(imported))

	slog.Info("Events imported", "user_id", cred.UserID, "vendor", client.Vendor(), "count", imported)
	return nil
}

// importRSVPs walks the user's stored events newer than the configured start
// date and persists each event's RSVPs. An ErrUnauthorized from the vendor
// aborts the remaining events for this credential (the token was revoked
// mid-run); any other fetch error skips just that event.
func (r *Reconciler) importRSVPs(ctx context.Context, client Client, cred database.UserCredential) error {
	events, err := r.eventRepo.GetEventsSince(cred.UserID, cred.SocialNetworkID, r.importStart)
	if err != nil {
		return fmt.Errorf("failed to load stored events: %w", err)
	}

	for _, event := range events {
		rsvps, err := client.FetchRSVPs(ctx, event)
		if errors.Is(err, ErrUnauthorized) {
			metrics.ImportErrors.Inc()
			slog.Warn("Vendor revoked credentials mid-run, aborting RSVP import for this credential",
				"user_id", cred.UserID, "vendor", client.Vendor(), "event", event.VendorEventID)
			break
		}
		if err != nil {
			metrics.ImportErrors.Inc()
			slog.Error("Failed to fetch RSVPs", "user_id", cred.UserID, "vendor", client.Vendor(),
				"event", event.VendorEventID, "error", err)
			continue
		}

		r.processRSVPs(ctx, client, cred, event, rsvps)
	}

	return nil
}

// processRSVPs runs the attendee upsert chain for each RSVP in vendor order.
func (r *Reconciler) processRSVPs(ctx context.Context, client Client, cred database.UserCredential,
	event database.Event, rsvps []RSVP) {
	saved := 0
	for _, rsvp := range rsvps {
		attendee, err := client.FetchAttendee(ctx, rsvp)
		if err != nil {
			metrics.ImportErrors.Inc()
			slog.Error("Failed to fetch attendee", "user_id", cred.UserID, "vendor", client.Vendor(),
				"rsvp", rsvp.VendorRSVPID, "member_id", rsvp.MemberID, "error", err)
			continue
		}

		attendee.Event = event
		attendee.UserID = cred.UserID
		attendee.NetworkID = cred.SocialNetworkID
		attendee.ProductID = sourceProductFor(cred.SocialNetworkID)

		if _, err := r.writer.Run(attendee); err != nil {
			metrics.ImportErrors.Inc()
			slog.Error("Failed to persist attendee", "user_id", cred.UserID, "vendor", client.Vendor(),
				"rsvp", rsvp.VendorRSVPID, "error", err)
			continue
		}
		saved++
	}
	metrics.RSVPsImported.Add(float64(saved))

	slog.Info("RSVPs imported", "user_id", cred.UserID, "event", event.VendorEventID,
		"total", len(rsvps), "saved", saved)
}

// validateCredential checks the fields every vendor client needs before a
// pass starts.
func validateCredential(cred database.UserCredential) error {
	if cred.AccessToken == "" {
		return errors.New("missing access token")
	}
	if cred.MemberID == "" {
		return errors.New("missing member id")
	}
	if cred.UserID == 0 {
		return errors.New("missing user id")
	}
	if cred.SocialNetworkID == 0 {
		return errors.New("missing social network id")
	}
	return nil
}

func sourceProductFor(socialNetworkID int64) int64 {
	switch socialNetworkID {
	case SocialNetworkEventbrite:
		return SourceProductEventbrite
	default:
		return SourceProductMeetup
	}
}
