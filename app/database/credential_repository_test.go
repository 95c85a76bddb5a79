package database

import (
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	return db
}

func TestUpsertCredential(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))

	id, err := repo.UpsertCredential(UserCredential{
		UserID:          7,
		SocialNetworkID: 13,
		AccessToken:     "token-1",
		MemberID:        "99",
		Enabled:         true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Same (user_id, social_network_id) key updates the existing row.
	updatedID, err := repo.UpsertCredential(UserCredential{
		UserID:          7,
		SocialNetworkID: 13,
		AccessToken:     "token-2",
		MemberID:        "99",
		Enabled:         true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if updatedID != id {
		t.Errorf("Expected upsert to reuse credential id %s, got %s", id, updatedID)
	}

	cred, err := repo.GetCredential(id)
	if err != nil {
		t.Fatal(err)
	}
	if cred == nil {
		t.Fatal("Expected credential to exist")
	}
	if cred.AccessToken != "token-2" {
		t.Errorf("Expected access token 'token-2', got '%s'", cred.AccessToken)
	}

	count, err := repo.GetCredentialCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 credential, got %d", count)
	}
}

func TestGetCredentialsFiltersByUser(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))

	for _, userID := range []int64{7, 8} {
		_, err := repo.UpsertCredential(UserCredential{
			UserID:          userID,
			SocialNetworkID: 13,
			AccessToken:     "token",
			MemberID:        "99",
			Enabled:         true,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.GetCredentials(13, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 credentials for the network, got %d", len(all))
	}

	one, err := repo.GetCredentials(13, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(one) != 1 || one[0].UserID != 8 {
		t.Errorf("Expected only user 8's credential, got %v", one)
	}
}

func TestGetCredentialsExcludesDisabled(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))

	_, err := repo.UpsertCredential(UserCredential{
		UserID:          7,
		SocialNetworkID: 13,
		AccessToken:     "token",
		MemberID:        "99",
		Enabled:         false,
	})
	if err != nil {
		t.Fatal(err)
	}

	creds, err := repo.GetCredentials(13, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(creds) != 0 {
		t.Errorf("Expected disabled credentials to be excluded, got %d", len(creds))
	}
}

func TestGetCredentialsDueForImport(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))

	dueID, err := repo.UpsertCredential(UserCredential{
		UserID:          7,
		SocialNetworkID: 13,
		AccessToken:     "token",
		MemberID:        "99",
		Enabled:         true,
	})
	if err != nil {
		t.Fatal(err)
	}

	laterID, err := repo.UpsertCredential(UserCredential{
		UserID:          8,
		SocialNetworkID: 13,
		AccessToken:     "token",
		MemberID:        "100",
		Enabled:         true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// A never-imported credential (next_import_at NULL) is due immediately.
	due, err := repo.GetCredentialsDueForImport(13)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 2 {
		t.Fatalf("Expected both fresh credentials to be due, got %d", len(due))
	}

	if err := repo.UpdateNextImport(laterID, time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateNextImport(dueID, time.Now().UTC().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}

	due, err = repo.GetCredentialsDueForImport(13)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 {
		t.Fatalf("Expected 1 credential due for import, got %d", len(due))
	}
	if due[0].ID != dueID {
		t.Errorf("Expected credential %s to be due, got %s", dueID, due[0].ID)
	}
}

func TestUpdateAccessToken(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))

	id, err := repo.UpsertCredential(UserCredential{
		UserID:          7,
		SocialNetworkID: 13,
		AccessToken:     "old-access",
		RefreshToken:    "old-refresh",
		MemberID:        "99",
		Enabled:         true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.UpdateAccessToken(id, "new-access", "new-refresh"); err != nil {
		t.Fatal(err)
	}

	cred, err := repo.GetCredential(id)
	if err != nil {
		t.Fatal(err)
	}
	if cred.AccessToken != "new-access" || cred.RefreshToken != "new-refresh" {
		t.Errorf("Expected refreshed tokens, got access='%s' refresh='%s'",
			cred.AccessToken, cred.RefreshToken)
	}
}

func TestGetCredentialNotFound(t *testing.T) {
	repo := NewCredentialRepository(newTestDB(t))

	cred, err := repo.GetCredential("no-such-id")
	if err != nil {
		t.Fatal(err)
	}
	if cred != nil {
		t.Errorf("Expected nil for a missing credential, got %v", cred)
	}
}
