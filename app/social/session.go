package social

import (
	"github.com/talentbase/eventsync/app/database"
)

// Session is the per-credential context every vendor call operates in. It is
// built once from a validated credential and passed explicitly; clients never
// read credential state from anywhere else.
type Session struct {
	CredentialID    string
	UserID          int64
	SocialNetworkID int64
	MemberID        string
	AccessToken     string
	RefreshToken    string
}

func NewSession(cred database.UserCredential) Session {
	return Session{
		CredentialID:    cred.ID,
		UserID:          cred.UserID,
		SocialNetworkID: cred.SocialNetworkID,
		MemberID:        cred.MemberID,
		AccessToken:     cred.AccessToken,
		RefreshToken:    cred.RefreshToken,
	}
}
