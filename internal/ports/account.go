package ports

import "context"

// AccountPort updates account profiles for arena players.
type AccountPort interface {
	// UpdateProfile applies username/displayName to the given account.
	// Returns an error if the profile update fails.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
