package services

import (
	"context"
	"strings"
)

// staticUserDirectory answers assignee lookups from a fixed allow list. It
// backs deployments without an identity provider: operators list the known
// assignee emails in configuration and the importer reports everything else
// as unmatched.
type staticUserDirectory struct {
	emails map[string]struct{}
}

// NewStaticUserDirectory builds a UserDirectory over the given emails.
// Entries are trimmed and matched case-insensitively; blanks are dropped.
func NewStaticUserDirectory(emails []string) UserDirectory {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return &staticUserDirectory{emails: set}
}

func (d *staticUserDirectory) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := d.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok, nil
}
