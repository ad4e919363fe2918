package domain

import (
	"strings"
	"time"
)

// ShortHashLength is the number of hash characters shown in compact views
const ShortHashLength = 8

// UncommittedHash is the revision git blame reports for lines not yet committed
const UncommittedHash = "0000000000000000000000000000000000000000"

// User represents a Git identity
type User struct {
	Name  string
	Email string
}

// String returns the exact "Name <email>" form, or just the name when the
// email is unknown
func (u User) String() string {
	if u.Email == "" {
		return u.Name
	}
	return u.Name + " <" + u.Email + ">"
}

// ShortHash returns an abbreviated revision hash
func ShortHash(hash string) string {
	if len(hash) > ShortHashLength {
		return hash[:ShortHashLength]
	}
	return hash
}

// IsUncommitted reports whether hash is the all-zero working tree revision
func IsUncommitted(hash string) bool {
	return hash != "" && strings.Trim(hash, "0") == ""
}

// FileRevision is one historical snapshot of a file
type FileRevision struct {
	Hash      string
	Path      string // Repository-relative path at this revision
	Author    User
	Date      time.Time
	Committed time.Time
	Message   string
}

// ShortHash returns the abbreviated revision hash
func (r *FileRevision) ShortHash() string {
	return ShortHash(r.Hash)
}

// Subject returns the first line of the commit message
func (r *FileRevision) Subject() string {
	subject, _, _ := strings.Cut(r.Message, "\n")
	return strings.TrimSpace(subject)
}
