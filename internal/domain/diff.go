package domain

import "time"

// ChangeStatus is the kind of change a commit made to a path
type ChangeStatus string

const (
	StatusAdded    ChangeStatus = "A"
	StatusModified ChangeStatus = "M"
	StatusDeleted  ChangeStatus = "D"
	StatusRenamed  ChangeStatus = "R"
	StatusCopied   ChangeStatus = "C"
)

// Change represents one file touched by a commit
type Change struct {
	Status  ChangeStatus
	Path    string
	OldPath string // For renames and copies
}

// IsRenamed returns true if the change moved the file
func (c *Change) IsRenamed() bool {
	return c.Status == StatusRenamed
}

// ChangeList represents a committed change set
type ChangeList struct {
	Hash     string
	Author   User
	Date     time.Time
	Message  string
	RepoPath string
	Changes  []Change
}

// Touches reports whether the change list includes path, either as its
// current or previous name
func (cl *ChangeList) Touches(path string) bool {
	for _, c := range cl.Changes {
		if c.Path == path || c.OldPath == path {
			return true
		}
	}
	return false
}
