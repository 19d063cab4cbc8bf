package plaindb

import (
	"pocketbook/vcs"
)

// DBOpt configures the DB built by Open
type DBOpt interface {
	do(*database) error
}

type dbOpt func(*database) error

func (opt dbOpt) do(db *database) error {
	return opt(db)
}

// VersionControl commits every bucket save to a Git repo in the DB directory
func VersionControl() DBOpt {
	return dbOpt(func(db *database) error {
		repo, err := vcs.Open(db.path)
		db.repo = repo
		return err
	})
}
