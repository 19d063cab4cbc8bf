// Package vcs version-controls the data directory with Git, committing a
// snapshot for every change so the finance records always have history.
package vcs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/object"
)

// Repository is a Git repository with thread-safe commit operations
type Repository interface {
	// CommitFiles runs prepFiles with exclusive access, then commits 'paths' with 'message'
	CommitFiles(prepFiles func() error, message string, paths ...string) error
}

// Open ensures a Git repo exists at 'path' and returns its Repository
func Open(path string) (Repository, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: false,
	})
	if err == git.ErrRepositoryNotExists {
		repo, err = initRepo(path)
	}
	if err != nil {
		return nil, err
	}
	return &syncRepo{repo: repo}, nil
}

type syncRepo struct {
	repo *git.Repository
	mu   sync.Mutex
}

func author() *object.Signature {
	return &object.Signature{
		Name: "Pocketbook",
		When: time.Now(),
	}
}

func initRepo(path string) (*git.Repository, error) {
	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, err
	}
	tree, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := tree.Status()
	if err != nil {
		return nil, err
	}

	// commit any pre-existing data files, skipping hidden and tmp files
	added := false
	for file, stat := range status {
		if stat.Worktree != git.Untracked || strings.HasPrefix(file, ".") || strings.HasSuffix(file, ".tmp") {
			continue
		}
		if _, err := tree.Add(file); err != nil {
			return nil, err
		}
		added = true
	}
	if added {
		if _, err := tree.Commit("Initial commit", &git.CommitOptions{Author: author()}); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (s *syncRepo) CommitFiles(prepFiles func() error, message string, paths ...string) error {
	if len(paths) == 0 {
		return errors.New("No files to commit")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := prepFiles(); err != nil {
		return err
	}
	tree, err := s.repo.Worktree()
	if err != nil {
		return err
	}
	_, headErr := s.repo.Head()
	if headErr != nil && headErr != plumbing.ErrReferenceNotFound {
		return headErr
	}
	if headErr == nil {
		// unstage everything so only 'paths' end up in this commit
		if err := tree.Reset(&git.ResetOptions{}); err != nil {
			return err
		}
	}
	rootPath, err := filepath.Abs(tree.Filesystem.Root())
	if err != nil {
		return err
	}
	for i := range paths {
		abs, err := filepath.Abs(paths[i])
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(rootPath, abs)
		if err != nil {
			return err
		}
		if _, err := tree.Add(rel); err != nil {
			return errors.Wrapf(err, "Failed to add %s to the git index", rel)
		}
		paths[i] = rel
	}

	status, err := tree.Status()
	if err != nil {
		return err
	}
	shouldCommit := false
	for _, path := range paths {
		if stat, ok := status[path]; ok && stat.Staging != git.Unmodified {
			shouldCommit = true
			break
		}
	}
	if !shouldCommit {
		return nil
	}
	_, err = tree.Commit(message, &git.CommitOptions{Author: author()})
	return err
}
