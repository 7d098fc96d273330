package gitrepo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

const (
	notRepositoryMessageConstant             = "not a git repository"
	repositoryPathResolutionTemplateConstant = "unable to resolve repository path %s: %w"
	repositoryOpenErrorTemplateConstant      = "%s: %w"
	worktreeErrorTemplateConstant            = "unable to inspect worktree of %s: %w"
	headResolutionErrorTemplateConstant      = "unable to resolve HEAD in %s: %w"
	shortCommitHashLengthConstant            = 7
	detachedHeadLabelConstant                = "detached HEAD"
)

// ErrNotRepository indicates the requested path is not inside a git working tree.
var ErrNotRepository = errors.New(notRepositoryMessageConstant)

// Repository is an opened git working tree.
type Repository struct {
	repository *gogit.Repository
	rootPath   string
}

// OpenRepository opens the repository containing path, walking up parent directories to find it.
func OpenRepository(path string) (*Repository, error) {
	absolutePath, absoluteError := filepath.Abs(strings.TrimSpace(path))
	if absoluteError != nil {
		return nil, fmt.Errorf(repositoryPathResolutionTemplateConstant, path, absoluteError)
	}

	repository, openError := gogit.PlainOpenWithOptions(absolutePath, &gogit.PlainOpenOptions{DetectDotGit: true, EnableDotGitCommonDir: true})
	if openError != nil {
		return nil, fmt.Errorf(repositoryOpenErrorTemplateConstant, absolutePath, errors.Join(ErrNotRepository, openError))
	}

	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		return nil, fmt.Errorf(worktreeErrorTemplateConstant, absolutePath, errors.Join(ErrNotRepository, worktreeError))
	}

	return &Repository{repository: repository, rootPath: worktree.Filesystem.Root()}, nil
}

// RootPath returns the top-level directory of the working tree.
func (repository *Repository) RootPath() string {
	return repository.rootPath
}

// HeadCommitHash returns the full hash of the commit HEAD points to.
func (repository *Repository) HeadCommitHash() (string, error) {
	headReference, headError := repository.repository.Head()
	if headError != nil {
		return "", fmt.Errorf(headResolutionErrorTemplateConstant, repository.rootPath, headError)
	}
	return headReference.Hash().String(), nil
}

// ShortHeadCommitHash returns the abbreviated HEAD hash as git prints it after a commit.
func (repository *Repository) ShortHeadCommitHash() (string, error) {
	commitHash, hashError := repository.HeadCommitHash()
	if hashError != nil {
		return "", hashError
	}
	if len(commitHash) > shortCommitHashLengthConstant {
		return commitHash[:shortCommitHashLengthConstant], nil
	}
	return commitHash, nil
}

// HeadBranchName returns the short name of the checked-out branch, or "detached HEAD" when HEAD is not a branch.
func (repository *Repository) HeadBranchName() (string, error) {
	headReference, headError := repository.repository.Head()
	if headError != nil {
		return "", fmt.Errorf(headResolutionErrorTemplateConstant, repository.rootPath, headError)
	}
	if !headReference.Name().IsBranch() {
		return detachedHeadLabelConstant, nil
	}
	return headReference.Name().Short(), nil
}
