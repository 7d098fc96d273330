// Package gitrepo contains helpers for interrogating Git repositories.
//
// Repository is an explicit handle opened through go-git that knows the
// repository root and reads the HEAD commit. RepositoryManager runs the git
// queries lazypush needs (working tree status, current branch) through an
// execshell-compatible executor so that they can be stubbed in tests.
package gitrepo
