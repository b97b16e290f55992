// Package runcontext models the CI execution context (branch ref, commit,
// event) as an explicit value object. Building it once at the edge and
// injecting it keeps the engine deterministic and testable without
// environment manipulation.
package runcontext

import (
	"os"
	"strconv"
	"strings"
)

// Context describes the commit, branch, and event a sizewatch run is
// operating on.
type Context struct {
	// Ref is the fully qualified git ref, e.g. "refs/heads/main" or
	// "refs/pull/42/merge".
	Ref string

	// SHA is the commit being built.
	SHA string

	// EventName is the workflow trigger, e.g. "push" or "pull_request".
	EventName string

	// Owner and Repo identify the repository.
	Owner string
	Repo  string

	// PRNumber is the pull request number, 0 outside PR events.
	PRNumber int
}

// FromEnv builds a Context from the standard GitHub Actions environment.
func FromEnv() Context {
	c := Context{
		Ref:       os.Getenv("GITHUB_REF"),
		SHA:       os.Getenv("GITHUB_SHA"),
		EventName: os.Getenv("GITHUB_EVENT_NAME"),
	}

	if repo := os.Getenv("GITHUB_REPOSITORY"); repo != "" {
		if owner, name, ok := strings.Cut(repo, "/"); ok {
			c.Owner, c.Repo = owner, name
		}
	}

	// PR refs look like refs/pull/<number>/merge.
	if rest, ok := strings.CutPrefix(c.Ref, "refs/pull/"); ok {
		numStr, _, _ := strings.Cut(rest, "/")
		if n, err := strconv.Atoi(numStr); err == nil {
			c.PRNumber = n
		}
	}
	return c
}

// Branch returns the branch name for branch refs, or "" for tag and PR refs.
func (c Context) Branch() string {
	if branch, ok := strings.CutPrefix(c.Ref, "refs/heads/"); ok {
		return branch
	}
	return ""
}

// IsBaseline reports whether the run is on the configured baseline branch.
// Baselines are saved only here; everywhere else they are restored.
func (c Context) IsBaseline(baselineBranch string) bool {
	return baselineBranch != "" && c.Branch() == baselineBranch
}

// IsPullRequest reports whether the run was triggered by a pull request.
func (c Context) IsPullRequest() bool {
	return c.EventName == "pull_request" || c.EventName == "pull_request_target"
}
