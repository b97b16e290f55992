// Package comment posts and updates pull-request comments through the
// GitHub API. A hidden marker in the comment body lets repeat runs update
// the existing report in place instead of stacking duplicates.
package comment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"
)

// IssuesService is the slice of the GitHub issues API the upserter needs.
// Injected as an interface so tests can run against a fake.
type IssuesService interface {
	ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error)
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
	EditComment(ctx context.Context, owner, repo string, commentID int64, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
}

// Upserter creates or updates the sizewatch comment on a pull request.
type Upserter struct {
	issues IssuesService
	marker string
}

// New creates an Upserter over an issues service. marker is the string
// identifying this tool's comment.
func New(issues IssuesService, marker string) *Upserter {
	return &Upserter{issues: issues, marker: marker}
}

// NewFromToken creates an Upserter backed by the real GitHub API,
// authenticated with the given token.
func NewFromToken(ctx context.Context, token, marker string) *Upserter {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	return New(client.Issues, marker)
}

// Upsert posts body to the pull request. An existing comment containing
// the marker is edited in place; otherwise a new comment is created.
func (u *Upserter) Upsert(ctx context.Context, owner, repo string, number int, body string) error {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := u.issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return fmt.Errorf("listing comments on #%d: %w", number, err)
		}

		for _, c := range comments {
			if c.GetID() == 0 || !strings.Contains(c.GetBody(), u.marker) {
				continue
			}
			if _, _, err := u.issues.EditComment(ctx, owner, repo, c.GetID(), &github.IssueComment{Body: &body}); err != nil {
				return fmt.Errorf("updating comment %d: %w", c.GetID(), err)
			}
			return nil
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if _, _, err := u.issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{Body: &body}); err != nil {
		return fmt.Errorf("creating comment on #%d: %w", number, err)
	}
	return nil
}
