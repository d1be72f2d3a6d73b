// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-04
// Last Modified: 2026-03-12

// Package github adapts the GitHub API to the migration engine's target
// interface. All failures are classified into the engine's closed set of
// failure kinds (not found / transient / fatal) before they leave this
// package.
package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"

	"github.com/similigh/bugport/internal/core/migrate"
)

// Client wraps the GitHub API client for a single repository.
type Client struct {
	client     *github.Client
	org        string
	repo       string
	lockReason string
}

// GetIssue fetches an issue by number. A missing issue is reported as
// migrate.ErrNotFound.
func (c *Client) GetIssue(ctx context.Context, number int) (*migrate.Issue, error) {
	issue, _, err := c.client.Issues.Get(ctx, c.org, c.repo, number)
	if err != nil {
		return nil, classify(fmt.Sprintf("fetch issue #%d", number), err)
	}
	return convertIssue(issue), nil
}

// CreateIssue creates an issue. GitHub always creates issues open.
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (*migrate.Issue, error) {
	req := &github.IssueRequest{
		Title:  github.String(title),
		Body:   github.String(body),
		Labels: &labels,
	}
	issue, _, err := c.client.Issues.Create(ctx, c.org, c.repo, req)
	if err != nil {
		return nil, classify("create issue", err)
	}
	return convertIssue(issue), nil
}

// UpdateContent replaces an issue's title, body, and labels.
func (c *Client) UpdateContent(ctx context.Context, number int, title, body string, labels []string) error {
	req := &github.IssueRequest{
		Title:  github.String(title),
		Body:   github.String(body),
		Labels: &labels,
	}
	_, _, err := c.client.Issues.Edit(ctx, c.org, c.repo, number, req)
	if err != nil {
		return classify(fmt.Sprintf("update issue #%d", number), err)
	}
	return nil
}

// SetState moves an issue to "open" or "closed".
func (c *Client) SetState(ctx context.Context, number int, state string) error {
	req := &github.IssueRequest{State: github.String(state)}
	_, _, err := c.client.Issues.Edit(ctx, c.org, c.repo, number, req)
	if err != nil {
		return classify(fmt.Sprintf("set issue #%d %s", number, state), err)
	}
	return nil
}

// CreateComment posts a comment on an issue.
func (c *Client) CreateComment(ctx context.Context, number int, body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment body cannot be empty")
	}

	comment := &github.IssueComment{
		Body: github.String(body),
	}
	_, _, err := c.client.Issues.CreateComment(ctx, c.org, c.repo, number, comment)
	if err != nil {
		return classify(fmt.Sprintf("comment on issue #%d", number), err)
	}
	return nil
}

// LockIssue locks an issue with the client's configured reason.
// GitHub only accepts reasons from its fixed vocabulary.
func (c *Client) LockIssue(ctx context.Context, number int) error {
	opts := &github.LockIssueOptions{LockReason: c.lockReason}
	_, err := c.client.Issues.Lock(ctx, c.org, c.repo, number, opts)
	if err != nil {
		return classify(fmt.Sprintf("lock issue #%d", number), err)
	}
	return nil
}

// RateRemaining queries the authoritative rate-limit endpoint and returns
// the remaining core-API calls. This call itself does not count against
// the rate limit.
func (c *Client) RateRemaining(ctx context.Context) (int, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return 0, classify("rate limit query", err)
	}
	if limits.Core == nil {
		return 0, fmt.Errorf("rate limit response missing core limits")
	}
	return limits.Core.Remaining, nil
}

// Label is a repository label as used by the seeding command.
type Label struct {
	Name        string
	Description string
	Color       string
}

// CreateLabel creates a repository label.
func (c *Client) CreateLabel(ctx context.Context, name, description, color string) error {
	if name == "" {
		return fmt.Errorf("label name cannot be empty")
	}
	label := &github.Label{
		Name:  github.String(name),
		Color: github.String(color),
	}
	if description != "" {
		label.Description = github.String(description)
	}
	_, _, err := c.client.Issues.CreateLabel(ctx, c.org, c.repo, label)
	if err != nil {
		return classify(fmt.Sprintf("create label %q", name), err)
	}
	return nil
}

// ListLabels returns all repository labels.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	var all []Label
	opts := &github.ListOptions{PerPage: 100}

	for {
		labels, resp, err := c.client.Issues.ListLabels(ctx, c.org, c.repo, opts)
		if err != nil {
			return nil, classify("list labels", err)
		}
		for _, l := range labels {
			all = append(all, Label{
				Name:        l.GetName(),
				Description: l.GetDescription(),
				Color:       l.GetColor(),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// DeleteLabel removes a repository label.
func (c *Client) DeleteLabel(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("label name cannot be empty")
	}
	_, err := c.client.Issues.DeleteLabel(ctx, c.org, c.repo, name)
	if err != nil {
		return classify(fmt.Sprintf("delete label %q", name), err)
	}
	return nil
}

func convertIssue(issue *github.Issue) *migrate.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}
	return &migrate.Issue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		Labels: labels,
		State:  issue.GetState(),
		Locked: issue.GetLocked(),
	}
}
