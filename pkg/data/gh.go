package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/go-github/v83/github"
	"github.com/pkg/errors"
)

const (
	LabelPrefixDefault string = "emotion/"

	pageSizeDefault = 100
	importBatchSize = 500
	maxPagesDefault = 10
)

// ImportSummary reports a single org/repo issue import.
type ImportSummary struct {
	Org       string `json:"org" yaml:"org"`
	Repo      string `json:"repo" yaml:"repo"`
	Pages     int    `json:"pages" yaml:"pages"`
	Documents int64  `json:"documents" yaml:"documents"`
	Skipped   int    `json:"skipped" yaml:"skipped"`
}

// ImportIssueDocuments imports GitHub issues that carry a label with
// the given prefix as corpus documents. The label suffix becomes the
// document label, issue title and body the text. Pull requests and
// issues without a matching label are skipped.
func ImportIssueDocuments(ctx context.Context, db *sql.DB, client *http.Client, org, repo, labelPrefix string, maxPages int) (*ImportSummary, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if org == "" || repo == "" {
		return nil, errors.New("org and repo are required")
	}
	if labelPrefix == "" {
		labelPrefix = LabelPrefixDefault
	}
	if maxPages < 1 {
		maxPages = maxPagesDefault
	}

	gh := github.NewClient(client)
	summary := &ImportSummary{Org: org, Repo: repo}
	batch := make([]*Document, 0, importBatchSize)

	opts := &github.IssueListByRepoOptions{
		State: "all",
		ListOptions: github.ListOptions{
			PerPage: pageSizeDefault,
		},
	}

	for page := 1; page <= maxPages; page++ {
		opts.ListOptions.Page = page

		issues, resp, err := gh.Issues.ListByRepo(ctx, org, repo, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list issues for %s/%s page %d", org, repo, page)
		}
		summary.Pages = page

		slog.Debug("listed issues", "org", org, "repo", repo, "page", page, "count", len(issues))

		for _, issue := range issues {
			if issue.IsPullRequest() {
				summary.Skipped++
				continue
			}

			label := matchLabel(issue, labelPrefix)
			if label == "" {
				summary.Skipped++
				continue
			}

			text := strings.TrimSpace(issue.GetTitle() + "\n\n" + issue.GetBody())
			if text == "" {
				summary.Skipped++
				continue
			}

			batch = append(batch, &Document{
				Source:    SourceGitHub,
				SourceRef: fmt.Sprintf("%s/%s#%d", org, repo, issue.GetNumber()),
				Text:      text,
				Label:     label,
			})

			if len(batch) >= importBatchSize {
				n, err := SaveDocuments(db, batch)
				if err != nil {
					return nil, errors.Wrap(err, "failed to save issue documents")
				}
				summary.Documents += n
				batch = batch[:0]
			}
		}

		if resp.NextPage == 0 {
			break
		}
	}

	n, err := SaveDocuments(db, batch)
	if err != nil {
		return nil, errors.Wrap(err, "failed to save issue documents")
	}
	summary.Documents += n

	return summary, nil
}

func matchLabel(issue *github.Issue, prefix string) string {
	for _, l := range issue.Labels {
		name := l.GetName()
		if strings.HasPrefix(name, prefix) {
			return strings.ToLower(strings.TrimPrefix(name, prefix))
		}
	}
	return ""
}
