package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/adasatorres/check-migration-addons/config"
	"github.com/adasatorres/check-migration-addons/github"
	"github.com/adasatorres/check-migration-addons/sheet"
)

var (
	// ErrUnresolvableRepository is the cause for rows whose URL has no owner/name.
	ErrUnresolvableRepository = errors.New("repository URL could not be resolved")
	// ErrPageLimit is the cause when the pull request scan hit the page cap.
	ErrPageLimit = errors.New("pull request page limit reached")
)

// GitHubClient is the GitHub API interface used by the checker.
type GitHubClient interface {
	PathExists(ctx context.Context, repo github.Repository, path, ref string) (bool, error)
	ListOpenPullRequests(ctx context.Context, repo github.Repository, page, perPage int) ([]github.PullRequest, int, error)
}

// Outcome pairs an input row with its check result.
type Outcome struct {
	Row    sheet.InputRow
	Result Result
}

// Checker verifies add-on migration status against one target branch.
type Checker struct {
	client GitHubClient
	config *config.GitHubConfig
	branch string
}

// New creates a new Checker.
func New(client GitHubClient, cfg *config.GitHubConfig, branch string) *Checker {
	return &Checker{
		client: client,
		config: cfg,
		branch: branch,
	}
}

// CheckAll checks every row and returns outcomes in input order. Up to
// concurrency rows are checked at once; a failing row never stops the others.
func (c *Checker) CheckAll(ctx context.Context, rows []sheet.InputRow, concurrency int) []Outcome {
	if concurrency < 1 {
		concurrency = 1
	}

	outcomes := make([]Outcome, len(rows))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, row := range rows {
		g.Go(func() error {
			outcomes[i] = Outcome{Row: row, Result: c.checkRow(ctx, i+1, len(rows), row)}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (c *Checker) checkRow(ctx context.Context, n, total int, row sheet.InputRow) Result {
	fullName := github.ResolveRepository(row.RepositoryURL, c.config.Host)
	logger := slog.With(
		"row", row.Index,
		"repository", fullName,
		"addon", row.DirectoryName,
		"branch", c.branch,
	)

	var result Result
	if err := ctx.Err(); err != nil {
		result = NotFound(err)
	} else {
		logger.Info("checking add-on", "progress", fmt.Sprintf("%d/%d", n, total), "url", row.RepositoryURL)
		result = c.Check(ctx, fullName, row.DirectoryName)
	}

	if result.Cause != nil {
		logger.Warn("add-on check fell back to not found", "error", result.Cause)
	}
	logger.Info("add-on checked", "status", result.Status.String())
	return result
}

// Check resolves the status of directory in the repository identified by
// fullName ("owner/name"). It never fails: problems end up as a NotFound
// result carrying the cause.
func (c *Checker) Check(ctx context.Context, fullName, directory string) Result {
	repo, ok := github.ParseRepository(fullName)
	if !ok {
		return NotFound(ErrUnresolvableRepository)
	}

	exists, lookupErr := c.client.PathExists(ctx, repo, directory, c.branch)
	switch {
	case lookupErr != nil:
		slog.Warn("directory lookup failed, searching open pull requests anyway",
			"repository", repo.String(),
			"addon", directory,
			"rate_limited", github.IsRateLimit(lookupErr),
			"error", lookupErr,
		)
	case exists:
		return Migrated(c.branch)
	default:
		slog.Info("add-on not found on branch, checking open pull requests",
			"repository", repo.String(),
			"addon", directory,
			"branch", c.branch,
		)
	}

	url, searchErr := c.findPendingReview(ctx, repo, directory)
	if url != "" {
		return PendingReview(url)
	}
	return NotFound(errors.Join(lookupErr, searchErr))
}

// findPendingReview scans open pull requests page by page and returns the URL
// of the first one whose title declares the add-on. Paging stops at the last
// page, on a non-advancing next link, on a failed request or at the page cap.
func (c *Checker) findPendingReview(ctx context.Context, repo github.Repository, directory string) (string, error) {
	matcher := NewTitleMatcher(c.branch, directory)
	page := 1

	for fetched := 0; ; fetched++ {
		if fetched >= c.config.PullsMaxPages {
			return "", fmt.Errorf("%w (%d pages, %s)", ErrPageLimit, fetched, repo)
		}

		pulls, next, err := c.client.ListOpenPullRequests(ctx, repo, page, c.config.PullsPerPage)
		if err != nil {
			return "", err
		}

		for _, pr := range pulls {
			if matcher.Match(pr.Title) {
				slog.Debug("matched pull request",
					"repository", repo.String(),
					"number", pr.Number,
					"title", pr.Title,
				)
				return pr.HTMLURL, nil
			}
		}

		if next == 0 {
			return "", nil
		}
		if next <= page {
			slog.Warn("pull request pagination did not advance, stopping",
				"repository", repo.String(),
				"page", page,
				"next", next,
			)
			return "", nil
		}
		page = next
	}
}

// OutputRows renders outcomes for the result writer.
func OutputRows(outcomes []Outcome) []sheet.OutputRow {
	rows := make([]sheet.OutputRow, len(outcomes))
	for i, o := range outcomes {
		rows[i] = sheet.OutputRow{InputRow: o.Row, Status: o.Result.Message()}
	}
	return rows
}

// Summary counts outcomes per status.
func Summary(outcomes []Outcome) map[Status]int {
	counts := make(map[Status]int)
	for _, o := range outcomes {
		counts[o.Result.Status]++
	}
	return counts
}
