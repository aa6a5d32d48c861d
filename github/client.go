package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/adasatorres/check-migration-addons/config"
)

// Client is a GitHub API client.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub client. An empty token gives anonymous access.
func NewClient(ctx context.Context, token string, cfg *config.GitHubConfig) (*Client, error) {
	httpClient := &http.Client{}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	httpClient.Timeout = cfg.Timeout()

	ghClient := gh.NewClient(httpClient)
	if cfg.APIURL != "" {
		raw := cfg.APIURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		baseURL, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", cfg.APIURL, err)
		}
		ghClient.BaseURL = baseURL
	}

	return &Client{gh: ghClient}, nil
}

// PathExists reports whether path exists at ref. A 404 is (false, nil);
// any other failure is returned as a *StatusError or transport error.
func (c *Client) PathExists(ctx context.Context, repo Repository, path, ref string) (bool, error) {
	opts := &gh.RepositoryContentGetOptions{Ref: ref}

	_, _, resp, err := c.gh.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, wrapStatus(fmt.Sprintf("failed to get contents (%s/%s)", repo, path), resp, err)
	}
	return true, nil
}

// ListOpenPullRequests returns one page of open pull requests and the next
// page number taken from the Link header (0 when there is none).
func (c *Client) ListOpenPullRequests(ctx context.Context, repo Repository, page, perPage int) ([]PullRequest, int, error) {
	opts := &gh.PullRequestListOptions{
		State: "open",
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	result, resp, err := c.gh.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		return nil, 0, wrapStatus(fmt.Sprintf("failed to list pull requests (%s, page=%d)", repo, page), resp, err)
	}

	pulls := make([]PullRequest, 0, len(result))
	for _, pr := range result {
		pulls = append(pulls, PullRequest{
			Number:  pr.GetNumber(),
			Title:   pr.GetTitle(),
			HTMLURL: pr.GetHTMLURL(),
		})
	}

	return pulls, resp.NextPage, nil
}

// StatusError is a GitHub API failure with the HTTP status it came back with.
type StatusError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (status=%d): %v", e.Op, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

func wrapStatus(op string, resp *gh.Response, err error) error {
	if resp != nil {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRateLimit reports whether err was caused by GitHub's rate limiting.
func IsRateLimit(err error) bool {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	return errors.As(err, &rateErr) || errors.As(err, &abuseErr)
}
