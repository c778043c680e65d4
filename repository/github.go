package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/logging"
)

// GitHubOptions configures a GitHubClient.
type GitHubOptions struct {
	APIURL    string
	Owner     string
	Repo      string
	UserAgent string
	// Token is sent as a bearer token when set, raising rate limits.
	Token   string
	Timeout time.Duration
}

// GitHubClient implements ReleaseSource against the GitHub REST API
type GitHubClient struct {
	httpClient *http.Client
	opts       GitHubOptions
}

// NewGitHubClient creates a new GitHubClient
func NewGitHubClient(opts GitHubOptions) *GitHubClient {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	opts.APIURL = strings.TrimSuffix(opts.APIURL, "/")
	return &GitHubClient{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
	}
}

func (c *GitHubClient) releasesURL(parts ...string) string {
	u := c.opts.APIURL + "/repos/" + url.PathEscape(c.opts.Owner) + "/" + url.PathEscape(c.opts.Repo) + "/releases"
	for _, p := range parts {
		u += "/" + url.PathEscape(p)
	}
	return u
}

// ListReleases fetches one page of the most recent releases.
func (c *GitHubClient) ListReleases(ctx context.Context, perPage int) ([]Release, error) {
	u := c.releasesURL() + "?per_page=" + strconv.Itoa(perPage)

	var releases []Release
	if err := c.getJSON(ctx, u, &releases); err != nil {
		return nil, err
	}

	logging.LogDebug("📦 Received %d releases", len(releases))
	return releases, nil
}

// GetReleaseByTag fetches a single release.
func (c *GitHubClient) GetReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	var release Release
	if err := c.getJSON(ctx, c.releasesURL("tags", tag), &release); err != nil {
		return nil, err
	}
	return &release, nil
}

func (c *GitHubClient) getJSON(ctx context.Context, u string, out interface{}) error {
	logging.LogDebug("🔍 GitHub API URL: %s", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return core.Cancelled(ctx)
		}
		return fmt.Errorf("%w: failed to query GitHub API: %w", core.ErrUpstreamAPI, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s not found (404)", core.ErrUpstreamAPI, u)
	default:
		return fmt.Errorf("%w: GitHub API returned %s", core.ErrUpstreamAPI, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode JSON response: %w", core.ErrUpstreamAPI, err)
	}
	return nil
}
