package repository

import (
	"context"
	"time"
)

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"browser_download_url"`
}

// Release is a published set of assets identified by its tag.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}

// ReleaseSource defines the interface for fetching releases
type ReleaseSource interface {
	// ListReleases returns the most recent releases, newest first.
	ListReleases(ctx context.Context, perPage int) ([]Release, error)
	// GetReleaseByTag returns the release published under tag.
	GetReleaseByTag(ctx context.Context, tag string) (*Release, error)
}
