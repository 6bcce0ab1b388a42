package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
)

// SocialFetcher returns a live count (followers, stars) for a profile URL.
type SocialFetcher interface {
	Fetch(ctx context.Context, sourceURL string) (int64, error)
}

var ErrUnsupportedPlatform = errors.New("platform not supported for live counts")

// DetectPlatform names the social platform a URL points at, or "unknown".
func DetectPlatform(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "unknown"
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "linkedin.com"):
		return "linkedin"
	case strings.Contains(host, "github.com"):
		return "github"
	case strings.Contains(host, "twitter.com"), host == "x.com", strings.HasSuffix(host, ".x.com"):
		return "twitter"
	case strings.Contains(host, "instagram.com"):
		return "instagram"
	case strings.Contains(host, "youtube.com"), strings.Contains(host, "youtu.be"):
		return "youtube"
	case strings.Contains(host, "tiktok.com"):
		return "tiktok"
	case strings.Contains(host, "facebook.com"):
		return "facebook"
	default:
		return "unknown"
	}
}

// SocialClient is a stateless fetcher. Only GitHub exposes counts through a
// public API; every other platform returns ErrUnsupportedPlatform so callers
// keep their stored value.
type SocialClient struct {
	gh      *github.Client
	timeout time.Duration
}

func NewSocialClient(timeout time.Duration, githubToken string) *SocialClient {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	gh := github.NewClient(&http.Client{Timeout: timeout})
	if githubToken != "" {
		gh = gh.WithAuthToken(githubToken)
	}
	gh.UserAgent = "portfolio-backend"
	return &SocialClient{gh: gh, timeout: timeout}
}

// Fetch returns followers for github.com/<user> and stargazers for
// github.com/<user>/<repo>.
func (c *SocialClient) Fetch(ctx context.Context, sourceURL string) (int64, error) {
	platform := DetectPlatform(sourceURL)
	if platform != "github" {
		return 0, fmt.Errorf("%s: %w", platform, ErrUnsupportedPlatform)
	}

	u, _ := url.Parse(sourceURL)
	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return 0, apperr.Invalid("sourceUrl", "GitHub URL must name a user or repository")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if len(parts) == 1 {
		user, _, err := c.gh.Users.Get(ctx, parts[0])
		if err != nil {
			return 0, apperr.External("github", err)
		}
		return int64(user.GetFollowers()), nil
	}
	repo, _, err := c.gh.Repositories.Get(ctx, parts[0], strings.TrimSuffix(parts[1], ".git"))
	if err != nil {
		return 0, apperr.External("github", err)
	}
	return int64(repo.GetStargazersCount()), nil
}
