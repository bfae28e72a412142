// Package profile fetches public Kaggle profile data over HTTP: the raw
// profile page for bio verification and the profile JSON endpoint for the
// get command.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	linktypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/domain/types"
)

// Client is the profile-fetching surface the kagglelink service consumes.
type Client interface {
	// ProfileContainsCode reports whether the profile page body contains
	// the verification code.
	ProfileContainsCode(ctx context.Context, kaggleID competitiontypes.KaggleID, code string) (bool, error)
	// FetchProfile returns the public profile data, nil when the profile
	// JSON endpoint is unavailable.
	FetchProfile(ctx context.Context, kaggleID competitiontypes.KaggleID) (*linktypes.Profile, error)
}

// HTTPClient implements Client against kaggle.com.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client against the real kaggle.com with a sane
// timeout.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		BaseURL: "https://www.kaggle.com",
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	// Profile pages are large but bounded; cap reads defensively.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func (c *HTTPClient) ProfileContainsCode(ctx context.Context, kaggleID competitiontypes.KaggleID, code string) (bool, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/%s", c.BaseURL, kaggleID))
	if err != nil {
		return false, err
	}
	return strings.Contains(string(body), code), nil
}

// profileJSON mirrors the fields of Kaggle's profile JSON endpoint that the
// bot cares about.
type profileJSON struct {
	DisplayName          string `json:"displayName"`
	UserSince            string `json:"userSince"`
	FollowersCount       int    `json:"followersCount"`
	FollowingCount       int    `json:"followingCount"`
	TotalCompetitions    int    `json:"totalCompetitions"`
	TotalKernels         int    `json:"totalKernels"`
	TotalDiscussionPosts int    `json:"totalDiscussionPosts"`
	AvatarURL            string `json:"avatarUrl"`
	AboutMe              string `json:"aboutMe"`
	PerformanceTier      int    `json:"performanceTier"`
}

func (c *HTTPClient) FetchProfile(ctx context.Context, kaggleID competitiontypes.KaggleID) (*linktypes.Profile, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/%s/json", c.BaseURL, kaggleID))
	if err != nil {
		return nil, err
	}

	var raw profileJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode profile json: %w", err)
	}

	displayName := raw.DisplayName
	if displayName == "" {
		displayName = string(kaggleID)
	}
	// userSince arrives as an RFC 3339 timestamp; keep the date part.
	joined, _, _ := strings.Cut(raw.UserSince, "T")

	return &linktypes.Profile{
		KaggleID:     kaggleID,
		DisplayName:  displayName,
		URL:          fmt.Sprintf("%s/%s", c.BaseURL, kaggleID),
		Bio:          raw.AboutMe,
		AvatarURL:    raw.AvatarURL,
		JoinedOn:     joined,
		Followers:    raw.FollowersCount,
		Following:    raw.FollowingCount,
		Competitions: raw.TotalCompetitions,
		Notebooks:    raw.TotalKernels,
		Discussions:  raw.TotalDiscussionPosts,
		Tier:         raw.PerformanceTier,
	}, nil
}
