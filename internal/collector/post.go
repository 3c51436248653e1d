package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	postClientTimeout    = 15 * time.Second
	postMaxResponseBytes = 1 << 20 // 1MB
)

// PostFetcher retrieves a single social post through a lookup API
// templated as {base}/{handle}/status/{id}. The handle and post id come
// from the last two path segments of the post URL itself.
type PostFetcher struct {
	base   string
	client *http.Client
}

func NewPostFetcher(base string) *PostFetcher {
	return &PostFetcher{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: postClientTimeout},
	}
}

type postEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Tweet   struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
		Author    struct {
			Name       string `json:"name"`
			ScreenName string `json:"screen_name"`
		} `json:"author"`
		Likes    int64 `json:"like_count"`
		Retweets int64 `json:"retweet_count"`
		Views    struct {
			Count int64 `json:"count"`
		} `json:"views"`
	} `json:"tweet"`
}

// Fetch looks up one post. Unlike feed fetches, the caller gets an
// explicit nil on any failure so "no post" is distinguishable from a
// feed that happened to yield zero entries.
func (f *PostFetcher) Fetch(postURL string) (*RawPost, error) {
	handle, postID, err := SplitPostURL(postURL)
	if err != nil {
		return nil, err
	}

	apiURL := fmt.Sprintf("%s/%s/status/%s", f.base, handle, postID)
	req, err := http.NewRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("post: build request %s: %w", apiURL, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post: fetch %s: %w", apiURL, err)
	}
	defer resp.Body.Close()

	var env postEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, postMaxResponseBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("post: decode %s: %w", apiURL, err)
	}

	if env.Code != http.StatusOK {
		return nil, fmt.Errorf("post: %s: api code %d (%s)", apiURL, env.Code, env.Message)
	}

	return &RawPost{
		ID:        env.Tweet.ID,
		Author:    env.Tweet.Author.Name,
		Handle:    env.Tweet.Author.ScreenName,
		Content:   env.Tweet.Text,
		CreatedAt: env.Tweet.CreatedAt,
		URL:       postURL,
		Likes:     env.Tweet.Likes,
		Retweets:  env.Tweet.Retweets,
		Views:     env.Tweet.Views.Count,
	}, nil
}

// SplitPostURL extracts the handle and post id from a post URL like
// https://x.com/karpathy/status/1896866532301783062.
func SplitPostURL(postURL string) (handle, postID string, err error) {
	parts := strings.Split(strings.TrimRight(postURL, "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("post: malformed url %q", postURL)
	}
	postID = parts[len(parts)-1]
	handle = parts[len(parts)-2]
	// Canonical post URLs have a /status/ segment between handle and id.
	if handle == "status" && len(parts) >= 3 {
		handle = parts[len(parts)-3]
	}
	if handle == "" || postID == "" {
		return "", "", fmt.Errorf("post: malformed url %q", postURL)
	}
	return handle, postID, nil
}
