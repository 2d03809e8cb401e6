package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const youtubeAPIBase = "https://www.googleapis.com/youtube/v3"

// ErrQuotaExhausted means every configured API key has hit its daily quota.
var ErrQuotaExhausted = errors.New("all youtube api keys exhausted")

// errKeyQuota marks a single key's quota being spent; the client rotates and
// retries on it.
var errKeyQuota = errors.New("quota exceeded for current key")

// YouTubeClient wraps the YouTube Data API v3 with multi-key quota rotation:
// when the active key returns a 403 quota error the client moves to the next
// key and retries the call, and only surfaces ErrQuotaExhausted once every key
// is spent.
type YouTubeClient struct {
	keys       []string
	keyIndex   int
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger

	// per-key call counts, index-aligned with keys
	callsPerKey []int
}

// NewYouTubeClient requires at least one API key.
func NewYouTubeClient(keys []string, logger *zap.Logger) (*YouTubeClient, error) {
	if len(keys) == 0 {
		return nil, errors.New("at least one youtube api key required")
	}
	return &YouTubeClient{
		keys:        keys,
		httpClient:  &http.Client{},
		baseURL:     youtubeAPIBase,
		logger:      logger,
		callsPerKey: make([]int, len(keys)),
	}, nil
}

// TotalCalls reports how many API calls were made across all keys.
func (c *YouTubeClient) TotalCalls() int {
	return lo.Sum(c.callsPerKey)
}

// SearchVideos searches recent videos for a keyword and returns the unique
// channel ids of their uploaders, in result order. Searching videos rather
// than channels surfaces active creators; publishedAfter biases toward
// channels still uploading.
func (c *YouTubeClient) SearchVideos(ctx context.Context, keyword, publishedAfter string, maxResults int) ([]string, error) {
	params := url.Values{
		"q":          {keyword},
		"part":       {"snippet"},
		"type":       {"video"},
		"order":      {"relevance"},
		"maxResults": {strconv.Itoa(maxResults)},
	}
	if publishedAfter != "" {
		params.Set("publishedAfter", publishedAfter)
	}

	var resp searchListResponse
	if err := c.call(ctx, "/search", params, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	seen := make(map[string]struct{}, len(resp.Items))
	channelIDs := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		id := item.Snippet.ChannelID
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		channelIDs = append(channelIDs, id)
	}
	return channelIDs, nil
}

// ChannelDetails fetches a channel's snippet and statistics. It returns
// (nil, nil) when the channel does not exist or hides its subscriber count.
func (c *YouTubeClient) ChannelDetails(ctx context.Context, channelID string) (*Channel, error) {
	params := url.Values{
		"part": {"snippet,statistics"},
		"id":   {channelID},
	}

	var resp channelListResponse
	if err := c.call(ctx, "/channels", params, &resp); err != nil {
		return nil, fmt.Errorf("channel %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	item := resp.Items[0]
	if item.Statistics.HiddenSubscriberCount || item.Statistics.SubscriberCount == "" {
		return nil, nil
	}
	subs, err := strconv.ParseInt(item.Statistics.SubscriberCount, 10, 64)
	if err != nil {
		return nil, nil
	}

	handle := item.Snippet.CustomURL
	if handle == "" {
		handle = channelID
	}
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}

	return &Channel{
		ID:          channelID,
		Title:       item.Snippet.Title,
		Handle:      handle,
		Description: item.Snippet.Description,
		Subscribers: subs,
		VideoCount:  parseCount(item.Statistics.VideoCount),
		ViewCount:   parseCount(item.Statistics.ViewCount),
	}, nil
}

// RecentVideosWithStats returns a channel's latest uploads with statistics in
// two API calls: a date-ordered search for ids, then one batched videos.list.
func (c *YouTubeClient) RecentVideosWithStats(ctx context.Context, channelID string, maxResults int) ([]Video, error) {
	searchParams := url.Values{
		"channelId":  {channelID},
		"part":       {"snippet"},
		"type":       {"video"},
		"order":      {"date"},
		"maxResults": {strconv.Itoa(maxResults)},
	}

	var search searchListResponse
	if err := c.call(ctx, "/search", searchParams, &search); err != nil {
		return nil, fmt.Errorf("list uploads for %s: %w", channelID, err)
	}
	if len(search.Items) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}

	videoParams := url.Values{
		"part": {"snippet,statistics"},
		"id":   {strings.Join(ids, ",")},
	}

	var details videoListResponse
	if err := c.call(ctx, "/videos", videoParams, &details); err != nil {
		return nil, fmt.Errorf("video stats for %s: %w", channelID, err)
	}

	videos := make([]Video, 0, len(details.Items))
	for _, item := range details.Items {
		videos = append(videos, Video{
			ID:          item.ID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Views:       parseCount(item.Statistics.ViewCount),
			Comments:    parseCount(item.Statistics.CommentCount),
			Likes:       parseCount(item.Statistics.LikeCount),
		})
	}
	return videos, nil
}

// call performs one API request, rotating keys until one succeeds or all are
// exhausted.
func (c *YouTubeClient) call(ctx context.Context, path string, params url.Values, out any) error {
	for {
		if c.keyIndex >= len(c.keys) {
			return ErrQuotaExhausted
		}
		err := c.callWithKey(ctx, c.keys[c.keyIndex], path, params, out)
		if errors.Is(err, errKeyQuota) {
			c.logger.Warn("youtube api key quota spent, rotating",
				zap.Int("key_index", c.keyIndex),
				zap.Int("calls_on_key", c.callsPerKey[c.keyIndex]),
			)
			c.keyIndex++
			continue
		}
		return err
	}
}

func (c *YouTubeClient) callWithKey(ctx context.Context, key, path string, params url.Values, out any) error {
	c.callsPerKey[c.keyIndex]++

	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("key", key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("youtube api request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read youtube response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusForbidden && isQuotaError(body) {
			return errKeyQuota
		}
		return fmt.Errorf("youtube api status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return json.Unmarshal(body, out)
}

func isQuotaError(body []byte) bool {
	var apiErr struct {
		Error struct {
			Errors []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return false
	}
	for _, e := range apiErr.Error.Errors {
		if e.Reason == "quotaExceeded" || e.Reason == "dailyLimitExceeded" {
			return true
		}
	}
	return false
}

func parseCount(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Wire types for the subset of the Data API responses the client reads.

type searchListResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			ChannelID    string `json:"channelId"`
			ChannelTitle string `json:"channelTitle"`
			Title        string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

type channelListResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			CustomURL   string `json:"customUrl"`
			Description string `json:"description"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount       string `json:"subscriberCount"`
			HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
			VideoCount            string `json:"videoCount"`
			ViewCount             string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			CommentCount string `json:"commentCount"`
			LikeCount    string `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}
