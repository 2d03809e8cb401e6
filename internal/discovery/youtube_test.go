package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestYouTubeClient(t *testing.T, keys []string, handler http.Handler) *YouTubeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewYouTubeClient(keys, zap.NewNop())
	require.NoError(t, err)
	c.baseURL = srv.URL
	return c
}

func quotaErrorBody() map[string]any {
	return map[string]any{
		"error": map[string]any{
			"code":    403,
			"message": "quota exceeded",
			"errors":  []map[string]any{{"reason": "quotaExceeded"}},
		},
	}
}

func TestSearchVideos_DeduplicatesChannels(t *testing.T) {
	c := newTestYouTubeClient(t, []string{"k1"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		assert.Equal(t, "k1", r.URL.Query().Get("key"))
		assert.Equal(t, "2024-01-01T00:00:00Z", r.URL.Query().Get("publishedAfter"))

		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": map[string]any{"videoId": "v1"}, "snippet": map[string]any{"channelId": "UC_a"}},
				{"id": map[string]any{"videoId": "v2"}, "snippet": map[string]any{"channelId": "UC_b"}},
				{"id": map[string]any{"videoId": "v3"}, "snippet": map[string]any{"channelId": "UC_a"}},
			},
		})
	}))

	ids, err := c.SearchVideos(context.Background(), "how to test", "2024-01-01T00:00:00Z", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"UC_a", "UC_b"}, ids)
}

func TestCall_RotatesKeysOnQuota(t *testing.T) {
	var keysUsed []string
	c := newTestYouTubeClient(t, []string{"spent", "fresh"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		keysUsed = append(keysUsed, key)
		if key == "spent" {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(quotaErrorBody())
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": map[string]any{"videoId": "v1"}, "snippet": map[string]any{"channelId": "UC_a"}},
			},
		})
	}))

	ids, err := c.SearchVideos(context.Background(), "anything", "", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"UC_a"}, ids)
	assert.Equal(t, []string{"spent", "fresh"}, keysUsed)
	assert.Equal(t, 2, c.TotalCalls())

	// Subsequent calls stay on the fresh key.
	_, err = c.SearchVideos(context.Background(), "again", "", 10)
	require.NoError(t, err)
	assert.Equal(t, "fresh", keysUsed[len(keysUsed)-1])
}

func TestCall_AllKeysExhausted(t *testing.T) {
	var calls atomic.Int32
	c := newTestYouTubeClient(t, []string{"k1", "k2"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(quotaErrorBody())
	}))

	_, err := c.SearchVideos(context.Background(), "anything", "", 10)
	require.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCall_Non403NotRotated(t *testing.T) {
	c := newTestYouTubeClient(t, []string{"k1", "k2"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))

	_, err := c.SearchVideos(context.Background(), "anything", "", 10)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrQuotaExhausted)
	assert.Equal(t, 1, c.TotalCalls())
}

func TestChannelDetails(t *testing.T) {
	c := newTestYouTubeClient(t, []string{"k1"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels", r.URL.Path)
		assert.Equal(t, "snippet,statistics", r.URL.Query().Get("part"))

		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{
				"snippet": map[string]any{
					"title":       "Some Creator",
					"customUrl":   "@somecreator",
					"description": "dating advice for men",
				},
				"statistics": map[string]any{
					"subscriberCount": "42300",
					"videoCount":      "120",
					"viewCount":       "9000000",
				},
			}},
		})
	}))

	ch, err := c.ChannelDetails(context.Background(), "UC_a")
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.Equal(t, "Some Creator", ch.Title)
	assert.Equal(t, "@somecreator", ch.Handle)
	assert.Equal(t, int64(42300), ch.Subscribers)
}

func TestChannelDetails_HiddenSubscribersSkipped(t *testing.T) {
	c := newTestYouTubeClient(t, []string{"k1"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{
				"snippet":    map[string]any{"title": "Hidden"},
				"statistics": map[string]any{"hiddenSubscriberCount": true},
			}},
		})
	}))

	ch, err := c.ChannelDetails(context.Background(), "UC_a")
	require.NoError(t, err)
	assert.Nil(t, ch)
}

func TestRecentVideosWithStats(t *testing.T) {
	c := newTestYouTubeClient(t, []string{"k1"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "date", r.URL.Query().Get("order"))
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": map[string]any{"videoId": "v1"}},
					{"id": map[string]any{"videoId": "v2"}},
				},
			})
		case "/videos":
			assert.Equal(t, "v1,v2", r.URL.Query().Get("id"))
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{
						"id":         "v1",
						"snippet":    map[string]any{"title": "How to test"},
						"statistics": map[string]any{"viewCount": "5000", "commentCount": "40"},
					},
					{
						"id":         "v2",
						"snippet":    map[string]any{"title": "Another one"},
						"statistics": map[string]any{"viewCount": "1200", "commentCount": "8"},
					},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	videos, err := c.RecentVideosWithStats(context.Background(), "UC_a", 15)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, int64(5000), videos[0].Views)
	assert.Equal(t, int64(8), videos[1].Comments)
	assert.Equal(t, 2, c.TotalCalls())
}
