// Package discovery finds micro-influencer YouTube channels for a niche:
// video-first keyword search, subscriber filtering, LLM niche verification,
// engagement scoring and CSV export.
package discovery

import "fmt"

// Channel is a candidate channel with the statistics that gate discovery.
type Channel struct {
	ID          string
	Title       string
	Handle      string
	Description string
	Subscribers int64
	VideoCount  int64
	ViewCount   int64
}

// Video is a channel upload with the statistics used for engagement scoring
// and niche verification.
type Video struct {
	ID          string
	Title       string
	Description string
	Views       int64
	Comments    int64
	Likes       int64
}

// Influencer is one accepted channel as it appears in the outreach sheet.
type Influencer struct {
	Name          string
	Sex           string
	Handle        string
	Platform      string
	FollowerCount string
	Contact       string
	Engagement    string
	Niche         string
	Notes         string
	Status        string
}

// FormatFollowers renders a subscriber count the way the outreach sheet
// expects, e.g. "42.3K YT".
func FormatFollowers(subscribers int64) string {
	if subscribers >= 1000 {
		return fmt.Sprintf("%.1fK YT", float64(subscribers)/1000)
	}
	return fmt.Sprintf("%d YT", subscribers)
}

// Engagement summarizes average comment volume against views over a channel's
// recent uploads. Only the first five videos count; that keeps the number
// comparable across channels with very different upload cadences.
func Engagement(videos []Video) string {
	if len(videos) == 0 {
		return "No recent videos"
	}
	sample := videos
	if len(sample) > 5 {
		sample = sample[:5]
	}

	var totalViews, totalComments int64
	for _, v := range sample {
		totalViews += v.Views
		totalComments += v.Comments
	}

	avgViews := totalViews / int64(len(sample))
	avgComments := totalComments / int64(len(sample))
	if avgViews > 0 {
		rate := float64(avgComments) / float64(avgViews) * 100
		return fmt.Sprintf("%d avg comments, %.2f%% engagement rate", avgComments, rate)
	}
	return fmt.Sprintf("%d avg comments per video", avgComments)
}
