package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFormatFollowers(t *testing.T) {
	assert.Equal(t, "42.3K YT", FormatFollowers(42300))
	assert.Equal(t, "10.0K YT", FormatFollowers(10000))
	assert.Equal(t, "950 YT", FormatFollowers(950))
}

func TestEngagement(t *testing.T) {
	videos := []Video{
		{Views: 10000, Comments: 100},
		{Views: 20000, Comments: 200},
		{Views: 30000, Comments: 300},
		{Views: 40000, Comments: 400},
		{Views: 50000, Comments: 500},
		// Sixth video is outside the sample and must not shift the average.
		{Views: 1, Comments: 999999},
	}
	assert.Equal(t, "300 avg comments, 1.00% engagement rate", Engagement(videos))
}

func TestEngagement_NoVideos(t *testing.T) {
	assert.Equal(t, "No recent videos", Engagement(nil))
}

func TestEngagement_ZeroViews(t *testing.T) {
	assert.Equal(t, "5 avg comments per video", Engagement([]Video{{Views: 0, Comments: 5}}))
}

func TestSheet_AppendAndDedupe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "influencers.csv")

	s, err := OpenSheet(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Append(Influencer{
		Name: "Some Creator", Handle: "@SomeCreator", Platform: "YT",
		FollowerCount: "42.3K YT", Niche: "Dating Advice", Status: "Found",
	}))
	assert.True(t, s.Seen("@somecreator"))
	assert.True(t, s.Seen("SomeCreator"))
	assert.False(t, s.Seen("@othercreator"))

	// Reopening must pick the handle back up from disk.
	reopened, err := OpenSheet(path)
	require.NoError(t, err)
	assert.True(t, reopened.Seen("@somecreator"))
	assert.Equal(t, 1, reopened.Len())

	// Header is written exactly once.
	require.NoError(t, reopened.Append(Influencer{Name: "Other", Handle: "@other"}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, countOccurrences(string(data), "Follower Count"))
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}

func TestParseVerdict(t *testing.T) {
	v, err := parseVerdict("YES | Talks about texting and first dates constantly | Dating Advice")
	require.NoError(t, err)
	assert.True(t, v.Match)
	assert.Equal(t, "Dating Advice", v.Category)

	v, err = parseVerdict("NO | Pure fitness channel | Fitness")
	require.NoError(t, err)
	assert.False(t, v.Match)

	_, err = parseVerdict("maybe, hard to say")
	require.Error(t, err)
}

type fakeCompleter struct {
	reply      string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if n := len(req.Messages); n > 0 {
		f.lastPrompt = req.Messages[n-1].Content
	}
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
	}, nil
}

func newTestAnalyzer(groq, fallback chatCompleter) *NicheAnalyzer {
	a := NewNicheAnalyzer("", "", "DATING ADVICE + SELF-IMPROVEMENT for men", zap.NewNop())
	a.groq = groq
	a.fallback = fallback
	a.limiter.SetLimit(1000)
	return a
}

func TestNicheAnalyzer_Verify(t *testing.T) {
	groq := &fakeCompleter{reply: "YES | Channel is all about approach anxiety | Social Skills + Dating"}
	a := newTestAnalyzer(groq, nil)

	v, err := a.Verify(context.Background(), &Channel{Title: "C", Description: "desc"}, []Video{{Title: "t"}}, "")
	require.NoError(t, err)
	assert.True(t, v.Match)
	assert.Equal(t, "Social Skills + Dating", v.Category)
	assert.Equal(t, 1, groq.calls)
}

func TestNicheAnalyzer_TranscriptIncludedInPrompt(t *testing.T) {
	groq := &fakeCompleter{reply: "YES | Mentions approach anxiety in the transcript | Dating Advice"}
	a := newTestAnalyzer(groq, nil)

	_, err := a.Verify(context.Background(), &Channel{Title: "C"}, nil, "so today we talk about approach anxiety")
	require.NoError(t, err)
	assert.Contains(t, groq.lastPrompt, "approach anxiety")
	assert.Contains(t, groq.lastPrompt, "Sampled Video Transcript")
}

func TestNicheAnalyzer_FallsBackWhenGroqFails(t *testing.T) {
	groq := &fakeCompleter{err: errors.New("rate limited")}
	fallback := &fakeCompleter{reply: "NO | Pure productivity content | Productivity"}
	a := newTestAnalyzer(groq, fallback)

	v, err := a.Verify(context.Background(), &Channel{}, nil, "")
	require.NoError(t, err)
	assert.False(t, v.Match)
	assert.Equal(t, 1, groq.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestNicheAnalyzer_NoProviders(t *testing.T) {
	a := NewNicheAnalyzer("", "", "anything", zap.NewNop())
	_, err := a.Verify(context.Background(), &Channel{}, nil, "")
	require.Error(t, err)
}
