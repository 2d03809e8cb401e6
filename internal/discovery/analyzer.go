package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	groqBaseURL = "https://api.groq.com/openai/v1"
	groqModel   = "meta-llama/llama-4-scout-17b-16e-instruct"

	analystSystemPrompt = "You are an expert YouTube analytics specialist. " +
		"Provide concise, professional analysis that would be valuable for influencer marketing assessments."
)

// Verdict is the parsed result of a niche verification.
type Verdict struct {
	Match       bool
	Explanation string
	Category    string
}

// chatCompleter is the slice of the OpenAI client the analyzer uses.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NicheAnalyzer decides whether a channel fits the target niche by showing an
// LLM the channel's recent video titles and descriptions. Groq is preferred
// for cost, OpenAI is the fallback; both speak the same chat completion API.
// A shared rate limiter keeps the analyzer under Groq's free-tier limits.
type NicheAnalyzer struct {
	groq    chatCompleter
	fallback chatCompleter
	niche   string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewNicheAnalyzer builds an analyzer for the given niche description. Either
// key may be empty; with neither the analyzer returns an error from Verify.
func NewNicheAnalyzer(groqKey, openaiKey, niche string, logger *zap.Logger) *NicheAnalyzer {
	a := &NicheAnalyzer{
		niche: niche,
		// one call every two seconds, matching Groq free-tier headroom
		limiter: rate.NewLimiter(rate.Limit(0.5), 1),
		logger:  logger,
	}
	if groqKey != "" {
		cfg := openai.DefaultConfig(groqKey)
		cfg.BaseURL = groqBaseURL
		a.groq = openai.NewClientWithConfig(cfg)
	}
	if openaiKey != "" {
		a.fallback = openai.NewClient(openaiKey)
	}
	return a
}

// Verify asks the LLM whether the channel fits the niche, using the already
// fetched videos so no extra YouTube quota is spent. transcript may be empty;
// when present it is a sampled excerpt of one of the channel's videos.
func (a *NicheAnalyzer) Verify(ctx context.Context, ch *Channel, videos []Video, transcript string) (*Verdict, error) {
	if a.groq == nil && a.fallback == nil {
		return nil, errors.New("no ai provider configured")
	}

	sample := videos
	if len(sample) > 5 {
		sample = sample[:5]
	}
	var sb strings.Builder
	for _, v := range sample {
		desc := v.Description
		if len(desc) > 200 {
			desc = desc[:200]
		}
		fmt.Fprintf(&sb, "Title: %s\nDescription: %s...\n\n", v.Title, desc)
	}

	channelDesc := ch.Description
	if len(channelDesc) > 300 {
		channelDesc = channelDesc[:300]
	}

	transcriptSection := ""
	if transcript != "" {
		if len(transcript) > 2000 {
			transcript = transcript[:2000]
		}
		transcriptSection = fmt.Sprintf("\nSampled Video Transcript:\n%s\n", transcript)
	}

	prompt := fmt.Sprintf(`Analyze these YouTube videos and determine if this channel fits our target niche: %s.

Video Content:
%s
Channel Description: %s
%s
QUESTION: Does this channel clearly serve the target niche above?

Respond with:
1. YES or NO
2. One sentence explaining why
3. Specific category label for the channel

Format: YES/NO | Explanation | Category`, a.niche, sb.String(), channelDesc, transcriptSection)

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseVerdict(raw)
}

func (a *NicheAnalyzer) complete(ctx context.Context, prompt string) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model: groqModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analystSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   1024,
	}

	if a.groq != nil {
		resp, err := a.groq.CreateChatCompletion(ctx, req)
		if err == nil && len(resp.Choices) > 0 {
			return resp.Choices[0].Message.Content, nil
		}
		a.logger.Warn("groq completion failed, falling back", zap.Error(err))
	}

	if a.fallback == nil {
		return "", errors.New("groq failed and no fallback configured")
	}

	req.Model = openai.GPT4
	resp, err := a.fallback.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("fallback completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// parseVerdict expects "YES/NO | Explanation | Category". Anything that does
// not open with YES is treated as a rejection.
func parseVerdict(raw string) (*Verdict, error) {
	parts := strings.Split(raw, "|")
	if len(parts) < 3 {
		return nil, fmt.Errorf("unparseable verdict: %q", truncate(raw, 120))
	}
	decision := strings.ToUpper(strings.TrimSpace(parts[0]))
	return &Verdict{
		Match:       strings.HasPrefix(decision, "YES"),
		Explanation: strings.TrimSpace(parts[1]),
		Category:    strings.TrimSpace(parts[2]),
	}, nil
}
