package discovery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	"youtube-scout/internal/client"
)

// FinderConfig tunes a discovery run.
type FinderConfig struct {
	Keywords       []string
	Target         int
	MinSubscribers int64
	MaxSubscribers int64
	// A channel qualifies only if MinQualifying of its SampleSize most
	// recent videos have at least MinViews views.
	SampleSize    int
	MinViews      int64
	MinQualifying int
	MaxPerKeyword int
	// Only consider videos published after this RFC3339 timestamp; active
	// creators keep uploading.
	PublishedAfter string

	// SampleTranscripts, when true, runs one upload per accepted channel
	// through the transcription server and stores a snippet in Notes.
	SampleTranscripts bool

	Progress bool
}

// DefaultFinderConfig targets classic micro-influencer territory.
func DefaultFinderConfig() FinderConfig {
	return FinderConfig{
		Target:         30,
		MinSubscribers: 10_000,
		MaxSubscribers: 100_000,
		SampleSize:     15,
		MinViews:       1000,
		MinQualifying:  8,
		MaxPerKeyword:  50,
		PublishedAfter: "2024-01-01T00:00:00Z",
	}
}

// Finder runs video-to-channel discovery: search videos per keyword, collect
// their uploader channels, filter by subscriber band and view floor, verify
// niche fit with the analyzer, then append accepted channels to the sheet.
type Finder struct {
	yt         *YouTubeClient
	analyzer   *NicheAnalyzer
	scraper    *ContactScraper
	sheet      *Sheet
	transcribe *client.Client
	cfg        FinderConfig
	logger     *zap.Logger
}

// NewFinder wires a discovery run. transcribeClient may be nil; it is only
// used when cfg.SampleTranscripts is set.
func NewFinder(yt *YouTubeClient, analyzer *NicheAnalyzer, scraper *ContactScraper, sheet *Sheet, transcribeClient *client.Client, cfg FinderConfig, logger *zap.Logger) (*Finder, error) {
	if len(cfg.Keywords) == 0 {
		return nil, errors.New("at least one search keyword required")
	}
	if cfg.Target <= 0 {
		return nil, errors.New("target must be positive")
	}
	return &Finder{
		yt:         yt,
		analyzer:   analyzer,
		scraper:    scraper,
		sheet:      sheet,
		transcribe: transcribeClient,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// Run searches until the target is reached, the keywords are spent, or every
// API key's quota is exhausted. It returns how many influencers were accepted
// this run; quota exhaustion after partial progress is not an error.
func (f *Finder) Run(ctx context.Context) (int, error) {
	keywords := make([]string, len(f.cfg.Keywords))
	copy(keywords, f.cfg.Keywords)
	rand.Shuffle(len(keywords), func(i, j int) {
		keywords[i], keywords[j] = keywords[j], keywords[i]
	})

	var bar *mpb.Bar
	var progress *mpb.Progress
	if f.cfg.Progress {
		progress = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(120*time.Millisecond),
		)
		bar = progress.AddBar(int64(f.cfg.Target),
			mpb.PrependDecorators(
				decor.Name("influencers ", decor.WC{W: 12, C: decor.DindentRight}),
				decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(decor.NewPercentage("%.0f", decor.WCSyncSpace)),
		)
	}

	found := 0
	channelsSeen := 0

	for _, keyword := range keywords {
		if found >= f.cfg.Target {
			break
		}
		if err := ctx.Err(); err != nil {
			return found, err
		}

		f.logger.Info("searching keyword",
			zap.String("keyword", keyword),
			zap.Int("still_needed", f.cfg.Target-found),
		)

		channelIDs, err := f.yt.SearchVideos(ctx, keyword, f.cfg.PublishedAfter, f.cfg.MaxPerKeyword)
		if errors.Is(err, ErrQuotaExhausted) {
			f.logger.Warn("every api key exhausted, stopping", zap.Int("found", found))
			break
		}
		if err != nil {
			f.logger.Error("keyword search failed", zap.String("keyword", keyword), zap.Error(err))
			continue
		}

		for _, id := range channelIDs {
			if found >= f.cfg.Target {
				break
			}
			channelsSeen++

			accepted, err := f.evaluateChannel(ctx, id)
			if errors.Is(err, ErrQuotaExhausted) {
				f.logCallStats(found, channelsSeen)
				return found, nil
			}
			if err != nil {
				if ctx.Err() != nil {
					return found, ctx.Err()
				}
				f.logger.Warn("channel evaluation failed", zap.String("channel_id", id), zap.Error(err))
				continue
			}
			if accepted {
				found++
				if bar != nil {
					bar.Increment()
				}
			}
		}
	}

	if progress != nil {
		if bar != nil {
			bar.SetTotal(int64(f.cfg.Target), true)
		}
		progress.Wait()
	}

	f.logCallStats(found, channelsSeen)
	return found, nil
}

// evaluateChannel runs the full filter pipeline for one channel id and
// reports whether it was accepted onto the sheet.
func (f *Finder) evaluateChannel(ctx context.Context, channelID string) (bool, error) {
	ch, err := f.yt.ChannelDetails(ctx, channelID)
	if err != nil {
		return false, err
	}
	if ch == nil {
		return false, nil
	}
	if ch.Subscribers < f.cfg.MinSubscribers || ch.Subscribers > f.cfg.MaxSubscribers {
		return false, nil
	}
	if f.sheet.Seen(ch.Handle) || f.sheet.Seen(ch.Title) {
		f.logger.Debug("skipping already discovered channel", zap.String("handle", ch.Handle))
		return false, nil
	}

	videos, err := f.yt.RecentVideosWithStats(ctx, channelID, f.cfg.SampleSize)
	if err != nil {
		return false, err
	}
	if len(videos) == 0 {
		return false, nil
	}

	qualifying := 0
	for _, v := range videos {
		if v.Views >= f.cfg.MinViews {
			qualifying++
		}
	}
	if qualifying < f.cfg.MinQualifying {
		f.logger.Debug("view floor not met",
			zap.String("channel", ch.Title),
			zap.Int("qualifying", qualifying),
			zap.Int("sampled", len(videos)),
		)
		return false, nil
	}

	transcript := ""
	if f.cfg.SampleTranscripts && f.transcribe != nil {
		transcript = f.sampleTranscript(ctx, videos[0].ID)
	}

	verdict, err := f.analyzer.Verify(ctx, ch, videos, transcript)
	if err != nil {
		return false, fmt.Errorf("niche verification: %w", err)
	}
	if !verdict.Match {
		f.logger.Info("niche mismatch",
			zap.String("channel", ch.Title),
			zap.String("reason", verdict.Explanation),
		)
		return false, nil
	}

	contact := ""
	if f.scraper != nil {
		if c, err := f.scraper.Scrape(ctx, ch.Handle); err == nil {
			contact = c
		} else {
			f.logger.Debug("contact scrape failed", zap.String("handle", ch.Handle), zap.Error(err))
		}
	}

	notes := verdict.Explanation
	if transcript != "" {
		notes = fmt.Sprintf("%s | sample: %s", notes, truncate(transcript, 160))
	}

	inf := Influencer{
		Name:          ch.Title,
		Handle:        ch.Handle,
		Platform:      "YT",
		FollowerCount: FormatFollowers(ch.Subscribers),
		Contact:       contact,
		Engagement:    Engagement(videos),
		Niche:         verdict.Category,
		Notes:         notes,
		Status:        "Found",
	}
	if err := f.sheet.Append(inf); err != nil {
		return false, fmt.Errorf("append to sheet: %w", err)
	}

	f.logger.Info("match found",
		zap.String("channel", ch.Title),
		zap.String("category", verdict.Category),
		zap.Int64("subscribers", ch.Subscribers),
	)
	return true, nil
}

// sampleTranscript runs one video through the transcription server. Best
// effort; discovery works from titles and descriptions alone when the server
// is down.
func (f *Finder) sampleTranscript(ctx context.Context, videoID string) string {
	res, err := f.transcribe.TranscribeSync(ctx, videoID, 5*time.Minute)
	if err != nil {
		f.logger.Debug("transcript sample failed", zap.String("video_id", videoID), zap.Error(err))
		return ""
	}
	return res.Text
}

func (f *Finder) logCallStats(found, channelsSeen int) {
	f.logger.Info("discovery run finished",
		zap.Int("found", found),
		zap.Int("target", f.cfg.Target),
		zap.Int("channels_analyzed", channelsSeen),
		zap.Int("api_calls", f.yt.TotalCalls()),
		zap.String("sheet", f.sheet.Path()),
	)
}
