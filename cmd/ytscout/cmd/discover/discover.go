package discover

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"youtube-scout/internal/client"
	"youtube-scout/internal/config"
	"youtube-scout/internal/discovery"
)

var (
	keywordsFile  string
	niche         string
	outputPath    string
	target        int
	minSubs       int64
	maxSubs       int64
	transcribeURL string
	noProgress    bool
)

func init() {
	Cmd.Flags().StringVarP(&keywordsFile, "keywords", "k", "", "file with one search keyword per line")
	Cmd.Flags().StringVarP(&niche, "niche", "n", "", "target niche description for LLM verification")
	Cmd.Flags().StringVarP(&outputPath, "output", "o", "discovered.csv", "CSV sheet to append matches to")
	Cmd.Flags().IntVarP(&target, "target", "t", 30, "how many influencers to find")
	Cmd.Flags().Int64Var(&minSubs, "min-subs", 10_000, "minimum subscriber count")
	Cmd.Flags().Int64Var(&maxSubs, "max-subs", 100_000, "maximum subscriber count")
	Cmd.Flags().StringVar(&transcribeURL, "transcribe-url", "", "transcription server URL for transcript sampling (optional)")
	Cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	Cmd.MarkFlagRequired("keywords")
	Cmd.MarkFlagRequired("niche")
}

// Cmd represents the discover command
var Cmd = &cobra.Command{
	Use:   "discover",
	Short: "Find micro-influencer channels for a niche",
	Long: `Find micro-influencer channels for a niche.

Searches recent videos for each keyword, collects their uploader channels,
keeps the ones inside the subscriber band whose recent uploads clear the view
floor, asks an LLM whether the channel fits the niche, and appends matches to
the CSV sheet. Channels already on the sheet are never pitched twice.

Needs YOUTUBE_API_KEY (plus optional YOUTUBE_API_KEY_2, _3, ... for quota
rotation) and GROQ_API_KEY or OPENAI_API_KEY in the environment or .env.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := config.InitializeKeys()
		if err != nil {
			return err
		}
		if err := config.RequireYouTubeKeys(keys); err != nil {
			return err
		}

		keywords, err := readKeywords(keywordsFile)
		if err != nil {
			return err
		}

		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logger.Sync()

		yt, err := discovery.NewYouTubeClient(keys.YouTube, logger)
		if err != nil {
			return err
		}

		analyzer := discovery.NewNicheAnalyzer(keys.Groq, keys.OpenAI, niche, logger)

		sheet, err := discovery.OpenSheet(outputPath)
		if err != nil {
			return err
		}

		var transcribeClient *client.Client
		cfg := discovery.DefaultFinderConfig()
		cfg.Keywords = keywords
		cfg.Target = target
		cfg.MinSubscribers = minSubs
		cfg.MaxSubscribers = maxSubs
		cfg.Progress = !noProgress
		if transcribeURL != "" {
			transcribeClient = client.New(transcribeURL)
			cfg.SampleTranscripts = true
		}

		finder, err := discovery.NewFinder(yt, analyzer, discovery.NewContactScraper(), sheet, transcribeClient, cfg, logger)
		if err != nil {
			return err
		}

		found, err := finder.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("found %d/%d influencers, sheet: %s\n", found, target, outputPath)
		return nil
	},
}

func readKeywords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keywords file: %w", err)
	}
	defer f.Close()

	var keywords []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keywords = append(keywords, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords in %s", path)
	}
	return keywords, nil
}
