package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"youtube-scout/cmd/ytscout/cmd/discover"
	"youtube-scout/cmd/ytscout/cmd/export"
	"youtube-scout/cmd/ytscout/cmd/serve"
	"youtube-scout/cmd/ytscout/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytscout",
	Short: "Find micro-influencer YouTube channels and transcribe their videos",
	Long: `ytscout discovers micro-influencer YouTube channels for a niche and
transcribes their videos.
- serve runs the transcription server: one loaded Whisper model behind a
  bounded queue, so concurrent callers get serialized instead of OOM-killed
- discover searches YouTube for channels in a niche, verifies the fit with an
  LLM and appends matches to a CSV outreach sheet
- export converts the CSV sheet to a spreadsheet`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(discover.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
