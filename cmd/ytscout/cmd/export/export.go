package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"youtube-scout/internal/export"
)

var (
	inputPath  string
	outputPath string
)

func init() {
	Cmd.Flags().StringVarP(&inputPath, "input", "i", "discovered.csv", "discovery CSV sheet to export")
	Cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output xlsx path")

	Cmd.MarkFlagRequired("output")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export the discovery sheet to excel",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := export.ToExcel(inputPath, outputPath)
		if err != nil {
			return err
		}
		fmt.Printf("export finished, %d influencers written to %s\n", rows, outputPath)
		return nil
	},
}
