package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seisgo/mseed/pkg/holdings"
)

// indexCmd maintains and queries the holdings index.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Maintain a holdings index over miniSEED 3 files",
	Long: `Scan miniSEED 3 files into a persistent holdings index and query what
time spans it knows per source identifier.`,
}

var indexScanCmd = &cobra.Command{
	Use:   "scan <ms3file>...",
	Short: "Scan files into the holdings index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := openIndex(cmd)
		if err != nil {
			return err
		}
		defer ix.Close()

		for _, path := range args {
			result, err := ix.ScanFile(path)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d records, %d samples (scan %s)\n",
				path, result.Records, result.Samples, result.ScanID)
		}
		return nil
	},
}

var indexSpansCmd = &cobra.Command{
	Use:   "spans <sourceid>",
	Short: "List indexed time spans for a source identifier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := openIndex(cmd)
		if err != nil {
			return err
		}
		defer ix.Close()

		spans, err := ix.Spans(args[0])
		if err != nil {
			return err
		}
		for _, span := range spans {
			fmt.Printf("%s %s %s (%d pts, %g Hz) %s+%d\n",
				span.SourceID,
				span.Start.UTC().Format("2006-01-02T15:04:05.000000000Z"),
				span.End.UTC().Format("2006-01-02T15:04:05.000000000Z"),
				span.NumSamples, span.SampleRate, span.File, span.Offset)
		}
		return nil
	},
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List source identifiers with indexed holdings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := openIndex(cmd)
		if err != nil {
			return err
		}
		defer ix.Close()

		sids, err := ix.SourceIDs()
		if err != nil {
			return err
		}
		for _, sid := range sids {
			fmt.Println(sid)
		}
		return nil
	},
}

func openIndex(cmd *cobra.Command) (*holdings.Index, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.Holdings.Dir
	}
	return holdings.Open(dir)
}

func init() {
	for _, c := range []*cobra.Command{indexScanCmd, indexSpansCmd, indexListCmd} {
		c.Flags().StringP("dir", "d", "", "holdings index directory")
		indexCmd.AddCommand(c)
	}
	rootCmd.AddCommand(indexCmd)
}
