package cmd

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/seisgo/mseed/pkg/mseed3"
)

// detailsCmd prints miniSEED 3 record headers.
var detailsCmd = &cobra.Command{
	Use:   "details <ms3file>...",
	Short: "Print miniSEED 3 record details",
	Long: `Print the header details of every record in the given miniSEED 3 files.

Example:
  mseed details --summary casee.ms3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showEH, _ := cmd.Flags().GetBool("eh")
		summary, _ := cmd.Flags().GetBool("summary")
		showData, _ := cmd.Flags().GetBool("data")
		match, err := matchFlag(cmd)
		if err != nil {
			return err
		}

		totSamples := 0
		numRecords := 0
		for _, path := range args {
			err := eachRecord(path, match, func(rec *mseed3.Record) error {
				numRecords++
				totSamples += int(rec.Header.NumSamples)
				if summary {
					fmt.Println(rec.Summary())
				} else {
					fmt.Println(rec.Details(showEH))
				}
				if showData {
					return printData(rec)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		fmt.Printf("Total %d samples in %d records\n", totSamples, numRecords)
		return nil
	},
}

func matchFlag(cmd *cobra.Command) (*regexp.Regexp, error) {
	expr, _ := cmd.Flags().GetString("match")
	if expr == "" {
		return nil, nil
	}
	return regexp.Compile(expr)
}

// eachRecord streams the records of one file through fn.
func eachRecord(path string, match *regexp.Regexp, fn func(*mseed3.Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := mseed3.NewReaderWithConfig(f, mseed3.ReaderConfig{
		Lenient: cfg.Read.Lenient,
		Match:   match,
	})
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

func printData(rec *mseed3.Record) error {
	samples, err := rec.Decompress()
	if err != nil {
		return err
	}
	vals, err := samples.Float64Values()
	if err != nil {
		fmt.Printf("%s\n", samples.Text())
		return nil
	}
	for i, v := range vals {
		fmt.Printf(" %-8g", v)
		if i%10 == 9 {
			fmt.Println()
		}
	}
	fmt.Println()
	return nil
}

func init() {
	detailsCmd.Flags().Bool("eh", false, "display extra headers")
	detailsCmd.Flags().Bool("summary", false, "one line summary per record")
	detailsCmd.Flags().Bool("data", false, "print timeseries data")
	detailsCmd.Flags().String("match", "", "regular expression to match the identifier")
	rootCmd.AddCommand(detailsCmd)
}
