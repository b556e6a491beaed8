package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seisgo/mseed/pkg/mseed2"
)

// details2Cmd prints miniSEED 2 record summaries.
var details2Cmd = &cobra.Command{
	Use:   "details2 <ms2file>...",
	Short: "Print miniSEED 2 record summaries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		totSamples := 0
		numRecords := 0
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			reader := mseed2.NewReader(f)
			for {
				rec, err := reader.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					f.Close()
					return fmt.Errorf("%s: %w", path, err)
				}
				numRecords++
				totSamples += int(rec.Header.NumSamples)
				fmt.Println(rec.Summary())
			}
			f.Close()
		}
		fmt.Printf("Total %d samples in %d records\n", totSamples, numRecords)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(details2Cmd)
}
