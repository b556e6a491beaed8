package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seisgo/mseed/pkg/merge"
	"github.com/seisgo/mseed/pkg/mseed3"
)

// mergeCmd joins contiguous records of a miniSEED 3 file.
var mergeCmd = &cobra.Command{
	Use:   "merge -o <outfile> <ms3file>",
	Short: "Merge contiguous miniSEED 3 records",
	Long: `Merge neighboring records that continue the same channel without a gap.
Records are only compared with their immediate neighbor, so the input
is assumed to be in time sorted order per channel. Steim compressed
records require --decomp to merge and otherwise pass through unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("outfile")
		decomp, _ := cmd.Flags().GetBool("decomp")
		maxSize, _ := cmd.Flags().GetInt("max-size")
		if maxSize == 0 {
			maxSize = cfg.Merge.MaxRecordSize
		}

		in, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer out.Close()

		merger := merge.NewMerger(merge.Options{
			Decompress:      decomp,
			MaxRecordSize:   maxSize,
			ToleranceFactor: cfg.Merge.ToleranceFactor,
		})
		emit := func(records []*mseed3.Record) error {
			for _, rec := range records {
				b, err := rec.Pack()
				if err != nil {
					return err
				}
				if _, err := out.Write(b); err != nil {
					return err
				}
				if verbose(cmd) {
					fmt.Println(rec.Summary())
				}
			}
			return nil
		}

		reader := mseed3.NewReaderWithConfig(in, mseed3.ReaderConfig{Lenient: cfg.Read.Lenient})
		for {
			rec, err := reader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			records, err := merger.Add(rec)
			if err != nil {
				return err
			}
			if err := emit(records); err != nil {
				return err
			}
		}
		records, err := merger.Flush()
		if err != nil {
			return err
		}
		return emit(records)
	},
}

func init() {
	mergeCmd.Flags().StringP("outfile", "o", "", "mseed3 file to output merged records")
	mergeCmd.Flags().Bool("decomp", false, "apply decompression before merge, required for steim1 & 2")
	mergeCmd.Flags().Int("max-size", 0, "maximum packed size of merged records")
	mergeCmd.MarkFlagRequired("outfile")
	rootCmd.AddCommand(mergeCmd)
}
