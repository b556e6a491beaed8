package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seisgo/mseed/pkg/convert"
	"github.com/seisgo/mseed/pkg/mseed2"
)

// convertCmd rewrites miniSEED 2 files as miniSEED 3.
var convertCmd = &cobra.Command{
	Use:   "convert --ms2 <infile> --ms3 <outfile>",
	Short: "Convert miniSEED 2 to miniSEED 3",
	Long: `Convert a miniSEED 2 file to miniSEED 3, record by record. Blockettes
other than 100, 1000 and 1001 are dropped; sample payloads carry over
byte for byte apart from byte order fixes for primitive encodings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inPath, _ := cmd.Flags().GetString("ms2")
		outPath, _ := cmd.Flags().GetString("ms3")

		in, err := os.Open(inPath)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer out.Close()

		bytesWritten := 0
		reader := mseed2.NewReader(in)
		for {
			ms2rec, err := reader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("%s: %w", inPath, err)
			}
			ms3rec, err := convert.V2ToV3(ms2rec)
			if err != nil {
				return err
			}
			outBytes, err := ms3rec.Pack()
			if err != nil {
				return err
			}
			if _, err := out.Write(outBytes); err != nil {
				return err
			}
			bytesWritten += len(outBytes)
			if verbose(cmd) {
				fmt.Printf("   %s\n", ms3rec.Summary())
			}
		}
		if verbose(cmd) {
			fmt.Printf("wrote %d bytes\n", bytesWritten)
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().String("ms2", "", "miniseed2 input file")
	convertCmd.Flags().String("ms3", "", "mseed3 output file")
	convertCmd.MarkFlagRequired("ms2")
	convertCmd.MarkFlagRequired("ms3")
	rootCmd.AddCommand(convertCmd)
}
