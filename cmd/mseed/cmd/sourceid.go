package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seisgo/mseed/pkg/sourceid"
)

// sourceidCmd explains FDSN source identifiers and their code tables.
var sourceidCmd = &cobra.Command{
	Use:   "sourceid [sid]...",
	Short: "Parse and describe FDSN source identifiers",
	Long: `Parse FDSN source identifiers and describe their parts, or look up the
band and source code tables.

Example:
  mseed sourceid FDSN:CO_BIRD_00_H_H_Z
  mseed sourceid --sps 100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bands, _ := cmd.Flags().GetStringSlice("band")
		sources, _ := cmd.Flags().GetStringSlice("source")
		sps, _ := cmd.Flags().GetFloat64("sps")

		if sps != 0 {
			broadband, shortPeriod, err := sourceid.BandCodesForRate(sps)
			if err != nil {
				return err
			}
			desc, err := sourceid.DescribeBand(broadband)
			if err != nil {
				return err
			}
			fmt.Printf("      Rate: %g - %c - %s\n", sps, broadband, desc)
			if shortPeriod != broadband {
				desc, err = sourceid.DescribeBand(shortPeriod)
				if err != nil {
					return err
				}
				fmt.Printf("      Rate: %g - %c - %s\n", sps, shortPeriod, desc)
			}
		}

		for _, band := range bands {
			for i := 0; i < len(band); i++ {
				desc, err := sourceid.DescribeBand(band[i])
				if err != nil {
					return err
				}
				fmt.Printf("      Band: %c - %s\n", band[i], desc)
			}
		}
		for _, source := range sources {
			for i := 0; i < len(source); i++ {
				desc, err := sourceid.DescribeSource(source[i])
				if err != nil {
					return err
				}
				fmt.Printf("    Source: %c - %s\n", source[i], desc)
			}
		}

		for _, arg := range args {
			sid, err := sourceid.Parse(arg)
			if err != nil {
				return err
			}
			bandDesc, err := sourceid.DescribeBand(sid.BandCode[0])
			if err != nil {
				bandDesc = "unknown"
			}
			sourceDesc, err := sourceid.DescribeSource(sid.SourceCode[0])
			if err != nil {
				sourceDesc = "unknown"
			}
			fmt.Printf("      %s\n", sid)
			fmt.Printf("       Net: %s\n", sid.NetworkCode)
			fmt.Printf("       Sta: %s\n", sid.StationCode)
			fmt.Printf("       Loc: %s\n", sid.LocationCode)
			fmt.Printf("      Band: %s - %s\n", sid.BandCode, bandDesc)
			fmt.Printf("    Source: %s - %s\n", sid.SourceCode, sourceDesc)
			fmt.Printf(" Subsource: %s\n", sid.SubsourceCode)
		}
		return nil
	},
}

func init() {
	sourceidCmd.Flags().StringSlice("band", nil, "describe band code")
	sourceidCmd.Flags().StringSlice("source", nil, "describe source code")
	sourceidCmd.Flags().Float64("sps", 0, "band code for sample rate")
	rootCmd.AddCommand(sourceidCmd)
}
