package cmd

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	"github.com/seisgo/mseed/pkg/mseed3"
)

// headersCmd gets and sets extra headers addressed by JSON pointer.
var headersCmd = &cobra.Command{
	Use:   "headers",
	Short: "Get or set record extra headers by JSON pointer",
	Long: `Read or modify the extra headers of miniSEED 3 records, addressed by
RFC 6901 JSON pointers such as /FDSN/Time/Quality.`,
}

var headersGetCmd = &cobra.Command{
	Use:   "get <pointer> <ms3file>...",
	Short: "Print the extra header value at a pointer",
	Long: `Print the extra header value at the pointer from the first matched
record, or from every record with --all, one value per record. Records
without the path are reported but do not stop the iteration.

Example:
  mseed headers get /FDSN/Time/Quality casee.ms3`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		match, err := matchFlag(cmd)
		if err != nil {
			return err
		}
		return getHeaders(args[0], args[1:], all, match)
	},
}

var headersSetCmd = &cobra.Command{
	Use:   "set <pointer> <json> <ms3file>...",
	Short: "Set the extra header value at a pointer",
	Long: `Set the extra header value at the pointer in the first matched record,
or in every record with --all, rewriting each file in place. A pointer
of / replaces the whole extra header tree.

Example:
  mseed headers set /FDSN/Time/Quality 80 casee.ms3`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return setHeaders(args[0], args[1], args[2:], all)
	},
}

func getHeaders(pointer string, files []string, all bool, match *regexp.Regexp) error {
	looking := true
	for _, path := range files {
		if !looking && !all {
			break
		}
		err := eachRecord(path, match, func(rec *mseed3.Record) error {
			if !looking && !all {
				return nil
			}
			looking = false
			if rec.ExtraHeaders == nil {
				fmt.Println("  pointer not found in extra headers")
				return nil
			}
			val, err := rec.ExtraHeaders.Get(pointer)
			if errors.Is(err, mseed3.ErrNotFound) {
				fmt.Println("  pointer not found in extra headers")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("  %s\n", val.JSON())
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func setHeaders(pointer, jsonText string, files []string, all bool) error {
	newVal, err := mseed3.ParseExtraHeaders([]byte(jsonText))
	if err != nil {
		return err
	}
	looking := true
	for _, path := range files {
		if !looking && !all {
			break
		}
		if err := rewriteFile(path, func(rec *mseed3.Record) error {
			if !looking && !all {
				return nil
			}
			looking = false
			// the root pointer replaces the whole tree
			if len(pointer) <= 1 {
				rec.ExtraHeaders = newVal
				return nil
			}
			if rec.ExtraHeaders == nil {
				rec.ExtraHeaders = mseed3.NewObject()
			}
			return rec.ExtraHeaders.Set(pointer, newVal)
		}); err != nil {
			return err
		}
	}
	return nil
}

// rewriteFile passes every record through fn and rewrites the file in
// place via a temp file and rename.
func rewriteFile(path string, fn func(*mseed3.Record) error) error {
	tmpPath := fmt.Sprintf("%s_tmp%s", path, time.Now().UTC().Format("20060102T150405.000000"))
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	err = eachRecord(path, nil, func(rec *mseed3.Record) error {
		if err := fn(rec); err != nil {
			return err
		}
		b, err := rec.Pack()
		if err != nil {
			return err
		}
		_, err = tmp.Write(b)
		return err
	})
	if err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

func init() {
	headersGetCmd.Flags().Bool("all", false, "apply to every matched record, not just the first")
	headersGetCmd.Flags().String("match", "", "regular expression to match the identifier")
	headersSetCmd.Flags().Bool("all", false, "apply to every matched record, not just the first")
	headersCmd.AddCommand(headersGetCmd)
	headersCmd.AddCommand(headersSetCmd)
	rootCmd.AddCommand(headersCmd)
}
