package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

var rootCmd = &cobra.Command{
	Use:   "xmlload",
	Short: "Stream Q&A site XML dumps into PostgreSQL",
	Long: `xmlload streams the XML data dumps of a Q&A site export (Users, Posts,
Comments, Tags, Votes) into PostgreSQL tables.

Records are parsed one at a time and inserted in bounded batches, so memory
stays flat however large the dump is. Rows whose primary key already exists
are skipped, which makes re-runs safe.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or table definition
  11 - Database connection failed
  12 - User denied rebuild approval
  13 - Table creation or insert rejected by PostgreSQL
  14 - Dump file not found
  15 - Malformed or truncated XML`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and prints the error, if any, to stderr.
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", err, xmlload.ErrUsage)
	})
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", err, xmlload.ErrUsage)
		}
		return nil
	}
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
