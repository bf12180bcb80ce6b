package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsoncook/GoogleDocsApi/pkg/assemble"
	"github.com/matsoncook/GoogleDocsApi/pkg/collect"
	"github.com/matsoncook/GoogleDocsApi/pkg/gdocs"
	"github.com/matsoncook/GoogleDocsApi/pkg/logging"
	"github.com/matsoncook/GoogleDocsApi/pkg/version"
)

const defaultPattern = "*.txt"

var (
	flagPattern     string
	flagTitle       string
	flagEncoding    string
	flagSort        string
	flagRecurse     bool
	flagChunkSize   int
	flagCredentials string
	flagToken       string
	flagOutput      string
	flagDebug       bool
)

// RootCmd is the base command: amalgamate a directory of text files into a
// new Google Doc.
var RootCmd = &cobra.Command{
	Use:   "amalgamate [flags] <directory>",
	Short: "Amalgamate text files from a directory into a Google Doc",
	Long: `Amalgamate collects text files matching a glob pattern, concatenates them
with per-file headers and separators, and uploads the result as a new
Google Doc using your OAuth credentials.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Setup(flagDebug, "amalgamate", version.Get().Version)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args[0])
	},
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.Flags().StringVar(&flagPattern, "pattern", defaultPattern, "Glob pattern for text files (use '**/*.txt' to recurse)")
	RootCmd.Flags().BoolVarP(&flagRecurse, "recurse", "r", false, "Recurse into subdirectories (equivalent to --pattern '**/*.txt')")
	RootCmd.Flags().StringVar(&flagTitle, "title", "Amalgamated Text Files", "Title for the Google Doc to create")
	RootCmd.Flags().StringVar(&flagEncoding, "encoding", "utf-8", "File encoding to read")
	RootCmd.Flags().StringVar(&flagSort, "sort", "name", "Sort files by: name | mtime | ctime")
	RootCmd.Flags().IntVar(&flagChunkSize, "chunk-size", assemble.DefaultChunkSize, "Maximum characters per upload request")
	RootCmd.Flags().StringVar(&flagCredentials, "credentials", "credentials.json", "Path to the OAuth client credentials file")
	RootCmd.Flags().StringVar(&flagToken, "token", "token.json", "Path to the cached token file")
	RootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Also write the assembled text to this local file")
	RootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

// run drives the pipeline: collect, assemble, authenticate, publish.
func run(cmd *cobra.Command, directory string) error {
	ctx := cmd.Context()
	logger := zap.L()

	pattern := effectivePattern(flagPattern, flagRecurse)

	mode, err := collect.ParseSortMode(flagSort)
	if err != nil {
		return err
	}

	files, err := collect.Collect(directory, pattern, mode, logger)
	if err != nil {
		return err
	}
	logger.Info("Collected files",
		zap.String("directory", directory),
		zap.String("pattern", pattern),
		zap.Int("count", len(files)))

	text, err := assemble.Build(files, directory, flagEncoding, logger)
	if err != nil {
		return err
	}
	logger.Info("Assembled document text", zap.Int("sizeBytes", len(text)))

	if flagOutput != "" {
		if err := os.WriteFile(flagOutput, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write local copy %s: %w", flagOutput, err)
		}
		logger.Info("Wrote local copy", zap.String("output", flagOutput))
	}

	ts, err := gdocs.Credentials(ctx, flagCredentials, gdocs.TokenStore{Path: flagToken}, logger)
	if err != nil {
		return err
	}

	pub, err := gdocs.NewPublisher(ctx, ts, logger)
	if err != nil {
		return err
	}

	docID, err := pub.Create(ctx, flagTitle)
	if err != nil {
		return err
	}

	if err := pub.Append(ctx, docID, text, flagChunkSize); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created Google Doc: %s\n", gdocs.DocumentURL(docID))
	return nil
}

// effectivePattern applies the --recurse shortcut. It only overrides the
// pattern when the user has not changed it from the default.
func effectivePattern(pattern string, recurse bool) string {
	if recurse && pattern == defaultPattern {
		return "**/*.txt"
	}
	return pattern
}
