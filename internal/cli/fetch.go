package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/pairload/internal/fetcher"
	"github.com/vvka-141/pairload/internal/huggingface"
	"github.com/vvka-141/pairload/pkg/pairload"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the dataset split and save it as CSV",
	Long: `Fetch downloads every row of a Hugging Face dataset split through the
datasets-server API and writes it to a CSV whose columns match the Supabase
table:

  chosen_story -> chosen            rejected_story -> rejected
  chosen_timestamp -> timestamp_chosen
  rejected_timestamp -> timestamp_rejected
  chosen_upvotes -> upvotes_chosen  rejected_upvotes -> upvotes_rejected

chosen_username and rejected_username are dropped. The output file is
overwritten.

Gated datasets need an access token: set HF_TOKEN or run
'huggingface-cli login'.

Examples:
  pairload fetch
  pairload fetch --output /tmp/litbench.csv
  pairload fetch --dataset SAA-Lab/LitBench-Test --split train -v`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

type fetchFlagValues struct {
	dataset, split, output string
	endpoint               string
}

var fetchFlags fetchFlagValues

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchFlags.dataset, "dataset", pairload.DefaultDataset, "Hugging Face dataset ID")
	fetchCmd.Flags().StringVar(&fetchFlags.split, "split", pairload.DefaultSplit, "Dataset split to download")
	fetchCmd.Flags().StringVarP(&fetchFlags.output, "output", "o", pairload.DefaultFetchOutput, "CSV file to write")
	fetchCmd.Flags().StringVar(&fetchFlags.endpoint, "endpoint", huggingface.DefaultBaseURL, "datasets-server base URL")
}

func resolveFetchOptions(cmd *cobra.Command) fetcher.Options {
	file := projectConfig().Fetch
	return fetcher.Options{
		Dataset: pickString(cmd, "dataset", fetchFlags.dataset, file.Dataset),
		Split:   pickString(cmd, "split", fetchFlags.split, file.Split),
		Output:  pickString(cmd, "output", fetchFlags.output, file.Output),
	}
}

func runFetch(cmd *cobra.Command, _ []string) error {
	if settings.aborted {
		return nil
	}
	logger := newLogger(cmd)
	opts := resolveFetchOptions(cmd)

	token := huggingface.DiscoverToken()
	if token == "" {
		logger.Verbose("no Hugging Face token found, requesting anonymously")
	}
	client := huggingface.NewClient(huggingface.Config{
		BaseURL: fetchFlags.endpoint,
		Token:   token,
		Logger:  logger,
	})

	ctx, cancel := runContext(cmd.Context(), settings.timeout, logger)
	defer cancel()

	if _, err := fetcher.NewService(client, logger).Fetch(ctx, opts); err != nil {
		logger.Error("An error occurred: %v", err)
		logger.Info("Please check your network connection and that the dataset %s exists.", opts.Dataset)
		logger.Info("If this is a gated dataset, set HF_TOKEN or log in using 'huggingface-cli login'.")
		return finishRun(err)
	}
	return nil
}
