package pairload

import "time"

// Exit codes for semantic error classification.
// They are only used when a command runs with --strict; otherwise every run
// exits 0 after reporting on the console.
const (
	ExitSuccess         = 0  // Run completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or missing credentials
	ExitConnectionError = 11 // Failed to connect to database
	ExitInputMissing    = 12 // Loader input CSV not found
	ExitFetchFailed     = 13 // Dataset fetch or CSV write failed
	ExitInsertFailed    = 14 // A batch insert failed
)

const (
	// DefaultDataset is the Hugging Face dataset the fetcher downloads.
	DefaultDataset = "SAA-Lab/LitBench-Test"

	// DefaultSplit is the dataset split the fetcher downloads.
	DefaultSplit = "train"

	// DefaultFetchOutput is where the fetcher writes its CSV.
	DefaultFetchOutput = "LitBench_Test.csv"

	// DefaultLoadInput is the CSV the loader reads. It differs from
	// DefaultFetchOutput; the file is renamed by hand between the two runs.
	DefaultLoadInput = "writingprompts_pairwise_test.csv"

	// DefaultTable is the remote table the loader inserts into.
	DefaultTable = "writingprompts-pairwise-test"

	// DefaultBatchSize is the maximum number of records per insert call.
	DefaultBatchSize = 1000

	// DefaultEnvFile is loaded before credentials are resolved.
	DefaultEnvFile = ".env.local"

	// EnvSupabaseURL names the variable holding the remote table service URL.
	EnvSupabaseURL = "NEXT_PUBLIC_SUPABASE_URL"

	// EnvSupabaseURLFallback is consulted when EnvSupabaseURL is empty.
	EnvSupabaseURLFallback = "SUPABASE_URL"

	// EnvSupabaseServiceKey names the variable holding the privileged access key.
	EnvSupabaseServiceKey = "SUPABASE_SERVICE_KEY"

	// EnvDatabaseURL names the variable holding a direct Postgres connection string.
	EnvDatabaseURL = "SUPABASE_DB_URL"

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 200 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 5

	// DefaultHTTPTimeout bounds a single HTTP request.
	DefaultHTTPTimeout = 2 * time.Minute
)

// ColumnRenames maps source dataset columns to the target schema.
var ColumnRenames = map[string]string{
	"chosen_story":       "chosen",
	"rejected_story":     "rejected",
	"chosen_timestamp":   "timestamp_chosen",
	"rejected_timestamp": "timestamp_rejected",
	"chosen_upvotes":     "upvotes_chosen",
	"rejected_upvotes":   "upvotes_rejected",
}

// DroppedColumns are removed from the fetched table when present.
var DroppedColumns = []string{"chosen_username", "rejected_username"}

// LoadColumns are the CSV columns the loader reads, in record order.
var LoadColumns = []string{
	"prompt",
	"chosen",
	"rejected",
	"timestamp_chosen",
	"timestamp_rejected",
	"upvotes_chosen",
	"upvotes_rejected",
}
