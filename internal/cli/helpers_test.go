package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vvka-141/pairload/pkg/pairload"
)

func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	for _, c := range []*cobra.Command{rootCmd, fetchCmd, loadCmd, versionCmd} {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
	settings = runSettings{}
}

// isolate runs the test in an empty working directory with none of the
// credential or token variables set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	for _, key := range []string{
		pairload.EnvSupabaseURL,
		pairload.EnvSupabaseURLFallback,
		pairload.EnvSupabaseServiceKey,
		pairload.EnvDatabaseURL,
		"HF_TOKEN",
		"HUGGING_FACE_HUB_TOKEN",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("HF_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	return dir
}

type runOutput struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, args ...string) runOutput {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return runOutput{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
