package cli

import (
	"bytes"
	"testing"
)

// executeCLI runs the root command against throwaway config and data
// directories, capturing combined output.
func executeCLI(t *testing.T, configDir, dataDir string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--config-dir", configDir, "--data-dir", dataDir}, args...))
	defer func() {
		rootCmd.SetArgs(nil)
		// Flag values persist across Execute calls; reset so tests
		// stay order-independent.
		syncSinceFlag, syncUntilFlag = "", ""
		syncDaysFlag = 0
		syncNoAdvanceFlag = false
		syncDryRunFlag = false
		cursorClearAllFlag = false
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
