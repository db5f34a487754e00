package commands

import (
	"bytes"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/thoreinstein/plugup/cmd"
)

// captureStdout captures stdout during function execution.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	var buf bytes.Buffer
	var wg sync.WaitGroup
	wg.Go(func() {
		_, _ = io.Copy(&buf, r)
	})

	fn()

	w.Close()
	os.Stdout = oldStdout
	wg.Wait()

	return buf.String()
}

// executeVersionCommand runs the version command and captures its output.
func executeVersionCommand(t *testing.T) string {
	t.Helper()

	return captureStdout(t, func() {
		rootCmd.SetArgs([]string{"version"})
		if err := rootCmd.Execute(); err != nil {
			panic("version command failed: " + err.Error())
		}
	})
}

func TestVersionCommand_OutputFormat(t *testing.T) {
	output := executeVersionCommand(t)

	for _, want := range []string{
		"plugup version",
		"commit:",
		"built:",
		"go:",
		"host:",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("version output missing %q\nGot:\n%s", want, output)
		}
	}
}

func TestVersionCommand_GoVersion(t *testing.T) {
	output := executeVersionCommand(t)

	if !strings.Contains(output, runtime.Version()) {
		t.Errorf("version output should contain Go version %q\nGot:\n%s", runtime.Version(), output)
	}
}

func TestVersionCommand_HostLines(t *testing.T) {
	output := executeVersionCommand(t)

	// Both probes are listed with a resolution status, whatever this
	// machine has installed.
	for _, binary := range []string{"opencode", "tmux"} {
		t.Run(binary, func(t *testing.T) {
			var line string
			for _, l := range strings.Split(output, "\n") {
				if strings.Contains(l, binary+":") {
					line = l
					break
				}
			}
			if line == "" {
				t.Fatalf("binary %q not listed in output\n%s", binary, output)
			}
			if !strings.Contains(line, "found") && !strings.Contains(line, "not found") {
				t.Errorf("line %q should report found or not found", line)
			}
			if !strings.HasPrefix(line, "    ") {
				t.Errorf("host line should have 4-space indent: %q", line)
			}
		})
	}
}

func TestVersionCommand_DefaultValues(t *testing.T) {
	output := executeVersionCommand(t)

	tests := []struct {
		name     string
		contains string
	}{
		{"version shows current value", "plugup version " + cmd.Version},
		{"commit shows current value", "commit:    " + cmd.Commit},
		{"date shows current value", "built:     " + cmd.Date},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(output, tt.contains) {
				t.Errorf("version output should contain %q\nGot:\n%s", tt.contains, output)
			}
		})
	}
}

// TestVersionCommand_NoError verifies the command completes without error.
func TestVersionCommand_NoError(t *testing.T) {
	_ = captureStdout(t, func() {
		rootCmd.SetArgs([]string{"version"})
		if err := rootCmd.Execute(); err != nil {
			t.Errorf("version command should not return an error, got: %v", err)
		}
	})
}

func TestVersionCommand_CommandMetadata(t *testing.T) {
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}
	if versionCmd.Short == "" {
		t.Error("versionCmd.Short should not be empty")
	}
}
