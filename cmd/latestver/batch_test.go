package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/nao1215/latestver/internal/config"
	"github.com/nao1215/latestver/internal/listing"
	"github.com/nao1215/latestver/internal/version"
)

// writeTargetsFile writes a targets file for srv into a temporary directory.
func writeTargetsFile(t *testing.T, srv *listingServer) string {
	t.Helper()

	content := `headers:
  Authorization: "Bearer ${LATESTVER_TEST_MIRROR_TOKEN}"
targets:
  - name: mysoftware
    url: ` + srv.stableURL() + `
    prefix: mysoftware-
    suffix: .tar.gz
  - name: tool
    url: ` + srv.stableURL() + `
    prefix: tool-
    suffix: .zip
    pattern: '\d+\.\d+'
  - name: mysoftware-1.9
    url: ` + srv.stableURL() + `
    prefix: mysoftware-
    suffix: .tar.gz
    constraint: "< 1.10"
  - name: gone
    url: ` + srv.URL + `/gone/
    prefix: gone-
    suffix: .tar.gz
  - name: nothing
    url: ` + srv.stableURL() + `
    prefix: nothing-
    suffix: .tar.gz
`
	path := filepath.Join(t.TempDir(), ".latestver")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write targets file: %v", err)
	}
	return path
}

// TestNewBatchCmd tests the batch command creation.
func TestNewBatchCmd(t *testing.T) {
	t.Parallel()

	cmd := NewBatchCmd()

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.DefValue != "10" {
			t.Errorf("expected default '10', got %q", flag.DefValue)
		}
	})
}

// TestBatchCmd resolves targets from a targets file.
func TestBatchCmd(t *testing.T) {
	t.Parallel()

	srv := newListingServer(t)
	configPath := writeTargetsFile(t, srv)

	t.Run("selected targets", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "batch", "-c", configPath, "tool", "mysoftware", "mysoftware-1.9")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "tool\t" + srv.stableURL() + "tool-2.10.zip\n" +
			"mysoftware\t" + srv.stableURL() + "mysoftware-1.10.0.tar.gz\n" +
			"mysoftware-1.9\t" + srv.stableURL() + "mysoftware-1.9.9.tar.gz\n"
		if stdout != want {
			t.Errorf("expected\n%q\ngot\n%q", want, stdout)
		}
	})

	t.Run("failures do not stop other targets", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "batch", "-c", configPath, "-b", "2")
		if err == nil {
			t.Fatal("expected error")
		}

		var merr *multierror.Error
		if !errors.As(err, &merr) {
			t.Fatalf("expected *multierror.Error, got %T", err)
		}
		if len(merr.Errors) != 2 {
			t.Fatalf("expected 2 failures, got %d: %v", len(merr.Errors), err)
		}

		var transportErr *listing.TransportError
		if !errors.As(merr.Errors[0], &transportErr) {
			t.Errorf("expected first failure to be a transport error, got %v", merr.Errors[0])
		}
		if !errors.Is(merr.Errors[1], version.ErrNoVersionsFound) {
			t.Errorf("expected second failure to be no versions found, got %v", merr.Errors[1])
		}
		if got := exitCode(err); got != exitTransport {
			t.Errorf("expected exit code %d from the first failure, got %d", exitTransport, got)
		}

		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		if len(lines) != 3 {
			t.Errorf("expected 3 resolved targets, got %q", stdout)
		}
	})

	t.Run("json batch report", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "batch", "--json", "-c", configPath, "mysoftware", "nothing")
		if !errors.Is(err, version.ErrNoVersionsFound) {
			t.Fatalf("expected ErrNoVersionsFound, got %v", err)
		}

		var got struct {
			Summary struct {
				Total     int `json:"total"`
				Succeeded int `json:"succeeded"`
				Failed    int `json:"failed"`
			} `json:"summary"`
			Resolutions []struct {
				Latest string `json:"latest"`
				Error  string `json:"error"`
			} `json:"resolutions"`
		}
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if got.Summary.Total != 2 || got.Summary.Succeeded != 1 || got.Summary.Failed != 1 {
			t.Errorf("unexpected summary %+v", got.Summary)
		}
		if len(got.Resolutions) != 2 {
			t.Fatalf("expected 2 resolutions, got %d", len(got.Resolutions))
		}
		if got.Resolutions[0].Latest != "1.10.0" {
			t.Errorf("expected first latest 1.10.0, got %q", got.Resolutions[0].Latest)
		}
		if got.Resolutions[1].Error == "" {
			t.Error("expected second resolution to carry its error")
		}
	})

	t.Run("unknown target", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "batch", "-c", configPath, "missing")
		if !errors.Is(err, config.ErrUnknownTarget) {
			t.Errorf("expected ErrUnknownTarget, got %v", err)
		}
		if got := exitCode(err); got != exitError {
			t.Errorf("expected exit code %d, got %d", exitError, got)
		}
	})

	t.Run("explicit config file not found", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "batch", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid batch size", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "batch", "-c", configPath, "-b", "0")
		if !errors.Is(err, config.ErrInvalidBatchSize) {
			t.Errorf("expected ErrInvalidBatchSize, got %v", err)
		}
	})
}

// TestBatchCmdHeadersFromEnvironment tests ${VAR} expansion in request headers.
func TestBatchCmdHeadersFromEnvironment(t *testing.T) {
	t.Setenv("LATESTVER_TEST_MIRROR_TOKEN", "s3cret")

	srv := newListingServer(t)
	configPath := writeTargetsFile(t, srv)

	_, stderr, err := execute(t, "--verbose", "batch", "-c", configPath, "mysoftware")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := srv.lastAuthorization(); got != "Bearer s3cret" {
		t.Errorf("expected Authorization %q, got %q", "Bearer s3cret", got)
	}
	if strings.Contains(stderr, "s3cret") {
		t.Errorf("expected token to stay out of the logs, got %s", stderr)
	}
}

// TestLogJSON tests that --log-json writes JSON log lines.
func TestLogJSON(t *testing.T) {
	t.Parallel()

	srv := newListingServer(t)

	_, stderr, err := execute(t, "--verbose", "--log-json", "resolve", srv.stableURL(), "mysoftware-", ".tar.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatal("expected log output")
	}
	for _, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Errorf("expected JSON log line, got %q", line)
		}
	}
}

// TestBuildConfigPrecedence tests defaults, environment and flags in order.
func TestBuildConfigPrecedence(t *testing.T) {
	t.Setenv("LATESTVER_USER_AGENT", "env-agent")
	t.Setenv("LATESTVER_RETRIES", "2")

	srv := newListingServer(t)

	t.Run("environment overrides defaults", func(t *testing.T) {
		_, _, err := execute(t, "resolve", srv.stableURL(), "mysoftware-", ".tar.gz")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := srv.lastUserAgent(); got != "env-agent" {
			t.Errorf("expected User-Agent %q, got %q", "env-agent", got)
		}
	})

	t.Run("flags override environment", func(t *testing.T) {
		_, _, err := execute(t, "resolve", "--user-agent", "flag-agent", srv.stableURL(), "mysoftware-", ".tar.gz")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := srv.lastUserAgent(); got != "flag-agent" {
			t.Errorf("expected User-Agent %q, got %q", "flag-agent", got)
		}
	})

	t.Run("resolved config", func(t *testing.T) {
		cmd := NewResolveCmd()
		if err := cmd.ParseFlags([]string{"--retries", "5"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Retries != 5 {
			t.Errorf("expected retries 5 from flag, got %d", cfg.Retries)
		}
		if cfg.UserAgent != "env-agent" {
			t.Errorf("expected user agent from environment, got %q", cfg.UserAgent)
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("expected default timeout, got %v", cfg.Timeout)
		}
	})

	t.Run("invalid environment value", func(t *testing.T) {
		t.Setenv("LATESTVER_TIMEOUT", "soon")

		_, _, err := execute(t, "resolve", srv.stableURL(), "mysoftware-", ".tar.gz")
		if !errors.Is(err, config.ErrInvalidEnvironment) {
			t.Errorf("expected ErrInvalidEnvironment, got %v", err)
		}
	})
}
