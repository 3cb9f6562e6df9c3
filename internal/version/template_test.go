package version

import (
	"errors"
	"strings"
	"testing"
)

// newTestTemplate builds a template that is expected to be valid.
func newTestTemplate(t *testing.T, prefix, suffix, pattern string) *Template {
	t.Helper()

	tmpl, err := NewTemplate(prefix, suffix, pattern)
	if err != nil {
		t.Fatalf("NewTemplate(%q, %q, %q): unexpected error: %v", prefix, suffix, pattern, err)
	}
	return tmpl
}

func TestNewTemplate(t *testing.T) {
	t.Parallel()

	t.Run("empty pattern falls back to DefaultPattern", func(t *testing.T) {
		t.Parallel()

		tmpl, err := NewTemplate("mysoftware-", ".tar.gz", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tmpl.Pattern != DefaultPattern {
			t.Errorf("expected pattern %q, got %q", DefaultPattern, tmpl.Pattern)
		}
	})

	t.Run("invalid pattern returns ErrInvalidTemplate", func(t *testing.T) {
		t.Parallel()

		_, err := NewTemplate("app-", ".zip", `(\d+`)
		if !errors.Is(err, ErrInvalidTemplate) {
			t.Errorf("expected ErrInvalidTemplate, got %v", err)
		}
	})

	t.Run("shape describes the expected token", func(t *testing.T) {
		t.Parallel()

		tmpl := newTestTemplate(t, "mysoftware-", ".tar.gz", "")
		want := `mysoftware-<\d+\.\d+\.\d+>.tar.gz`
		if got := tmpl.Shape(); got != want {
			t.Errorf("expected shape %q, got %q", want, got)
		}
	})

}

func TestTemplateExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prefix  string
		suffix  string
		pattern string
		literal bool
		chunk   string
		want    string
		wantOK  bool
	}{
		{
			name:   "bare file name",
			prefix: "mysoftware-",
			suffix: ".tar.gz",
			chunk:  "mysoftware-1.0.0.tar.gz",
			want:   "1.0.0",
			wantOK: true,
		},
		{
			name:   "token embedded in listing text",
			prefix: "mysoftware-",
			suffix: ".tar.gz",
			chunk:  "  mysoftware-1.10.2.tar.gz      12-Jan-2020 10:00   4.2M",
			want:   "1.10.2",
			wantOK: true,
		},
		{
			name:   "first of several tokens wins",
			prefix: "pkg-",
			suffix: ".tgz",
			chunk:  "pkg-1.0.0.tgz pkg-2.0.0.tgz",
			want:   "1.0.0",
			wantOK: true,
		},
		{
			name:   "no token in chunk",
			prefix: "mysoftware-",
			suffix: ".tar.gz",
			chunk:  "Parent Directory",
			wantOK: false,
		},
		{
			name:   "wrong suffix",
			prefix: "mysoftware-",
			suffix: ".tar.gz",
			chunk:  "mysoftware-1.0.0.zip",
			wantOK: false,
		},
		{
			name:   "two component version does not match default pattern",
			prefix: "mysoftware-",
			suffix: ".tar.gz",
			chunk:  "mysoftware-1.0.tar.gz",
			wantOK: false,
		},
		{
			name:    "custom pattern with capturing groups returns whole span",
			prefix:  "app-",
			suffix:  ".zip",
			pattern: `(\d+)\.(\d+)`,
			chunk:   "app-1.22.zip",
			want:    "1.22",
			wantOK:  true,
		},
		{
			name:   "prefix with capturing group does not shift the version",
			prefix: "(app|tool)-",
			suffix: ".zip",
			chunk:  "tool-3.4.5.zip",
			want:   "3.4.5",
			wantOK: true,
		},
		{
			name:    "four component pattern",
			prefix:  "build-",
			suffix:  ".bin",
			pattern: `\d+(?:\.\d+){3}`,
			chunk:   "build-10.0.19041.1.bin",
			want:    "10.0.19041.1",
			wantOK:  true,
		},
		{
			name:   "leading zeros are kept verbatim",
			prefix: "x-",
			suffix: ".tgz",
			chunk:  "x-01.002.3.tgz",
			want:   "01.002.3",
			wantOK: true,
		},
		{
			name:    "literal prefix does not treat dot as wildcard",
			prefix:  "a.b-",
			suffix:  ".tgz",
			literal: true,
			chunk:   "axb-1.0.0.tgz",
			wantOK:  false,
		},
		{
			name:   "regex prefix treats dot as wildcard",
			prefix: "a.b-",
			suffix: ".tgz",
			chunk:  "axb-1.0.0.tgz",
			want:   "1.0.0",
			wantOK: true,
		},
		{
			name:    "literal prefix with metacharacters",
			prefix:  "lib++-",
			suffix:  ".tar.gz",
			literal: true,
			chunk:   "lib++-2.1.0.tar.gz",
			want:    "2.1.0",
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpl, err := NewTemplate(tt.prefix, tt.suffix, tt.pattern, WithLiteral(tt.literal))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, ok := tmpl.Extract(tt.chunk)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v (token %q)", tt.wantOK, ok, got)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTemplateCollect(t *testing.T) {
	t.Parallel()

	tmpl := newTestTemplate(t, "mysoftware-", ".tar.gz", "")

	t.Run("keeps order and duplicates", func(t *testing.T) {
		t.Parallel()

		chunks := []string{
			"Index of /stable",
			"mysoftware-1.0.1.tar.gz",
			"Parent Directory",
			"mysoftware-1.0.0.tar.gz",
			"mysoftware-1.0.1.tar.gz",
			"mysoftware-1.0.1.tar.gz.sha256",
		}

		got := tmpl.Collect(chunks)
		want := []string{"1.0.1", "1.0.0", "1.0.1", "1.0.1"}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("returns empty slice when nothing matches", func(t *testing.T) {
		t.Parallel()

		got := tmpl.Collect([]string{"a", "b"})
		if got == nil {
			t.Fatal("expected non-nil slice")
		}
		if len(got) != 0 {
			t.Errorf("expected no tokens, got %v", got)
		}
	})

	t.Run("nil chunks", func(t *testing.T) {
		t.Parallel()

		if got := tmpl.Collect(nil); len(got) != 0 {
			t.Errorf("expected no tokens, got %v", got)
		}
	})
}

func TestTemplateCompose(t *testing.T) {
	t.Parallel()

	tmpl := newTestTemplate(t, "mysoftware-", ".tar.gz", "")

	t.Run("concatenates parts", func(t *testing.T) {
		t.Parallel()

		got := tmpl.Compose("https://mysoftware.com/stable/", "1.1.0")
		want := "https://mysoftware.com/stable/mysoftware-1.1.0.tar.gz"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("does not insert a separator", func(t *testing.T) {
		t.Parallel()

		got := tmpl.Compose("https://mysoftware.com/stable", "1.1.0")
		want := "https://mysoftware.com/stablemysoftware-1.1.0.tar.gz"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})
}

func TestCollectWideComponents(t *testing.T) {
	t.Parallel()

	tmpl := newTestTemplate(t, "app-", ".tgz", "")
	tokens := tmpl.Collect([]string{"app-1.0.0.tgz", "app-18446744073709551616.0.0.tgz"})

	got, err := SelectLatest(tokens)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://example.com/app-18446744073709551616.0.0.tgz"
	if url := tmpl.Compose("https://example.com/", got); url != want {
		t.Errorf("expected %q, got %q", want, url)
	}
}

func TestEndToEndListing(t *testing.T) {
	t.Parallel()

	tmpl := newTestTemplate(t, "mysoftware-", ".tar.gz", "")
	chunks := []string{
		"Index of /stable",
		"Name", "Last modified", "Size",
		"mysoftware-1.0.0.tar.gz", "2020-01-01 10:00", "1.2M",
		"mysoftware-1.0.1.tar.gz", "2020-02-01 10:00", "1.2M",
		"mysoftware-1.1.0.tar.gz", "2020-03-01 10:00", "1.3M",
		"README.txt",
	}

	t.Run("resolves newest artifact", func(t *testing.T) {
		t.Parallel()

		latest, err := SelectLatest(tmpl.Collect(chunks))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := tmpl.Compose("https://mysoftware.com/stable/", latest)
		want := "https://mysoftware.com/stable/mysoftware-1.1.0.tar.gz"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("repeated runs select the same token", func(t *testing.T) {
		t.Parallel()

		first, err := SelectLatest(tmpl.Collect(chunks))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := SelectLatest(tmpl.Collect(chunks))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first != second {
			t.Errorf("expected identical results, got %q and %q", first, second)
		}
	})

	t.Run("page without tokens reports no versions", func(t *testing.T) {
		t.Parallel()

		_, err := SelectLatest(tmpl.Collect([]string{"Index of /", "Parent Directory"}))
		if !errors.Is(err, ErrNoVersionsFound) {
			t.Errorf("expected ErrNoVersionsFound, got %v", err)
		}
	})
}
