package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediasort/internal/organizer"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite refuses to clobber the file.
	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestConfigShowDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	out, err := runCLI(t, "--config", missing, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[paths]")
	requireContains(t, out, "showing defaults")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "mediasort")
}

func TestPrintReport(t *testing.T) {
	report := &organizer.Report{}
	report.Add(organizer.Record{
		Name:        "Heat.1995.1080p.mkv",
		Category:    "movie",
		Outcome:     organizer.OutcomeMoved,
		Destination: "/library/movies/Heat (1995)/Heat.1995.1080p.mkv",
	})
	report.Add(organizer.Record{
		Name:    "Growing.S01E01.mkv",
		Outcome: organizer.OutcomeSkipped,
	})

	var out bytes.Buffer
	printReport(&out, report)
	text := out.String()
	requireContains(t, text, "Heat.1995.1080p.mkv")
	requireContains(t, text, "moved")
	requireContains(t, text, "1 moved, 1 skipped, 0 failed")
}

func TestRenderTableWrapsLongDetail(t *testing.T) {
	detail := strings.Repeat("/very/long/destination/segment", 5)
	rendered := renderTable(
		[]string{"Item", "Detail"},
		[][]string{{"a.mkv", detail}},
	)
	requireContains(t, rendered, "Item")
	for _, line := range strings.Split(rendered, "\n") {
		if len(line) > detailWidthMax+32 {
			t.Fatalf("detail column did not wrap, line length %d", len(line))
		}
	}
}

func TestPrintReportEmpty(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, &organizer.Report{})
	requireContains(t, out.String(), "Nothing to organize")
}
