package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/verbcrawl/internal/database"
)

// crawledFixture runs a full crawl against a corpus proxy and returns the
// fixture paths.
func crawledFixture(t *testing.T) (string, string, string) {
	t.Helper()

	proxy := newCorpusProxy(t)
	dir, configPath, statePath := crawlFixture(t)
	if _, stderr, err := runRoot(t, "crawl", "-c", configPath, "-s", statePath, "--proxy", proxy.URL); err != nil {
		t.Fatalf("crawl failed: %v\nstderr: %s", err, stderr)
	}
	return dir, configPath, statePath
}

func TestFormsCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists generated forms", func(t *testing.T) {
		t.Parallel()
		_, configPath, statePath := crawlFixture(t)

		stdout, _, err := runRoot(t, "forms", "-c", configPath, "-s", statePath)
		if err != nil {
			t.Fatalf("forms failed: %v", err)
		}
		for _, want := range []string{"## драть (2 forms)", "подрать", "po-"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
			}
		}
		if strings.Contains(stdout, "### Queries") {
			t.Error("queries listed without --queries")
		}
		if _, err := os.Stat(statePath); !os.IsNotExist(err) {
			t.Error("forms must not create the state file")
		}
	})

	t.Run("lists query addresses", func(t *testing.T) {
		t.Parallel()
		_, configPath, statePath := crawlFixture(t)

		stdout, _, err := runRoot(t, "forms", "-c", configPath, "-s", statePath, "--queries")
		if err != nil {
			t.Fatalf("forms failed: %v", err)
		}
		if !strings.Contains(stdout, "### Queries") {
			t.Errorf("expected a queries section, got:\n%s", stdout)
		}
		if got := strings.Count(stdout, "mode=main"); got != 2 {
			t.Errorf("expected 2 modern subcorpus addresses, got %d", got)
		}
		if strings.Contains(stdout, "mode=mid_rus") {
			t.Error("bare lemmas must not be sent to the word-form subcorpus")
		}
	})

	t.Run("uses roots from arguments", func(t *testing.T) {
		t.Parallel()
		_, configPath, statePath := crawlFixture(t)

		stdout, _, err := runRoot(t, "forms", "-c", configPath, "-s", statePath, "нести")
		if err != nil {
			t.Fatalf("forms failed: %v", err)
		}
		if !strings.Contains(stdout, "понести") || strings.Contains(stdout, "драть") {
			t.Errorf("expected only нести forms, got:\n%s", stdout)
		}
	})
}

func TestExportCmd(t *testing.T) {
	t.Parallel()

	t.Run("requires an output", func(t *testing.T) {
		t.Parallel()
		_, configPath, statePath := crawlFixture(t)

		_, _, err := runRoot(t, "export", "-c", configPath, "-s", statePath)
		if !errors.Is(err, errNoOutput) {
			t.Errorf("expected errNoOutput, got %v", err)
		}
	})

	t.Run("exports every format", func(t *testing.T) {
		t.Parallel()
		dir, configPath, statePath := crawledFixture(t)
		csvPath := filepath.Join(dir, "out.csv")
		xlsxPath := filepath.Join(dir, "out.xlsx")
		dbPath := filepath.Join(dir, "out.db")

		stdout, stderr, err := runRoot(t, "export", "-c", configPath, "-s", statePath,
			"--csv", csvPath, "--xlsx", xlsxPath, "--db="+dbPath)
		if err != nil {
			t.Fatalf("export failed: %v\nstderr: %s", err, stderr)
		}
		if !strings.Contains(stdout, "Exported 2 records") {
			t.Errorf("unexpected output: %q", stdout)
		}

		if rows := readCSVFile(t, csvPath); len(rows) != 3 {
			t.Errorf("expected header and 2 CSV rows, got %d", len(rows))
		}

		wb, err := excelize.OpenFile(xlsxPath)
		if err != nil {
			t.Fatalf("failed to open workbook: %v", err)
		}
		defer func() { _ = wb.Close() }()
		rows, err := wb.GetRows(wb.GetSheetName(0))
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 3 {
			t.Errorf("expected header and 2 sheet rows, got %d", len(rows))
		}

		db, err := database.Open(dbPath, database.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()
		n, err := db.CountRecords(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if n != 2 {
			t.Errorf("expected 2 database records, got %d", n)
		}
		runs, err := db.ListRuns(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 || runs[0].Kind != "export" {
			t.Errorf("expected one export run, got %+v", runs)
		}
	})

	t.Run("skips pending queries by default", func(t *testing.T) {
		t.Parallel()
		dir, configPath, statePath := crawlFixture(t)
		proxy := newCorpusProxy(t)
		proxy.fail(500)
		if _, _, err := runRoot(t, "crawl", "-c", configPath, "-s", statePath, "--proxy", proxy.URL); err != nil {
			t.Fatal(err)
		}
		csvPath := filepath.Join(dir, "out.csv")

		stdout, _, err := runRoot(t, "export", "-c", configPath, "-s", statePath, "--csv", csvPath)
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(stdout, "Exported 0 records") {
			t.Errorf("unexpected output: %q", stdout)
		}
	})
}

func TestStatusCmd(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		_, configPath, statePath := crawledFixture(t)

		stdout, _, err := runRoot(t, "status", "-c", configPath, "-s", statePath, "--verbs")
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		for _, want := range []string{"2 done / 2 total", "All queries are done.", "--- By verb ---"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		_, configPath, statePath := crawledFixture(t)

		stdout, _, err := runRoot(t, "status", "-c", configPath, "-s", statePath, "--json")
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		var got struct {
			Complete bool `json:"complete"`
			Stats    struct {
				Total struct {
					Queries int `json:"queries"`
				} `json:"total"`
			} `json:"stats"`
		}
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if !got.Complete || got.Stats.Total.Queries != 2 {
			t.Errorf("unexpected status: %+v", got)
		}
	})

	t.Run("markdown to file", func(t *testing.T) {
		t.Parallel()
		dir, configPath, statePath := crawledFixture(t)
		outPath := filepath.Join(dir, "status.md")

		stdout, _, err := runRoot(t, "status", "-c", configPath, "-s", statePath, "--markdown", "-o", outPath)
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		content, err := os.ReadFile(outPath) //nolint:gosec // test file
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != stdout {
			t.Error("file output differs from terminal output")
		}
		if !strings.Contains(stdout, "# verbcrawl status") {
			t.Errorf("expected markdown heading, got:\n%s", stdout)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()
		_, configPath, statePath := crawlFixture(t)

		_, _, err := runRoot(t, "status", "-c", configPath, "-s", statePath, "--json", "--markdown")
		if err == nil {
			t.Error("expected error for --json with --markdown")
		}
	})

	t.Run("empty state", func(t *testing.T) {
		t.Parallel()
		_, configPath, statePath := crawlFixture(t)

		stdout, _, err := runRoot(t, "status", "-c", configPath, "-s", statePath)
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(stdout, "0 done / 0 total") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})
}
