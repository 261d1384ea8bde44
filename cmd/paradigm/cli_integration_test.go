package main_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildBinary compiles the paradigm binary into t.TempDir() and returns
// its path.
func buildBinary(t *testing.T) string {
	t.Helper()
	binName := "paradigm"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	bin := filepath.Join(t.TempDir(), binName)
	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Dir = filepath.Join(projectRoot(t), "cmd", "paradigm")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=1")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "build failed: %s", string(out))
	return bin
}

// projectRoot walks up from this file's directory to the one holding go.mod.
func projectRoot(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, parent, dir, "could not find project root")
		dir = parent
	}
}

// createCorpusFixture copies testdata/corpus into a temp dir marked as a
// repository root and returns its path.
func createCorpusFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))

	src := filepath.Join(projectRoot(t), "testdata", "corpus")
	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) == ".json" {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	})
	require.NoError(t, err)
	return dir
}

type envelope struct {
	Command    string          `json:"command"`
	Results    json.RawMessage `json:"results"`
	TotalCount *int            `json:"total_count"`
	Error      string          `json:"error"`
}

func run(t *testing.T, bin, dir, stdin string, args ...string) (envelope, string, error) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir())
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	var env envelope
	if strings.HasPrefix(strings.TrimSpace(stdout.String()), "{") {
		require.NoError(t, json.Unmarshal([]byte(stdout.String()), &env), stdout.String())
	}
	return env, stdout.String() + stderr.String(), err
}

func TestCLI_IndexAnalyzeQuery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	fixture := createCorpusFixture(t)

	env, out, err := run(t, bin, fixture, "", "index", fixture)
	require.NoError(t, err, out)
	assert.Equal(t, "index", env.Command)
	var summary struct {
		Samples int `json:"samples"`
	}
	require.NoError(t, json.Unmarshal(env.Results, &summary))
	assert.Equal(t, 12, summary.Samples)
	_, err = os.Stat(filepath.Join(fixture, ".paradigm", "index.db"))
	require.NoError(t, err)

	env, out, err = run(t, bin, fixture, "", "languages")
	require.NoError(t, err, out)
	var counts []struct {
		Language string `json:"language"`
		Count    int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Results, &counts))
	assert.Len(t, counts, 6)

	env, out, err = run(t, bin, fixture, "", "samples", "--language", "go", "--limit", "1")
	require.NoError(t, err, out)
	require.NotNil(t, env.TotalCount)
	assert.Equal(t, 2, *env.TotalCount)

	env, out, err = run(t, bin, fixture, "", "analyze", "--candidates", "2,3,4", "--perplexity", "5")
	require.NoError(t, err, out)
	var report struct {
		RunID       string `json:"run_id"`
		K           int    `json:"k"`
		Assignments []struct {
			Cluster int `json:"cluster"`
		} `json:"assignments"`
		Diagnostics []struct {
			K int `json:"k"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(env.Results, &report))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.K)
	assert.Len(t, report.Assignments, 12)
	assert.Len(t, report.Diagnostics, 3)

	_, out, err = run(t, bin, fixture, "", "analyze", "--format", "text", "--perplexity", "5")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Cluster-count diagnostics:")
}

func TestCLI_AnalyzeInvalidDataset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	fixture := createCorpusFixture(t)

	_, out, err := run(t, bin, fixture, "", "index", "--languages", "go", fixture)
	require.NoError(t, err, out)

	env, _, err := run(t, bin, fixture, "", "analyze")
	require.Error(t, err)
	assert.Equal(t, "analyze", env.Command)
	assert.Contains(t, env.Error, "invalid dataset")
}

func TestCLI_AnalyzeWithoutDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))

	env, _, err := run(t, bin, dir, "", "analyze")
	require.Error(t, err)
	assert.Contains(t, env.Error, "database not found")
}

func TestCLI_ExtractStdin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	dir := t.TempDir()

	src := "c := make(chan int)\ngo func() { c <- 1 }()\n"
	env, out, err := run(t, bin, dir, src, "extract", "--language", "go", "--explain", "-")
	require.NoError(t, err, out)
	var res struct {
		LineCount int `json:"line_count"`
		Features  struct {
			HasChannels    int     `json:"has_channels"`
			ChannelDensity float64 `json:"channel_density"`
			Language       string  `json:"language"`
		} `json:"features"`
		Patterns []struct {
			Pattern string `json:"pattern"`
			Count   int    `json:"count"`
		} `json:"patterns"`
	}
	require.NoError(t, json.Unmarshal(env.Results, &res))
	assert.Equal(t, 2, res.LineCount)
	assert.Equal(t, "go", res.Features.Language)
	assert.Equal(t, 1, res.Features.HasChannels)
	assert.InDelta(t, 0.5, res.Features.ChannelDensity, 1e-12)
	require.NotEmpty(t, res.Patterns)
	assert.Equal(t, "go ", res.Patterns[0].Pattern)
	assert.Equal(t, 1, res.Patterns[0].Count)

	_, _, err = run(t, bin, dir, src, "extract", "-")
	assert.Error(t, err, "stdin needs --language")
}

func TestCLI_InitThenAnalyzeUsesConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bin := buildBinary(t)
	fixture := createCorpusFixture(t)

	env, out, err := run(t, bin, fixture, "", "init")
	require.NoError(t, err, out)
	var res struct {
		Path    string `json:"path"`
		Created bool   `json:"created"`
	}
	require.NoError(t, json.Unmarshal(env.Results, &res))
	assert.True(t, res.Created)
	assert.Equal(t, filepath.Join(fixture, ".paradigm", "config.yaml"), res.Path)

	env, out, err = run(t, bin, fixture, "", "init")
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal(env.Results, &res))
	assert.False(t, res.Created)

	cfg := "analysis:\n  seed: 7\n  perplexity: 5\n"
	require.NoError(t, os.WriteFile(res.Path, []byte(cfg), 0o644))

	_, out, err = run(t, bin, fixture, "", "index", fixture)
	require.NoError(t, err, out)

	env, out, err = run(t, bin, fixture, "", "analyze", "--languages", "Go,JAVA,Rust", "--k", "2", "--candidates", "2,3")
	require.NoError(t, err, out)
	var report struct {
		Seed        uint64 `json:"seed"`
		Assignments []struct {
			Language string `json:"language"`
		} `json:"assignments"`
	}
	require.NoError(t, json.Unmarshal(env.Results, &report))
	assert.Equal(t, uint64(7), report.Seed)
	assert.Len(t, report.Assignments, 6)
}
