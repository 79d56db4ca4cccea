package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
	"github.com/banshee-data/cellcycle/internal/cellcycle/storage/sqlite"
	"github.com/banshee-data/cellcycle/internal/cellcycle/trackio"
	"github.com/banshee-data/cellcycle/internal/config"
	"github.com/banshee-data/cellcycle/internal/fsutil"
	"github.com/banshee-data/cellcycle/internal/monitoring"
	tu "github.com/banshee-data/cellcycle/internal/testutil"
	"github.com/banshee-data/cellcycle/internal/timeutil"
	"github.com/banshee-data/cellcycle/internal/version"
)

func quiet(t *testing.T) {
	t.Helper()
	prevOut := log.Writer()
	log.SetOutput(io.Discard)
	prevLogf := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		monitoring.Logf = prevLogf
	})
}

func inputFS(t *testing.T, rows []phase.TrackRow) *fsutil.MemoryFileSystem {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, trackio.WriteTracks(&buf, rows))
	fsys := fsutil.NewMemoryFileSystem()
	fsys.AddFile("in/tracks.csv", buf.Bytes())
	return fsys
}

func lineageRows() []phase.TrackRow {
	return tu.Concat(
		tu.Track(1, 0, 0, tu.Seq(tu.Repeat("G1/G2", 3), tu.Repeat("S", 5), tu.Repeat("M", 2))),
		tu.Track(2, 1, 9, tu.Seq(tu.Repeat("M", 3), tu.Repeat("G1/G2", 7))),
		tu.Track(3, 1, 9, tu.Seq(tu.Repeat("M", 3), tu.Repeat("G1/G2", 8))),
		tu.WithIntensity(tu.Track(4, 0, 0, tu.Repeat("G1/G2", 12)), 230, 10),
	)
}

func readPhaseCSV(t *testing.T, fsys fsutil.FileSystem, name string) map[string]map[string]string {
	t.Helper()
	data, err := fsys.ReadFile(name)
	require.NoError(t, err)
	recs, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	header := recs[0]
	out := make(map[string]map[string]string)
	for _, rec := range recs[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			row[h] = rec[i]
		}
		out[row["track"]] = row
	}
	return out
}

func TestParseFlags(t *testing.T) {
	var out bytes.Buffer

	o, err := parseFlags([]string{"-input", "a.csv", "-out", "res", "-min-track", "0", "-plots"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "a.csv", o.input)
	assert.Equal(t, "res", o.out)
	assert.True(t, o.plots)
	assert.True(t, o.set["min-track"])
	assert.False(t, o.set["g2-threshold"])

	_, err = parseFlags(nil, &out)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, out.String(), "Usage: phase-resolve")

	_, err = parseFlags([]string{"-h"}, io.Discard)
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolver.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"min_track": 20, "g2_threshold": 50, "min_s": 4}`), 0644))

	o, err := parseFlags([]string{"-input", "a.csv", "-config", path, "-g2-threshold", "120"}, io.Discard)
	require.NoError(t, err)
	cfg, err := loadConfig(o)
	require.NoError(t, err)

	assert.Equal(t, 120.0, *cfg.GetG2Threshold())
	assert.Equal(t, 20, cfg.GetMinTrack())
	assert.Equal(t, 4, cfg.GetMinS())

	o, err = parseFlags([]string{"-input", "a.csv", "-g2-threshold", "300"}, io.Discard)
	require.NoError(t, err)
	_, err = loadConfig(o)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoadConfig_ReadsDefaultsFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigPath), []byte(`{"min_track": 50, "workers": 3}`), 0644))

	o, err := parseFlags([]string{"-input", "a.csv", "-workers", "1"}, io.Discard)
	require.NoError(t, err)
	cfg, err := loadConfig(o)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.GetMinTrack())
	assert.Equal(t, 1, cfg.GetWorkers(), "flags override the defaults file")
}

func TestRun_WritesOutputs(t *testing.T) {
	quiet(t)
	fsys := inputFS(t, lineageRows())
	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	var stdout bytes.Buffer
	err := run(context.Background(),
		[]string{"-input", "in/tracks.csv", "-out", "out", "-g2-threshold", "100", "-plots", "-workers", "2"},
		&stdout, fsys, clock)
	require.NoError(t, err)

	for _, name := range []string{resolvedFile, phaseFile, annotationsFile, summaryFile} {
		assert.True(t, fsys.Exists(filepath.Join("out", name)), "missing %s", name)
	}
	assert.NotEmpty(t, fsys.Files(filepath.Join("out", plotsDir)))
	assert.Contains(t, stdout.String(), "resolved 4 tracks")

	phases := readPhaseCSV(t, fsys, "out/phase.csv")
	require.Contains(t, phases, "2")
	assert.Equal(t, "4", phases["2"]["M"])
	assert.Equal(t, "1", phases["2"]["parent"])
	require.Contains(t, phases, "4")
	assert.Equal(t, "arrest-G2", phases["4"]["type"])

	resolved, err := fsys.ReadFile("out/resolved.csv")
	require.NoError(t, err)
	assert.Contains(t, string(resolved), "2-1-M")
}

func TestRun_WithoutPlots(t *testing.T) {
	quiet(t)
	fsys := inputFS(t, lineageRows())

	err := run(context.Background(), []string{"-input", "in/tracks.csv", "-out", "out"},
		io.Discard, fsys, timeutil.NewMockClock(time.Unix(0, 0)))
	require.NoError(t, err)

	assert.True(t, fsys.Exists("out/phase.csv"))
	assert.False(t, fsys.Exists("out/summary.html"))
	assert.Empty(t, fsys.Files("out/plots"))
}

func TestRun_RecordsRunInDatabase(t *testing.T) {
	quiet(t)
	fsys := inputFS(t, lineageRows())
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var stdout bytes.Buffer
	err := run(context.Background(),
		[]string{"-input", "in/tracks.csv", "-out", "out", "-db", dbPath, "-g2-threshold", "100"},
		&stdout, fsys, timeutil.NewMockClock(created))
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "recorded in "+dbPath)

	db, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	runs, err := sqlite.NewRunStore(db.DB).ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, sqlite.ModePredicted, runs[0].Mode)
	assert.Equal(t, "in/tracks.csv", runs[0].InputPath)
	assert.True(t, runs[0].CreatedAt.Equal(created))
	require.NotNil(t, runs[0].G2Threshold)
	assert.Equal(t, 100.0, *runs[0].G2Threshold)
}

func TestRun_GroundTruth(t *testing.T) {
	quiet(t)
	rows := tu.Concat(
		tu.Track(1, 0, 0, tu.Seq(tu.Repeat("G1", 3), tu.Repeat("S", 3), tu.Repeat("G2", 2), tu.Repeat("M", 2))),
		tu.Track(2, 0, 0, tu.Repeat("G2", 8)),
	)
	fsys := inputFS(t, rows)

	err := run(context.Background(), []string{"-input", "in/tracks.csv", "-out", "gt", "-ground-truth"},
		io.Discard, fsys, timeutil.NewMockClock(time.Unix(0, 0)))
	require.NoError(t, err)

	phases := readPhaseCSV(t, fsys, "gt/phase.csv")
	require.Contains(t, phases, "1")
	assert.Equal(t, "normal", phases["1"]["type"])
	assert.Equal(t, "3", phases["1"]["S"])
	assert.Equal(t, "arrest-G2", phases["2"]["type"])
}

func TestRun_Version(t *testing.T) {
	var stdout bytes.Buffer
	err := run(context.Background(), []string{"-version"}, &stdout, fsutil.NewMemoryFileSystem(), timeutil.RealClock{})
	require.NoError(t, err)
	assert.Equal(t, version.String(programName), strings.TrimSpace(stdout.String()))
}

func TestRun_Errors(t *testing.T) {
	quiet(t)

	err := run(context.Background(), []string{"-input", "missing.csv"}, io.Discard,
		fsutil.NewMemoryFileSystem(), timeutil.RealClock{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open input")

	fsys := fsutil.NewMemoryFileSystem()
	fsys.AddFile("bad.csv", []byte("frame,trackId\n0,1\n"))
	err = run(context.Background(), []string{"-input", "bad.csv"}, io.Discard, fsys, timeutil.RealClock{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read bad.csv")

	orphan := tu.Track(2, 9, 0, tu.Repeat("G1/G2", 5))
	err = run(context.Background(), []string{"-input", "in/tracks.csv"}, io.Discard,
		inputFS(t, orphan), timeutil.RealClock{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, phase.ErrInvalidInput), "got %v", err)
}
