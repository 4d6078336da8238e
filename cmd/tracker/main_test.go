package main

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdgilhuly/premium_tracker/pkg/snapshot"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	orig := now
	now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTrack_DefaultCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.json")

	stdout, _, err := execute(t, "--output", path)
	require.NoError(t, err)

	for _, want := range []string{
		"### OPENAI",
		"Premium ratio: 2.0x",
		"✅ SIGNAL: Premium may be collapsing (ratio < 3.0)",
		"✅ Snapshot saved: " + path,
	} {
		assert.Contains(t, stdout, want)
	}
	assert.NotContains(t, stdout, "\x1b[", "non-terminal output should not be colored")

	rep, err := snapshot.Load(path)
	require.NoError(t, err)
	assert.Len(t, rep.Providers, 1)
	require.NotNil(t, rep.Summary)
	assert.Equal(t, 2.0, rep.Summary.OverallPremiumRatio)
}

func TestTrack_MissingSnapshotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "snapshots", "latest.json")

	stdout, stderr, err := execute(t, "--output", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.NotContains(t, stdout, "Snapshot saved")
	assert.Equal(t, 1, strings.Count(stderr, "snapshot directory"), "error should be reported once:\n%s", stderr)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestTrack_CustomCatalog(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catPath, []byte(`
providers:
  - name: acme
    models:
      - name: acme-base
        price_per_million_tokens: 1.00
      - name: acme-think
        price_per_million_tokens: 5.00
        reasoning: true
`), 0o644))
	outPath := filepath.Join(dir, "latest.json")

	stdout, _, err := execute(t, "--catalog", catPath, "--output", outPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "### ACME")
	assert.Contains(t, stdout, "❌ SIGNAL: Premium intact (ratio ≥ 3.0)")

	rep, err := snapshot.Load(outPath)
	require.NoError(t, err)
	assert.Equal(t, 5.0, rep.Providers["acme"].PremiumRatio)
	assert.False(t, rep.Summary.PremiumCollapsing)
}

func TestTrack_NoSummary(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catPath, []byte(`
providers:
  - name: anthropic
    models:
      - name: claude-opus
        price_per_million_tokens: 15.00
`), 0o644))
	outPath := filepath.Join(dir, "latest.json")

	stdout, stderr, err := execute(t, "--catalog", catPath, "--output", outPath)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Premium ratio")
	assert.Contains(t, stderr, "no overall summary")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"summary": {}`)
}

func TestTrack_MissingCatalogFile(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := execute(t, "--catalog", filepath.Join(dir, "typo.yaml"), "--output", filepath.Join(dir, "latest.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "error %v should wrap fs.ErrNotExist", err)
	assert.NotContains(t, stdout, "### OPENAI")

	_, statErr := os.Stat(filepath.Join(dir, "latest.json"))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestTrack_NonFiniteCatalogPrice(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catPath, []byte(`
providers:
  - name: acme
    models:
      - name: acme-base
        price_per_million_tokens: .nan
      - name: acme-think
        price_per_million_tokens: 5.00
        reasoning: true
`), 0o644))

	stdout, _, err := execute(t, "--catalog", catPath, "--output", filepath.Join(dir, "latest.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid catalog")
	assert.NotContains(t, stdout, "NaN")
	assert.NotContains(t, stdout, "SIGNAL")
}

func TestTrack_InvalidCatalog(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catPath, []byte(`
providers:
  - name: acme
    models:
      - name: acme-base
        price_per_million_tokens: -1
`), 0o644))

	_, _, err := execute(t, "--catalog", catPath, "--output", filepath.Join(dir, "latest.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid catalog")
}

func TestTrack_RejectsArgs(t *testing.T) {
	_, _, err := execute(t, "extra")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	catPath := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catPath, []byte(`
providers:
  - name: openai
    models:
      - name: gpt-4o
        price_per_million_tokens: 2.50
      - name: o1
        price_per_million_tokens: 20.00
        reasoning: true
`), 0o644))

	stdout, _, err := execute(t, "validate", catPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "Catalog "))
	assert.Contains(t, stdout, "is valid (1 providers, 2 models)")
}

func TestValidate_Duplicate(t *testing.T) {
	catPath := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catPath, []byte(`
providers:
  - name: openai
  - name: openai
`), 0o644))

	_, _, err := execute(t, "validate", catPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate name")
}

func TestTrack_JSONLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.json")

	_, stderr, err := execute(t, "--output", path, "--verbose", "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"catalog loaded"`)
	assert.Contains(t, stderr, `"provider":"anthropic"`)
}
