package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "biowatch.db")
}

func TestVerifyCommand_All(t *testing.T) {
	out, err := execute(t, "verify", "--db", tempDB(t))
	require.NoError(t, err)

	assert.Contains(t, out, "CVE-2024-1234")
	assert.Contains(t, out, "RECALCULATED")
	assert.Contains(t, out, "5 checked")
}

func TestVerifyCommand_Single(t *testing.T) {
	out, err := execute(t, "verify", "--db", tempDB(t), "--id", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "CVE-2024-1234")
}

func TestVerifyCommand_UnknownID(t *testing.T) {
	out, err := execute(t, "verify", "--db", tempDB(t), "--id", "999")
	assert.Error(t, err)
	assert.Contains(t, out, domain.VerificationErrNotFound)
}

func TestSeedCommand(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, "seed", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "already populated", "startup seeding already filled the database")

	records := []domain.VulnerabilityRecord{
		{CVEID: "CVE-2025-0001", Title: "Sequencer firmware overflow", Severity: "high",
			CVSSScore: domain.Float(7.5), BioRelevanceScore: domain.Float(0.8), AIRating: domain.Float(7.9)},
		{CVEID: "not-a-cve", Title: "Broken"},
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "vulns.json")
	require.NoError(t, os.WriteFile(file, data, 0o600))

	out, err = execute(t, "seed", "--db", db, "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 1 vulnerabilities (1 skipped)")
}

func TestSeedCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "seed", "--db", tempDB(t), "--file", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	db := tempDB(t)

	t.Run("json to stdout", func(t *testing.T) {
		out, err := execute(t, "export", "--db", db)
		require.NoError(t, err)

		var report domain.VerificationReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, 5, report.Summary.Total)
	})

	t.Run("csv to stdout", func(t *testing.T) {
		out, err := execute(t, "export", "--db", db, "--format", "csv")
		require.NoError(t, err)
		assert.Contains(t, out, "VulnerabilityID,CVE,Title")
	})

	t.Run("pdf to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.pdf")
		_, err := execute(t, "export", "--db", db, "--format", "pdf", "--out", path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := execute(t, "export", "--db", db, "--format", "xml")
		assert.ErrorContains(t, err, "unsupported format")
	})
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}
