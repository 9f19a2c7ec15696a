package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "clientrepo.yaml")
	cfg := "backend: json\nfiles:\n  json: " + filepath.Join(dir, "clients.json") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLIRoundTrip(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "--config", cfg, "add", "--surname", "Petrov", "--firstname", "Petr", "--email", "p@example.com", "--balance", "5")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "add", "--surname", "Abramov", "--firstname", "Abram", "--email", "a@example.com")
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "-o", "json", "count")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":2}`, out)

	out, err = run(t, "--config", cfg, "-o", "json", "list", "--surname", "abr")
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Abramov", rows[0]["surname"])

	out, err = run(t, "--config", cfg, "-o", "json", "sort")
	require.NoError(t, err)
	var sorted struct {
		Ordering string           `json:"ordering"`
		Clients  []map[string]any `json:"clients"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &sorted))
	assert.Equal(t, "persisted", sorted.Ordering)
	require.Len(t, sorted.Clients, 2)
	assert.Equal(t, "Abramov", sorted.Clients[0]["surname"])

	_, err = run(t, "--config", cfg, "update", "1", "--surname", "Sidorov", "--firstname", "Sid")
	require.NoError(t, err)
	out, err = run(t, "--config", cfg, "-o", "json", "get", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"surname": "Sidorov"`)

	_, err = run(t, "--config", cfg, "delete", "1")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "get", "1")
	assert.ErrorContains(t, err, "not found")
}

func TestCLIRejectsInvalidInput(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "--config", cfg, "add", "--surname", "Petrov2", "--firstname", "Petr")
	assert.ErrorContains(t, err, "validation failed")

	_, err = run(t, "--config", cfg, "add", "--surname", "Petrov", "--firstname", "Petr", "--balance", "lots")
	assert.ErrorContains(t, err, "invalid balance")

	_, err = run(t, "--config", cfg, "get", "zero")
	assert.Error(t, err)

	_, err = run(t, "--config", cfg, "--backend", "csv", "count")
	assert.Error(t, err)

	_, err = run(t, "--config", cfg, "-o", "xml", "count")
	assert.Error(t, err)
}
