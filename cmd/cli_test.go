package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingCredentialsListsEnvNames(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SU_USERNAME", "")
	t.Setenv("SU_PASSWORD", "")
	t.Setenv("PUSHOVER_KEY", "")
	t.Setenv("PUSHOVER_USER", "")

	_, _, err := executeCLI(t, home)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required configuration")
	assert.Contains(t, err.Error(), "SU_USERNAME")
	assert.Contains(t, err.Error(), "SU_PASSWORD")
	assert.Contains(t, err.Error(), "PUSHOVER_KEY")
	assert.Contains(t, err.Error(), "PUSHOVER_USER")
}

func TestVersionPrintsVersion(t *testing.T) {
	home := t.TempDir()
	setRequiredEnv(t)

	stdout, _, err := executeCLI(t, home, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dev")
}

func TestCacheListEmptyCache(t *testing.T) {
	home := t.TempDir()
	setRequiredEnv(t)

	stdout, _, err := executeCLI(t, home, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cache is empty")
}

func TestCacheListShowsValidAndExpiredSessions(t *testing.T) {
	home := t.TempDir()
	setRequiredEnv(t)
	require.NoError(t, writeCacheFixture(home, time.Now()))

	stdout, _, err := executeCLI(t, home, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "queue_mobile")
	assert.Contains(t, stdout, "valid")
	assert.Contains(t, stdout, "daisy")
	assert.Contains(t, stdout, "expired")
}

func TestCacheClearRequiresServiceOrAll(t *testing.T) {
	home := t.TempDir()
	setRequiredEnv(t)

	_, _, err := executeCLI(t, home, "cache", "clear")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "specify a service or pass --all")
}

func TestCacheClearRejectsUnknownService(t *testing.T) {
	home := t.TempDir()
	setRequiredEnv(t)

	_, _, err := executeCLI(t, home, "cache", "clear", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown service")
}

func TestCacheClearAllEmptiesCache(t *testing.T) {
	home := t.TempDir()
	setRequiredEnv(t)
	require.NoError(t, writeCacheFixture(home, time.Now()))

	stdout, _, err := executeCLI(t, home, "cache", "clear", "--all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cache cleared")

	stdout, _, err = executeCLI(t, home, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cache is empty")
}

func TestCacheClearSingleServiceKeepsOthers(t *testing.T) {
	home := t.TempDir()
	setRequiredEnv(t)
	require.NoError(t, writeCacheFixture(home, time.Now()))

	stdout, _, err := executeCLI(t, home, "cache", "clear", "daisy")
	require.NoError(t, err)
	assert.Contains(t, stdout, "daisy: cached session cleared")

	stdout, _, err = executeCLI(t, home, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "queue_mobile")
	assert.NotContains(t, stdout, "daisy")
}

func TestLoginRejectsUnknownService(t *testing.T) {
	home := t.TempDir()
	setRequiredEnv(t)

	_, _, err := executeCLI(t, home, "login", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown service")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SU_USERNAME", "teacher")
	t.Setenv("SU_PASSWORD", "hunter2")
	t.Setenv("PUSHOVER_KEY", "app-token")
	t.Setenv("PUSHOVER_USER", "user-key")
}

func writeCacheFixture(home string, now time.Time) error {
	cacheDir := filepath.Join(home, ".config", "tutorwatch")
	if err := os.MkdirAll(cacheDir, 0o700); err != nil {
		return err
	}

	document := fmt.Sprintf(`version = 1

[services.queue_mobile]
token = "fresh-token"
acquired_at = %q

[services.daisy]
token = "stale-token"
acquired_at = %q
`,
		now.Format(time.RFC3339),
		now.Add(-2*time.Hour).Format(time.RFC3339),
	)

	return os.WriteFile(filepath.Join(cacheDir, "credentials.toml"), []byte(document), 0o600)
}
