package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, xdg, content string) {
	t.Helper()
	dir := filepath.Join(xdg, "memo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.jsonc"), []byte(content), 0o644))
}

func TestBackupUserConfig_NoConfigReturnsEmpty(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path, err := BackupUserConfig()
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestBackupUserConfig_CreatesTimestampedCopy(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeConfigFile(t, xdg, `{"maxMemories": 3}`)

	backupPath, err := BackupUserConfig()
	require.NoError(t, err)
	require.NotEmpty(t, backupPath)

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "maxMemories")
}

func TestListUserConfigBackups_NoDirReturnsEmpty(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "does-not-exist"))
	backups, err := ListUserConfigBackups()
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestBackupUserConfig_CleansUpBeyondMaxBackups(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeConfigFile(t, xdg, `{"maxMemories": 3}`)

	for i := 0; i < MaxBackups+2; i++ {
		_, err := BackupUserConfig()
		require.NoError(t, err)
	}

	backups, err := ListUserConfigBackups()
	require.NoError(t, err)
	assert.LessOrEqual(t, len(backups), MaxBackups)
}

func TestRestoreUserConfig_WritesBackupContentBack(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeConfigFile(t, xdg, `{"maxMemories": 7}`)

	backupPath, err := BackupUserConfig()
	require.NoError(t, err)

	writeConfigFile(t, xdg, `{"maxMemories": 99}`)
	require.NoError(t, RestoreUserConfig(backupPath))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxMemories)
}

func TestRestoreUserConfig_MissingBackupIsError(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	err := RestoreUserConfig("/no/such/backup.bak")
	assert.Error(t, err)
}
