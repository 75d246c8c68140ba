package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEnvFiles(t *testing.T) {
	path := writeEnv(t, `# nutritrack
NT_TEST_PLAIN=value1
NT_TEST_DOUBLE="quoted value"
NT_TEST_SINGLE='single quoted'
`)
	for _, k := range []string{"NT_TEST_PLAIN", "NT_TEST_DOUBLE", "NT_TEST_SINGLE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	require.NoError(t, loadEnvFiles(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "value1", os.Getenv("NT_TEST_PLAIN"))
	assert.Equal(t, "quoted value", os.Getenv("NT_TEST_DOUBLE"))
	assert.Equal(t, "single quoted", os.Getenv("NT_TEST_SINGLE"))
}

func TestLoadEnvFiles_NearestWins(t *testing.T) {
	near := writeEnv(t, "NT_TEST_ORDER=near\n")
	far := writeEnv(t, "NT_TEST_ORDER=far\nNT_TEST_FAR_ONLY=yes\n")
	t.Setenv("NT_TEST_ORDER", "")
	os.Unsetenv("NT_TEST_ORDER")
	t.Setenv("NT_TEST_FAR_ONLY", "")
	os.Unsetenv("NT_TEST_FAR_ONLY")

	require.NoError(t, loadEnvFiles(near, far))
	assert.Equal(t, "near", os.Getenv("NT_TEST_ORDER"))
	assert.Equal(t, "yes", os.Getenv("NT_TEST_FAR_ONLY"))
}

func TestLoadEnvFiles_DoesNotOverride(t *testing.T) {
	path := writeEnv(t, "NT_TEST_EXISTING=from_file\n")
	t.Setenv("NT_TEST_EXISTING", "from_env")

	require.NoError(t, loadEnvFiles(path))
	assert.Equal(t, "from_env", os.Getenv("NT_TEST_EXISTING"))
}

func TestLoadEnvFiles_NoneExist(t *testing.T) {
	assert.NoError(t, loadEnvFiles(filepath.Join(t.TempDir(), ".env")))
}

func TestLookupEnv_Aliases(t *testing.T) {
	t.Setenv("NUTRITRACK_REMOTE_BASE_URL", "")
	t.Setenv("REMOTE_BASE_URL", "")
	t.Setenv("BACKEND_URL", "")

	_, ok := lookupEnv("NUTRITRACK_REMOTE_BASE_URL")
	assert.False(t, ok)

	t.Setenv("BACKEND_URL", "https://backend.example")
	v, ok := lookupEnv("NUTRITRACK_REMOTE_BASE_URL")
	assert.True(t, ok)
	assert.Equal(t, "https://backend.example", v)

	t.Setenv("REMOTE_BASE_URL", "https://remote.example")
	v, _ = lookupEnv("NUTRITRACK_REMOTE_BASE_URL")
	assert.Equal(t, "https://remote.example", v)

	t.Setenv("NUTRITRACK_REMOTE_BASE_URL", "https://canonical.example")
	v, _ = lookupEnv("NUTRITRACK_REMOTE_BASE_URL")
	assert.Equal(t, "https://canonical.example", v)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "catalog.yaml"), expandPath("~/catalog.yaml"))
	assert.Equal(t, "/etc/nutritrack.yaml", expandPath("/etc/nutritrack.yaml"))
	assert.Equal(t, "relative/path", expandPath("relative/path"))
}

func TestEnvFileCandidates(t *testing.T) {
	paths := EnvFileCandidates()
	require.NotEmpty(t, paths)
	assert.Equal(t, ".env", paths[0])
}
