package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-settings/app"
	"github.com/gaborage/go-settings/descriptor"
	"github.com/gaborage/go-settings/logger"
)

const testSettings = `# test settings
db_host = db.internal
db_password = s3cret
db_sslmode = disable
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("APP_CONFIG_PATH", "")

	cmd := NewRootCommand("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	return v
}

func TestGetCommand(t *testing.T) {
	path := writeFile(t, "app.conf", testSettings)

	tests := []struct {
		name      string
		args      []string
		wantKind  string
		wantValue any
	}{
		{name: "default integer", args: []string{"get", "db_pool", "--test"}, wantKind: "int", wantValue: float64(8)},
		{name: "default boolean", args: []string{"get", "db_advisory_locks", "--test"}, wantKind: "bool", wantValue: true},
		{name: "file value", args: []string{"get", "db_host", "--config", path}, wantKind: "string", wantValue: "db.internal"},
		{name: "masked credential", args: []string{"get", "db_password", "--config", path}, wantKind: "string", wantValue: logger.DefaultMaskValue},
		{name: "revealed credential", args: []string{"get", "db_password", "--config", path, "--reveal"}, wantKind: "string", wantValue: "s3cret"},
		{name: "unknown key", args: []string{"get", "no_such_setting", "--test"}, wantKind: "absent", wantValue: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.NoError(t, err)

			got := decode[settingOutput](t, out)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantValue, got.Value)
		})
	}
}

func TestGetCommandRequiresKey(t *testing.T) {
	_, _, err := execute(t, "get", "--test")
	assert.Error(t, err)
}

func TestKeysCommand(t *testing.T) {
	path := writeFile(t, "app.conf", testSettings)

	out, _, err := execute(t, "keys", "--test")
	require.NoError(t, err)
	keys := decode[[]string](t, out)
	assert.Contains(t, keys, "db_host")
	assert.Contains(t, keys, "secret_key_base")

	out, _, err = execute(t, "keys", "--provider", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, []string{"db_host", "db_password", "db_sslmode"}, decode[[]string](t, out))
}

func TestEnvFileFeedsEnvironmentProvider(t *testing.T) {
	path := writeFile(t, ".env", "APP_DB_HOST=from-dotenv\n")
	t.Cleanup(func() { _ = os.Unsetenv("APP_DB_HOST") })

	out, _, err := execute(t, "get", "db_host", "--env-file", path, "--config", filepath.Join(t.TempDir(), "missing.conf"))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", decode[settingOutput](t, out).Value)
}

func TestMissingEnvFile(t *testing.T) {
	_, _, err := execute(t, "keys", "--env-file", filepath.Join(t.TempDir(), "absent.env"))
	assert.ErrorContains(t, err, "failed to load env file")
}

func TestSecretCommand(t *testing.T) {
	out, _, err := execute(t, "secret", "--test", "--skip-redis")
	require.NoError(t, err)
	got := decode[secretOutput](t, out)
	assert.Equal(t, "local_trusted", got.State)
	assert.True(t, got.Valid)
	assert.Equal(t, logger.DefaultMaskValue, got.SecretKeyBase)

	out, _, err = execute(t, "secret", "--test", "--skip-redis", "--reveal")
	require.NoError(t, err)
	assert.Len(t, decode[secretOutput](t, out).SecretKeyBase, 128)
}

func TestDatabaseCommand(t *testing.T) {
	path := writeFile(t, "app.conf", testSettings)

	out, _, err := execute(t, "database", "--config", path, "--skip-redis", "--validate", "--var", "application_name=worker")
	require.NoError(t, err)

	got := decode[map[string]any](t, out)
	assert.Equal(t, descriptor.AdapterPostgreSQL, got["adapter"])
	assert.Equal(t, "db.internal", got["host"])
	assert.Equal(t, logger.DefaultMaskValue, got["password"])
	assert.Equal(t, map[string]any{"application_name": "worker"}, got["variables"])
	assert.NotContains(t, out, "s3cret")
}

func TestDatabaseCommandErrors(t *testing.T) {
	t.Run("malformed variable", func(t *testing.T) {
		_, _, err := execute(t, "database", "--test", "--var", "novalue")
		assert.ErrorContains(t, err, "want name=value")
	})

	t.Run("invalid descriptor", func(t *testing.T) {
		path := writeFile(t, "app.conf", "db_sslmode = sometimes\n")
		_, _, err := execute(t, "database", "--config", path, "--validate")

		var verr *descriptor.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, err.Error(), "must be one of")
	})
}

func TestRedisCommand(t *testing.T) {
	out, _, err := execute(t, "redis", "--test", "--skip-redis", "--validate")
	require.NoError(t, err)

	got := decode[map[string]any](t, out)
	assert.Equal(t, "localhost", got["host"])
	assert.Equal(t, float64(6379), got["port"])
	assert.Equal(t, float64(descriptor.TestNamespace), got["db"])

	out, _, err = execute(t, "redis", "--test", "--skip-redis", "--message-bus")
	require.NoError(t, err)
	assert.Equal(t, "localhost", decode[map[string]any](t, out)["host"])
}

func TestRedisPingWithoutStore(t *testing.T) {
	_, _, err := execute(t, "redis", "--test", "--skip-redis", "--ping")
	assert.ErrorIs(t, err, app.ErrStoreSkipped)
}

func TestParseVariables(t *testing.T) {
	vars, err := parseVariables(nil)
	require.NoError(t, err)
	assert.Nil(t, vars)

	vars, err = parseVariables([]string{"statement_timeout=5s", "search_path=a,b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"statement_timeout": "5s", "search_path": "a,b"}, vars)

	_, err = parseVariables([]string{"=x"})
	assert.Error(t, err)
}
