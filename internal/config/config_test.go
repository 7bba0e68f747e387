package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/keyring"
	"github.com/julianstephens/apptbook/internal/storage/postgres"
	"github.com/julianstephens/apptbook/internal/storage/sqlite"
)

func withKeyring(t *testing.T, connStr string, err error) {
	t.Helper()
	orig := lookupKeyring
	lookupKeyring = func() (string, error) { return connStr, err }
	t.Cleanup(func() { lookupKeyring = orig })
}

func TestResolveOrder(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	defaultPath := filepath.Join(home, ".config", "apptbook", "apptbook.db")

	tests := []struct {
		name       string
		flag       string
		env        string
		keyringVal string
		keyringErr error
		want       Target
	}{
		{
			name:       "explicit sqlite path wins",
			flag:       "/tmp/clinic.db",
			env:        "postgres://env@db/apptbook",
			keyringVal: "postgres://kr@db/apptbook",
			want:       Target{Value: "/tmp/clinic.db", Source: SourceFlag},
		},
		{
			name:       "env beats keyring",
			flag:       constants.DefaultConfigPath,
			env:        "postgres://env@db/apptbook",
			keyringVal: "postgres://kr@db/apptbook",
			want:       Target{Value: "postgres://env@db/apptbook", Source: SourceEnv},
		},
		{
			name:       "keyring beats default",
			flag:       constants.DefaultConfigPath,
			keyringVal: "postgres://kr:secret@db/apptbook",
			want:       Target{Value: "postgres://kr:secret@db/apptbook", Source: SourceKeyring},
		},
		{
			name:       "default when nothing else is set",
			flag:       constants.DefaultConfigPath,
			keyringErr: keyring.ErrNotFound,
			want:       Target{Value: defaultPath, Source: SourceDefault},
		},
		{
			name:       "unavailable keyring falls back to default",
			flag:       "",
			keyringErr: keyring.ErrKeyringUnavailable,
			want:       Target{Value: defaultPath, Source: SourceDefault},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(constants.EnvDBConnection, tt.env)
			withKeyring(t, tt.keyringVal, tt.keyringErr)

			got, err := Resolve(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRejectsPasswordOnCommandLine(t *testing.T) {
	t.Setenv(constants.EnvDBConnection, "")
	withKeyring(t, "", keyring.ErrNotFound)

	_, err := Resolve("postgres://bob:secret@db:5432/apptbook")
	assert.True(t, errors.Is(err, postgres.ErrEmbeddedCredentials), "got %v", err)

	got, err := Resolve("postgres://bob@db:5432/apptbook")
	require.NoError(t, err)
	assert.True(t, got.IsPostgres())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x.db"), ExpandHome("~/x.db"))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, "/abs/x.db", ExpandHome("/abs/x.db"))
	assert.Equal(t, "~user/x.db", ExpandHome("~user/x.db"))
}

func TestOpenPicksBackend(t *testing.T) {
	p, err := Open(Target{Value: "/tmp/apptbook.db"})
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, p)

	p, err = Open(Target{Value: "postgresql://bob@db/apptbook"})
	require.NoError(t, err)
	assert.IsType(t, &postgres.Store{}, p)

	_, err = Open(Target{})
	assert.Error(t, err)
}

func TestDescribeMasksPassword(t *testing.T) {
	tgt := Target{Value: "postgres://bob:secret@db/apptbook", Source: SourceKeyring}
	assert.NotContains(t, tgt.Describe(), "secret")
}

func TestLoadEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte(constants.EnvDBConnection+"=postgres://fromfile@db/apptbook\n"+constants.EnvDebug+"=1\n"), 0600))

	t.Setenv(constants.EnvDBConnection, "postgres://fromenv@db/apptbook")
	t.Setenv(constants.EnvDebug, "")
	os.Unsetenv(constants.EnvDebug)

	LoadEnv(dir)

	assert.Equal(t, "postgres://fromenv@db/apptbook", os.Getenv(constants.EnvDBConnection))
	assert.Equal(t, "1", os.Getenv(constants.EnvDebug))
	os.Unsetenv(constants.EnvDebug)
}
