package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/sqlflash/internal/errors"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("REDIS_URL", "")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func tempDSN(t *testing.T) string {
	return "file:" + filepath.Join(t.TempDir(), "sqlflash.db")
}

func TestMigrateAndSeed(t *testing.T) {
	dsn := tempDSN(t)

	out, err := runCLI(t, "migrate", "--db-dsn", dsn, "--log-level", "ERROR")
	require.NoError(t, err)
	assert.Contains(t, out, "(0 pending)")

	out, err = runCLI(t, "seed", "--db-dsn", dsn, "--log-level", "ERROR")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 24 cards and 11 questions")
}

func TestImportCSV(t *testing.T) {
	dsn := tempDSN(t)
	path := filepath.Join(t.TempDir(), "cards.csv")
	csv := "id,level,topic,question,answer,explanation,example\n" +
		"imp_1,basic,LIMIT,How do you return five rows?,LIMIT 5,,\n" +
		",wizard,x,q,a,,\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	out, err := runCLI(t, "import", path, "--db-dsn", dsn, "--log-level", "ERROR")
	require.NoError(t, err)
	assert.Contains(t, out, "processed 2 rows: 1 created, 0 updated, 1 skipped")
}

func TestGenerateWithoutProvider(t *testing.T) {
	_, err := runCLI(t, "generate", "--level", "basic", "--db-dsn", tempDSN(t), "--log-level", "ERROR")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfiguration))
}

func TestInvalidFlags(t *testing.T) {
	_, err := runCLI(t, "migrate", "--db-driver", "mysql")
	assert.ErrorContains(t, err, "DB_DRIVER")

	_, err = runCLI(t, "generate", "--level", "wizard", "--db-dsn", tempDSN(t))
	assert.ErrorContains(t, err, "invalid level")

	_, err = runCLI(t, "assess", "complete", "--db-dsn", tempDSN(t))
	assert.ErrorContains(t, err, "--user and --assessment are required")
}
