package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/repository/sqlstore"
	"github.com/vytor/sqlflash/internal/seed"
	"github.com/vytor/sqlflash/internal/testutil"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &row))
	}
	path := filepath.Join(t.TempDir(), "cards.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportCards_Excel(t *testing.T) {
	d := testutil.NewTestDB(t)
	defer testutil.MustClose(t, d)
	ctx := context.Background()
	repo := sqlstore.NewCardRepository(d)

	require.NoError(t, repo.Upsert(ctx, models.Card{ID: "x_1", Level: models.LevelBasic, Question: "old", Answer: "old"}))

	path := writeWorkbook(t, [][]any{
		{"id", "level", "topic", "question", "answer", "explanation", "example"},
		{"x_1", "basic", "WHERE Clause", "Which clause filters rows?", "WHERE", "", ""},
		{"", "Advanced", "CTEs", "What starts a CTE?", "WITH", "Named subquery", "WITH t AS (SELECT 1)"},
		{"x_3", "wizard", "?", "q", "a"},
		{"x_4", "basic", "ORDER BY", "Sort descending?", ""},
		{},
	})

	cfg := seed.DefaultImportConfig()
	cfg.FilePath = path
	res, err := seed.ImportCards(ctx, repo, cfg)
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalProcessed)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Len(t, res.Errors, 2)

	updated, err := repo.Get(ctx, "x_1")
	require.NoError(t, err)
	assert.Equal(t, "Which clause filters rows?", updated.Question)

	generated, err := repo.Get(ctx, "advanced_import_3")
	require.NoError(t, err)
	require.NotNil(t, generated)
	assert.Equal(t, "WITH", generated.Answer)
	assert.Equal(t, "WITH t AS (SELECT 1)", generated.Example)
}

func TestImportCards_CSV(t *testing.T) {
	d := testutil.NewTestDB(t)
	defer testutil.MustClose(t, d)
	ctx := context.Background()
	repo := sqlstore.NewCardRepository(d)

	path := filepath.Join(t.TempDir(), "cards.csv")
	content := "id,level,topic,question,answer\n" +
		"c_1,intermediate,JOINs,What does INNER JOIN return?,Matching rows\n" +
		"c_2,expert,\"Window, Frames\",\"Frame for a 7 day average?\",ROWS BETWEEN 6 PRECEDING AND CURRENT ROW\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := seed.DefaultImportConfig()
	cfg.FilePath = path
	res, err := seed.ImportCards(ctx, repo, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Empty(t, res.Errors)

	c, err := repo.Get(ctx, "c_2")
	require.NoError(t, err)
	assert.Equal(t, "Window, Frames", c.Topic)
	assert.Equal(t, models.LevelExpert, c.Level)
}

func TestImportCards_MissingFile(t *testing.T) {
	cfg := seed.DefaultImportConfig()
	cfg.FilePath = filepath.Join(t.TempDir(), "missing.xlsx")
	_, err := seed.ImportCards(context.Background(), nil, cfg)
	assert.Error(t, err)
}
