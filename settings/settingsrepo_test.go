package settings

import (
	"context"
	"os"
	"testing"

	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/dbutil"
	"github.com/indexdata/crosslink/econtent/testutil"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

var settingsRepo SettingsRepo

func TestMain(m *testing.M) {
	ctx, pgc, connStr, err := dbutil.StartPGContainer()
	testutil.Expect(err, "failed to start db container")
	pgSettingsRepo := new(PgSettingsRepo)
	pgSettingsRepo.Pool, err = dbutil.InitDbPool(connStr)
	testutil.Expect(err, "failed to create settings repo")
	_, _, _, err = dbutil.RunMigrateScripts("file://../migrations", connStr)
	testutil.Expect(err, "failed to run migration scripts")
	settingsRepo = pgSettingsRepo
	ret := m.Run()
	pgSettingsRepo.Pool.Close()
	testutil.Expect(dbutil.TerminatePGContainer(ctx, pgc), "failed to stop db container")
	os.Exit(ret)
}

func TestSettingsCrud(t *testing.T) {
	ctx := extctx.CreateExtCtxWithArgs(context.Background(), nil)
	provider := &RepoProvider{Repo: settingsRepo}
	_, err := provider.GetSettings(ctx)
	assert.ErrorIs(t, err, ErrNoSettings)

	s := VendorSettings{ID: "s1", LibraryID: "lib", AccountID: "acct", AccountKey: "key", ApiURL: "http://api"}
	saved, err := settingsRepo.SaveSettings(ctx, s)
	assert.NoError(t, err)
	assert.Equal(t, s, saved)
	n, err := settingsRepo.CountSettings(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	s.UserInterfaceURL = "http://ui"
	_, err = settingsRepo.SaveSettings(ctx, s)
	assert.NoError(t, err)
	got, err := settingsRepo.GetSettingsById(ctx, "s1")
	assert.NoError(t, err)
	assert.Equal(t, "http://ui", got.UserInterfaceURL)

	got, err = provider.GetSettings(ctx)
	assert.NoError(t, err)
	assert.Equal(t, s, got)

	assert.NoError(t, settingsRepo.DeleteSettings(ctx, "s1"))
	assert.ErrorIs(t, settingsRepo.DeleteSettings(ctx, "s1"), pgx.ErrNoRows)
	_, err = settingsRepo.GetSettingsById(ctx, "s1")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
