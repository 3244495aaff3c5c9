package patron

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

var patronRepo PatronRepo

func TestMain(m *testing.M) {
	ctx, pgc, connStr, err := dbutil.StartPGContainer()
	testutil.Expect(err, "failed to start db container")
	pgPatronRepo := new(PgPatronRepo)
	pgPatronRepo.Pool, err = dbutil.InitDbPool(connStr)
	testutil.Expect(err, "failed to create patron repo")
	_, _, _, err = dbutil.RunMigrateScripts("file://../migrations", connStr)
	testutil.Expect(err, "failed to run migration scripts")
	patronRepo = pgPatronRepo
	ret := m.Run()
	pgPatronRepo.Pool.Close()
	testutil.Expect(dbutil.TerminatePGContainer(ctx, pgc), "failed to stop db container")
	os.Exit(ret)
}

func TestNameAndLibraryLabel(t *testing.T) {
	p := Patron{DisplayName: "Jo Reader"}
	assert.Equal(t, "Jo Reader", p.NameAndLibraryLabel())
	p.LibraryLabel = "Main"
	assert.Equal(t, "Jo Reader (Main)", p.NameAndLibraryLabel())
}

func TestEligibleForHolds(t *testing.T) {
	p := Patron{}
	assert.True(t, p.EligibleForHolds())
	p.FineLimitReached = true
	assert.False(t, p.EligibleForHolds())
}

func TestPatronRepo(t *testing.T) {
	ctx := extctx.CreateExtCtxWithArgs(context.Background(), nil)
	_, err := patronRepo.GetPatronById(ctx, "p1")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	p := Patron{ID: "p1", Barcode: "2100001", Pin: "1234", DisplayName: "Jo"}
	saved, err := patronRepo.SavePatron(ctx, p)
	assert.NoError(t, err)
	assert.Equal(t, p, saved)

	p.FineLimitReached = true
	_, err = patronRepo.SavePatron(ctx, p)
	assert.NoError(t, err)
	got, err := patronRepo.GetPatronByBarcode(ctx, "2100001")
	assert.NoError(t, err)
	assert.True(t, got.FineLimitReached)

	assert.NoError(t, patronRepo.DeletePatron(ctx, "p1"))
	_, err = patronRepo.GetPatronById(ctx, "p1")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
