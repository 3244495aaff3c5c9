package catalog

import (
	"context"
	"os"
	"testing"

	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/dbutil"
	"github.com/indexdata/crosslink/econtent/testutil"
	"github.com/stretchr/testify/assert"
)

var catalogRepo CatalogRepo

func TestMain(m *testing.M) {
	ctx, pgc, connStr, err := dbutil.StartPGContainer()
	testutil.Expect(err, "failed to start db container")
	pgCatalogRepo := new(PgCatalogRepo)
	pgCatalogRepo.Pool, err = dbutil.InitDbPool(connStr)
	testutil.Expect(err, "failed to create catalog repo")
	_, _, _, err = dbutil.RunMigrateScripts("file://../migrations", connStr)
	testutil.Expect(err, "failed to run migration scripts")
	catalogRepo = pgCatalogRepo
	ret := m.Run()
	pgCatalogRepo.Pool.Close()
	testutil.Expect(dbutil.TerminatePGContainer(ctx, pgc), "failed to stop db container")
	os.Exit(ret)
}

func TestGetRecord(t *testing.T) {
	ctx := extctx.CreateExtCtxWithArgs(context.Background(), nil)
	_, err := catalogRepo.GetRecord(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	rec := Record{Axis360ID: "0001", Title: "Dune", Author: "Herbert", Rating: 4.5, GroupedWorkID: "gw1", Format: "eBook"}
	saved, err := catalogRepo.SaveRecord(ctx, rec)
	assert.NoError(t, err)
	assert.Equal(t, rec, saved)
	got, err := catalogRepo.GetRecord(ctx, "0001")
	assert.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestWhileYouWait(t *testing.T) {
	ctx := extctx.CreateExtCtxWithArgs(context.Background(), nil)
	titles, err := catalogRepo.GetWhileYouWait(ctx, "gw2")
	assert.NoError(t, err)
	assert.Empty(t, titles)

	err = catalogRepo.SaveWhileYouWait(ctx, "gw2", []WhileYouWaitTitle{
		{GroupedWorkID: "b", Title: "Second"},
		{GroupedWorkID: "a", Title: "First"},
	})
	assert.NoError(t, err)
	titles, err = catalogRepo.GetWhileYouWait(ctx, "gw2")
	assert.NoError(t, err)
	assert.Len(t, titles, 2)
	assert.Equal(t, "Second", titles[0].Title)
	assert.Equal(t, "First", titles[1].Title)
}

func TestMemoryCatalog(t *testing.T) {
	ctx := extctx.CreateExtCtxWithArgs(context.Background(), nil)
	var c MemoryCatalog
	_, err := c.GetRecord(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
	titles, err := c.GetWhileYouWait(ctx, "x")
	assert.NoError(t, err)
	assert.Nil(t, titles)

	c.Records = map[string]Record{"x": {Axis360ID: "x", Title: "T"}}
	r, err := c.GetRecord(ctx, "x")
	assert.NoError(t, err)
	assert.Equal(t, "T", r.Title)
}
