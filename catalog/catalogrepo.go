package catalog

import (
	"errors"

	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/repo"
	"github.com/jackc/pgx/v5"
)

type CatalogRepo interface {
	repo.Transactional[CatalogRepo]
	Catalog
	SaveRecord(ctx extctx.ExtendedContext, record Record) (Record, error)
	SaveWhileYouWait(ctx extctx.ExtendedContext, groupedWorkId string, titles []WhileYouWaitTitle) error
}

type PgCatalogRepo struct {
	repo.PgBaseRepo[CatalogRepo]
	queries Queries
}

// delegate transaction handling to Base
func (r *PgCatalogRepo) WithTxFunc(ctx extctx.ExtendedContext, fn func(CatalogRepo) error) error {
	return r.PgBaseRepo.WithTxFunc(ctx, r, fn)
}

// Rebinder
func (r *PgCatalogRepo) CreateWithPgBaseRepo(base *repo.PgBaseRepo[CatalogRepo]) CatalogRepo {
	catalogRepo := new(PgCatalogRepo)
	catalogRepo.PgBaseRepo = *base
	return catalogRepo
}

func (r *PgCatalogRepo) GetRecord(ctx extctx.ExtendedContext, axis360Id string) (Record, error) {
	record, err := r.queries.GetRecord(ctx, r.GetConnOrTx(), axis360Id)
	if errors.Is(err, pgx.ErrNoRows) {
		return record, ErrNotFound
	}
	return record, err
}

func (r *PgCatalogRepo) SaveRecord(ctx extctx.ExtendedContext, record Record) (Record, error) {
	return r.queries.SaveRecord(ctx, r.GetConnOrTx(), record)
}

func (r *PgCatalogRepo) GetWhileYouWait(ctx extctx.ExtendedContext, groupedWorkId string) ([]WhileYouWaitTitle, error) {
	return r.queries.GetWhileYouWait(ctx, r.GetConnOrTx(), groupedWorkId)
}

// SaveWhileYouWait stores titles in the given order; position follows slice index.
func (r *PgCatalogRepo) SaveWhileYouWait(ctx extctx.ExtendedContext, groupedWorkId string, titles []WhileYouWaitTitle) error {
	return r.WithTxFunc(ctx, func(txRepo CatalogRepo) error {
		tx := txRepo.(*PgCatalogRepo)
		for i, t := range titles {
			if err := tx.queries.SaveWhileYouWait(ctx, tx.GetConnOrTx(), groupedWorkId, i, t); err != nil {
				return err
			}
		}
		return nil
	})
}
