package patron

import (
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/repo"
)

type PatronRepo interface {
	repo.Transactional[PatronRepo]
	GetPatronById(ctx extctx.ExtendedContext, id string) (Patron, error)
	GetPatronByBarcode(ctx extctx.ExtendedContext, barcode string) (Patron, error)
	SavePatron(ctx extctx.ExtendedContext, patron Patron) (Patron, error)
	DeletePatron(ctx extctx.ExtendedContext, id string) error
}

type PgPatronRepo struct {
	repo.PgBaseRepo[PatronRepo]
	queries Queries
}

// delegate transaction handling to Base
func (r *PgPatronRepo) WithTxFunc(ctx extctx.ExtendedContext, fn func(PatronRepo) error) error {
	return r.PgBaseRepo.WithTxFunc(ctx, r, fn)
}

// Rebinder
func (r *PgPatronRepo) CreateWithPgBaseRepo(base *repo.PgBaseRepo[PatronRepo]) PatronRepo {
	patronRepo := new(PgPatronRepo)
	patronRepo.PgBaseRepo = *base
	return patronRepo
}

func (r *PgPatronRepo) GetPatronById(ctx extctx.ExtendedContext, id string) (Patron, error) {
	return r.queries.GetPatronById(ctx, r.GetConnOrTx(), id)
}

func (r *PgPatronRepo) GetPatronByBarcode(ctx extctx.ExtendedContext, barcode string) (Patron, error) {
	return r.queries.GetPatronByBarcode(ctx, r.GetConnOrTx(), barcode)
}

func (r *PgPatronRepo) SavePatron(ctx extctx.ExtendedContext, patron Patron) (Patron, error) {
	return r.queries.SavePatron(ctx, r.GetConnOrTx(), patron)
}

func (r *PgPatronRepo) DeletePatron(ctx extctx.ExtendedContext, id string) error {
	return r.queries.DeletePatron(ctx, r.GetConnOrTx(), id)
}
