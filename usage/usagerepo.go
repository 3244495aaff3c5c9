package usage

import (
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/repo"
)

type UsageRepo interface {
	repo.Transactional[UsageRepo]
	GetPatronUsage(ctx extctx.ExtendedContext, userId string, year, month int) (PatronUsage, error)
	SavePatronUsage(ctx extctx.ExtendedContext, usage PatronUsage) (PatronUsage, error)
	GetRecordUsage(ctx extctx.ExtendedContext, axis360Id string, year, month int) (RecordUsage, error)
	SaveRecordUsage(ctx extctx.ExtendedContext, usage RecordUsage) (RecordUsage, error)
	TitleExists(ctx extctx.ExtendedContext, axis360Id string) (bool, error)
}

type PgUsageRepo struct {
	repo.PgBaseRepo[UsageRepo]
	queries Queries
}

// delegate transaction handling to Base
func (r *PgUsageRepo) WithTxFunc(ctx extctx.ExtendedContext, fn func(UsageRepo) error) error {
	return r.PgBaseRepo.WithTxFunc(ctx, r, fn)
}

// Rebinder
func (r *PgUsageRepo) CreateWithPgBaseRepo(base *repo.PgBaseRepo[UsageRepo]) UsageRepo {
	usageRepo := new(PgUsageRepo)
	usageRepo.PgBaseRepo = *base
	return usageRepo
}

func (r *PgUsageRepo) GetPatronUsage(ctx extctx.ExtendedContext, userId string, year, month int) (PatronUsage, error) {
	return r.queries.GetPatronUsage(ctx, r.GetConnOrTx(), userId, year, month)
}

func (r *PgUsageRepo) SavePatronUsage(ctx extctx.ExtendedContext, usage PatronUsage) (PatronUsage, error) {
	return r.queries.SavePatronUsage(ctx, r.GetConnOrTx(), usage)
}

func (r *PgUsageRepo) GetRecordUsage(ctx extctx.ExtendedContext, axis360Id string, year, month int) (RecordUsage, error) {
	return r.queries.GetRecordUsage(ctx, r.GetConnOrTx(), axis360Id, year, month)
}

func (r *PgUsageRepo) SaveRecordUsage(ctx extctx.ExtendedContext, usage RecordUsage) (RecordUsage, error) {
	return r.queries.SaveRecordUsage(ctx, r.GetConnOrTx(), usage)
}

func (r *PgUsageRepo) TitleExists(ctx extctx.ExtendedContext, axis360Id string) (bool, error) {
	return r.queries.TitleExists(ctx, r.GetConnOrTx(), axis360Id)
}
