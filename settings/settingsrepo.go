package settings

import (
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/repo"
	"github.com/jackc/pgx/v5"
)

type SettingsRepo interface {
	repo.Transactional[SettingsRepo]
	ListSettings(ctx extctx.ExtendedContext) ([]VendorSettings, error)
	GetSettingsById(ctx extctx.ExtendedContext, id string) (VendorSettings, error)
	SaveSettings(ctx extctx.ExtendedContext, settings VendorSettings) (VendorSettings, error)
	// DeleteSettings returns pgx.ErrNoRows when nothing was deleted
	DeleteSettings(ctx extctx.ExtendedContext, id string) error
	CountSettings(ctx extctx.ExtendedContext) (int, error)
}

type PgSettingsRepo struct {
	repo.PgBaseRepo[SettingsRepo]
	queries Queries
}

// delegate transaction handling to Base
func (r *PgSettingsRepo) WithTxFunc(ctx extctx.ExtendedContext, fn func(SettingsRepo) error) error {
	return r.PgBaseRepo.WithTxFunc(ctx, r, fn)
}

// Rebinder
func (r *PgSettingsRepo) CreateWithPgBaseRepo(base *repo.PgBaseRepo[SettingsRepo]) SettingsRepo {
	settingsRepo := new(PgSettingsRepo)
	settingsRepo.PgBaseRepo = *base
	return settingsRepo
}

func (r *PgSettingsRepo) ListSettings(ctx extctx.ExtendedContext) ([]VendorSettings, error) {
	return r.queries.ListSettings(ctx, r.GetConnOrTx())
}

func (r *PgSettingsRepo) GetSettingsById(ctx extctx.ExtendedContext, id string) (VendorSettings, error) {
	return r.queries.GetSettingsById(ctx, r.GetConnOrTx(), id)
}

func (r *PgSettingsRepo) SaveSettings(ctx extctx.ExtendedContext, settings VendorSettings) (VendorSettings, error) {
	return r.queries.SaveSettings(ctx, r.GetConnOrTx(), settings)
}

func (r *PgSettingsRepo) DeleteSettings(ctx extctx.ExtendedContext, id string) error {
	n, err := r.queries.DeleteSettings(ctx, r.GetConnOrTx(), id)
	if err == nil && n == 0 {
		return pgx.ErrNoRows
	}
	return err
}

func (r *PgSettingsRepo) CountSettings(ctx extctx.ExtendedContext) (int, error) {
	return r.queries.CountSettings(ctx, r.GetConnOrTx())
}
