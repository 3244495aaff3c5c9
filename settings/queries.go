package settings

import (
	"context"

	"github.com/indexdata/crosslink/econtent/repo"
)

const settingsColumns = "id, library_id, account_id, account_key, api_url, user_interface_url"

const listSettings = `SELECT ` + settingsColumns + ` FROM axis360_settings ORDER BY id`

const getSettingsById = `SELECT ` + settingsColumns + ` FROM axis360_settings WHERE id = $1`

const saveSettings = `INSERT INTO axis360_settings (` + settingsColumns + `) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET library_id = EXCLUDED.library_id, account_id = EXCLUDED.account_id,
  account_key = EXCLUDED.account_key, api_url = EXCLUDED.api_url,
  user_interface_url = EXCLUDED.user_interface_url
RETURNING ` + settingsColumns

const deleteSettings = `DELETE FROM axis360_settings WHERE id = $1`

const countSettings = `SELECT count(*) FROM axis360_settings`

type Queries struct{}

type scanner interface {
	Scan(dest ...any) error
}

func scanSettings(row scanner) (VendorSettings, error) {
	var s VendorSettings
	err := row.Scan(&s.ID, &s.LibraryID, &s.AccountID, &s.AccountKey, &s.ApiURL, &s.UserInterfaceURL)
	return s, err
}

func (q *Queries) ListSettings(ctx context.Context, db repo.ConnOrTx) ([]VendorSettings, error) {
	rows, err := db.Query(ctx, listSettings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []VendorSettings
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (q *Queries) GetSettingsById(ctx context.Context, db repo.ConnOrTx, id string) (VendorSettings, error) {
	return scanSettings(db.QueryRow(ctx, getSettingsById, id))
}

func (q *Queries) SaveSettings(ctx context.Context, db repo.ConnOrTx, s VendorSettings) (VendorSettings, error) {
	return scanSettings(db.QueryRow(ctx, saveSettings, s.ID, s.LibraryID, s.AccountID, s.AccountKey, s.ApiURL, s.UserInterfaceURL))
}

func (q *Queries) DeleteSettings(ctx context.Context, db repo.ConnOrTx, id string) (int64, error) {
	tag, err := db.Exec(ctx, deleteSettings, id)
	return tag.RowsAffected(), err
}

func (q *Queries) CountSettings(ctx context.Context, db repo.ConnOrTx) (int, error) {
	var n int
	err := db.QueryRow(ctx, countSettings).Scan(&n)
	return n, err
}
