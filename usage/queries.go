package usage

import (
	"context"

	"github.com/indexdata/crosslink/econtent/repo"
)

const getPatronUsage = `SELECT user_id, year, month, usage_count FROM user_axis360_usage
WHERE user_id = $1 AND year = $2 AND month = $3`

const savePatronUsage = `INSERT INTO user_axis360_usage (user_id, year, month, usage_count) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, year, month) DO UPDATE SET usage_count = EXCLUDED.usage_count
RETURNING user_id, year, month, usage_count`

const getRecordUsage = `SELECT axis360_id, year, month, times_checked_out, times_held FROM axis360_record_usage
WHERE axis360_id = $1 AND year = $2 AND month = $3`

const saveRecordUsage = `INSERT INTO axis360_record_usage (axis360_id, year, month, times_checked_out, times_held)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (axis360_id, year, month) DO UPDATE SET times_checked_out = EXCLUDED.times_checked_out,
  times_held = EXCLUDED.times_held
RETURNING axis360_id, year, month, times_checked_out, times_held`

const titleExists = `SELECT EXISTS (SELECT 1 FROM axis360_title WHERE axis360_id = $1)`

type Queries struct{}

func (q *Queries) GetPatronUsage(ctx context.Context, db repo.ConnOrTx, userId string, year, month int) (PatronUsage, error) {
	var u PatronUsage
	err := db.QueryRow(ctx, getPatronUsage, userId, year, month).Scan(&u.UserID, &u.Year, &u.Month, &u.UsageCount)
	return u, err
}

func (q *Queries) SavePatronUsage(ctx context.Context, db repo.ConnOrTx, u PatronUsage) (PatronUsage, error) {
	var o PatronUsage
	err := db.QueryRow(ctx, savePatronUsage, u.UserID, u.Year, u.Month, u.UsageCount).
		Scan(&o.UserID, &o.Year, &o.Month, &o.UsageCount)
	return o, err
}

func (q *Queries) GetRecordUsage(ctx context.Context, db repo.ConnOrTx, axis360Id string, year, month int) (RecordUsage, error) {
	var u RecordUsage
	err := db.QueryRow(ctx, getRecordUsage, axis360Id, year, month).
		Scan(&u.Axis360ID, &u.Year, &u.Month, &u.TimesCheckedOut, &u.TimesHeld)
	return u, err
}

func (q *Queries) SaveRecordUsage(ctx context.Context, db repo.ConnOrTx, u RecordUsage) (RecordUsage, error) {
	var o RecordUsage
	err := db.QueryRow(ctx, saveRecordUsage, u.Axis360ID, u.Year, u.Month, u.TimesCheckedOut, u.TimesHeld).
		Scan(&o.Axis360ID, &o.Year, &o.Month, &o.TimesCheckedOut, &o.TimesHeld)
	return o, err
}

func (q *Queries) TitleExists(ctx context.Context, db repo.ConnOrTx, axis360Id string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, titleExists, axis360Id).Scan(&exists)
	return exists, err
}
