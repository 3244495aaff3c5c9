package catalog

import (
	"context"

	"github.com/indexdata/crosslink/econtent/repo"
)

const recordColumns = "axis360_id, title, author, cover_url, rating, grouped_work_id, format, link_url"

const getRecord = `SELECT ` + recordColumns + ` FROM axis360_title WHERE axis360_id = $1`

const saveRecord = `INSERT INTO axis360_title (` + recordColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (axis360_id) DO UPDATE SET title = EXCLUDED.title, author = EXCLUDED.author,
  cover_url = EXCLUDED.cover_url, rating = EXCLUDED.rating, grouped_work_id = EXCLUDED.grouped_work_id,
  format = EXCLUDED.format, link_url = EXCLUDED.link_url
RETURNING ` + recordColumns

const getWhileYouWait = `SELECT related_grouped_work_id, title, author, cover_url FROM while_you_wait
WHERE grouped_work_id = $1 ORDER BY position, related_grouped_work_id`

const saveWhileYouWait = `INSERT INTO while_you_wait (grouped_work_id, related_grouped_work_id, title, author, cover_url, position)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (grouped_work_id, related_grouped_work_id) DO UPDATE SET title = EXCLUDED.title,
  author = EXCLUDED.author, cover_url = EXCLUDED.cover_url, position = EXCLUDED.position`

type Queries struct{}

func (q *Queries) GetRecord(ctx context.Context, db repo.ConnOrTx, axis360Id string) (Record, error) {
	var r Record
	err := db.QueryRow(ctx, getRecord, axis360Id).Scan(&r.Axis360ID, &r.Title, &r.Author, &r.CoverURL,
		&r.Rating, &r.GroupedWorkID, &r.Format, &r.LinkURL)
	return r, err
}

func (q *Queries) SaveRecord(ctx context.Context, db repo.ConnOrTx, r Record) (Record, error) {
	var o Record
	err := db.QueryRow(ctx, saveRecord, r.Axis360ID, r.Title, r.Author, r.CoverURL, r.Rating, r.GroupedWorkID,
		r.Format, r.LinkURL).Scan(&o.Axis360ID, &o.Title, &o.Author, &o.CoverURL, &o.Rating, &o.GroupedWorkID,
		&o.Format, &o.LinkURL)
	return o, err
}

func (q *Queries) GetWhileYouWait(ctx context.Context, db repo.ConnOrTx, groupedWorkId string) ([]WhileYouWaitTitle, error) {
	rows, err := db.Query(ctx, getWhileYouWait, groupedWorkId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var titles []WhileYouWaitTitle
	for rows.Next() {
		var t WhileYouWaitTitle
		if err := rows.Scan(&t.GroupedWorkID, &t.Title, &t.Author, &t.CoverURL); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

func (q *Queries) SaveWhileYouWait(ctx context.Context, db repo.ConnOrTx, groupedWorkId string, position int, t WhileYouWaitTitle) error {
	_, err := db.Exec(ctx, saveWhileYouWait, groupedWorkId, t.GroupedWorkID, t.Title, t.Author, t.CoverURL, position)
	return err
}
