package patron

import (
	"context"

	"github.com/indexdata/crosslink/econtent/repo"
)

const patronColumns = "id, barcode, pin, display_name, library_label, fine_limit_reached"

const getPatronById = `SELECT ` + patronColumns + ` FROM patron WHERE id = $1`

const getPatronByBarcode = `SELECT ` + patronColumns + ` FROM patron WHERE barcode = $1`

const savePatron = `INSERT INTO patron (` + patronColumns + `) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET barcode = EXCLUDED.barcode, pin = EXCLUDED.pin,
  display_name = EXCLUDED.display_name, library_label = EXCLUDED.library_label,
  fine_limit_reached = EXCLUDED.fine_limit_reached
RETURNING ` + patronColumns

const deletePatron = `DELETE FROM patron WHERE id = $1`

type Queries struct{}

type scanner interface {
	Scan(dest ...any) error
}

func scanPatron(row scanner) (Patron, error) {
	var p Patron
	err := row.Scan(&p.ID, &p.Barcode, &p.Pin, &p.DisplayName, &p.LibraryLabel, &p.FineLimitReached)
	return p, err
}

func (q *Queries) GetPatronById(ctx context.Context, db repo.ConnOrTx, id string) (Patron, error) {
	return scanPatron(db.QueryRow(ctx, getPatronById, id))
}

func (q *Queries) GetPatronByBarcode(ctx context.Context, db repo.ConnOrTx, barcode string) (Patron, error) {
	return scanPatron(db.QueryRow(ctx, getPatronByBarcode, barcode))
}

func (q *Queries) SavePatron(ctx context.Context, db repo.ConnOrTx, p Patron) (Patron, error) {
	return scanPatron(db.QueryRow(ctx, savePatron, p.ID, p.Barcode, p.Pin, p.DisplayName, p.LibraryLabel, p.FineLimitReached))
}

func (q *Queries) DeletePatron(ctx context.Context, db repo.ConnOrTx, id string) error {
	_, err := db.Exec(ctx, deletePatron, id)
	return err
}
