package usage

import (
	"errors"
	"time"

	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/jackc/pgx/v5"
)

// Tracker increments the monthly counters. Each increment is a read-modify-write in one
// transaction without a version check, so concurrent increments of the same row may
// lose an update.
type Tracker struct {
	Repo UsageRepo
	Now  func() time.Time
}

func NewTracker(repo UsageRepo) *Tracker {
	return &Tracker{Repo: repo, Now: time.Now}
}

func (t *Tracker) period() (int, int) {
	now := t.Now()
	return now.Year(), int(now.Month())
}

func (t *Tracker) TrackPatronUsage(ctx extctx.ExtendedContext, userId string) error {
	year, month := t.period()
	return t.Repo.WithTxFunc(ctx, func(r UsageRepo) error {
		u, err := r.GetPatronUsage(ctx, userId, year, month)
		if errors.Is(err, pgx.ErrNoRows) {
			u = PatronUsage{UserID: userId, Year: year, Month: month}
		} else if err != nil {
			return err
		}
		u.UsageCount++
		_, err = r.SavePatronUsage(ctx, u)
		return err
	})
}

func (t *Tracker) TrackRecordCheckout(ctx extctx.ExtendedContext, axis360Id string) error {
	return t.trackRecord(ctx, axis360Id, func(u *RecordUsage) { u.TimesCheckedOut++ })
}

func (t *Tracker) TrackRecordHold(ctx extctx.ExtendedContext, axis360Id string) error {
	return t.trackRecord(ctx, axis360Id, func(u *RecordUsage) { u.TimesHeld++ })
}

// titles missing from the local mirror are skipped without error
func (t *Tracker) trackRecord(ctx extctx.ExtendedContext, axis360Id string, inc func(*RecordUsage)) error {
	year, month := t.period()
	return t.Repo.WithTxFunc(ctx, func(r UsageRepo) error {
		exists, err := r.TitleExists(ctx, axis360Id)
		if err != nil {
			return err
		}
		if !exists {
			ctx.Logger().Debug("skipping record usage for unknown title", "axis360Id", axis360Id)
			return nil
		}
		u, err := r.GetRecordUsage(ctx, axis360Id, year, month)
		if errors.Is(err, pgx.ErrNoRows) {
			u = RecordUsage{Axis360ID: axis360Id, Year: year, Month: month}
		} else if err != nil {
			return err
		}
		inc(&u)
		_, err = r.SaveRecordUsage(ctx, u)
		return err
	})
}

// NoopTracker records nothing.
type NoopTracker struct{}

func (NoopTracker) TrackPatronUsage(ctx extctx.ExtendedContext, userId string) error { return nil }

func (NoopTracker) TrackRecordCheckout(ctx extctx.ExtendedContext, axis360Id string) error {
	return nil
}

func (NoopTracker) TrackRecordHold(ctx extctx.ExtendedContext, axis360Id string) error { return nil }
