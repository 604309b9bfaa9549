package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/propguard/risk"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordAudit(r risk.AuditRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO audit
		(time, current_equity, peak_equity, trailing_limit, daily_limit, permitted, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Time.UTC(), r.CurrentEquity, r.PeakEquity, r.TrailingLimit, r.DailyLimit, r.Permitted, r.Reason,
	)
	return err
}

func (j *SQLite) RecordSnapshot(s risk.EquitySnapshot) error {
	_, err := j.db.Exec(`INSERT INTO snapshots (time, equity) VALUES (?, ?)`, s.Time.UTC(), s.Equity)
	return err
}

func (j *SQLite) RecordOutcome(o OutcomeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO outcomes
		(cycle_id, time, kind, reason, symbol, side, size, entry, stop_loss, take_profit, intent_id, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.CycleID, o.Time.UTC(), o.Kind, o.Reason, o.Symbol, o.Side,
		o.Size, o.Entry, o.StopLoss, o.TakeProfit, o.IntentID, o.Detail,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
