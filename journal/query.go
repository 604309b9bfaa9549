package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rustyeddy/propguard/risk"
)

// ListAuditBetween returns audit records whose time is within [start, end).
func (j *SQLite) ListAuditBetween(start, end time.Time) ([]risk.AuditRecord, error) {
	rows, err := j.db.Query(`
		SELECT time, current_equity, peak_equity, trailing_limit, daily_limit, permitted, reason
		FROM audit
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []risk.AuditRecord
	for rows.Next() {
		var r risk.AuditRecord
		if err := rows.Scan(
			&r.Time,
			&r.CurrentEquity,
			&r.PeakEquity,
			&r.TrailingLimit,
			&r.DailyLimit,
			&r.Permitted,
			&r.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSnapshots returns the whole daily equity log, oldest first.
func (j *SQLite) ListSnapshots() ([]risk.EquitySnapshot, error) {
	rows, err := j.db.Query(`SELECT time, equity FROM snapshots ORDER BY time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []risk.EquitySnapshot
	for rows.Next() {
		var s risk.EquitySnapshot
		if err := rows.Scan(&s.Time, &s.Equity); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const outcomeCols = `cycle_id, time, kind, reason, symbol, side, size, entry, stop_loss, take_profit, intent_id, detail`

func scanOutcome(sc interface{ Scan(...any) error }) (OutcomeRecord, error) {
	var o OutcomeRecord
	err := sc.Scan(
		&o.CycleID,
		&o.Time,
		&o.Kind,
		&o.Reason,
		&o.Symbol,
		&o.Side,
		&o.Size,
		&o.Entry,
		&o.StopLoss,
		&o.TakeProfit,
		&o.IntentID,
		&o.Detail,
	)
	return o, err
}

// GetOutcome returns a single cycle outcome by cycle ID.
func (j *SQLite) GetOutcome(cycleID string) (OutcomeRecord, error) {
	row := j.db.QueryRow(`SELECT `+outcomeCols+` FROM outcomes WHERE cycle_id = ?`, cycleID)
	o, err := scanOutcome(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return OutcomeRecord{}, fmt.Errorf("outcome %q not found", cycleID)
		}
		return OutcomeRecord{}, err
	}
	return o, nil
}

// ListOutcomesBetween returns cycle outcomes whose time is within [start, end).
func (j *SQLite) ListOutcomesBetween(start, end time.Time) ([]OutcomeRecord, error) {
	rows, err := j.db.Query(`SELECT `+outcomeCols+`
		FROM outcomes
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, cycle_id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutcomeRecord
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
