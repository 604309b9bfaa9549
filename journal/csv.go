package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rustyeddy/propguard/risk"
)

var (
	AuditHeader    = []string{"time", "current_equity", "peak_equity", "trailing_limit", "daily_limit", "permitted", "reason"}
	SnapshotHeader = []string{"time", "equity"}
	OutcomeHeader  = []string{"cycle_id", "time", "kind", "reason", "symbol", "side", "size", "entry", "stop_loss", "take_profit", "intent_id", "detail"}
)

// CSVJournal appends to audit.csv, snapshots.csv and outcomes.csv in one
// directory. Existing files are extended; headers are written only when a
// file is new or empty.
type CSVJournal struct {
	audit, snaps, outcomes *csvFile
}

type csvFile struct {
	f *os.File
	w *csv.Writer
}

func openCSV(path string, header []string) (*csvFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	c := &csvFile{f: f, w: csv.NewWriter(f)}
	if st.Size() == 0 {
		if err := c.write(header); err != nil {
			f.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *csvFile) write(row []string) error {
	if err := c.w.Write(row); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *csvFile) close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}

// NewCSV opens (or creates) the three journal files under dir.
func NewCSV(dir string) (*CSVJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	a, err := openCSV(filepath.Join(dir, "audit.csv"), AuditHeader)
	if err != nil {
		return nil, err
	}
	s, err := openCSV(filepath.Join(dir, "snapshots.csv"), SnapshotHeader)
	if err != nil {
		a.close()
		return nil, err
	}
	o, err := openCSV(filepath.Join(dir, "outcomes.csv"), OutcomeHeader)
	if err != nil {
		a.close()
		s.close()
		return nil, err
	}
	return &CSVJournal{audit: a, snaps: s, outcomes: o}, nil
}

func (j *CSVJournal) RecordAudit(r risk.AuditRecord) error {
	return j.audit.write([]string{
		ts(r.Time),
		f(r.CurrentEquity),
		f(r.PeakEquity),
		f(r.TrailingLimit),
		f(r.DailyLimit),
		strconv.FormatBool(r.Permitted),
		r.Reason,
	})
}

func (j *CSVJournal) RecordSnapshot(s risk.EquitySnapshot) error {
	return j.snaps.write([]string{ts(s.Time), f(s.Equity)})
}

func (j *CSVJournal) RecordOutcome(o OutcomeRecord) error {
	return j.outcomes.write([]string{
		o.CycleID,
		ts(o.Time),
		o.Kind,
		o.Reason,
		o.Symbol,
		o.Side,
		f(o.Size),
		f(o.Entry),
		f(o.StopLoss),
		f(o.TakeProfit),
		o.IntentID,
		o.Detail,
	})
}

func (j *CSVJournal) Close() error {
	var first error
	for _, c := range []*csvFile{j.audit, j.snaps, j.outcomes} {
		if err := c.close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
