package paper

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/propguard/market"
)

// LoadCSV reads a candle file from disk. See ReadCSV for the format.
func LoadCSV(path string) ([]market.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads candle rows:
//
//	time,open,high,low,close[,volume]
//
// where time is RFC3339, RFC3339Nano or unix seconds.
// A single header row ("time,...") is allowed and blank rows are skipped.
// The result is validated for strictly increasing timestamps.
func ReadCSV(r io.Reader) ([]market.Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		out      []market.Candle
		sawFirst bool
		line     int
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		c, err := parseCandleRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, c)
	}

	if err := market.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseCandleRow(row []string) (market.Candle, error) {
	if len(row) < 5 {
		return market.Candle{}, fmt.Errorf("want at least 5 fields, got %d", len(row))
	}

	t, err := parseTime(strings.TrimSpace(row[0]))
	if err != nil {
		return market.Candle{}, err
	}

	var v [5]float64
	n := 5
	if len(row) < 6 {
		n = 4
	}
	for i := 0; i < n; i++ {
		s := strings.TrimSpace(row[i+1])
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return market.Candle{}, fmt.Errorf("bad number %q: %w", s, err)
		}
		v[i] = f
	}

	return market.Candle{Time: t, Open: v[0], High: v[1], Low: v[2], Close: v[3], Volume: v[4]}, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("bad time %q", s)
}
