package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rustyeddy/propguard/journal"
	"github.com/rustyeddy/propguard/market"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the SQLite decision journal",
	Long: `Query audit records, daily snapshots and cycle outcomes.

Subcommands:
  audit     - Governor audit records for a day
  snapshots - The daily equity snapshot log
  outcomes  - Cycle outcomes for a day (Org-mode)
  outcome   - One cycle outcome by ID

Examples:
  propguard journal audit 2025-04-02
  propguard journal snapshots
  propguard journal outcomes today`,
}

var journalAuditCmd = &cobra.Command{
	Use:   "audit [today|YYYY-MM-DD]",
	Short: "List governor audit records for a day",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalAudit,
}

var journalSnapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List daily equity snapshots",
	Args:  cobra.NoArgs,
	RunE:  runJournalSnapshots,
}

var journalOutcomesCmd = &cobra.Command{
	Use:   "outcomes [today|YYYY-MM-DD]",
	Short: "List cycle outcomes for a day",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalOutcomes,
}

var journalOutcomeCmd = &cobra.Command{
	Use:   "outcome <cycle-id>",
	Short: "Show one cycle outcome",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalOutcome,
}

var (
	journalDBPath string
	journalSide   string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalAuditCmd)
	journalCmd.AddCommand(journalSnapshotsCmd)
	journalCmd.AddCommand(journalOutcomesCmd)
	journalCmd.AddCommand(journalOutcomeCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./propguard.sqlite", "path to SQLite journal DB")
	journalOutcomesCmd.Flags().StringVar(&journalSide, "side", "", "only show orders on this side (buy|sell)")
}

// dayRange parses "today" or YYYY-MM-DD into a UTC [start, end) window.
func dayRange(args []string) (time.Time, time.Time, error) {
	day := "today"
	if len(args) > 0 {
		day = args[0]
	}
	var start time.Time
	if day == "today" {
		now := time.Now().UTC()
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse day (want YYYY-MM-DD): %w", err)
		}
		start = d
	}
	return start, start.Add(24 * time.Hour), nil
}

func runJournalAudit(cmd *cobra.Command, args []string) error {
	start, end, err := dayRange(args)
	if err != nil {
		return err
	}
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListAuditBetween(start, end)
	if err != nil {
		return fmt.Errorf("list audit: %w", err)
	}

	t := newTable(cmd, "GOVERNOR AUDIT")
	t.AppendHeader(table.Row{"Time", "Equity", "Peak", "Trailing", "Daily", "Permitted", "Reason"})
	for _, r := range recs {
		t.AppendRow(table.Row{
			r.Time.UTC().Format(time.RFC3339),
			fmt.Sprintf("%.2f", r.CurrentEquity), fmt.Sprintf("%.2f", r.PeakEquity),
			fmt.Sprintf("%.2f", r.TrailingLimit), fmt.Sprintf("%.2f", r.DailyLimit),
			r.Permitted, r.Reason,
		})
	}
	t.Render()
	return nil
}

func runJournalSnapshots(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	snaps, err := j.ListSnapshots()
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	t := newTable(cmd, "DAILY SNAPSHOTS")
	t.AppendHeader(table.Row{"Time", "Equity"})
	for _, s := range snaps {
		t.AppendRow(table.Row{s.Time.UTC().Format(time.RFC3339), fmt.Sprintf("%.2f", s.Equity)})
	}
	t.Render()
	return nil
}

func runJournalOutcomes(cmd *cobra.Command, args []string) error {
	start, end, err := dayRange(args)
	if err != nil {
		return err
	}
	side, err := market.ParseSignal(journalSide)
	if err != nil {
		return err
	}
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	outs, err := j.ListOutcomesBetween(start, end)
	if err != nil {
		return fmt.Errorf("list outcomes: %w", err)
	}
	if side != market.None {
		outs = filterSide(outs, side.Side())
	}
	if len(outs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No outcomes on %s\n", start.Format("2006-01-02"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatOutcomesOrg(outs))
	return nil
}

func runJournalOutcome(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	o, err := j.GetOutcome(args[0])
	if err != nil {
		return fmt.Errorf("get outcome: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatOutcomeOrg(o))
	return nil
}

func filterSide(outs []journal.OutcomeRecord, side string) []journal.OutcomeRecord {
	var kept []journal.OutcomeRecord
	for _, o := range outs {
		if o.Side == side {
			kept = append(kept, o)
		}
	}
	return kept
}

func newTable(cmd *cobra.Command, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}
