package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatOutcomeOrg renders an order outcome as an Org-mode block for a
// trading diary. Structured facts sit in the PROPERTIES drawer; the
// Thesis/Execution/Review headings are left for the operator to fill in.
func FormatOutcomeOrg(o OutcomeRecord) string {
	var b strings.Builder
	if o.Kind == "order" || o.Kind == "order_rejected" {
		fmt.Fprintf(&b, "** %s %s (%s)\n", strings.ToUpper(o.Side), o.Symbol, shortID(o.CycleID))
	} else {
		fmt.Fprintf(&b, "** %s: %s (%s)\n", o.Kind, o.Reason, shortID(o.CycleID))
	}
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", o.CycleID)
	fmt.Fprintf(&b, ":TIME: %s\n", o.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":KIND: %s\n", o.Kind)
	fmt.Fprintf(&b, ":REASON: %s\n", o.Reason)
	if o.IntentID != "" {
		fmt.Fprintf(&b, ":INTENT_ID: %s\n", o.IntentID)
		fmt.Fprintf(&b, ":SIZE: %.2f\n", o.Size)
		fmt.Fprintf(&b, ":ENTRY: %.5f\n", o.Entry)
		fmt.Fprintf(&b, ":STOP_LOSS: %.5f\n", o.StopLoss)
		fmt.Fprintf(&b, ":TAKE_PROFIT: %.5f\n", o.TakeProfit)
	}
	if o.Detail != "" {
		fmt.Fprintf(&b, ":DETAIL: %s\n", o.Detail)
	}
	b.WriteString(":END:\n")
	if o.IntentID != "" {
		b.WriteString("\n*** Thesis\n- \n\n")
		b.WriteString("*** Execution\n- \n\n")
		b.WriteString("*** Review\n- \n")
	}
	return b.String()
}

// FormatOutcomesOrg renders multiple outcomes separated by blank lines.
func FormatOutcomesOrg(outcomes []OutcomeRecord) string {
	var b strings.Builder
	for i, o := range outcomes {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatOutcomeOrg(o))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
