// Package report renders stored insight records as markdown, HTML and PDF documents.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/spendsense/internal/interfaces"
	"github.com/ternarybob/spendsense/internal/recommend"
	"github.com/ternarybob/spendsense/internal/signals"
)

// Markdown renders an insight record as a markdown document
func Markdown(record *interfaces.InsightRecord) string {
	result := record.Result
	var b strings.Builder

	fmt.Fprintf(&b, "# Financial insights for %s\n\n", record.UserID)
	fmt.Fprintf(&b, "- Persona: **%s**\n", result.PersonaType.Title())
	fmt.Fprintf(&b, "- Confidence: %s\n", signals.FormatPercent(result.Confidence))
	fmt.Fprintf(&b, "- Window: %d days\n", record.WindowDays)
	fmt.Fprintf(&b, "- Generated: %s (%s)\n", record.GeneratedAt.UTC().Format(time.RFC3339), record.Generator)
	fmt.Fprintf(&b, "- Run: %s\n", record.RunID)

	writeSignals(&b, result.Signals)

	if len(result.Recommendations) > 0 {
		b.WriteString("\n## Education\n")
		for i, rec := range result.Recommendations {
			fmt.Fprintf(&b, "\n### %d. %s\n\n", i+1, rec.Content.Title)
			if rec.Content.Summary != "" {
				fmt.Fprintf(&b, "%s\n\n", rec.Content.Summary)
			}
			writeRationale(&b, rec.Rationale, rec.RelevanceScore)
		}
	}

	if len(result.Offers) > 0 {
		b.WriteString("\n## Partner offers\n")
		for i, offer := range result.Offers {
			fmt.Fprintf(&b, "\n### %d. %s (%s)\n\n", i+1, offer.Offer.Title, offer.Offer.Provider)
			if offer.Offer.Summary != "" {
				fmt.Fprintf(&b, "%s\n\n", offer.Offer.Summary)
			}
			writeRationale(&b, offer.Rationale, offer.RelevanceScore)
			if offer.Offer.Disclaimer != "" {
				fmt.Fprintf(&b, "\n*%s*\n", offer.Offer.Disclaimer)
			}
		}
	}

	if result.Disclaimer != "" {
		fmt.Fprintf(&b, "\n---\n\n*%s*\n", result.Disclaimer)
	}
	return b.String()
}

func writeSignals(b *strings.Builder, g signals.Groups) {
	b.WriteString("\n## Signals\n\n")
	b.WriteString("| Signal | Value |\n")
	b.WriteString("|---|---|\n")
	fmt.Fprintf(b, "| Recurring merchants | %d |\n", g.Subscriptions.Count)
	fmt.Fprintf(b, "| Monthly recurring spend | %s |\n", signals.FormatMoney(g.Subscriptions.MonthlyRecurringSpend))
	fmt.Fprintf(b, "| Savings balance | %s |\n", signals.FormatMoney(g.Savings.TotalBalance))
	fmt.Fprintf(b, "| Emergency fund | %s |\n", signals.FormatFundMonths(g.Savings.EmergencyFundMonths))
	fmt.Fprintf(b, "| Credit utilization | %s |\n", signals.FormatPercent(g.Credit.OverallUtilization))
	fmt.Fprintf(b, "| Monthly interest | %s |\n", signals.FormatMoney(g.Credit.MonthlyInterest))
	fmt.Fprintf(b, "| Income frequency | %s |\n", g.Income.Frequency)
	fmt.Fprintf(b, "| Cash flow buffer | %s |\n", signals.FormatFundMonths(g.Income.BufferMonths))
}

func writeRationale(b *strings.Builder, r recommend.Rationale, relevance int) {
	fmt.Fprintf(b, "%s\n\n", r.Explanation)
	fmt.Fprintf(b, "Relevance: %d/5\n", relevance)
	if len(r.Citations) == 0 {
		return
	}
	b.WriteString("\nBased on:\n\n")
	for _, c := range r.Citations {
		if c.Account != "" {
			fmt.Fprintf(b, "- %s: %s (%s)\n", c.Signal, c.Value, c.Account)
		} else {
			fmt.Fprintf(b, "- %s: %s\n", c.Signal, c.Value)
		}
	}
}
