// Package report renders a model.Report into its output formats and parses
// the structured format back. Rendering never mutates the report.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/boscoh/breachwatch/internal/domain/model"
)

// Supported render formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatText = "text"
)

// maxListedCompromised caps the full compromised listing in the text format;
// beyond it only a count is emitted so reports stay readable.
const maxListedCompromised = 50

// Render serializes the report in the given format.
func Render(r model.Report, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return RenderJSON(r)
	case FormatCSV:
		return renderCSV(r)
	case FormatText:
		return []byte(renderText(r)), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// renderCSV emits one row per checked item.
func renderCSV(r model.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Name", "Username", "URI", "Status", "Risk Level", "Breach Count", "Error"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, item := range r.Items {
		count := ""
		if item.OccurrenceCount >= 0 {
			count = strconv.Itoa(item.OccurrenceCount)
		}

		row := []string{item.Label, item.Identifier, item.SourceURI, item.Status(), string(item.Risk), count, item.Error}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// renderText produces the human-readable narrative report: summary first,
// then critical and high items by descending occurrence count, then the full
// compromised listing when small enough, then per-account findings.
func renderText(r model.Report) string {
	var b strings.Builder
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 40)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "BREACHWATCH PASSWORD AUDIT REPORT")
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)

	s := r.Summary
	fmt.Fprintln(&b, "SUMMARY")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Total passwords checked: %d\n", s.Total)
	fmt.Fprintf(&b, "Safe passwords:          %d\n", s.Safe)
	fmt.Fprintf(&b, "Compromised passwords:   %d\n", s.Compromised)
	if s.Errors > 0 {
		fmt.Fprintf(&b, "Errors:                  %d\n", s.Errors)
	}
	fmt.Fprintln(&b)

	writeRiskSection(&b, r, model.RiskCritical, "CRITICAL - Change immediately:")
	writeRiskSection(&b, r, model.RiskHigh, "HIGH RISK - Should change soon:")

	compromised := filterCompromised(r.Items)
	if len(compromised) > 0 {
		if len(compromised) <= maxListedCompromised {
			fmt.Fprintln(&b, "ALL COMPROMISED PASSWORDS:")
			fmt.Fprintln(&b, thin)
			for _, item := range sortByCount(compromised) {
				fmt.Fprintf(&b, "  [%-8s] %s: %sx\n", strings.ToUpper(string(item.Risk)), item.Label, groupDigits(item.OccurrenceCount))
			}
		} else {
			fmt.Fprintf(&b, "%d compromised passwords total (listing suppressed)\n", len(compromised))
		}
		fmt.Fprintln(&b)
	}

	for _, acct := range r.Accounts {
		writeAccountSection(&b, acct)
	}

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "RECOMMENDATIONS:")
	fmt.Fprintln(&b, rule)
	if r.Outcome() == model.OutcomeBreachesFound {
		fmt.Fprintln(&b, "  1. Change all compromised passwords immediately")
		fmt.Fprintln(&b, "  2. Use a generated password of 20+ characters for each account")
		fmt.Fprintln(&b, "  3. Enable 2FA/MFA on all affected accounts")
		fmt.Fprintln(&b, "  4. Check for suspicious account activity")
	} else {
		fmt.Fprintln(&b, "  All checked credentials are safe.")
	}

	return b.String()
}

// writeRiskSection lists the items at one risk level, highest occurrence
// count first.
func writeRiskSection(b *strings.Builder, r model.Report, level model.RiskLevel, heading string) {
	var items []model.PasswordCheckResult
	for _, item := range r.Items {
		if item.Risk == level {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return
	}

	fmt.Fprintln(b, heading)
	fmt.Fprintln(b, strings.Repeat("-", 40))
	for _, item := range sortByCount(items) {
		fmt.Fprintf(b, "  * %s (%sx)\n", item.Label, groupDigits(item.OccurrenceCount))
		if item.Identifier != "" {
			fmt.Fprintf(b, "    Username: %s\n", item.Identifier)
		}
		if item.SourceURI != "" {
			fmt.Fprintf(b, "    URI: %s\n", item.SourceURI)
		}
	}
	fmt.Fprintln(b)
}

// writeAccountSection renders one account's breach findings.
func writeAccountSection(b *strings.Builder, acct model.AccountFindings) {
	fmt.Fprintf(b, "ACCOUNT: %s\n", acct.Identifier)
	fmt.Fprintln(b, strings.Repeat("-", 40))

	if acct.Error != "" {
		fmt.Fprintf(b, "Check failed: %s\n\n", acct.Error)
		return
	}

	fmt.Fprintf(b, "Total breaches: %d\n", len(acct.Breaches))

	if len(acct.PasswordExposedIn) > 0 {
		fmt.Fprintln(b, "Password exposed in:")
		for _, breach := range acct.PasswordExposedIn {
			fmt.Fprintf(b, "  - %s (%s) - Type: %s\n", breach.Title, breach.Date, breach.PasswordExposure)
		}
	}

	if len(acct.CompromisedSites) > 0 {
		fmt.Fprintf(b, "Credentials stolen for %d sites\n", len(acct.CompromisedSites))
		if len(acct.CriticalSites) > 0 {
			fmt.Fprintln(b, "CRITICAL SITES COMPROMISED:")
			for _, site := range acct.CriticalSites {
				fmt.Fprintf(b, "  ! %s\n", site)
			}
		}
	}

	if len(acct.Pastes) > 0 {
		sources := make(map[string]struct{})
		for _, paste := range acct.Pastes {
			sources[paste.Source] = struct{}{}
		}
		names := make([]string, 0, len(sources))
		for src := range sources {
			names = append(names, src)
		}
		sort.Strings(names)
		fmt.Fprintf(b, "Found in %d pastes (sources: %s)\n", len(acct.Pastes), strings.Join(names, ", "))
	}

	fmt.Fprintln(b)
}

// sortByCount returns a copy sorted by occurrence count descending. The sort
// is stable: ties keep their original input order.
func sortByCount(items []model.PasswordCheckResult) []model.PasswordCheckResult {
	out := make([]model.PasswordCheckResult, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurrenceCount > out[j].OccurrenceCount
	})
	return out
}

func filterCompromised(items []model.PasswordCheckResult) []model.PasswordCheckResult {
	var out []model.PasswordCheckResult
	for _, item := range items {
		if item.Compromised {
			out = append(out, item)
		}
	}
	return out
}

// groupDigits formats n with thousands separators for the text report.
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return s
	}

	var b strings.Builder
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	return b.String()
}
