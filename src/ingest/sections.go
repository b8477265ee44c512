// backend/src/ingest/sections.go
package ingest

import (
	"strings"

	"github.com/username/fundfolio/backend/src/sheet"
	"github.com/username/fundfolio/backend/src/utils"
)

// Category vocabulary for holdings statements.
const (
	CategoryEquity      = "Equity Instruments"
	CategoryDebt        = "Debt Instruments"
	CategoryMoneyMarket = "Money Market Instruments"
	CategoryGovt        = "Government Securities"
	CategoryREIT        = "REIT/InvIT Instruments"
	CategoryOthers      = "Others"
)

// categoryRule matches a section-header row to a category by substring,
// case-insensitive.
type categoryRule struct {
	name     string
	patterns []string
}

var categoryRules = []categoryRule{
	{CategoryEquity, []string{"equity & equity related", "equity instruments", "equity shares"}},
	{CategoryDebt, []string{"debt instruments", "debt securities", "non-convertible debentures", "corporate bond"}},
	{CategoryMoneyMarket, []string{"money market instruments", "money market", "certificate of deposit", "commercial paper"}},
	{CategoryGovt, []string{"government securities", "g-sec", "treasury bill", "state development loan"}},
	{CategoryREIT, []string{"reit/invit", "reit / invit", "units of reit", "invit instruments", "units issued by reit"}},
	{CategoryOthers, []string{"other current assets", "others"}},
}

// reitIndicators re-tag any accepted row whose instrument name marks a
// REIT/InvIT unit, regardless of the section it was found under. The
// override runs after section tagging.
var reitIndicators = []string{"reit", "invit"}

// irrelevantRowPatterns skip footnotes, sub-legends, totals and disclosure
// boilerplate without touching section state.
var irrelevantRowPatterns = []string{
	"grand total",
	"sub total",
	"subtotal",
	"total",
	"net current assets",
	"net assets",
	"net receivables",
	"notes:",
	"note:",
	"disclaimer",
	"disclosure",
	"portfolio turnover",
	"average maturity",
	"nav at the",
	"^ ",
	"# ",
	"@ ",
	"* ",
	"(a)",
	"(b)",
	"(c)",
}

// matchCategory returns the category named by a section-header row, if any.
func matchCategory(rowText string) (string, bool) {
	for _, rule := range categoryRules {
		for _, pat := range rule.patterns {
			if strings.Contains(rowText, pat) {
				return rule.name, true
			}
		}
	}
	return "", false
}

// isIrrelevantRow reports whether the row is a footnote, legend, total or
// boilerplate line that should be skipped without affecting section state.
func isIrrelevantRow(rowText string) bool {
	for _, pat := range irrelevantRowPatterns {
		if strings.HasPrefix(pat, "^") {
			if strings.HasPrefix(rowText, strings.TrimPrefix(pat, "^")) {
				return true
			}
			continue
		}
		if strings.Contains(rowText, pat) {
			return true
		}
	}
	return false
}

// applyREITOverride reclassifies REIT/InvIT instruments found under other
// sections.
func applyREITOverride(instrumentName, category string) string {
	lower := strings.ToLower(instrumentName)
	for _, ind := range reitIndicators {
		if strings.Contains(lower, ind) {
			return CategoryREIT
		}
	}
	return category
}

// rowHasValidISIN reports whether any cell of the row is ISIN-shaped. A
// category-header row never carries one; a data row must.
func rowHasValidISIN(row []sheet.Cell) bool {
	for _, c := range row {
		if utils.IsValidISIN(c.Text()) {
			return true
		}
	}
	return false
}
