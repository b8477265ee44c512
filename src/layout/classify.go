// backend/src/layout/classify.go
package layout

import (
	"strings"

	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/sheet"
)

// Keyword sets scored against the candidate header row, one per layout.
// Scores count distinct keyword hits by containment.
var layoutKeywords = map[Layout][]string{
	NSE: {
		"isin", "trade date", "trade time", "deal size",
		"seller deal type", "buyer deal type", "symbol", "trade price",
	},
	BSE: {
		"scrip code", "scrip name", "deal date", "deal time",
		"quantity", "trade price", "client name", "deal type",
	},
	RatingsMaster: {
		"isin", "rating", "rating agency", "issuer",
		"security description", "coupon", "maturity",
	},
	Holdings: {
		"name of the instrument", "isin", "rating / industry", "industry",
		"quantity", "market value", "% to nav", "yield",
	},
}

// classifyPriority breaks content-score ties in a fixed order.
var classifyPriority = []Layout{NSE, BSE, RatingsMaster, Holdings}

// minScore is the minimum number of distinct keyword hits for a content
// classification to count as confident.
const minScore = 2

// fallbackLayout is what a low-confidence sheet is treated as; holdings
// statements are by far the most common upload.
const fallbackLayout = Holdings

// Classify assigns a layout to one grid. File and sheet name hints (literal
// "NSE"/"BSE" substrings) are authoritative and skip content scoring; below
// minScore the classifier guesses the fallback layout rather than failing,
// and says so in the result.
func Classify(g *sheet.Grid, fileName string) Classification {
	headerRow := g.FirstNonEmptyRow()
	if headerRow < 0 {
		return Classification{Layout: Unknown}
	}

	cells := normalizedRow(g, headerRow)
	scores := make(map[Layout]int, len(layoutKeywords))
	for l, keywords := range layoutKeywords {
		scores[l] = scoreKeywords(cells, keywords)
	}

	if hinted, ok := nameHint(fileName, g.Name); ok {
		return Classification{
			Layout:    hinted,
			Score:     scores[hinted],
			HasHeader: scores[hinted] > 0,
			HeaderRow: headerRow,
		}
	}

	best := Unknown
	bestScore := 0
	for _, l := range classifyPriority {
		if scores[l] > bestScore {
			best = l
			bestScore = scores[l]
		}
	}

	if bestScore < minScore {
		logger.L.Warn("low-confidence layout classification, falling back",
			"sheet", g.Name, "file", fileName, "bestScore", bestScore, "fallback", string(fallbackLayout))
		return Classification{
			Layout:    fallbackLayout,
			Score:     bestScore,
			Guessed:   true,
			HasHeader: bestScore > 0,
			HeaderRow: headerRow,
		}
	}

	return Classification{
		Layout:    best,
		Score:     bestScore,
		HasHeader: true,
		HeaderRow: headerRow,
	}
}

// nameHint checks file and sheet names for exchange markers. A hit is
// authoritative over content scoring.
func nameHint(fileName, sheetName string) (Layout, bool) {
	combined := strings.ToUpper(fileName + " " + sheetName)
	if strings.Contains(combined, "NSE") {
		return NSE, true
	}
	if strings.Contains(combined, "BSE") {
		return BSE, true
	}
	return Unknown, false
}

func scoreKeywords(cells []string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		for _, cell := range cells {
			if strings.Contains(cell, kw) {
				score++
				break
			}
		}
	}
	return score
}

// normalizedRow lowercases and whitespace-collapses every cell of a row.
func normalizedRow(g *sheet.Grid, row int) []string {
	if row < 0 || row >= len(g.Rows) {
		return nil
	}
	out := make([]string, 0, len(g.Rows[row]))
	for _, c := range g.Rows[row] {
		out = append(out, NormalizeHeader(c.Raw))
	}
	return out
}

// NormalizeHeader lowercases a header cell and collapses its whitespace.
func NormalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
