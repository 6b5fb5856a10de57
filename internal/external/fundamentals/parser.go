package fundamentals

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/scorecard/internal/contracts"
)

// snapshot table labels
const (
	labelPE          = "P/E"
	labelPB          = "P/B"
	labelPS          = "P/S"
	labelDebtEq      = "Debt/Eq"
	labelDividendPct = "Dividend %"
	labelDividendTTM = "Dividend TTM"
)

var percentInParens = regexp.MustCompile(`\(([-0-9.]+)%\)`)

// ParseSnapshot extracts valuation ratios from a quote page.
// The page carries a label/value cell grid; "-" marks a missing ratio.
func ParseSnapshot(ticker, html string) (*contracts.FundamentalSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("table.snapshot-table2")
	if table.Length() == 0 {
		return nil, ErrNoSnapshot
	}

	values := make(map[string]string)
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		// label, value, label, value, ...
		for j := 0; j+1 < cells.Length(); j += 2 {
			label := strings.TrimSpace(cells.Eq(j).Text())
			value := strings.TrimSpace(cells.Eq(j + 1).Text())
			if label != "" {
				values[label] = value
			}
		}
	})

	snap := &contracts.FundamentalSnapshot{
		Ticker:       ticker,
		PERatio:      parseRatio(values[labelPE]),
		PBRatio:      parseRatio(values[labelPB]),
		PSRatio:      parseRatio(values[labelPS]),
		DebtToEquity: parseRatio(values[labelDebtEq]),
	}

	if v, ok := values[labelDividendPct]; ok {
		snap.DividendYield = parsePercent(v)
	} else if v, ok := values[labelDividendTTM]; ok {
		if m := percentInParens.FindStringSubmatch(v); m != nil {
			snap.DividendYield = parsePercent(m[1] + "%")
		}
	}

	return snap, nil
}

// parseRatio parses "12.34" or "1,234.5"; "-" and blanks are nil
func parseRatio(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parsePercent parses "2.50%" into the fraction 0.025
func parsePercent(s string) *float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v := parseRatio(s)
	if v == nil {
		return nil
	}
	frac := *v / 100
	return &frac
}
