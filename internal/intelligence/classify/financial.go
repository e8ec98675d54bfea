package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Financial extraction
// ---------------------------------------------------------------------------

var (
	dollarAmountPattern = regexp.MustCompile(`\$[\d,]+\.?\d*`)
	balanceDuePattern   = regexp.MustCompile(`(?:BALANCE DUE|AMOUNT DUE|YOU OWE)[\s:]*\$?([\d,]+\.?\d*)`)
	proposedPattern     = regexp.MustCompile(`(?:PROPOSED|ADDITIONAL|INCREASE)[\s\w]*\$?([\d,]+\.?\d*)`)
	penaltyPattern      = regexp.MustCompile(`(?:PENALTIES?|INTEREST)[\s:]*\$?([\d,]+\.?\d*)`)
)

// financialImpactHighThreshold and financialImpactMediumThreshold band the
// balance due into HIGH / MEDIUM / LOW.
const (
	financialImpactHighThreshold   = 25000.0
	financialImpactMediumThreshold = 5000.0
)

func parseAmount(s string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExtractFinancials collects every dollar token in the text and attempts a
// single best-effort capture for each specific amount category (balance due,
// proposed change, penalties and interest).  FinancialImpact is derived from
// the balance due only and is left empty when no balance-due phrasing
// matched.
func ExtractFinancials(inputText string) FinancialInfo {
	amounts := make([]float64, 0, 4)
	for _, m := range dollarAmountPattern.FindAllString(inputText, -1) {
		if v, ok := parseAmount(m); ok {
			amounts = append(amounts, v)
		}
	}

	var largest *float64
	for i := range amounts {
		if largest == nil || amounts[i] > *largest {
			v := amounts[i]
			largest = &v
		}
	}

	text := strings.ToUpper(inputText)

	capture := func(pattern *regexp.Regexp) *float64 {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			return nil
		}
		if v, ok := parseAmount(m[1]); ok {
			return &v
		}
		return nil
	}

	balanceDue := capture(balanceDuePattern)
	proposedChange := capture(proposedPattern)
	penalties := capture(penaltyPattern)

	var impact FinancialImpact
	if balanceDue != nil {
		switch {
		case *balanceDue > financialImpactHighThreshold:
			impact = ImpactHigh
		case *balanceDue > financialImpactMediumThreshold:
			impact = ImpactMedium
		default:
			impact = ImpactLow
		}
	}

	return FinancialInfo{
		AllAmounts:           amounts,
		LargestAmount:        largest,
		BalanceDue:           balanceDue,
		ProposedChange:       proposedChange,
		PenaltiesAndInterest: penalties,
		FinancialImpact:      impact,
	}
}
