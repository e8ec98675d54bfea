package playbook

import (
	"fmt"
	"strings"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/classify"
)

// ---------------------------------------------------------------------------
// Registry operations
// ---------------------------------------------------------------------------

// PositionValidation reports whether a user stance is permitted for a notice
// type, and if not, which stances are.
type PositionValidation struct {
	Valid            bool     `json:"valid"`
	AllowedPositions []Stance `json:"allowedPositions"`
	Message          string   `json:"message"`
}

// LanguageCheck reports prohibited phrases found in a piece of user text.
type LanguageCheck struct {
	HasProhibitedLanguage bool     `json:"hasProhibitedLanguage"`
	FlaggedPhrases        []string `json:"flaggedPhrases"`
	Message               string   `json:"message"`
}

// HelpUrgency grades how strongly professional representation is advised.
type HelpUrgency string

const (
	HelpCritical HelpUrgency = "CRITICAL"
	HelpHigh     HelpUrgency = "HIGH"
	HelpModerate HelpUrgency = "MODERATE"
)

// HelpAssessment is the outcome of AssessProfessionalHelpNeed.
type HelpAssessment struct {
	RecommendProfessional bool          `json:"recommendProfessional"`
	Urgency               HelpUrgency   `json:"urgency"`
	Reason                string        `json:"reason"`
	Threshold             HelpThreshold `json:"threshold"`
}

// GetPlaybook returns the rule set for a notice type, falling back to the
// UNKNOWN playbook for types without a dedicated entry (CP2501, refund
// offsets, LT11, and anything surfaced by notice-number extraction).
func GetPlaybook(noticeType classify.NoticeType) Playbook {
	if pb, ok := playbooks[noticeType]; ok {
		return pb
	}
	return playbooks[classify.NoticeUnknown]
}

// ValidateUserPosition checks a user's stated stance against the positions
// the playbook permits for the notice type.
func ValidateUserPosition(noticeType classify.NoticeType, position Stance) PositionValidation {
	pb := GetPlaybook(noticeType)
	for _, allowed := range pb.AllowedUserPositions {
		if allowed == position {
			return PositionValidation{
				Valid:            true,
				AllowedPositions: pb.AllowedUserPositions,
				Message:          "Position is appropriate for this notice type",
			}
		}
	}
	return PositionValidation{
		Valid:            false,
		AllowedPositions: pb.AllowedUserPositions,
		Message:          fmt.Sprintf("Invalid position. Allowed positions: %s", joinStances(pb.AllowedUserPositions)),
	}
}

// CheckProhibitedLanguage scans text (case-insensitively) for phrases the
// playbook forbids and returns every phrase found.
func CheckProhibitedLanguage(text string, noticeType classify.NoticeType) LanguageCheck {
	pb := GetPlaybook(noticeType)
	lower := strings.ToLower(text)

	flagged := make([]string, 0)
	for _, phrase := range pb.ProhibitedLanguage {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			flagged = append(flagged, phrase)
		}
	}

	if len(flagged) == 0 {
		return LanguageCheck{
			HasProhibitedLanguage: false,
			FlaggedPhrases:        flagged,
			Message:               "No prohibited language detected",
		}
	}
	return LanguageCheck{
		HasProhibitedLanguage: true,
		FlaggedPhrases:        flagged,
		Message:               "Avoid these phrases: " + strings.Join(flagged, ", "),
	}
}

// AssessProfessionalHelpNeed decides whether the taxpayer should involve a
// professional, based on the playbook threshold, the dollar amount at stake
// and a free-text complexity descriptor supplied by the caller.
//
// A threshold whose complexity text declares help MANDATORY always wins and
// grades CRITICAL; an amount above the dollar threshold grades HIGH;
// everything else grades MODERATE.
func AssessProfessionalHelpNeed(noticeType classify.NoticeType, amount float64, complexity string) HelpAssessment {
	pb := GetPlaybook(noticeType)
	threshold := pb.HelpThreshold

	amountExceeds := threshold.Amount != nil && amount > *threshold.Amount
	complexityHigh := strings.Contains(strings.ToLower(complexity), "complex")
	mandatory := strings.Contains(threshold.Complexity, "MANDATORY")

	out := HelpAssessment{
		RecommendProfessional: amountExceeds || complexityHigh || mandatory,
		Threshold:             threshold,
	}
	switch {
	case mandatory:
		out.Urgency = HelpCritical
		out.Reason = threshold.Complexity
	case amountExceeds:
		out.Urgency = HelpHigh
		out.Reason = fmt.Sprintf("Amount exceeds threshold of $%g", *threshold.Amount)
	default:
		out.Urgency = HelpModerate
		out.Reason = threshold.Complexity
	}
	return out
}

func joinStances(stances []Stance) string {
	parts := make([]string, len(stances))
	for i, s := range stances {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
