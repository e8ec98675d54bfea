package classify

import (
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Classification rule table
// ---------------------------------------------------------------------------

// classificationRule pairs a detection pattern with the record returned on a
// match.  The table is evaluated top to bottom and the FIRST match wins, so
// the order of entries is load-bearing: more specific notice codes appear
// before the broader phrasings that could shadow them.
type classificationRule struct {
	pattern             *regexp.Regexp
	noticeType          NoticeType
	urgencyLevel        UrgencyHint
	responseRequired    bool
	typicalDeadlineDays int
	escalationRisk      []string
	category            Category
	description         string
}

var classificationRules = []classificationRule{
	{
		pattern:             regexp.MustCompile(`CP-?2000|PROPOSED CHANGES TO YOUR.*TAX RETURN`),
		noticeType:          NoticeCP2000,
		urgencyLevel:        UrgencyHintHigh,
		responseRequired:    true,
		typicalDeadlineDays: 30,
		escalationRisk: []string{
			"Proposed assessment becomes final if not responded to",
			"Additional penalties and interest will accrue",
			"Loss of appeal rights after 90 days",
			"Potential levy or lien action",
		},
		category:    CategoryProposedAssessment,
		description: "Underreported Income Notice",
	},
	{
		pattern:             regexp.MustCompile(`CP-?14|YOU OWE ADDITIONAL TAX|BALANCE DUE.*FIRST NOTICE`),
		noticeType:          NoticeCP14,
		urgencyLevel:        UrgencyHintMedium,
		responseRequired:    true,
		typicalDeadlineDays: 21,
		escalationRisk: []string{
			"Penalties and interest continue to accrue",
			"Progression to CP501 and CP503 notices",
			"Potential levy action after CP504",
			"Credit score impact if unpaid",
		},
		category:    CategoryBalanceDue,
		description: "First Balance Due Notice",
	},
	{
		pattern:             regexp.MustCompile(`CP-?501|REMINDER.*BALANCE DUE|FIRST REMINDER`),
		noticeType:          NoticeCP501,
		urgencyLevel:        UrgencyHintHigh,
		responseRequired:    true,
		typicalDeadlineDays: 30,
		escalationRisk: []string{
			"Escalation to CP503 (second reminder)",
			"Increased penalties and interest",
			"Potential levy action within 60-90 days",
			"Federal tax lien filing",
		},
		category:    CategoryBalanceDue,
		description: "First Reminder - Balance Due",
	},
	{
		pattern:             regexp.MustCompile(`CP-?503|SECOND REMINDER.*BALANCE DUE|IMMEDIATE PAYMENT`),
		noticeType:          NoticeCP503,
		urgencyLevel:        UrgencyHintHigh,
		responseRequired:    true,
		typicalDeadlineDays: 21,
		escalationRisk: []string{
			"Escalation to CP504 (Intent to Levy)",
			"Federal tax lien may be filed",
			"Bank levy or wage garnishment imminent",
			"Seizure of assets possible",
		},
		category:    CategoryBalanceDue,
		description: "Second Reminder - Urgent Action Required",
	},
	{
		pattern:             regexp.MustCompile(`CP-?504|INTENT TO LEVY|NOTICE OF INTENT TO SEIZE|FINAL NOTICE`),
		noticeType:          NoticeCP504,
		urgencyLevel:        UrgencyHintHigh,
		responseRequired:    true,
		typicalDeadlineDays: 30,
		escalationRisk: []string{
			"Bank account levy within 30 days",
			"Wage garnishment authorization",
			"Seizure of property or assets",
			"Federal tax lien if not already filed",
			"Loss of collection due process rights",
		},
		category:    CategoryLevyIntent,
		description: "Intent to Levy - Final Notice Before Enforcement",
	},
	{
		pattern:             regexp.MustCompile(`CP-?75|EXAMINATION OF YOUR TAX RETURN|AUDIT NOTICE|WE ARE EXAMINING`),
		noticeType:          NoticeCP75,
		urgencyLevel:        UrgencyHintHigh,
		responseRequired:    true,
		typicalDeadlineDays: 30,
		escalationRisk: []string{
			"Proposed assessment if no response",
			"Expansion of audit scope",
			"Referral to criminal investigation (if fraud suspected)",
			"Penalties for substantial understatement",
			"Multi-year audit expansion",
		},
		category:    CategoryAudit,
		description: "Audit / Examination Notice",
	},
	{
		pattern:             regexp.MustCompile(`LETTER 525|LETTER 2205|EXAMINATION APPOINTMENT|FIELD AUDIT`),
		noticeType:          NoticeAuditLetter,
		urgencyLevel:        UrgencyHintHigh,
		responseRequired:    true,
		typicalDeadlineDays: 21,
		escalationRisk: []string{
			"Summons for records if non-responsive",
			"Proposed assessment based on available information",
			"Penalties for non-cooperation",
			"Potential fraud referral",
			"Audit expansion to related parties",
		},
		category:    CategoryAudit,
		description: "Formal Audit Examination Letter",
	},
	{
		pattern:             regexp.MustCompile(`5071C|5747C|4883C|VERIFY YOUR IDENTITY|IDENTITY VERIFICATION|POTENTIAL IDENTITY THEFT`),
		noticeType:          NoticeIdentityVerification,
		urgencyLevel:        UrgencyHintHigh,
		responseRequired:    true,
		typicalDeadlineDays: 30,
		escalationRisk: []string{
			"Refund hold indefinitely",
			"Return marked as fraudulent",
			"Future returns automatically flagged",
			"Requirement for in-person verification",
			"Potential criminal investigation",
		},
		category:    CategoryIdentityVerification,
		description: "Identity Verification Required",
	},
	{
		pattern:             regexp.MustCompile(`CP-?2501|INFORMATION DOES NOT MATCH|INCOME DISCREPANCY`),
		noticeType:          NoticeCP2501,
		urgencyLevel:        UrgencyHintMedium,
		responseRequired:    false,
		typicalDeadlineDays: 30,
		escalationRisk: []string{
			"May escalate to CP2000 if not addressed",
			"Potential audit trigger",
			"Future returns under increased scrutiny",
		},
		category:    CategoryInformational,
		description: "Income Discrepancy - Informational Notice",
	},
	{
		pattern:             regexp.MustCompile(`CP-?11|CP-?12|WE MADE CHANGES TO YOUR RETURN|CORRECTED YOUR TAX RETURN`),
		noticeType:          NoticeCP11CP12,
		urgencyLevel:        UrgencyHintMedium,
		responseRequired:    false,
		typicalDeadlineDays: 60,
		escalationRisk: []string{
			"Changes become final if not disputed",
			"Potential refund reduction or balance due",
			"Limited time to file amended return",
		},
		category:    CategoryReturnAdjustment,
		description: "IRS Made Changes to Your Return",
	},
	{
		pattern:             regexp.MustCompile(`CP-?21|CP-?22|CP-?23|REFUND OFFSET|WE APPLIED YOUR REFUND`),
		noticeType:          NoticeRefundOffset,
		urgencyLevel:        UrgencyHintLow,
		responseRequired:    false,
		typicalDeadlineDays: 60,
		escalationRisk: []string{
			"Limited time to dispute offset",
			"May indicate other outstanding liabilities",
		},
		category:    CategoryRefundOffset,
		description: "Refund Applied to Other Debt",
	},
	{
		pattern:             regexp.MustCompile(`LT-?11|LT-?1058|TERMINATE.*INSTALLMENT AGREEMENT|DEFAULT.*PAYMENT PLAN`),
		noticeType:          NoticeInstallmentTermination,
		urgencyLevel:        UrgencyHintHigh,
		responseRequired:    true,
		typicalDeadlineDays: 30,
		escalationRisk: []string{
			"Immediate levy action upon termination",
			"Full balance becomes due immediately",
			"Loss of installment agreement privileges",
			"Difficulty reinstating payment plan",
		},
		category:    CategoryPaymentPlan,
		description: "Intent to Terminate Installment Agreement",
	},
	{
		pattern:             regexp.MustCompile(`LETTER 1058|FINAL NOTICE.*INTENT TO LEVY|YOUR RIGHT TO A HEARING`),
		noticeType:          NoticeLetter1058,
		urgencyLevel:        UrgencyHintHigh,
		responseRequired:    true,
		typicalDeadlineDays: 30,
		escalationRisk: []string{
			"Levy action within 30 days",
			"Last opportunity for Collection Due Process hearing",
			"Bank account seizure",
			"Wage garnishment",
			"Asset seizure",
		},
		category:    CategoryLevyIntent,
		description: "Final Notice Before Levy - Collection Due Process Rights",
	},
	{
		pattern:             regexp.MustCompile(`CP-?90|CP-?297|FINAL NOTICE OF INTENT TO LEVY|NOTICE OF YOUR RIGHT TO A HEARING`),
		noticeType:          NoticeCP90CP297,
		urgencyLevel:        UrgencyHintHigh,
		responseRequired:    true,
		typicalDeadlineDays: 30,
		escalationRisk: []string{
			"Levy action after 30 days",
			"Loss of Collection Due Process appeal rights",
			"Federal tax lien if not filed",
			"Passport revocation for large debts",
			"State tax refund offset",
		},
		category:    CategoryLevyIntent,
		description: "Final Notice - Right to Collection Due Process Hearing",
	},
}

// noticeNumberPattern extracts a generic notice code when no rule matched.
var noticeNumberPattern = regexp.MustCompile(`\b(CP|LT|LETTER)\s*-?\s*(\d+[A-Z]*)\b`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Classify maps raw notice text to a NoticeClassification.  The text is
// uppercased and tested against the ordered rule table; the first matching
// rule wins.  When no rule matches, a generic notice-number extraction is
// attempted; failing that, the UNKNOWN fallback record is returned.  Classify
// always returns a complete record and never fails.
func Classify(inputText string) NoticeClassification {
	text := strings.ToUpper(inputText)

	for _, rule := range classificationRules {
		if rule.pattern.MatchString(text) {
			return NoticeClassification{
				NoticeType:          rule.noticeType,
				UrgencyLevel:        rule.urgencyLevel,
				ResponseRequired:    rule.responseRequired,
				TypicalDeadlineDays: rule.typicalDeadlineDays,
				EscalationRisk:      rule.escalationRisk,
				Category:            rule.category,
				Description:         rule.description,
				Confidence:          ConfidenceHigh,
				DetectionMethod:     DetectionPatternMatch,
			}
		}
	}

	if m := noticeNumberPattern.FindString(text); m != "" {
		return NoticeClassification{
			NoticeType:          NoticeType(whitespacePattern.ReplaceAllString(m, "")),
			UrgencyLevel:        UrgencyHintMedium,
			ResponseRequired:    true,
			TypicalDeadlineDays: 30,
			EscalationRisk: []string{
				"Unknown escalation path - review notice carefully",
				"Consult tax professional for specific guidance",
			},
			Category:        CategoryUnknown,
			Description:     "Unrecognized IRS Notice",
			Confidence:      ConfidenceLow,
			DetectionMethod: DetectionNumberExtraction,
		}
	}

	return NoticeClassification{
		NoticeType:          NoticeUnknown,
		UrgencyLevel:        UrgencyHintMedium,
		ResponseRequired:    true,
		TypicalDeadlineDays: 30,
		EscalationRisk: []string{
			"Unable to determine specific notice type",
			"Assume response required within 30 days",
			"Professional consultation strongly recommended",
		},
		Category:        CategoryUnknown,
		Description:     "Unable to Classify Notice Type",
		Confidence:      ConfidenceLow,
		DetectionMethod: DetectionFallback,
	}
}
