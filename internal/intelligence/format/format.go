// Package format renders analysis bundles and response letters as structured
// plain text.  Output is strictly procedural: fixed sections, fixed banners,
// no conversational filler.  Rendering is deterministic for a given input.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/classify"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/deadline"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/evidence"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/playbook"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/risk"
)

const (
	heavyRule = "═══════════════════════════════════════════════════════════════\n"
	lightRule = "───────────────────────────────────────────────────────────────\n"
)

// AnalysisParams carries everything the six-section analysis report needs.
type AnalysisParams struct {
	Classification classify.NoticeClassification
	DeadlineIntel  deadline.Intelligence
	FinancialInfo  classify.FinancialInfo
	RiskAnalysis   *risk.Analysis
	HelpAssessment playbook.HelpAssessment
}

// LetterParams carries the pieces of a formatted response letter.
type LetterParams struct {
	Classification   classify.NoticeClassification
	EvidenceMap      evidence.Map
	GeneratedContent string
	Now              time.Time
}

// ---------------------------------------------------------------------------
// Analysis report
// ---------------------------------------------------------------------------

// FormatAnalysisOutput renders the full analysis report.  Section 5 (risk
// assessment) is emitted only when the risk analysis found anything above
// LOW.
func FormatAnalysisOutput(p AnalysisParams) string {
	var b strings.Builder
	writeNoticeExplanation(&b, p.Classification, p.FinancialInfo)
	writeRequiredAction(&b, p.Classification, p.DeadlineIntel)
	writeResponseStrategy(&b, p.Classification)
	writeTimeline(&b, p.DeadlineIntel)
	if p.RiskAnalysis != nil && p.RiskAnalysis.OverallRisk != risk.LevelLow {
		writeRiskAssessment(&b, *p.RiskAnalysis)
	}
	writeProfessionalHelp(&b, p.HelpAssessment)
	return b.String()
}

var noticeExplanations = map[classify.NoticeType]string{
	classify.NoticeCP2000:               "The IRS has information from third parties (employers, banks, etc.) that does not match what you reported on your tax return. This is NOT a bill yet - it is a proposed change. You have the right to agree, disagree, or partially agree with the proposed changes.",
	classify.NoticeCP14:                 "You have an unpaid balance on your tax account. This is the first notice of the balance due. The IRS expects payment or a response explaining why you disagree with the amount.",
	classify.NoticeCP501:                "This is the FIRST REMINDER that you have an unpaid balance. The IRS sent a previous notice (CP14) that was not resolved. This is an escalation and requires immediate attention.",
	classify.NoticeCP503:                "This is the SECOND REMINDER of your unpaid balance. This is a critical escalation. The next step is CP504 (Intent to Levy), which authorizes the IRS to seize your bank accounts, garnish wages, or take other collection action.",
	classify.NoticeCP504:                "This is the FINAL NOTICE before the IRS takes enforcement action. The IRS is notifying you of their intent to levy (seize) your assets, bank accounts, or wages. You have 30 days to respond or file for a Collection Due Process hearing to preserve your appeal rights.",
	classify.NoticeCP75:                 "The IRS has selected your tax return for examination (audit). This notice requests specific documentation to verify items on your return. This is not an accusation of wrongdoing - audits can be random or triggered by specific items.",
	classify.NoticeAuditLetter:          "This is a formal audit examination notice. The IRS is conducting a detailed review of your tax return and requires comprehensive documentation. This is more serious than a CP75 and typically involves an in-person or virtual meeting with an IRS examiner.",
	classify.NoticeIdentityVerification: "The IRS has flagged your tax return for potential identity theft or fraud. They are requiring you to verify your identity before processing your return or releasing your refund. This does not necessarily mean you are suspected of fraud - it may be a routine security check.",
	classify.NoticeUnknown:              "The specific notice type could not be definitively identified. However, based on the content, this appears to be an IRS correspondence requiring a response. Treat this as urgent until you can clarify the specific requirements with the IRS.",
}

func writeNoticeExplanation(b *strings.Builder, c classify.NoticeClassification, fin classify.FinancialInfo) {
	b.WriteString(heavyRule)
	b.WriteString("SECTION 1: WHAT THIS IRS NOTICE MEANS\n")
	b.WriteString(heavyRule)
	b.WriteString("\n")

	fmt.Fprintf(b, "Notice Type: %s\n", c.NoticeType)
	fmt.Fprintf(b, "Description: %s\n", c.Description)
	fmt.Fprintf(b, "Category: %s\n", c.Category)
	fmt.Fprintf(b, "Detection Confidence: %s\n\n", strings.ToUpper(string(c.Confidence)))

	b.WriteString("PLAIN ENGLISH EXPLANATION:\n\n")
	explanation, ok := noticeExplanations[c.NoticeType]
	if !ok {
		explanation = noticeExplanations[classify.NoticeUnknown]
	}
	b.WriteString(explanation)
	b.WriteString("\n\n")

	if fin.BalanceDue != nil {
		b.WriteString("FINANCIAL IMPACT:\n\n")
		fmt.Fprintf(b, "Amount at Issue: $%s\n", formatAmount(*fin.BalanceDue))
		if fin.ProposedChange != nil {
			fmt.Fprintf(b, "Proposed Additional Tax: $%s\n", formatAmount(*fin.ProposedChange))
		}
		if fin.PenaltiesAndInterest != nil {
			fmt.Fprintf(b, "Penalties and Interest: $%s\n", formatAmount(*fin.PenaltiesAndInterest))
		}
		fmt.Fprintf(b, "Financial Impact Level: %s\n\n", fin.FinancialImpact)
	}

	b.WriteString(lightRule)
	b.WriteString("\n")
}

func writeRequiredAction(b *strings.Builder, c classify.NoticeClassification, intel deadline.Intelligence) {
	b.WriteString(heavyRule)
	b.WriteString("SECTION 2: YOUR REQUIRED ACTION\n")
	b.WriteString(heavyRule)
	b.WriteString("\n")

	if c.ResponseRequired {
		b.WriteString("Response Required: YES\n")
		fmt.Fprintf(b, "Urgency Level: %s\n", intel.Deadline.UrgencyLevel)
		fmt.Fprintf(b, "Days Remaining: %d\n", intel.Deadline.DaysRemaining)
		if intel.Deadline.DeadlineDate != nil {
			fmt.Fprintf(b, "Deadline Date: %s\n", intel.Deadline.DeadlineDate.Format("January 2, 2006"))
		}
		fmt.Fprintf(b, "\n%s\n", intel.Deadline.UrgencyMessage)
		fmt.Fprintf(b, "%s\n\n", intel.Deadline.RecommendedActionMessage)
		if intel.Deadline.IsOverdue {
			fmt.Fprintf(b, "CRITICAL: %s\n\n", intel.Deadline.OverdueMessage)
		}
		if intel.CriticalWarning != "" {
			fmt.Fprintf(b, "%s\n\n", intel.CriticalWarning)
		}
	} else {
		b.WriteString("Response Required: NO\n")
		b.WriteString("\nThis notice is informational. While a response is not strictly required, you should review it carefully to ensure the information is correct. If you disagree with any information, you should respond to correct the record.\n\n")
	}

	b.WriteString(lightRule)
	b.WriteString("\n")
}

var responseStrategies = map[classify.NoticeType][]string{
	classify.NoticeCP2000: {
		"1. REVIEW CAREFULLY: Compare the IRS information with your records for each item listed",
		"2. DETERMINE YOUR POSITION:",
		"   - AGREE: If the IRS is correct, sign and return the response form with payment or payment plan request",
		"   - DISAGREE: If the IRS is wrong, provide documentation proving your position",
		"   - PARTIAL: If some items are correct and others are not, address each item separately",
		"3. GATHER EVIDENCE: Collect Forms W-2, 1099, receipts, and any other supporting documents",
		"4. RESPOND IN WRITING: Use the response form included with the notice",
		"5. SEND CERTIFIED MAIL: Keep proof of mailing and delivery",
	},
	classify.NoticeCP14: {
		"1. VERIFY THE AMOUNT: Confirm the balance is correct by reviewing your tax account",
		"2. CHOOSE YOUR RESPONSE:",
		"   - PAY IN FULL: If you can pay, do so immediately to stop interest accrual",
		"   - PAYMENT PLAN: Request an installment agreement using Form 9465",
		"   - DISPUTE: If you disagree with the amount, provide documentation",
		"   - PENALTY ABATEMENT: If this is your first penalty, request first-time abatement",
		"3. ACT QUICKLY: Interest accrues daily - every day counts",
		"4. DOCUMENT EVERYTHING: Keep records of all payments and correspondence",
	},
	classify.NoticeCP503: {
		"1. IMMEDIATE ACTION REQUIRED: This is the second reminder - escalation is imminent",
		"2. PRIORITY ACTIONS:",
		"   - Make immediate payment if possible (even partial payment shows good faith)",
		"   - Request emergency installment agreement",
		"   - Provide evidence of financial hardship if unable to pay",
		"3. PREVENT LEVY: The next notice (CP504) authorizes asset seizure",
		"4. CONSIDER PROFESSIONAL HELP: At this stage, professional representation is strongly recommended",
	},
	classify.NoticeCP504: {
		"1. CRITICAL: You have 30 days to prevent levy action",
		"2. FILE FORM 12153: Request a Collection Due Process hearing to preserve appeal rights",
		"3. IMMEDIATE PAYMENT OR ARRANGEMENT: If possible, pay or set up payment plan immediately",
		"4. FINANCIAL HARDSHIP: If you cannot pay, file Form 433-A (Collection Information Statement)",
		"5. PROFESSIONAL REPRESENTATION: Do not attempt to handle this alone - hire a tax professional immediately",
	},
	classify.NoticeCP75: {
		"1. DO NOT PANIC: Audits are not accusations of wrongdoing",
		"2. GATHER DOCUMENTATION: Collect all records specifically requested in the notice",
		"3. ORGANIZE BY CATEGORY: Sort documents by tax return line item",
		"4. DO NOT VOLUNTEER: Only provide what is specifically requested",
		"5. CONSIDER REPRESENTATION: File Form 2848 (Power of Attorney) to authorize a tax professional",
		"6. RESPOND TIMELY: Acknowledge the notice and confirm appointment or request reasonable extension",
	},
	classify.NoticeAuditLetter: {
		"1. HIRE PROFESSIONAL REPRESENTATION IMMEDIATELY: Do not attempt to handle a formal audit alone",
		"2. FILE FORM 2848: Authorize a tax attorney, CPA, or Enrolled Agent to represent you",
		"3. DO NOT MEET WITH IRS ALONE: All communication should go through your representative",
		"4. ORGANIZE RECORDS: Work with your representative to prepare comprehensive documentation",
		"5. DO NOT VOLUNTEER INFORMATION: Only provide what is specifically requested",
	},
	classify.NoticeIdentityVerification: {
		"1. RESPOND IMMEDIATELY: Refund will not be released until identity is verified",
		"2. VERIFY ONLINE: Go to IRS.gov/VerifyReturn and follow the instructions",
		"3. CALL IF NEEDED: Use the phone number on the notice if online verification fails",
		"4. HAVE DOCUMENTS READY: Prior year return, photo ID, and financial documents",
		"5. MONITOR CREDIT: This may indicate identity theft - check your credit reports",
	},
}

var genericStrategy = []string{
	"1. READ THE NOTICE CAREFULLY: Identify what the IRS is requesting",
	"2. GATHER DOCUMENTATION: Collect any relevant records",
	"3. RESPOND IN WRITING: Address each point raised in the notice",
	"4. KEEP COPIES: Maintain records of all correspondence",
	"5. SEND CERTIFIED MAIL: Obtain proof of delivery",
}

func writeResponseStrategy(b *strings.Builder, c classify.NoticeClassification) {
	b.WriteString(heavyRule)
	b.WriteString("SECTION 3: YOUR BEST RESPONSE STRATEGY\n")
	b.WriteString(heavyRule)
	b.WriteString("\n")

	strategy, ok := responseStrategies[c.NoticeType]
	if !ok {
		strategy = genericStrategy
	}
	for _, step := range strategy {
		b.WriteString(step + "\n")
	}

	b.WriteString("\n" + lightRule)
	b.WriteString("\n")
}

func writeTimeline(b *strings.Builder, intel deadline.Intelligence) {
	b.WriteString(heavyRule)
	b.WriteString("SECTION 4: WHAT HAPPENS NEXT (TIMELINE)\n")
	b.WriteString(heavyRule)
	b.WriteString("\n")

	b.WriteString("IF YOU TAKE NO ACTION:\n\n")
	for _, consequence := range intel.Scenarios.IfNoAction.Consequences {
		b.WriteString(consequence + "\n")
	}

	b.WriteString("\n\nIF YOU RESPOND CORRECTLY:\n\n")
	for _, benefit := range intel.Scenarios.IfCorrectResponse.Benefits {
		b.WriteString("• " + benefit + "\n")
	}

	b.WriteString("\n\nIF YOU RESPOND INCORRECTLY OR INCOMPLETELY:\n\n")
	for _, r := range intel.Scenarios.IfPartialResponse.Risks {
		b.WriteString("• " + r + "\n")
	}

	b.WriteString("\n" + lightRule)
	b.WriteString("\n")
}

func writeRiskAssessment(b *strings.Builder, analysis risk.Analysis) {
	b.WriteString(heavyRule)
	b.WriteString("SECTION 5: RISK ASSESSMENT\n")
	b.WriteString(heavyRule)
	b.WriteString("\n")

	fmt.Fprintf(b, "Overall Risk Level: %s\n", analysis.OverallRisk)
	fmt.Fprintf(b, "Safety Score: %d/100\n\n", analysis.SafetyScore)

	if len(analysis.AdmissionsOfFault) > 0 {
		b.WriteString("DETECTED ADMISSIONS OF FAULT:\n\n")
		for i, item := range analysis.AdmissionsOfFault {
			fmt.Fprintf(b, "%d. Risk Level: %s\n", i+1, item.Risk)
			fmt.Fprintf(b, "   Issue: %s\n", item.Issue)
			fmt.Fprintf(b, "   Safer Approach: %s\n\n", item.SaferAlternative)
		}
	}

	if len(analysis.OverDisclosure) > 0 {
		b.WriteString("OVER-DISCLOSURE DETECTED:\n\n")
		for i, item := range analysis.OverDisclosure {
			fmt.Fprintf(b, "%d. %s\n\n", i+1, item.Warning)
		}
	}

	b.WriteString(lightRule)
	b.WriteString("\n")
}

func writeProfessionalHelp(b *strings.Builder, help playbook.HelpAssessment) {
	b.WriteString(heavyRule)
	b.WriteString("SECTION 6: WHEN PROFESSIONAL HELP BECOMES NECESSARY\n")
	b.WriteString(heavyRule)
	b.WriteString("\n")

	if help.RecommendProfessional {
		fmt.Fprintf(b, "RECOMMENDATION: Professional representation is %s\n\n", help.Urgency)
		fmt.Fprintf(b, "REASON: %s\n\n", help.Reason)

		if help.Urgency == playbook.HelpCritical {
			b.WriteString("CRITICAL: Do not attempt to handle this matter without professional representation. ")
			b.WriteString("The risks of proceeding alone are too high and could result in significant financial harm, ")
			b.WriteString("expanded audit scope, or criminal referral.\n\n")
		}

		b.WriteString("WHEN TO HIRE A TAX PROFESSIONAL:\n\n")
		b.WriteString("• Amount at issue exceeds $10,000\n")
		b.WriteString("• Notice involves audit or examination\n")
		b.WriteString("• Intent to levy (CP504, Letter 1058) has been issued\n")
		b.WriteString("• Multiple tax years are involved\n")
		b.WriteString("• Complex tax issues (business income, foreign accounts, etc.)\n")
		b.WriteString("• You are unsure how to respond\n")
		b.WriteString("• Prior attempts to resolve have failed\n")
		b.WriteString("• Criminal investigation is suspected\n\n")
	} else {
		b.WriteString("RECOMMENDATION: Professional representation is optional for this notice type and amount.\n\n")
		b.WriteString("You may be able to handle this matter yourself if:\n")
		b.WriteString("• The issue is straightforward\n")
		b.WriteString("• You have all necessary documentation\n")
		b.WriteString("• The amount is relatively small\n")
		b.WriteString("• You understand the IRS requirements\n\n")
		b.WriteString("However, professional help is always beneficial and may result in better outcomes.\n\n")
	}

	b.WriteString("TYPES OF TAX PROFESSIONALS:\n\n")
	b.WriteString("• Tax Attorney: Best for legal issues, audits, appeals, and collection matters\n")
	b.WriteString("• Certified Public Accountant (CPA): Best for complex tax calculations and return preparation\n")
	b.WriteString("• Enrolled Agent (EA): IRS-licensed, best for IRS representation and tax resolution\n\n")

	b.WriteString(heavyRule)
	b.WriteString("\n")
}

// ---------------------------------------------------------------------------
// Response letter
// ---------------------------------------------------------------------------

// FormatResponseLetter wraps generated body content in the standard letter
// skeleton with placeholder fields for the taxpayer to fill in.
func FormatResponseLetter(p LetterParams) string {
	var b strings.Builder

	b.WriteString("[YOUR NAME]\n")
	b.WriteString("[YOUR ADDRESS]\n")
	b.WriteString("[CITY, STATE ZIP]\n")
	b.WriteString("[YOUR PHONE NUMBER]\n")
	b.WriteString("[YOUR EMAIL]\n\n")
	fmt.Fprintf(&b, "Date: %s\n\n", p.Now.Format("January 2, 2006"))
	b.WriteString("Internal Revenue Service\n")
	b.WriteString("[IRS ADDRESS FROM NOTICE]\n\n")
	fmt.Fprintf(&b, "RE: Response to %s\n", p.Classification.NoticeType)
	b.WriteString("    Notice Date: [DATE FROM NOTICE]\n")
	b.WriteString("    Tax Year: [TAX YEAR]\n")
	b.WriteString("    Taxpayer ID: [YOUR SSN OR EIN - LAST 4 DIGITS ONLY]\n\n")
	b.WriteString("Dear Sir or Madam:\n\n")

	b.WriteString(p.GeneratedContent + "\n\n")

	if len(p.EvidenceMap.ToAttach) > 0 {
		b.WriteString("SUPPORTING DOCUMENTATION:\n\n")
		b.WriteString("The following documents are enclosed to support this response:\n\n")
		for i, item := range p.EvidenceMap.ToAttach {
			fmt.Fprintf(&b, "%d. %s - %s\n", i+1, item.Document.Name, item.Supports)
		}
		b.WriteString("\n")
	}

	b.WriteString("I request that you review this information and adjust your records accordingly. ")
	b.WriteString("Please confirm receipt of this correspondence and advise of any additional information required.\n\n")
	b.WriteString("Thank you for your attention to this matter.\n\n")
	b.WriteString("Sincerely,\n\n")
	b.WriteString("[YOUR SIGNATURE]\n")
	b.WriteString("[YOUR PRINTED NAME]\n")
	b.WriteString("[YOUR SSN OR EIN - LAST 4 DIGITS ONLY]\n\n")

	if len(p.EvidenceMap.ToAttach) > 0 {
		fmt.Fprintf(&b, "Enclosures: %d\n", len(p.EvidenceMap.ToAttach))
	}

	return b.String()
}

// ---------------------------------------------------------------------------
// Disclaimer
// ---------------------------------------------------------------------------

var highRiskNoticeTypes = map[classify.NoticeType]bool{
	classify.NoticeCP504:       true,
	classify.NoticeCP75:        true,
	classify.NoticeAuditLetter: true,
	classify.NoticeLetter1058:  true,
}

// FormatDisclaimer renders the disclaimer block, adding extra warnings when
// the response carries elevated risk or the notice type itself is high risk.
func FormatDisclaimer(c classify.NoticeClassification, analysis *risk.Analysis) string {
	var b strings.Builder

	b.WriteString("\n\n" + heavyRule)
	b.WriteString("IMPORTANT DISCLAIMER\n")
	b.WriteString(heavyRule)
	b.WriteString("\n")

	b.WriteString("This analysis is provided for informational purposes only and does not constitute legal or tax advice. ")
	b.WriteString("While this tool uses IRS-specific procedural knowledge to provide guidance, it cannot replace professional representation.\n\n")

	if analysis != nil && (analysis.OverallRisk == risk.LevelHigh || analysis.OverallRisk == risk.LevelCritical) {
		b.WriteString("IMPORTANT: This matter involves significant risk factors. Professional consultation is strongly recommended before taking any action.\n\n")
	}

	if highRiskNoticeTypes[c.NoticeType] {
		b.WriteString("CRITICAL: This notice type carries serious consequences. Professional representation is strongly recommended.\n\n")
	}

	b.WriteString("You should verify all information with the IRS and consult with a qualified tax professional before responding to any IRS notice.\n\n")
	b.WriteString(heavyRule)

	return b.String()
}

// formatAmount renders a dollar value with thousands separators, keeping
// fractional cents only when present.
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var grouped strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}

	out := grouped.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
