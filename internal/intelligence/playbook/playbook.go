// Package playbook holds the static, per-notice-type procedural rule sets
// that constrain response generation: allowed stances, required letter
// elements, prohibited phrasing, tone, evidence categories, and the
// professional-help threshold.  The registry is defined at process start and
// read-only thereafter, so it is safe for unlimited concurrent readers.
package playbook

import (
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/classify"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Stance is a user position token accepted for a given notice type.
type Stance string

// StructureSection is one ordered entry of the prescribed letter structure.
type StructureSection struct {
	Section     string `json:"section"`
	Requirement string `json:"requirement"`
}

// HelpThreshold describes when professional representation is warranted.
// Amount is nil when no dollar threshold applies.
type HelpThreshold struct {
	Amount     *float64 `json:"amount"`
	Complexity string   `json:"complexity"`
	Risk       string   `json:"risk"`
}

// Playbook is the immutable rule set for one notice type.
type Playbook struct {
	NoticeType           classify.NoticeType `json:"noticeType"`
	FullName             string              `json:"fullName"`
	AllowedUserPositions []Stance            `json:"allowedUserPositions"`
	RequiredElements     []string            `json:"requiredElements"`
	ProhibitedLanguage   []string            `json:"prohibitedLanguage"`
	RequiredTone         string              `json:"requiredTone"`
	EvidenceTypes        []string            `json:"evidenceTypes"`
	ResponseStructure    []StructureSection  `json:"responseStructure"`
	CriticalWarnings     []string            `json:"criticalWarnings"`
	EscalationPath       string              `json:"escalationPath"`
	HelpThreshold        HelpThreshold       `json:"professionalHelpThreshold"`
}

func amount(v float64) *float64 { return &v }

// ---------------------------------------------------------------------------
// Registry data
// ---------------------------------------------------------------------------

var playbooks = map[classify.NoticeType]Playbook{
	classify.NoticeCP2000: {
		NoticeType: classify.NoticeCP2000,
		FullName:   "Underreported Income Notice",
		AllowedUserPositions: []Stance{
			"agree",
			"partial_dispute",
			"full_dispute",
		},
		RequiredElements: []string{
			"Notice number and date reference",
			"Taxpayer identification (SSN/EIN)",
			"Tax year in question",
			"Specific line-by-line response to each discrepancy",
			"Supporting documentation list",
			"Signature and date",
		},
		ProhibitedLanguage: []string{
			"I didn't know",
			"I forgot",
			"I wasn't aware",
			"Nobody told me",
			"I didn't think it mattered",
			"It was only a small amount",
		},
		RequiredTone: "neutral-factual",
		EvidenceTypes: []string{
			"Form 1099 corrections or explanations",
			"Form W-2 copies",
			"Schedule C supporting documentation",
			"Bank statements (only specific transactions)",
			"Receipts for deductions",
			"Prior year returns (if relevant)",
			"Correspondence with payers",
		},
		ResponseStructure: []StructureSection{
			{"opening", "Acknowledge receipt of CP2000 and reference notice details"},
			{"body", "Address each proposed change individually with specific facts"},
			{"documentation", "List attached evidence and what each document proves"},
			{"closing", "Request specific action (accept agreement, adjust proposal, or dismiss)"},
			{"signature", "Taxpayer signature and date required"},
		},
		CriticalWarnings: []string{
			"Do NOT agree to amounts you don't owe",
			"Do NOT provide information about unreported income from other years",
			"Do NOT attach full bank statements - only relevant pages",
			"Do NOT miss the 30-day deadline - it becomes final",
			"Do NOT ignore - silence equals agreement",
		},
		EscalationPath: "If not responded to within 30 days, becomes Statutory Notice of Deficiency (90-day letter)",
		HelpThreshold: HelpThreshold{
			Amount:     amount(10000),
			Complexity: "Multiple income sources with complex documentation",
			Risk:       "Potential fraud indicators or pattern of non-filing",
		},
	},

	classify.NoticeCP14: {
		NoticeType: classify.NoticeCP14,
		FullName:   "First Balance Due Notice",
		AllowedUserPositions: []Stance{
			"pay_in_full",
			"request_payment_plan",
			"dispute_amount",
			"request_penalty_abatement",
		},
		RequiredElements: []string{
			"Notice number and date",
			"Tax year and form number",
			"Acknowledgment of balance or dispute",
			"Payment arrangement proposal or dispute basis",
			"Contact information",
		},
		ProhibitedLanguage: []string{
			"I can't pay",
			"I refuse to pay",
			"This is unfair",
			"I'll pay when I can",
		},
		RequiredTone: "cooperative-professional",
		EvidenceTypes: []string{
			"Payment records (if claiming payment made)",
			"Financial hardship documentation (for payment plan)",
			"Reasonable cause explanation (for penalty abatement)",
			"Prior year returns (if disputing calculation)",
		},
		ResponseStructure: []StructureSection{
			{"opening", "Acknowledge notice and balance"},
			{"body", "State position (agree/dispute) and proposed resolution"},
			{"documentation", "Provide supporting evidence for position"},
			{"closing", "Request specific action or arrangement"},
			{"signature", "Required for payment plan requests"},
		},
		CriticalWarnings: []string{
			"Interest accrues daily - act quickly",
			"Penalties increase over time",
			"Ignoring leads to CP501, then CP503, then CP504 (levy)",
			"Payment plans available but must be requested",
			"Penalty abatement possible for first-time offenders",
		},
		EscalationPath: "CP14 -> CP501 (30 days) -> CP503 (30 days) -> CP504 (Intent to Levy)",
		HelpThreshold: HelpThreshold{
			Amount:     amount(25000),
			Complexity: "Multiple tax years or complex penalty disputes",
			Risk:       "Prior levy action or existing liens",
		},
	},

	classify.NoticeCP501: {
		NoticeType: classify.NoticeCP501,
		FullName:   "First Reminder - Balance Due",
		AllowedUserPositions: []Stance{
			"pay_immediately",
			"request_payment_plan",
			"dispute_amount",
			"request_hardship_status",
		},
		RequiredElements: []string{
			"Immediate acknowledgment of urgency",
			"Specific payment proposal or dispute",
			"Timeline for resolution",
			"Contact information for follow-up",
		},
		ProhibitedLanguage: []string{
			"I need more time",
			"I'm working on it",
			"I'll get to it soon",
		},
		RequiredTone: "urgent-cooperative",
		EvidenceTypes: []string{
			"Financial statements (for hardship or payment plan)",
			"Payment proof (if claiming payment made)",
			"Dispute documentation (if challenging amount)",
		},
		ResponseStructure: []StructureSection{
			{"opening", "Immediate acknowledgment and urgency recognition"},
			{"body", "Concrete action plan with specific dates"},
			{"documentation", "Supporting evidence for proposed resolution"},
			{"closing", "Request confirmation of arrangement"},
			{"signature", "Required"},
		},
		CriticalWarnings: []string{
			"This is the FIRST REMINDER - escalation is imminent",
			"CP503 (second reminder) follows in 30 days",
			"Levy action possible within 60-90 days",
			"Payment plan must be formalized, not just promised",
			"Federal tax lien may be filed",
		},
		EscalationPath: "CP501 -> CP503 (30 days) -> CP504 (Intent to Levy) -> Actual Levy",
		HelpThreshold: HelpThreshold{
			Amount:     amount(15000),
			Complexity: "Multiple years or disputed calculations",
			Risk:       "Prior collection action or lien",
		},
	},

	classify.NoticeCP503: {
		NoticeType: classify.NoticeCP503,
		FullName:   "Second Reminder - Urgent Action Required",
		AllowedUserPositions: []Stance{
			"pay_immediately",
			"request_emergency_payment_plan",
			"request_collection_due_process_hearing",
		},
		RequiredElements: []string{
			"Immediate response acknowledging critical status",
			"Specific payment or resolution within 10 days",
			"Evidence of good faith effort",
			"Request for hold on collection action",
		},
		ProhibitedLanguage: []string{
			"I need more time",
			"I'm trying",
			"This is too much pressure",
		},
		RequiredTone: "urgent-factual",
		EvidenceTypes: []string{
			"Immediate payment proof",
			"Financial hardship documentation",
			"Offer in Compromise application (if applicable)",
			"Currently Not Collectible status request",
		},
		ResponseStructure: []StructureSection{
			{"opening", "Immediate acknowledgment of critical status"},
			{"body", "Concrete action taken or emergency request"},
			{"documentation", "Proof of action or hardship"},
			{"closing", "Request hold on levy action pending resolution"},
			{"signature", "Required with date"},
		},
		CriticalWarnings: []string{
			"CRITICAL: This is the SECOND REMINDER",
			"CP504 (Intent to Levy) is next - typically within 21 days",
			"Bank levy or wage garnishment is imminent",
			"Federal tax lien likely if not already filed",
			"Professional representation strongly recommended",
		},
		EscalationPath: "CP503 -> CP504 (21 days) -> Levy Action (30 days after CP504)",
		HelpThreshold: HelpThreshold{
			Amount:     amount(5000),
			Complexity: "Any amount at this stage",
			Risk:       "Levy action imminent - professional help critical",
		},
	},

	classify.NoticeCP504: {
		NoticeType: classify.NoticeCP504,
		FullName:   "Intent to Levy - Final Notice",
		AllowedUserPositions: []Stance{
			"request_collection_due_process_hearing",
			"pay_immediately",
			"request_currently_not_collectible_status",
			"submit_offer_in_compromise",
		},
		RequiredElements: []string{
			"Form 12153 (Request for Collection Due Process Hearing)",
			"Immediate payment or formal arrangement",
			"Evidence of inability to pay (if applicable)",
			"Request for stay of levy action",
		},
		ProhibitedLanguage: []string{
			"I'll pay soon",
			"Please give me more time",
			"I'm working on it",
		},
		RequiredTone: "formal-urgent",
		EvidenceTypes: []string{
			"Form 12153 (CDP hearing request)",
			"Form 433-A or 433-F (Collection Information Statement)",
			"Form 656 (Offer in Compromise)",
			"Financial hardship documentation",
			"Evidence of payment or payment plan",
		},
		ResponseStructure: []StructureSection{
			{"opening", "Immediate filing of Form 12153 or payment"},
			{"body", "Formal request for specific relief with legal basis"},
			{"documentation", "Complete financial disclosure or payment proof"},
			{"closing", "Request stay of levy pending hearing or arrangement"},
			{"signature", "Required with notarization for some forms"},
		},
		CriticalWarnings: []string{
			"FINAL NOTICE: Levy action authorized after 30 days",
			"File Form 12153 within 30 days to preserve appeal rights",
			"Bank accounts can be levied without further notice",
			"Wages can be garnished (up to 70% of take-home pay)",
			"Assets can be seized",
			"Professional representation is CRITICAL at this stage",
		},
		EscalationPath: "CP504 -> Levy Action (30 days) -> Bank Levy/Wage Garnishment/Asset Seizure",
		HelpThreshold: HelpThreshold{
			Amount:     amount(0),
			Complexity: "Professional help MANDATORY at this stage",
			Risk:       "Immediate levy action - do not attempt to handle alone",
		},
	},

	classify.NoticeCP75: {
		NoticeType: classify.NoticeCP75,
		FullName:   "Audit / Examination Notice",
		AllowedUserPositions: []Stance{
			"cooperate_fully",
			"request_extension",
			"request_representation",
		},
		RequiredElements: []string{
			"Acknowledgment of examination",
			"Request for specific appointment or extension",
			"List of available documentation",
			"Power of Attorney (Form 2848) if using representative",
		},
		ProhibitedLanguage: []string{
			"I don't have those records",
			"I threw that away",
			"I can't remember",
			"That was a long time ago",
			"I didn't think I needed to keep that",
		},
		RequiredTone: "cooperative-professional",
		EvidenceTypes: []string{
			"All requested documentation in notice",
			"Organized records by category",
			"Receipts and supporting documents",
			"Bank statements (only if specifically requested)",
			"Business records (if applicable)",
			"Form 2848 (Power of Attorney) if using representative",
		},
		ResponseStructure: []StructureSection{
			{"opening", "Acknowledge examination and express cooperation"},
			{"body", "Confirm appointment or request reasonable extension"},
			{"documentation", "List available records and any missing items"},
			{"closing", "Confirm next steps and contact information"},
			{"signature", "Required"},
		},
		CriticalWarnings: []string{
			"DO NOT volunteer information not requested",
			"DO NOT provide records for years not under examination",
			"DO NOT make statements about intent or knowledge",
			"DO NOT meet with auditor alone - consider representation",
			"DO NOT ignore - can result in summons or proposed assessment",
			"Audit can expand to other years if issues found",
		},
		EscalationPath: "Examination -> Proposed Assessment -> Statutory Notice of Deficiency -> Tax Court",
		HelpThreshold: HelpThreshold{
			Amount:     amount(5000),
			Complexity: "Professional representation strongly recommended for all audits",
			Risk:       "High risk of unfavorable outcome without professional help",
		},
	},

	classify.NoticeAuditLetter: {
		NoticeType: classify.NoticeAuditLetter,
		FullName:   "Formal Audit Examination Letter",
		AllowedUserPositions: []Stance{
			"cooperate_with_representation",
			"request_extension",
			"request_records_review_time",
		},
		RequiredElements: []string{
			"Form 2848 (Power of Attorney) - HIGHLY RECOMMENDED",
			"Acknowledgment of examination",
			"Request for reasonable time to gather records",
			"Organized document production plan",
		},
		ProhibitedLanguage: []string{
			"I don't have that",
			"I lost those records",
			"I can't find that",
			"That's not important",
			"I didn't know I needed that",
		},
		RequiredTone: "formal-cooperative",
		EvidenceTypes: []string{
			"Complete tax return workpapers",
			"Source documents for all items",
			"Organized by tax return line item",
			"Index of documents provided",
			"Form 2848 if using representative",
		},
		ResponseStructure: []StructureSection{
			{"opening", "Formal acknowledgment through representative (preferred)"},
			{"body", "Request reasonable time and clarification of scope"},
			{"documentation", "Organized production of requested records only"},
			{"closing", "Confirm process and communication protocol"},
			{"signature", "Taxpayer and representative (if applicable)"},
		},
		CriticalWarnings: []string{
			"CRITICAL: Hire professional representation immediately",
			"DO NOT meet with IRS alone",
			"DO NOT answer questions without representative present",
			"DO NOT provide more than requested",
			"Summons can be issued for non-cooperation",
			"Fraud referral possible if serious issues found",
		},
		EscalationPath: "Examination -> Proposed Assessment -> Appeals -> Tax Court -> Collection",
		HelpThreshold: HelpThreshold{
			Amount:     amount(0),
			Complexity: "Professional representation MANDATORY",
			Risk:       "Do not attempt to handle formal audit without professional help",
		},
	},

	classify.NoticeIdentityVerification: {
		NoticeType: classify.NoticeIdentityVerification,
		FullName:   "Identity Verification Required",
		AllowedUserPositions: []Stance{
			"verify_online",
			"verify_by_phone",
			"verify_in_person",
		},
		RequiredElements: []string{
			"Immediate response acknowledging notice",
			"Completion of verification process",
			"Required identification documents",
			"Confirmation of verification method",
		},
		ProhibitedLanguage: []string{
			"This isn't urgent",
			"I'll do it later",
			"I don't have time for this",
		},
		RequiredTone: "cooperative-immediate",
		EvidenceTypes: []string{
			"Government-issued photo ID",
			"Social Security card",
			"Prior year tax return",
			"Financial documents from return",
			"Proof of address",
		},
		ResponseStructure: []StructureSection{
			{"opening", "Immediate acknowledgment and action"},
			{"body", "Completion of verification process"},
			{"documentation", "Provide requested identification"},
			{"closing", "Confirm verification completed"},
			{"signature", "As required by verification process"},
		},
		CriticalWarnings: []string{
			"Refund will NOT be released until verified",
			"Deadline is strict - typically 30 days",
			"Failure to verify marks return as fraudulent",
			"Future returns will be delayed",
			"May require in-person verification if online fails",
			"Identity theft indicator - monitor credit",
		},
		EscalationPath: "Verification Request -> Return Marked Fraudulent -> Refund Denied -> Future Returns Flagged",
		HelpThreshold: HelpThreshold{
			Amount:     nil,
			Complexity: "Can usually handle without professional help",
			Risk:       "Professional help if identity theft suspected",
		},
	},

	classify.NoticeUnknown: {
		NoticeType: classify.NoticeUnknown,
		FullName:   "Unrecognized Notice Type",
		AllowedUserPositions: []Stance{
			"request_clarification",
			"acknowledge_and_respond_generally",
		},
		RequiredElements: []string{
			"Reference to notice number and date",
			"Request for clarification of required action",
			"Statement of willingness to cooperate",
			"Request for additional time if needed",
		},
		ProhibitedLanguage: []string{
			"I don't understand this",
			"This doesn't make sense",
			"What do you want from me",
		},
		RequiredTone: "professional-inquisitive",
		EvidenceTypes: []string{
			"Copy of notice received",
			"Any relevant tax documents",
		},
		ResponseStructure: []StructureSection{
			{"opening", "Acknowledge receipt of notice"},
			{"body", "Request clarification of required action and deadline"},
			{"documentation", "Provide any obviously relevant documents"},
			{"closing", "Request confirmation of next steps"},
			{"signature", "Required"},
		},
		CriticalWarnings: []string{
			"Assume response required within 30 days",
			"Professional consultation recommended",
			"Do not ignore - respond even if unclear",
			"Request clarification from IRS if needed",
		},
		EscalationPath: "Unknown - assume standard collection or assessment process",
		HelpThreshold: HelpThreshold{
			Amount:     amount(0),
			Complexity: "Professional help recommended for unknown notice types",
			Risk:       "Moderate to high - unknown risks",
		},
	},
}
