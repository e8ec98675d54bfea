// Package classify implements the deterministic front of the notice pipeline:
// notice-type classification, deadline extraction, and financial extraction.
// Everything in this package is pure pattern matching over the notice text;
// no model inference is involved, which keeps classification reproducible and
// auditable.
package classify

import "time"

// ---------------------------------------------------------------------------
// Notice type and category
// ---------------------------------------------------------------------------

// NoticeType is the IRS correspondence code identifying the letter's purpose
// and procedural track.
type NoticeType string

const (
	NoticeCP2000                 NoticeType = "CP2000"
	NoticeCP14                   NoticeType = "CP14"
	NoticeCP501                  NoticeType = "CP501"
	NoticeCP503                  NoticeType = "CP503"
	NoticeCP504                  NoticeType = "CP504"
	NoticeCP75                   NoticeType = "CP75"
	NoticeAuditLetter            NoticeType = "AUDIT_LETTER"
	NoticeIdentityVerification   NoticeType = "IDENTITY_VERIFICATION"
	NoticeCP2501                 NoticeType = "CP2501"
	NoticeCP11CP12               NoticeType = "CP11_CP12"
	NoticeRefundOffset           NoticeType = "REFUND_OFFSET"
	NoticeInstallmentTermination NoticeType = "INSTALLMENT_TERMINATION"
	NoticeLetter1058             NoticeType = "LETTER_1058"
	NoticeCP90CP297              NoticeType = "CP90_CP297"
	NoticeUnknown                NoticeType = "UNKNOWN"
)

func (n NoticeType) String() string { return string(n) }

// Category is the coarser grouping a notice type belongs to.
type Category string

const (
	CategoryProposedAssessment   Category = "PROPOSED_ASSESSMENT"
	CategoryBalanceDue           Category = "BALANCE_DUE"
	CategoryLevyIntent           Category = "LEVY_INTENT"
	CategoryAudit                Category = "AUDIT"
	CategoryIdentityVerification Category = "IDENTITY_VERIFICATION"
	CategoryInformational        Category = "INFORMATIONAL"
	CategoryReturnAdjustment     Category = "RETURN_ADJUSTMENT"
	CategoryRefundOffset         Category = "REFUND_OFFSET"
	CategoryPaymentPlan          Category = "PAYMENT_PLAN"
	CategoryUnknown              Category = "UNKNOWN"
)

// Confidence expresses how certain the classifier is about its match.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// DetectionMethod records which path produced the classification.
type DetectionMethod string

const (
	DetectionPatternMatch     DetectionMethod = "pattern_match"
	DetectionNumberExtraction DetectionMethod = "notice_number_extraction"
	DetectionFallback         DetectionMethod = "fallback"
)

// UrgencyHint is the classifier's coarse urgency assessment of a notice type
// (distinct from the deadline-derived urgency bands).
type UrgencyHint string

const (
	UrgencyHintHigh   UrgencyHint = "high"
	UrgencyHintMedium UrgencyHint = "medium"
	UrgencyHintLow    UrgencyHint = "low"
)

// NoticeClassification is the complete classifier output.  Exactly one
// classification is produced per call; classification never fails.
type NoticeClassification struct {
	NoticeType          NoticeType      `json:"noticeType"`
	UrgencyLevel        UrgencyHint     `json:"urgencyLevel"`
	ResponseRequired    bool            `json:"responseRequired"`
	TypicalDeadlineDays int             `json:"typicalDeadlineDays"`
	EscalationRisk      []string        `json:"escalationRisk"`
	Category            Category        `json:"category"`
	Description         string          `json:"description"`
	Confidence          Confidence      `json:"confidence"`
	DetectionMethod     DetectionMethod `json:"detectionMethod"`
}

// ---------------------------------------------------------------------------
// Deadline extraction result
// ---------------------------------------------------------------------------

// UrgencyStatus is the threshold-derived urgency of an extracted deadline.
type UrgencyStatus string

const (
	StatusCritical UrgencyStatus = "CRITICAL"
	StatusUrgent   UrgencyStatus = "URGENT"
	StatusNormal   UrgencyStatus = "NORMAL"
	StatusUnknown  UrgencyStatus = "UNKNOWN"
)

// DeadlineInfo is the raw deadline extraction result.  DaysRemaining may be
// negative when the deadline has already passed.
type DeadlineInfo struct {
	DeadlineDate       *time.Time    `json:"deadlineDate,omitempty"`
	DaysRemaining      *int          `json:"daysRemaining,omitempty"`
	DaysFromNoticeDate *int          `json:"daysFromNoticeDate,omitempty"`
	UrgencyStatus      UrgencyStatus `json:"urgencyStatus"`
}

// ---------------------------------------------------------------------------
// Financial extraction result
// ---------------------------------------------------------------------------

// FinancialImpact bands the extracted balance due.
type FinancialImpact string

const (
	ImpactHigh   FinancialImpact = "HIGH"
	ImpactMedium FinancialImpact = "MEDIUM"
	ImpactLow    FinancialImpact = "LOW"
)

// FinancialInfo holds every dollar amount parsed from the notice plus
// best-effort captures for the specific amount categories.  FinancialImpact
// is empty when no balance-due pattern matched.
type FinancialInfo struct {
	AllAmounts           []float64       `json:"allAmounts"`
	LargestAmount        *float64        `json:"largestAmount,omitempty"`
	BalanceDue           *float64        `json:"balanceDue,omitempty"`
	ProposedChange       *float64        `json:"proposedChange,omitempty"`
	PenaltiesAndInterest *float64        `json:"penaltiesAndInterest,omitempty"`
	FinancialImpact      FinancialImpact `json:"financialImpact,omitempty"`
}
