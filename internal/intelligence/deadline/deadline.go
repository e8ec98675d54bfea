// Package deadline turns a classified notice and its extracted dates into
// actionable timeline intelligence: an urgency grade, a recommended action
// window, the predicted escalation ladder for the notice type, and
// what-happens-if scenarios.
package deadline

import (
	"fmt"
	"time"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/classify"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// UrgencyLevel bands the effective days remaining.
type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "CRITICAL"
	UrgencyUrgent   UrgencyLevel = "URGENT"
	UrgencyHigh     UrgencyLevel = "HIGH"
	UrgencyModerate UrgencyLevel = "MODERATE"
	UrgencyNormal   UrgencyLevel = "NORMAL"
)

// Assessment is the deadline portion of the intelligence bundle.
type Assessment struct {
	DeadlineDate             *time.Time   `json:"deadlineDate"`
	DaysRemaining            int          `json:"daysRemaining"`
	UrgencyLevel             UrgencyLevel `json:"urgencyLevel"`
	UrgencyMessage           string       `json:"urgencyMessage"`
	RecommendedActionDays    int          `json:"recommendedActionDate"`
	RecommendedActionMessage string       `json:"recommendedActionMessage"`
	IsOverdue                bool         `json:"isOverdue"`
	OverdueMessage           string       `json:"overdueMessage,omitempty"`
}

// EscalationStage is one rung of a notice type's enforcement ladder.
type EscalationStage struct {
	Stage       string `json:"stage"`
	Days        int    `json:"days"`
	Action      string `json:"action"`
	Consequence string `json:"consequence"`
}

// Escalation describes the predicted enforcement sequence.
type Escalation struct {
	CurrentStage       EscalationStage   `json:"currentStage"`
	EscalationSequence []EscalationStage `json:"escalationSequence"`
	NextEscalation     EscalationStage   `json:"nextEscalation"`
	FinalConsequence   EscalationStage   `json:"finalConsequence"`
	EscalationRisks    []string          `json:"escalationRisks"`
	TimelineWarning    string            `json:"timelineWarning"`
}

// Scenario families returned by the what-if generator.
type (
	NoActionScenario struct {
		Title        string            `json:"title"`
		Timeline     []EscalationStage `json:"timeline"`
		Summary      string            `json:"summary"`
		Consequences []string          `json:"consequences"`
	}
	PartialResponseScenario struct {
		Title string   `json:"title"`
		Risks []string `json:"risks"`
	}
	CorrectResponseScenario struct {
		Title    string   `json:"title"`
		Benefits []string `json:"benefits"`
	}
)

// Scenarios bundles the three what-if narratives.
type Scenarios struct {
	IfNoAction        NoActionScenario        `json:"ifNoAction"`
	IfPartialResponse PartialResponseScenario `json:"ifPartialResponse"`
	IfCorrectResponse CorrectResponseScenario `json:"ifCorrectResponse"`
}

// Intelligence is the full deadline/escalation analysis for one notice.
type Intelligence struct {
	Deadline        Assessment `json:"deadline"`
	Escalation      Escalation `json:"escalation"`
	Scenarios       Scenarios  `json:"scenarios"`
	CriticalWarning string     `json:"criticalWarning,omitempty"`
}

// ---------------------------------------------------------------------------
// Assessment
// ---------------------------------------------------------------------------

// Assess computes urgency from the effective days remaining: the extracted
// explicit deadline when present, otherwise the notice's "within N days"
// window, otherwise the typical deadline for the notice type.
func Assess(classification classify.NoticeClassification, info classify.DeadlineInfo) Assessment {
	effectiveDays := classification.TypicalDeadlineDays
	switch {
	case info.DaysRemaining != nil:
		effectiveDays = *info.DaysRemaining
	case info.DaysFromNoticeDate != nil && *info.DaysFromNoticeDate != 0:
		effectiveDays = *info.DaysFromNoticeDate
	}

	var level UrgencyLevel
	var message string
	switch {
	case effectiveDays <= 3:
		level = UrgencyCritical
		message = "IMMEDIATE ACTION REQUIRED - Deadline is within 3 days"
	case effectiveDays <= 7:
		level = UrgencyUrgent
		message = "URGENT - Less than one week to respond"
	case effectiveDays <= 14:
		level = UrgencyHigh
		message = "HIGH PRIORITY - Less than two weeks to respond"
	case effectiveDays <= 21:
		level = UrgencyModerate
		message = "MODERATE PRIORITY - Three weeks to respond"
	default:
		level = UrgencyNormal
		message = "NORMAL PRIORITY - Adequate time to respond"
	}

	actionDays := effectiveDays - 5
	if actionDays < 1 {
		actionDays = 1
	}

	out := Assessment{
		DeadlineDate:             info.DeadlineDate,
		DaysRemaining:            effectiveDays,
		UrgencyLevel:             level,
		UrgencyMessage:           message,
		RecommendedActionDays:    actionDays,
		RecommendedActionMessage: fmt.Sprintf("Recommended to respond within %d days to allow for processing time", actionDays),
		IsOverdue:                effectiveDays < 0,
	}
	if out.IsOverdue {
		out.OverdueMessage = fmt.Sprintf("This deadline has passed by %d days. Immediate action required.", -effectiveDays)
	}
	return out
}

// ---------------------------------------------------------------------------
// Escalation ladders
// ---------------------------------------------------------------------------

var escalationSequences = map[classify.NoticeType][]EscalationStage{
	classify.NoticeCP2000: {
		{"Current", 0, "CP2000 Proposed Assessment", "Opportunity to agree, disagree, or partially agree with proposed changes"},
		{"If No Response", 30, "Proposed changes become assessment", "Amount becomes legally owed, penalties and interest continue to accrue"},
		{"60 Days", 60, "Statutory Notice of Deficiency (90-day letter)", "Final opportunity to petition Tax Court, otherwise assessment becomes final"},
		{"150 Days", 150, "Assessment becomes final", "Collection action begins, limited appeal rights remain"},
		{"180+ Days", 180, "Collection notices begin (CP14)", "Balance due notices, potential levy action"},
	},
	classify.NoticeCP14: {
		{"Current", 0, "CP14 - First Balance Due Notice", "Opportunity to pay, set up payment plan, or dispute"},
		{"If No Response", 30, "CP501 - First Reminder", "Penalties and interest continue to accrue"},
		{"60 Days", 60, "CP503 - Second Reminder", "Increased urgency, potential lien filing"},
		{"90 Days", 90, "CP504 - Intent to Levy", "Final notice before levy action, 30 days to respond"},
		{"120+ Days", 120, "Levy Action", "Bank levy, wage garnishment, or asset seizure"},
	},
	classify.NoticeCP501: {
		{"Current", 0, "CP501 - First Reminder", "Escalation from CP14, increased urgency"},
		{"If No Response", 30, "CP503 - Second Reminder", "Potential lien filing, levy action imminent"},
		{"60 Days", 60, "CP504 - Intent to Levy", "Final notice, 30 days before levy"},
		{"90+ Days", 90, "Levy Action", "Bank levy, wage garnishment, asset seizure"},
	},
	classify.NoticeCP503: {
		{"Current", 0, "CP503 - Second Reminder", "Critical stage, levy action imminent"},
		{"If No Response", 21, "CP504 - Intent to Levy", "Final notice before levy, 30 days to respond"},
		{"51+ Days", 51, "Levy Action", "Bank levy, wage garnishment, or asset seizure without further notice"},
	},
	classify.NoticeCP504: {
		{"Current", 0, "CP504 - Intent to Levy (Final Notice)", "Last opportunity to prevent levy, file Form 12153 for hearing"},
		{"If No Response", 30, "Levy Action Authorized", "IRS can levy bank accounts, garnish wages, seize assets"},
		{"30+ Days", 30, "Active Collection Enforcement", "Bank levies, wage garnishments, asset seizures, liens"},
	},
	classify.NoticeCP75: {
		{"Current", 0, "Audit Notice Received", "Opportunity to prepare and respond with documentation"},
		{"If No Response", 30, "Proposed Assessment", "IRS proposes changes based on available information"},
		{"60 Days", 60, "Statutory Notice of Deficiency", "90 days to petition Tax Court"},
		{"150+ Days", 150, "Assessment Becomes Final", "Collection action begins, limited appeal rights"},
	},
	classify.NoticeAuditLetter: {
		{"Current", 0, "Formal Audit Examination", "Must respond and provide requested documentation"},
		{"If No Cooperation", 30, "Summons Issued", "Legal requirement to appear and provide records"},
		{"60 Days", 60, "Proposed Assessment", "IRS proposes changes, potential penalties"},
		{"90+ Days", 90, "Statutory Notice of Deficiency", "Final opportunity to petition Tax Court"},
	},
	classify.NoticeIdentityVerification: {
		{"Current", 0, "Identity Verification Required", "Refund on hold until identity verified"},
		{"If No Response", 30, "Return Marked as Fraudulent", "Refund denied, future returns flagged"},
		{"60+ Days", 60, "Permanent Fraud Flag", "All future returns require manual verification"},
	},
}

var genericSequence = []EscalationStage{
	{"Current", 0, "Notice Received", "Response required within typical deadline"},
	{"If No Response", 30, "Escalation Likely", "Additional notices or collection action"},
	{"60+ Days", 60, "Enforcement Action", "Penalties, liens, or levy action possible"},
}

// BuildEscalation resolves the escalation ladder for the notice type and the
// timeline warning for the time actually remaining.
func BuildEscalation(classification classify.NoticeClassification, assessment Assessment) Escalation {
	sequence, ok := escalationSequences[classification.NoticeType]
	if !ok {
		sequence = genericSequence
	}
	return Escalation{
		CurrentStage:       sequence[0],
		EscalationSequence: sequence,
		NextEscalation:     sequence[1],
		FinalConsequence:   sequence[len(sequence)-1],
		EscalationRisks:    classification.EscalationRisk,
		TimelineWarning:    timelineWarning(assessment.DaysRemaining),
	}
}

func timelineWarning(daysRemaining int) string {
	switch {
	case daysRemaining <= 3:
		return fmt.Sprintf("CRITICAL: You have %d days remaining. Immediate action required today.", daysRemaining)
	case daysRemaining <= 7:
		return "URGENT: You have less than one week to respond. Do not delay."
	case daysRemaining <= 14:
		return fmt.Sprintf("HIGH PRIORITY: You have %d days to respond. Begin preparation immediately.", daysRemaining)
	case daysRemaining <= 21:
		return fmt.Sprintf("MODERATE PRIORITY: You have %d days to respond. Start gathering documentation.", daysRemaining)
	default:
		return fmt.Sprintf("You have %d days to respond. Plan your response carefully.", daysRemaining)
	}
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

// BuildScenarios produces the three what-if narratives for the notice.
func BuildScenarios(classification classify.NoticeClassification, escalation Escalation) Scenarios {
	consequences := make([]string, len(escalation.EscalationSequence))
	for i, stage := range escalation.EscalationSequence {
		consequences[i] = fmt.Sprintf("%s (%d days): %s - %s", stage.Stage, stage.Days, stage.Action, stage.Consequence)
	}

	return Scenarios{
		IfNoAction: NoActionScenario{
			Title:        "If You Take No Action",
			Timeline:     escalation.EscalationSequence,
			Summary:      fmt.Sprintf("If you do not respond to this %s notice, here is the likely sequence of events:", classification.NoticeType),
			Consequences: consequences,
		},
		IfPartialResponse: PartialResponseScenario{
			Title: "If You Respond Incorrectly or Incompletely",
			Risks: []string{
				"IRS may reject incomplete responses and proceed with proposed action",
				"Missing deadlines due to back-and-forth communication",
				"Weakened position for appeals or disputes",
				"Additional penalties for inadequate response",
				"Loss of credibility with IRS examiner",
			},
		},
		IfCorrectResponse: CorrectResponseScenario{
			Title: "If You Respond Correctly and Timely",
			Benefits: []string{
				"Opportunity to resolve issue without escalation",
				"Potential reduction or elimination of proposed changes",
				"Preservation of appeal rights",
				"Avoidance of additional penalties and interest",
				"Positive resolution within 30-90 days (typically)",
			},
		},
	}
}

// Build assembles the full deadline intelligence bundle for a classified
// notice.  CriticalWarning is populated only at CRITICAL or URGENT urgency.
func Build(classification classify.NoticeClassification, info classify.DeadlineInfo) Intelligence {
	assessment := Assess(classification, info)
	escalation := BuildEscalation(classification, assessment)
	scenarios := BuildScenarios(classification, escalation)

	out := Intelligence{
		Deadline:   assessment,
		Escalation: escalation,
		Scenarios:  scenarios,
	}
	if assessment.UrgencyLevel == UrgencyCritical || assessment.UrgencyLevel == UrgencyUrgent {
		out.CriticalWarning = fmt.Sprintf("WARNING: %s - %s", assessment.UrgencyMessage, escalation.TimelineWarning)
	}
	return out
}
