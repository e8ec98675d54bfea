// Package risk is the safety layer applied to both user input and generated
// letter drafts.  It detects admissions of fault, over-disclosure, legal
// misstatements, aggressive tone and volunteered future commitments, scores
// the text, and can strip critical admissions before anything leaves the
// system.
package risk

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/classify"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Severity grades a single finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Level is the overall risk tier derived from the safety score.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Finding is one matched risk pattern.  SaferAlternative is populated for
// admissions of fault; Warning for the other categories.
type Finding struct {
	Text             string   `json:"text"`
	Risk             Severity `json:"risk"`
	Issue            string   `json:"issue"`
	SaferAlternative string   `json:"saferAlternative,omitempty"`
	Warning          string   `json:"warning,omitempty"`
}

// Analysis is the complete risk picture for one piece of text.  The safety
// score starts at 100 and is decremented per finding; it is not clamped, so
// pathological input can drive it below zero.
type Analysis struct {
	AdmissionsOfFault  []Finding `json:"admissionsOfFault"`
	OverDisclosure     []Finding `json:"overDisclosure"`
	LegalMisstatements []Finding `json:"legalMisstatements"`
	AggressiveLanguage []Finding `json:"aggressiveLanguage"`
	VolunteeringInfo   []Finding `json:"volunteeringInfo"`
	SafetyScore        int       `json:"safetyScore"`
	OverallRisk        Level     `json:"overallRisk"`
}

// ReviewUrgency grades the professional-review recommendation.
type ReviewUrgency string

const (
	ReviewOptional            ReviewUrgency = "OPTIONAL"
	ReviewStronglyRecommended ReviewUrgency = "STRONGLY_RECOMMENDED"
	ReviewMandatory           ReviewUrgency = "MANDATORY"
)

// ReviewAssessment is the outcome of AssessProfessionalReviewNeed.
type ReviewAssessment struct {
	NeedsReview    bool          `json:"needsReview"`
	Urgency        ReviewUrgency `json:"urgency"`
	Reasons        []string      `json:"reasons"`
	Recommendation string        `json:"recommendation"`
}

// Change records one sanitization action: either a removal (Removed set) or
// a flag for manual review (Flagged set).
type Change struct {
	Removed    string `json:"removed,omitempty"`
	Flagged    string `json:"flagged,omitempty"`
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion,omitempty"`
	Warning    string `json:"warning,omitempty"`
}

// SanitizeResult is the outcome of SanitizeText.
type SanitizeResult struct {
	SanitizedText  string   `json:"sanitizedText"`
	Changes        []Change `json:"changes"`
	ChangeCount    int      `json:"changeCount"`
	RequiresReview bool     `json:"requiresReview"`
}

// ---------------------------------------------------------------------------
// Pattern tables
// ---------------------------------------------------------------------------

type riskPattern struct {
	pattern *regexp.Regexp
	risk    Severity
	issue   string
}

var faultPatterns = []riskPattern{
	{regexp.MustCompile(`(?i)i (didn't|did not) (report|include|file)`), SeverityHigh, "Admission of non-reporting"},
	{regexp.MustCompile(`(?i)i (forgot|overlooked|missed)`), SeverityMedium, "Admission of negligence"},
	{regexp.MustCompile(`(?i)i (knew|know) (i|it) (was|is) wrong`), SeverityCritical, "Admission of willful violation"},
	{regexp.MustCompile(`(?i)i (intentionally|deliberately|purposely)`), SeverityCritical, "Admission of intent"},
	{regexp.MustCompile(`(?i)i (tried to|attempted to) (hide|conceal|avoid)`), SeverityCritical, "Admission of evasion"},
	{regexp.MustCompile(`(?i)i didn't think (it mattered|i needed to|anyone would notice)`), SeverityHigh, "Admission of disregard"},
	{regexp.MustCompile(`(?i)i (lied|falsified|made up)`), SeverityCritical, "Admission of fraud"},
	{regexp.MustCompile(`(?i)i was (lazy|careless|sloppy)`), SeverityMedium, "Admission of negligence"},
	{regexp.MustCompile(`(?i)i didn't keep (records|receipts|documentation)`), SeverityMedium, "Admission of poor recordkeeping"},
	{regexp.MustCompile(`(?i)i (guessed|estimated) (the|my) (amount|income|deduction)`), SeverityHigh, "Admission of inaccuracy"},
}

var overDisclosurePatterns = []riskPattern{
	{regexp.MustCompile(`(?i)in (prior|previous|other) (years|tax years)`), SeverityHigh, "Volunteering information about other years"},
	{regexp.MustCompile(`(?i)(also|additionally|furthermore).*(didn't|did not) (report|file|include)`), SeverityHigh, "Volunteering additional violations"},
	{regexp.MustCompile(`(?i)i (have|had) (other|additional) (income|deductions|issues)`), SeverityHigh, "Volunteering unreported items"},
	{regexp.MustCompile(`(?i)my (spouse|partner|business partner) (also|too)`), SeverityMedium, "Implicating others"},
	{regexp.MustCompile(`(?i)here (is|are) (all|my) (bank statements|financial records)`), SeverityHigh, "Providing excessive documentation"},
	{regexp.MustCompile(`(?i)i (also|additionally) want to mention`), SeverityMedium, "Volunteering information"},
}

var legalPatterns = []riskPattern{
	{regexp.MustCompile(`(?i)i (have|had) (a|the) right to`), SeverityMedium, "Potential misstatement of legal rights"},
	{regexp.MustCompile(`(?i)the (law|irs|tax code) (says|states|requires)`), SeverityMedium, "Potential misstatement of law"},
	{regexp.MustCompile(`(?i)this is (illegal|unconstitutional|invalid)`), SeverityHigh, "Legal argument without basis"},
	{regexp.MustCompile(`(?i)i (am not|refuse to) (pay|comply)`), SeverityCritical, "Statement of non-compliance"},
	{regexp.MustCompile(`(?i)you (can't|cannot) (do this|make me|force me)`), SeverityHigh, "Confrontational legal statement"},
	{regexp.MustCompile(`(?i)i (declare|claim) (bankruptcy|insolvency)`), SeverityHigh, "Legal status claim without proper filing"},
}

var aggressivePatterns = []riskPattern{
	{regexp.MustCompile(`(?i)this is (ridiculous|absurd|outrageous|harassment)`), SeverityMedium, "Confrontational tone"},
	{regexp.MustCompile(`(?i)(you are|you're|irs is) (wrong|mistaken|incompetent|corrupt)`), SeverityHigh, "Accusatory language"},
	{regexp.MustCompile(`(?i)i (demand|insist|require) (that you|the irs)`), SeverityMedium, "Aggressive tone"},
	{regexp.MustCompile(`(?i)i will (sue|file a complaint|report you|contact my congressman)`), SeverityHigh, "Threatening language"},
	{regexp.MustCompile(`(?i)(never|don't) (contact|call|write) me (again|anymore)`), SeverityHigh, "Refusing communication"},
}

var volunteeringPatterns = []riskPattern{
	{regexp.MustCompile(`(?i)i (will|plan to|intend to) (file|report|pay) (next year|in the future|going forward)`), SeverityLow, "Volunteering future intentions"},
	{regexp.MustCompile(`(?i)i (promise|guarantee|commit) to`), SeverityMedium, "Making binding commitments"},
	{regexp.MustCompile(`(?i)from now on`), SeverityLow, "Implying past non-compliance"},
}

var saferAlternatives = map[string]string{
	"Admission of non-reporting":      "Upon review of the notice, I have identified a discrepancy that requires clarification.",
	"Admission of negligence":         "After careful review of my records, I have determined the following information is relevant.",
	"Admission of willful violation":  "I respectfully disagree with the proposed assessment for the following reasons.",
	"Admission of intent":             "The facts and circumstances are as follows.",
	"Admission of evasion":            "I am providing the following documentation to support my position.",
	"Admission of disregard":          "I have reviewed the notice and am responding as follows.",
	"Admission of fraud":              "I dispute the proposed changes based on the following facts.",
	"Admission of poor recordkeeping": "I am providing the available documentation to support my position.",
	"Admission of inaccuracy":         "Based on my records, the correct amount is as follows.",
}

// SaferAlternative maps a finding's issue to replacement phrasing that states
// facts without admitting fault.
func SaferAlternative(issue string) string {
	if alt, ok := saferAlternatives[issue]; ok {
		return alt
	}
	return "Please rephrase to state facts without admitting fault."
}

// ---------------------------------------------------------------------------
// Analysis
// ---------------------------------------------------------------------------

// AnalyzeRisks scans text against every pattern table.  Each pattern
// contributes at most one finding (its first match in the text).
func AnalyzeRisks(text string) Analysis {
	out := Analysis{
		AdmissionsOfFault:  make([]Finding, 0),
		OverDisclosure:     make([]Finding, 0),
		LegalMisstatements: make([]Finding, 0),
		AggressiveLanguage: make([]Finding, 0),
		VolunteeringInfo:   make([]Finding, 0),
		SafetyScore:        100,
	}

	for _, p := range faultPatterns {
		if m := p.pattern.FindString(text); m != "" {
			out.AdmissionsOfFault = append(out.AdmissionsOfFault, Finding{
				Text:             m,
				Risk:             p.risk,
				Issue:            p.issue,
				SaferAlternative: SaferAlternative(p.issue),
			})
			switch p.risk {
			case SeverityCritical:
				out.SafetyScore -= 30
			case SeverityHigh:
				out.SafetyScore -= 20
			default:
				out.SafetyScore -= 10
			}
		}
	}

	for _, p := range overDisclosurePatterns {
		if m := p.pattern.FindString(text); m != "" {
			out.OverDisclosure = append(out.OverDisclosure, Finding{
				Text:    m,
				Risk:    p.risk,
				Issue:   p.issue,
				Warning: "This statement volunteers information beyond the scope of the notice",
			})
			if p.risk == SeverityHigh {
				out.SafetyScore -= 20
			} else {
				out.SafetyScore -= 10
			}
		}
	}

	for _, p := range legalPatterns {
		if m := p.pattern.FindString(text); m != "" {
			out.LegalMisstatements = append(out.LegalMisstatements, Finding{
				Text:    m,
				Risk:    p.risk,
				Issue:   p.issue,
				Warning: "This statement may be legally incorrect or confrontational",
			})
			switch p.risk {
			case SeverityCritical:
				out.SafetyScore -= 30
			case SeverityHigh:
				out.SafetyScore -= 20
			default:
				out.SafetyScore -= 10
			}
		}
	}

	for _, p := range aggressivePatterns {
		if m := p.pattern.FindString(text); m != "" {
			out.AggressiveLanguage = append(out.AggressiveLanguage, Finding{
				Text:    m,
				Risk:    p.risk,
				Issue:   p.issue,
				Warning: "This language may harm your case and antagonize IRS personnel",
			})
			if p.risk == SeverityHigh {
				out.SafetyScore -= 15
			} else {
				out.SafetyScore -= 10
			}
		}
	}

	for _, p := range volunteeringPatterns {
		if m := p.pattern.FindString(text); m != "" {
			out.VolunteeringInfo = append(out.VolunteeringInfo, Finding{
				Text:    m,
				Risk:    p.risk,
				Issue:   p.issue,
				Warning: "Avoid making promises or volunteering information about future actions",
			})
			if p.risk == SeverityMedium {
				out.SafetyScore -= 10
			} else {
				out.SafetyScore -= 5
			}
		}
	}

	switch {
	case out.SafetyScore >= 80:
		out.OverallRisk = LevelLow
	case out.SafetyScore >= 60:
		out.OverallRisk = LevelMedium
	case out.SafetyScore >= 40:
		out.OverallRisk = LevelHigh
	default:
		out.OverallRisk = LevelCritical
	}

	return out
}

// ---------------------------------------------------------------------------
// Professional review
// ---------------------------------------------------------------------------

var highRiskNoticeTypes = map[classify.NoticeType]bool{
	classify.NoticeCP504:       true,
	classify.NoticeCP75:        true,
	classify.NoticeAuditLetter: true,
	classify.NoticeLetter1058:  true,
}

// AssessProfessionalReviewNeed decides whether the response must see a
// professional before it is sent.  MANDATORY triggers are critical risk or
// critical admissions; high-risk notice types, large amounts, and multiple
// risk categories raise the floor to STRONGLY_RECOMMENDED.
func AssessProfessionalReviewNeed(analysis Analysis, classification classify.NoticeClassification, amount float64) ReviewAssessment {
	out := ReviewAssessment{
		Urgency: ReviewOptional,
		Reasons: make([]string, 0, 4),
	}
	raise := func(u ReviewUrgency, reason string) {
		out.NeedsReview = true
		if out.Urgency != ReviewMandatory {
			out.Urgency = u
		}
		out.Reasons = append(out.Reasons, reason)
	}

	if analysis.OverallRisk == LevelCritical || analysis.SafetyScore < 40 {
		raise(ReviewMandatory, "Response contains critical risk factors that could severely harm your case")
	}

	for _, f := range analysis.AdmissionsOfFault {
		if f.Risk == SeverityCritical {
			raise(ReviewMandatory, "Response contains admissions that could expose you to fraud penalties or criminal liability")
			break
		}
	}

	if highRiskNoticeTypes[classification.NoticeType] {
		raise(ReviewStronglyRecommended, fmt.Sprintf("%s notices carry serious consequences and should be reviewed by a professional", classification.NoticeType))
	}

	if amount > 25000 {
		raise(ReviewStronglyRecommended, "Amount involved exceeds $25,000 - professional review recommended")
	}

	categories := 0
	for _, n := range []int{
		len(analysis.AdmissionsOfFault),
		len(analysis.OverDisclosure),
		len(analysis.LegalMisstatements),
		len(analysis.AggressiveLanguage),
	} {
		if n > 0 {
			categories++
		}
	}
	if categories >= 3 {
		raise(ReviewStronglyRecommended, "Response contains multiple categories of risk factors")
	}

	switch out.Urgency {
	case ReviewMandatory:
		out.Recommendation = "CRITICAL: Do not send this response without professional review. It contains statements that could seriously harm your case."
	case ReviewStronglyRecommended:
		out.Recommendation = "WARNING: Professional review is strongly recommended before sending this response."
	default:
		out.Recommendation = "Professional review is optional but may be beneficial."
	}
	return out
}

// ---------------------------------------------------------------------------
// Sanitization
// ---------------------------------------------------------------------------

// SanitizeText removes critical admissions and legal misstatements from the
// text (first occurrence each, replaced with a [REMOVED: ...] marker) and
// flags high-severity findings from every category for manual review.
func SanitizeText(text string, analysis Analysis) SanitizeResult {
	sanitized := text
	changes := make([]Change, 0)

	critical := make([]Finding, 0)
	for _, f := range analysis.AdmissionsOfFault {
		if f.Risk == SeverityCritical {
			critical = append(critical, f)
		}
	}
	for _, f := range analysis.LegalMisstatements {
		if f.Risk == SeverityCritical {
			critical = append(critical, f)
		}
	}
	for _, f := range critical {
		if !strings.Contains(sanitized, f.Text) {
			continue
		}
		sanitized = strings.Replace(sanitized, f.Text, "[REMOVED: "+f.Issue+"]", 1)
		suggestion := f.SaferAlternative
		if suggestion == "" {
			suggestion = "Rephrase to state facts without admission"
		}
		changes = append(changes, Change{
			Removed:    f.Text,
			Reason:     f.Issue,
			Suggestion: suggestion,
		})
	}

	for _, group := range [][]Finding{
		analysis.AdmissionsOfFault,
		analysis.OverDisclosure,
		analysis.LegalMisstatements,
		analysis.AggressiveLanguage,
	} {
		for _, f := range group {
			if f.Risk != SeverityHigh {
				continue
			}
			warning := f.Warning
			if warning == "" {
				warning = "This statement should be reviewed and potentially revised"
			}
			changes = append(changes, Change{
				Flagged: f.Text,
				Reason:  f.Issue,
				Warning: warning,
			})
		}
	}

	return SanitizeResult{
		SanitizedText:  sanitized,
		Changes:        changes,
		ChangeCount:    len(changes),
		RequiresReview: len(changes) > 0,
	}
}

// ---------------------------------------------------------------------------
// Reporting
// ---------------------------------------------------------------------------

// GenerateRiskReport renders the findings and review recommendation as a
// plain-text report for the user.
func GenerateRiskReport(analysis Analysis, review ReviewAssessment) string {
	var b strings.Builder
	b.WriteString("=== RISK ANALYSIS REPORT ===\n\n")
	fmt.Fprintf(&b, "Safety Score: %d/100\n", analysis.SafetyScore)
	fmt.Fprintf(&b, "Overall Risk Level: %s\n\n", analysis.OverallRisk)

	if len(analysis.AdmissionsOfFault) > 0 {
		b.WriteString("ADMISSIONS OF FAULT:\n")
		for i, item := range analysis.AdmissionsOfFault {
			fmt.Fprintf(&b, "%d. %q\n", i+1, item.Text)
			fmt.Fprintf(&b, "   Risk: %s - %s\n", item.Risk, item.Issue)
			fmt.Fprintf(&b, "   Safer Alternative: %q\n\n", item.SaferAlternative)
		}
	}

	sections := []struct {
		title    string
		findings []Finding
	}{
		{"OVER-DISCLOSURE:", analysis.OverDisclosure},
		{"LEGAL MISSTATEMENTS:", analysis.LegalMisstatements},
		{"AGGRESSIVE LANGUAGE:", analysis.AggressiveLanguage},
	}
	for _, s := range sections {
		if len(s.findings) == 0 {
			continue
		}
		b.WriteString(s.title + "\n")
		for i, item := range s.findings {
			fmt.Fprintf(&b, "%d. %q\n", i+1, item.Text)
			fmt.Fprintf(&b, "   %s\n\n", item.Warning)
		}
	}

	if review.NeedsReview {
		b.WriteString("\n" + review.Recommendation + "\n\n")
		b.WriteString("Reasons:\n")
		for i, reason := range review.Reasons {
			fmt.Fprintf(&b, "%d. %s\n", i+1, reason)
		}
	}

	return b.String()
}
