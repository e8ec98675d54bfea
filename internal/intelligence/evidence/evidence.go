// Package evidence maps taxpayer-provided documents to explicit
// attach / summarize / exclude decisions.  The rules are deterministic and
// deliberately conservative: full bank statements are never attached, prior
// year returns are never volunteered, and unclear documents default to a
// summary rather than disclosure.
package evidence

import (
	"fmt"
	"math"
	"strings"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/classify"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/playbook"
)

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Action is the disposition assigned to a document.
type Action string

const (
	ActionAttach    Action = "ATTACH"
	ActionSummarize Action = "SUMMARIZE"
	ActionExclude   Action = "EXCLUDE"
)

// Document is one taxpayer-supplied item under consideration.
type Document struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Attachment is a document cleared for attachment, with handling guidance.
type Attachment struct {
	Document     Document `json:"document"`
	Reason       string   `json:"reason"`
	Supports     string   `json:"supports"`
	Instructions string   `json:"instructions"`
}

// Summary is a document whose content should be summarized, not attached.
type Summary struct {
	Document       Document `json:"document"`
	Reason         string   `json:"reason"`
	HowToSummarize string   `json:"howToSummarize"`
}

// Exclusion is a document that must be withheld.
type Exclusion struct {
	Document Document `json:"document"`
	Reason   string   `json:"reason"`
	Warning  string   `json:"warning,omitempty"`
}

// Map is the full disposition of every supplied document.
type Map struct {
	ToAttach        []Attachment `json:"toAttach"`
	ToSummarize     []Summary    `json:"toSummarize"`
	ToExclude       []Exclusion  `json:"toExclude"`
	Warnings        []string     `json:"warnings"`
	Recommendations []string     `json:"recommendations"`
}

// Analysis is the per-document rule outcome.
type Analysis struct {
	Action         Action
	Reason         string
	Supports       string
	Instructions   string
	HowToSummarize string
	Warning        string
	Warnings       []string
}

// Validation reports how well the attached evidence covers the playbook's
// required elements.
type Validation struct {
	IsComplete           bool     `json:"isComplete"`
	ProvidedElements     []string `json:"providedElements"`
	MissingElements      []string `json:"missingElements"`
	CompletionPercentage int      `json:"completionPercentage"`
	Message              string   `json:"message"`
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

// MapEvidence analyzes every document and buckets it by disposition, then
// appends the recommendation set for the notice type.
func MapEvidence(documents []Document, classification classify.NoticeClassification) Map {
	out := Map{
		ToAttach:    make([]Attachment, 0, len(documents)),
		ToSummarize: make([]Summary, 0),
		ToExclude:   make([]Exclusion, 0),
		Warnings:    make([]string, 0),
	}

	for _, doc := range documents {
		analysis := AnalyzeDocument(doc, classification.NoticeType)
		switch analysis.Action {
		case ActionAttach:
			out.ToAttach = append(out.ToAttach, Attachment{
				Document:     doc,
				Reason:       analysis.Reason,
				Supports:     analysis.Supports,
				Instructions: analysis.Instructions,
			})
		case ActionSummarize:
			out.ToSummarize = append(out.ToSummarize, Summary{
				Document:       doc,
				Reason:         analysis.Reason,
				HowToSummarize: analysis.HowToSummarize,
			})
		case ActionExclude:
			out.ToExclude = append(out.ToExclude, Exclusion{
				Document: doc,
				Reason:   analysis.Reason,
				Warning:  analysis.Warning,
			})
		}
		out.Warnings = append(out.Warnings, analysis.Warnings...)
	}

	out.Recommendations = GenerateRecommendations(classification.NoticeType, len(out.ToAttach), len(out.ToExclude))
	return out
}

// AnalyzeDocument applies the ordered disposition rules to one document.
// Matching is case-insensitive across the document's type, name and
// description fields.
func AnalyzeDocument(doc Document, noticeType classify.NoticeType) Analysis {
	docType := strings.ToUpper(doc.Type)
	docName := strings.ToUpper(doc.Name)
	docDescription := strings.ToUpper(doc.Description)
	anyContains := func(s string) bool {
		return strings.Contains(docType, s) || strings.Contains(docName, s) || strings.Contains(docDescription, s)
	}
	isAudit := strings.Contains(string(noticeType), "AUDIT")

	if anyContains("W-2") {
		if noticeType == classify.NoticeCP2000 {
			return Analysis{
				Action:       ActionAttach,
				Reason:       "W-2 directly supports income reporting",
				Supports:     "Wage income verification",
				Instructions: "Attach complete W-2. Highlight any discrepancies between W-2 and IRS records.",
			}
		}
		return Analysis{
			Action:       ActionAttach,
			Reason:       "W-2 is standard supporting documentation",
			Supports:     "Income verification",
			Instructions: "Attach complete W-2 form",
		}
	}

	if anyContains("1099") {
		formType := extract1099Type(docName + " " + docDescription)
		if noticeType == classify.NoticeCP2000 {
			return Analysis{
				Action:       ActionAttach,
				Reason:       fmt.Sprintf("Form %s directly addresses CP2000 income discrepancy", formType),
				Supports:     "Underreported income explanation",
				Instructions: fmt.Sprintf("Attach Form %s. If this corrects IRS records, include explanation of why IRS data is incorrect. If this was not included in original return, explain why.", formType),
				Warnings:     []string{"If this 1099 was not reported, file amended return (Form 1040-X)"},
			}
		}
		return Analysis{
			Action:       ActionAttach,
			Reason:       "1099 form supports income reporting",
			Supports:     "Income verification",
			Instructions: fmt.Sprintf("Attach Form %s", formType),
		}
	}

	if strings.Contains(docType, "BANK") || strings.Contains(docName, "BANK") || strings.Contains(docDescription, "BANK STATEMENT") {
		return Analysis{
			Action:         ActionSummarize,
			Reason:         "Bank statements contain sensitive information and should not be provided in full unless specifically requested",
			HowToSummarize: "Create a summary showing only the specific transactions relevant to the issue. Redact account numbers and unrelated transactions.",
			Warnings: []string{
				"WARNING: DO NOT attach full bank statements unless IRS specifically requests them",
				"WARNING: Only provide specific transactions that support your position",
				"WARNING: Redact sensitive information (account numbers, unrelated transactions)",
			},
		}
	}

	if anyContains("RECEIPT") {
		if noticeType == classify.NoticeCP2000 || isAudit {
			return Analysis{
				Action:       ActionAttach,
				Reason:       "Receipts support deductions or expenses",
				Supports:     "Expense verification",
				Instructions: "Attach receipts. Organize by category and create a summary sheet listing each receipt with date, amount, and purpose.",
			}
		}
		return Analysis{
			Action:         ActionSummarize,
			Reason:         "Receipts may not be relevant to this notice type",
			HowToSummarize: "List receipt totals by category if relevant to the issue",
		}
	}

	if strings.Contains(docType, "SCHEDULE C") || strings.Contains(docName, "SCHEDULE C") || strings.Contains(docDescription, "BUSINESS") {
		if noticeType == classify.NoticeCP2000 || isAudit {
			return Analysis{
				Action:       ActionAttach,
				Reason:       "Schedule C supports business income and expenses",
				Supports:     "Business income/expense verification",
				Instructions: "Attach Schedule C and supporting documentation. Organize by income sources and expense categories.",
			}
		}
		return Analysis{
			Action:       ActionAttach,
			Reason:       "Business records may be relevant",
			Supports:     "Business activity verification",
			Instructions: "Attach relevant business records",
		}
	}

	if strings.Contains(docType, "TAX RETURN") || strings.Contains(docName, "RETURN") || strings.Contains(docDescription, "PRIOR YEAR") {
		return Analysis{
			Action:  ActionExclude,
			Reason:  "Prior year returns should NOT be provided unless specifically requested by IRS",
			Warning: "CRITICAL: Do not volunteer prior year tax returns. This can trigger audits of other years.",
			Warnings: []string{
				"Do not provide prior year returns unless IRS specifically requests them",
				"Providing unrequested returns can expand audit scope",
				"Only provide the specific year under examination",
			},
		}
	}

	if strings.Contains(docType, "IRS") || strings.Contains(docName, "IRS") || strings.Contains(docDescription, "IRS LETTER") {
		return Analysis{
			Action:       ActionAttach,
			Reason:       "Prior IRS correspondence provides context",
			Supports:     "Communication history",
			Instructions: "Attach prior IRS letters in chronological order. Reference specific dates and notice numbers in your response.",
		}
	}

	if strings.Contains(docDescription, "EMPLOYER") || strings.Contains(docDescription, "PAYER") || strings.Contains(docDescription, "COMPANY") {
		if noticeType == classify.NoticeCP2000 {
			return Analysis{
				Action:       ActionAttach,
				Reason:       "Correspondence with payers can explain discrepancies",
				Supports:     "Income reporting clarification",
				Instructions: "Attach correspondence. Highlight portions that explain the discrepancy between your return and IRS records.",
			}
		}
		return Analysis{
			Action:         ActionSummarize,
			Reason:         "Correspondence may contain irrelevant information",
			HowToSummarize: "Summarize key points from correspondence. Quote specific relevant passages.",
		}
	}

	if strings.Contains(docType, "MEDICAL") || strings.Contains(docType, "PERSONAL") || strings.Contains(docDescription, "MEDICAL") {
		return Analysis{
			Action:  ActionExclude,
			Reason:  "Medical and personal records should not be provided unless specifically requested",
			Warning: "WARNING: Do not provide medical or personal records unless IRS specifically requests them for hardship determination",
			Warnings: []string{
				"Medical records are not typically relevant to tax notices",
				"Only provide if IRS specifically requests for hardship or penalty abatement",
				"Redact sensitive health information if providing",
			},
		}
	}

	if strings.Contains(docDescription, "HARDSHIP") || strings.Contains(docDescription, "FINANCIAL STATEMENT") {
		switch noticeType {
		case classify.NoticeCP504, classify.NoticeCP503, classify.NoticeCP501:
			return Analysis{
				Action:       ActionAttach,
				Reason:       "Financial hardship documentation supports payment plan or Currently Not Collectible status request",
				Supports:     "Hardship claim",
				Instructions: "Attach Form 433-A or 433-F (Collection Information Statement) with supporting documentation. Include proof of income, expenses, and assets.",
			}
		}
		return Analysis{
			Action:  ActionExclude,
			Reason:  "Financial hardship documentation not relevant to this notice type",
			Warning: "Only provide financial information when requesting payment arrangements or hardship status",
		}
	}

	return Analysis{
		Action:         ActionSummarize,
		Reason:         "Document type unclear - summarize to avoid over-disclosure",
		HowToSummarize: "Describe the document and explain how it supports your position. Do not attach unless certain it is relevant.",
		Warnings:       []string{"Unclear document type - verify relevance before including"},
	}
}

var form1099Types = []string{"1099-K", "1099-MISC", "1099-NEC", "1099-INT", "1099-DIV", "1099-R", "1099-G"}

func extract1099Type(text string) string {
	for _, t := range form1099Types {
		if strings.Contains(text, t) {
			return t
		}
	}
	return "1099"
}

// ---------------------------------------------------------------------------
// Recommendations and letter instructions
// ---------------------------------------------------------------------------

// GenerateRecommendations returns the handling checklist for the notice type,
// adjusted for how many documents ended up attached or excluded.
func GenerateRecommendations(noticeType classify.NoticeType, attachCount, excludeCount int) []string {
	recommendations := []string{
		"Create a cover letter listing all attached documents with brief descriptions",
		"Number each attachment and reference by number in your response letter",
		"Make copies of everything before sending - never send originals",
		"Send via certified mail with return receipt requested",
	}

	switch noticeType {
	case classify.NoticeCP2000:
		recommendations = append(recommendations,
			"For each line item on CP2000, reference specific attached document that supports your position",
			"If agreeing with some changes, clearly separate agreed vs. disputed items",
			"Include Form 1040X (Amended Return) if you discovered additional errors",
		)
	case classify.NoticeCP14, classify.NoticeCP501, classify.NoticeCP503:
		recommendations = append(recommendations,
			"If requesting payment plan, include Form 9465 (Installment Agreement Request)",
			"If requesting penalty abatement, include written explanation of reasonable cause",
			"If disputing amount, include documentation showing payment or calculation error",
		)
	case classify.NoticeCP504:
		recommendations = append(recommendations,
			"Include Form 12153 (Request for Collection Due Process Hearing) if disputing collection action",
			"Include Form 433-A or 433-F if requesting Currently Not Collectible status",
			"Include Form 656 if submitting Offer in Compromise",
		)
	case classify.NoticeCP75, classify.NoticeAuditLetter:
		recommendations = append(recommendations,
			"Organize documents by tax return line item",
			"Create an index of all documents provided",
			"Only provide documents specifically requested in the audit notice",
			"File Form 2848 (Power of Attorney) to authorize representative",
		)
	}

	if attachCount == 0 {
		recommendations = append(recommendations, "WARNING: No documents to attach. Gather supporting documentation before responding.")
	}
	if excludeCount > 3 {
		recommendations = append(recommendations, "GOOD: You are correctly excluding documents that could harm your case or expand the scope.")
	}
	if attachCount > 20 {
		recommendations = append(recommendations, "CAUTION: Multiple documents to attach. Create summary sheet for IRS reviewer.")
	}

	return recommendations
}

// GenerateAttachmentInstructions renders the SUPPORTING DOCUMENTATION block
// for inclusion in a response letter.
func GenerateAttachmentInstructions(m Map) string {
	var b strings.Builder
	b.WriteString("SUPPORTING DOCUMENTATION:\n\n")

	if len(m.ToAttach) > 0 {
		b.WriteString("The following documents are attached to support this response:\n\n")
		for i, item := range m.ToAttach {
			fmt.Fprintf(&b, "Attachment %d: %s\n", i+1, item.Document.Name)
			fmt.Fprintf(&b, "   Purpose: %s\n", item.Supports)
			fmt.Fprintf(&b, "   %s\n\n", item.Instructions)
		}
	}

	if len(m.ToSummarize) > 0 {
		b.WriteString("\nThe following information is summarized below (full documents available upon request):\n\n")
		for i, item := range m.ToSummarize {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item.Document.Name)
			fmt.Fprintf(&b, "   %s\n\n", item.HowToSummarize)
		}
	}

	if len(m.Warnings) > 0 {
		b.WriteString("\nIMPORTANT WARNINGS:\n\n")
		for i, warning := range m.Warnings {
			fmt.Fprintf(&b, "%d. %s\n", i+1, warning)
		}
	}

	return b.String()
}

// ValidateEvidence checks the attached documents against the playbook's
// required elements by keyword match on each attachment's supports and
// reason text.
func ValidateEvidence(m Map, pb playbook.Playbook) Validation {
	provided := make([]string, 0, len(pb.RequiredElements))
	missing := make([]string, 0)

	for _, element := range pb.RequiredElements {
		elementLower := strings.ToLower(element)
		found := false
		for _, item := range m.ToAttach {
			if strings.Contains(strings.ToLower(item.Supports), elementLower) ||
				strings.Contains(strings.ToLower(item.Reason), elementLower) {
				found = true
				break
			}
		}
		if found {
			provided = append(provided, element)
		} else {
			missing = append(missing, element)
		}
	}

	pct := 0
	if len(pb.RequiredElements) > 0 {
		pct = int(math.Round(float64(len(provided)) / float64(len(pb.RequiredElements)) * 100))
	}

	out := Validation{
		IsComplete:           len(missing) == 0,
		ProvidedElements:     provided,
		MissingElements:      missing,
		CompletionPercentage: pct,
	}
	if out.IsComplete {
		out.Message = "All required elements are supported by evidence"
	} else {
		out.Message = "Missing evidence for: " + strings.Join(missing, ", ")
	}
	return out
}
