package engine

import (
	"fmt"
	"strings"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/classify"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/deadline"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/evidence"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/playbook"
)

// buildConstrainedSystemPrompt encodes the playbook's rules into the system
// prompt so the generator cannot produce free-form content: tone, required
// elements, prohibited phrases, letter structure and deadline pressure are
// all stated explicitly.
func buildConstrainedSystemPrompt(c classify.NoticeClassification, pb playbook.Playbook, intel deadline.Intelligence) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an IRS tax correspondence specialist writing a response to a %s (%s).\n\n", c.NoticeType, c.Description)
	fmt.Fprintf(&b, "REQUIRED TONE: %s\n\n", pb.RequiredTone)

	b.WriteString("REQUIRED ELEMENTS (You MUST include all of these):\n")
	for _, element := range pb.RequiredElements {
		fmt.Fprintf(&b, "- %s\n", element)
	}
	b.WriteString("\n")

	b.WriteString("PROHIBITED LANGUAGE (You MUST NOT use any of these phrases):\n")
	for _, phrase := range pb.ProhibitedLanguage {
		fmt.Fprintf(&b, "- %q\n", phrase)
	}
	b.WriteString("\n")

	b.WriteString("RESPONSE STRUCTURE:\n")
	for _, section := range pb.ResponseStructure {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(section.Section), section.Requirement)
	}
	b.WriteString("\n")

	b.WriteString("CRITICAL WARNINGS TO INCORPORATE:\n")
	for _, warning := range pb.CriticalWarnings {
		fmt.Fprintf(&b, "- %s\n", warning)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "DEADLINE: %d days remaining. Urgency: %s\n\n", intel.Deadline.DaysRemaining, intel.Deadline.UrgencyLevel)

	b.WriteString("Write a professional, IRS-compliant response letter that follows all requirements above. ")
	b.WriteString("Do NOT use emojis. Do NOT use conversational language. Use formal business correspondence style.\n\n")
	b.WriteString("Focus on facts, not emotions. Be specific and direct. Reference the notice number and date. ")
	b.WriteString("State the taxpayer's position clearly and support it with facts.")

	return b.String()
}

// buildConstrainedUserPrompt packs the taxpayer's position and the cleared
// attachments into the user prompt.
func buildConstrainedUserPrompt(position UserPosition, evidenceMap *evidence.Map) string {
	var b strings.Builder

	b.WriteString("Write a response letter with the following information:\n\n")
	fmt.Fprintf(&b, "TAXPAYER POSITION: %s\n\n", position.Stance)

	if position.Explanation != "" {
		fmt.Fprintf(&b, "EXPLANATION: %s\n\n", position.Explanation)
	}

	if evidenceMap != nil && len(evidenceMap.ToAttach) > 0 {
		b.WriteString("SUPPORTING DOCUMENTS:\n")
		for i, item := range evidenceMap.ToAttach {
			fmt.Fprintf(&b, "%d. %s - %s\n", i+1, item.Document.Name, item.Supports)
		}
		b.WriteString("\n")
	}

	if position.RequestedAction != "" {
		fmt.Fprintf(&b, "REQUESTED ACTION: %s\n\n", position.RequestedAction)
	}

	b.WriteString("Ensure the response addresses all required elements and follows the prescribed structure.")

	return b.String()
}
