package gemini

import (
	"fmt"
	"strings"
)

func lengthGuide(length string) string {
	switch length {
	case "short":
		return "Keep it under 60 words. Very concise."
	case "long":
		return "Write a detailed message between 150-200 words."
	default:
		return "Keep it between 80-120 words."
	}
}

func toneGuide(tone string) string {
	switch tone {
	case "professional":
		return "Use a professional, formal tone."
	case "friendly":
		return "Use a warm, friendly and approachable tone."
	case "casual":
		return "Use a super casual, conversational tone like texting a friend."
	case "bold":
		return "Use a bold, confident, direct tone that commands attention."
	default:
		return "Use a witty, fun, and engaging tone with light humor."
	}
}

// BuildPrompt assembles the outreach prompt. Three shapes: personalize
// a template, write a first DM from scratch, or write a follow-up that
// references the previous DM.
func BuildPrompt(input GenerateInput) string {
	service := input.ServiceDescription
	if service == "" {
		service = "General outreach."
	}
	notes := input.Notes
	if notes == "" {
		notes = "No additional notes"
	}

	var b strings.Builder

	switch {
	case input.Type == MessageDM && input.TemplateBase != "":
		fmt.Fprintf(&b, `You are an expert outreach copywriter. I have a message template below. Your job is to PERSONALIZE it for a specific lead while keeping the same general structure and intent.

MY SERVICE/NICHE: %s

LEAD DETAILS:
- Name: %s
- Platform: %s
- Category: %s
- Notes about this lead: %s

ORIGINAL TEMPLATE TO PERSONALIZE:
"""
%s
"""

TONE: %s
LENGTH: %s`, service, input.LeadName, input.Platform, input.Category, notes, input.TemplateBase, toneGuide(input.Tone), lengthGuide(input.Length))

	case input.Type == MessageDM:
		fmt.Fprintf(&b, `You are an expert outreach copywriter. Write a cold DM for a specific lead.

MY SERVICE/NICHE: %s

LEAD DETAILS:
- Name: %s
- Platform: %s
- Category: %s
- Notes about this lead: %s

TONE: %s
LENGTH: %s`, service, input.LeadName, input.Platform, input.Category, notes, toneGuide(input.Tone), lengthGuide(input.Length))

	default:
		fmt.Fprintf(&b, `You are an expert outreach copywriter. Write a follow-up message for a lead who has not replied to my first DM.

MY SERVICE/NICHE: %s

LEAD DETAILS:
- Name: %s
- Platform: %s
- Category: %s
- Notes about this lead: %s

MY PREVIOUS DM:
"""
%s
"""

The follow-up should gently reference the first message without guilt-tripping the lead.
TONE: %s
LENGTH: %s`, service, input.LeadName, input.Platform, input.Category, notes, input.PreviousDm, toneGuide(input.Tone), lengthGuide(input.Length))
	}

	if input.CustomInstructions != "" {
		fmt.Fprintf(&b, "\n\nADDITIONAL INSTRUCTIONS: %s", input.CustomInstructions)
	}

	b.WriteString("\n\nReply with the message text only — no preamble, no quotes, no explanations.")
	return b.String()
}
