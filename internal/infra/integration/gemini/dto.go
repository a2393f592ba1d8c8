package gemini

import (
	"github.com/leadpulse/leadpulse/internal/entity"
)

type MessageType string

const (
	MessageDM       MessageType = "dm"
	MessageFollowUp MessageType = "followup"
)

// GenerateInput is the lead context handed to the model. Tone and
// Length are free-form hints; unrecognized values fall back to the
// witty/medium guides.
type GenerateInput struct {
	LeadName           string          `json:"leadName"`
	Platform           entity.Platform `json:"platform"`
	Category           entity.Category `json:"category"`
	Notes              string          `json:"notes"`
	ServiceDescription string          `json:"serviceDescription"`
	Tone               string          `json:"tone"`
	Length             string          `json:"length"`
	CustomInstructions string          `json:"customInstructions"`
	Type               MessageType     `json:"type"`
	PreviousDm         string          `json:"previousDm,omitempty"`
	TemplateBase       string          `json:"templateBase,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
