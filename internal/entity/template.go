package entity

import (
	"strings"
	"time"
)

type TemplateType string

const (
	TemplateDM       TemplateType = "dm"
	TemplateFollowUp TemplateType = "followup"
)

func (t TemplateType) IsValid() bool {
	return t == TemplateDM || t == TemplateFollowUp
}

type Template struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      TemplateType `json:"type"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Render substitutes the [Name] and [niche] placeholder tokens.
func (t Template) Render(leadName string, category Category) string {
	out := strings.ReplaceAll(t.Content, "[Name]", leadName)
	out = strings.ReplaceAll(out, "[niche]", string(category))
	return out
}

type TemplatePatch struct {
	Name    *string
	Type    *TemplateType
	Content *string
}

func (p TemplatePatch) Apply(t Template) Template {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	return t
}
