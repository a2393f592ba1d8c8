package entity

import "time"

// AppData is the aggregate the store owns: every read and write goes
// through one in-memory copy of this.
type AppData struct {
	Leads     []Lead     `json:"leads"`
	Templates []Template `json:"templates"`
	Settings  Settings   `json:"settings"`
}

const defaultDMContent = `Hey [Name]! 👋

I came across your profile and I'm really impressed by what you're building. Your work in [niche] is exactly the kind of thing I love to support.

I'd love to connect and share something that could genuinely help you grow — would you be open to a quick chat?

Looking forward to hearing from you! 🚀`

const defaultFollowUpContent = `Hey [Name]! 👋

Just circling back on my last message — I know things get busy!

I truly believe what I have to share could add real value to what you're doing. Would love just 10 minutes of your time.

Let me know if you're open to it! 😊`

// DefaultTemplates returns the two templates seeded for a fresh
// account or device: one first-DM, one follow-up.
func DefaultTemplates(now time.Time) []Template {
	return []Template{
		{
			ID:        "tpl_dm_1",
			Name:      "Default First DM",
			Type:      TemplateDM,
			Content:   defaultDMContent,
			CreatedAt: now,
		},
		{
			ID:        "tpl_fu_1",
			Name:      "Default Follow-Up",
			Type:      TemplateFollowUp,
			Content:   defaultFollowUpContent,
			CreatedAt: now,
		},
	}
}

func DefaultSettings() Settings {
	return Settings{
		GeminiAPIKey:       "",
		ServiceDescription: "",
		FollowUpDays:       DefaultFollowUpDays,
	}
}

func DefaultAppData(now time.Time) *AppData {
	return &AppData{
		Leads:     []Lead{},
		Templates: DefaultTemplates(now),
		Settings:  DefaultSettings(),
	}
}
