package entity

// Settings is a singleton per account/device.
type Settings struct {
	GeminiAPIKey       string `json:"geminiApiKey"`
	ServiceDescription string `json:"serviceDescription"`
	FollowUpDays       int    `json:"followUpDays"`
}

const DefaultFollowUpDays = 3

type SettingsPatch struct {
	GeminiAPIKey       *string
	ServiceDescription *string
	FollowUpDays       *int
}

func (p SettingsPatch) Apply(s Settings) Settings {
	if p.GeminiAPIKey != nil {
		s.GeminiAPIKey = *p.GeminiAPIKey
	}
	if p.ServiceDescription != nil {
		s.ServiceDescription = *p.ServiceDescription
	}
	if p.FollowUpDays != nil {
		s.FollowUpDays = *p.FollowUpDays
	}
	return s
}
