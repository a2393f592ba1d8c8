package entity

import (
	"time"
)

type Platform string

const (
	PlatformTwitter   Platform = "Twitter"
	PlatformInstagram Platform = "Instagram"
	PlatformFacebook  Platform = "Facebook"
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformOther     Platform = "Other"
)

var AllPlatforms = []Platform{
	PlatformTwitter, PlatformInstagram, PlatformFacebook, PlatformLinkedIn, PlatformOther,
}

func (p Platform) IsValid() bool {
	for _, v := range AllPlatforms {
		if p == v {
			return true
		}
	}
	return false
}

type Category string

const (
	CategoryBusinessCoach Category = "Business Coach"
	CategoryNewStartup    Category = "New Startup"
	CategoryTechCompany   Category = "Tech Company"
	CategoryFreelancer    Category = "Freelancer"
	CategoryAgency        Category = "Agency"
	CategoryEcommerce     Category = "E-commerce"
	CategoryCreator       Category = "Creator"
	CategoryOther         Category = "Other"
)

var AllCategories = []Category{
	CategoryBusinessCoach, CategoryNewStartup, CategoryTechCompany, CategoryFreelancer,
	CategoryAgency, CategoryEcommerce, CategoryCreator, CategoryOther,
}

func (c Category) IsValid() bool {
	for _, v := range AllCategories {
		if c == v {
			return true
		}
	}
	return false
}

type LeadStatus string

const (
	StatusNew           LeadStatus = "new"
	StatusDmSent        LeadStatus = "dm_sent"
	StatusFollowUpSent  LeadStatus = "follow_up_sent"
	StatusReplied       LeadStatus = "replied"
	StatusConverted     LeadStatus = "converted"
	StatusNotInterested LeadStatus = "not_interested"

	// StatusFollowUpDue is a display label only. It is computed from
	// dm_sent + follow_up_due_date and is never persisted.
	StatusFollowUpDue LeadStatus = "follow_up_due"
)

var PersistedStatuses = []LeadStatus{
	StatusNew, StatusDmSent, StatusFollowUpSent,
	StatusReplied, StatusConverted, StatusNotInterested,
}

// IsPersisted reports whether the status may be stored on a Lead.
func (s LeadStatus) IsPersisted() bool {
	for _, v := range PersistedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Lead struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	ProfileURL string     `json:"profileUrl"`
	Platform   Platform   `json:"platform"`
	Category   Category   `json:"category"`
	Status     LeadStatus `json:"status"`
	Notes      string     `json:"notes"`
	AddedAt    time.Time  `json:"addedAt"`

	DmSentAt        *time.Time `json:"dmSentAt,omitempty"`
	FollowUpSentAt  *time.Time `json:"followUpSentAt,omitempty"`
	RepliedAt       *time.Time `json:"repliedAt,omitempty"`
	FollowUpDueDate *time.Time `json:"followUpDueDate,omitempty"`
	LastDmText      string     `json:"lastDmText,omitempty"`
}

// LeadPatch carries a partial update. Nil fields are left untouched,
// both in memory and on the remote row.
type LeadPatch struct {
	Name            *string
	ProfileURL      *string
	Platform        *Platform
	Category        *Category
	Status          *LeadStatus
	Notes           *string
	DmSentAt        *time.Time
	FollowUpSentAt  *time.Time
	RepliedAt       *time.Time
	FollowUpDueDate *time.Time
	LastDmText      *string
}

// Apply returns a copy of the lead with the patch merged in.
func (p LeadPatch) Apply(l Lead) Lead {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.ProfileURL != nil {
		l.ProfileURL = *p.ProfileURL
	}
	if p.Platform != nil {
		l.Platform = *p.Platform
	}
	if p.Category != nil {
		l.Category = *p.Category
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.Notes != nil {
		l.Notes = *p.Notes
	}
	if p.DmSentAt != nil {
		l.DmSentAt = p.DmSentAt
	}
	if p.FollowUpSentAt != nil {
		l.FollowUpSentAt = p.FollowUpSentAt
	}
	if p.RepliedAt != nil {
		l.RepliedAt = p.RepliedAt
	}
	if p.FollowUpDueDate != nil {
		l.FollowUpDueDate = p.FollowUpDueDate
	}
	if p.LastDmText != nil {
		l.LastDmText = *p.LastDmText
	}
	return l
}
