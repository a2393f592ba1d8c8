package usecase

import (
	"time"

	"github.com/leadpulse/leadpulse/internal/entity"
)

// Lifecycle transitions are pure: they take the clock as a parameter
// and return the mutated copy. The store decides when to apply them
// and where to persist them.

// MarkDmSent moves a lead to dm_sent and stamps the follow-up due
// date. This is the only place FollowUpDueDate is ever set.
func MarkDmSent(l entity.Lead, dmText string, followUpDays int, now time.Time) entity.Lead {
	if followUpDays <= 0 {
		followUpDays = entity.DefaultFollowUpDays
	}
	due := now.AddDate(0, 0, followUpDays)

	l.Status = entity.StatusDmSent
	l.DmSentAt = &now
	l.FollowUpDueDate = &due
	if dmText != "" {
		l.LastDmText = dmText
	}
	return l
}

// MarkFollowUpSent stamps the follow-up. The caller is expected to
// only invoke it on leads in dm_sent; no guard is enforced here.
func MarkFollowUpSent(l entity.Lead, now time.Time) entity.Lead {
	l.Status = entity.StatusFollowUpSent
	l.FollowUpSentAt = &now
	return l
}

// MarkStatus is an unconditional overwrite: arbitrary status jumps are
// allowed on purpose (manual correction from the dashboard relies on
// it). Only the derived follow_up_due label is rejected, since it is
// never stored.
func MarkStatus(l entity.Lead, status entity.LeadStatus) (entity.Lead, error) {
	if !status.IsPersisted() {
		return l, &DomainError{
			Code:    "INVALID_STATUS",
			Message: "status " + string(status) + " cannot be stored",
		}
	}
	l.Status = status
	return l, nil
}

// IsFollowUpDue reports whether a lead is due for a follow-up right
// now. A dm_sent lead with no due date (imported without going through
// MarkDmSent) is never due.
func IsFollowUpDue(l entity.Lead, now time.Time) bool {
	if l.Status != entity.StatusDmSent || l.FollowUpDueDate == nil {
		return false
	}
	return !l.FollowUpDueDate.After(now)
}

// IsFollowUpUpcoming reports whether a lead has a follow-up scheduled
// in the future.
func IsFollowUpUpcoming(l entity.Lead, now time.Time) bool {
	if l.Status != entity.StatusDmSent || l.FollowUpDueDate == nil {
		return false
	}
	return l.FollowUpDueDate.After(now)
}

// FollowUpDue filters the leads due for a follow-up, recomputed
// against the given clock on every call.
func FollowUpDue(leads []entity.Lead, now time.Time) []entity.Lead {
	out := []entity.Lead{}
	for _, l := range leads {
		if IsFollowUpDue(l, now) {
			out = append(out, l)
		}
	}
	return out
}

// FollowUpUpcoming filters the leads with a future follow-up date.
func FollowUpUpcoming(leads []entity.Lead, now time.Time) []entity.Lead {
	out := []entity.Lead{}
	for _, l := range leads {
		if IsFollowUpUpcoming(l, now) {
			out = append(out, l)
		}
	}
	return out
}

// ReadyToDm filters the leads that have not been contacted yet.
func ReadyToDm(leads []entity.Lead) []entity.Lead {
	out := []entity.Lead{}
	for _, l := range leads {
		if l.Status == entity.StatusNew {
			out = append(out, l)
		}
	}
	return out
}

// EffectiveStatus returns the status to display: dm_sent leads whose
// due date has passed show as follow_up_due without that label ever
// being written back.
func EffectiveStatus(l entity.Lead, now time.Time) entity.LeadStatus {
	if IsFollowUpDue(l, now) {
		return entity.StatusFollowUpDue
	}
	return l.Status
}
