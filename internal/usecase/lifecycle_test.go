package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpulse/leadpulse/internal/entity"
)

var clock = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func TestMarkDmSent(t *testing.T) {
	lead := entity.Lead{ID: "l1", Status: entity.StatusNew}

	got := MarkDmSent(lead, "hey there", 5, clock)

	assert.Equal(t, entity.StatusDmSent, got.Status)
	require.NotNil(t, got.DmSentAt)
	assert.Equal(t, clock, *got.DmSentAt)
	require.NotNil(t, got.FollowUpDueDate)
	assert.Equal(t, clock.AddDate(0, 0, 5), *got.FollowUpDueDate)
	assert.Equal(t, "hey there", got.LastDmText)
}

func TestMarkDmSentDefaultsFollowUpDays(t *testing.T) {
	got := MarkDmSent(entity.Lead{}, "", 0, clock)

	require.NotNil(t, got.FollowUpDueDate)
	assert.Equal(t, clock.AddDate(0, 0, entity.DefaultFollowUpDays), *got.FollowUpDueDate)
}

func TestMarkDmSentKeepsPreviousTextWhenEmpty(t *testing.T) {
	lead := entity.Lead{LastDmText: "first dm"}

	got := MarkDmSent(lead, "", 3, clock)
	assert.Equal(t, "first dm", got.LastDmText)
}

func TestMarkFollowUpSent(t *testing.T) {
	got := MarkFollowUpSent(entity.Lead{Status: entity.StatusDmSent}, clock)

	assert.Equal(t, entity.StatusFollowUpSent, got.Status)
	require.NotNil(t, got.FollowUpSentAt)
	assert.Equal(t, clock, *got.FollowUpSentAt)
}

func TestMarkStatusAllowsArbitraryJumps(t *testing.T) {
	lead := entity.Lead{Status: entity.StatusNew}

	got, err := MarkStatus(lead, entity.StatusConverted)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusConverted, got.Status)

	// Back to new is fine too.
	got, err = MarkStatus(got, entity.StatusNew)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusNew, got.Status)
}

func TestMarkStatusRejectsDerivedLabel(t *testing.T) {
	_, err := MarkStatus(entity.Lead{}, entity.StatusFollowUpDue)

	require.Error(t, err)
	assert.True(t, IsDomainError(err))
}

func TestDueAndUpcomingPartition(t *testing.T) {
	past := clock.Add(-time.Hour)
	exact := clock
	future := clock.Add(time.Hour)

	cases := []struct {
		name     string
		lead     entity.Lead
		due      bool
		upcoming bool
	}{
		{"past due date", entity.Lead{Status: entity.StatusDmSent, FollowUpDueDate: &past}, true, false},
		{"due exactly now", entity.Lead{Status: entity.StatusDmSent, FollowUpDueDate: &exact}, true, false},
		{"future due date", entity.Lead{Status: entity.StatusDmSent, FollowUpDueDate: &future}, false, true},
		{"dm_sent without due date", entity.Lead{Status: entity.StatusDmSent}, false, false},
		{"past due but already followed up", entity.Lead{Status: entity.StatusFollowUpSent, FollowUpDueDate: &past}, false, false},
		{"new lead", entity.Lead{Status: entity.StatusNew}, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.due, IsFollowUpDue(tc.lead, clock))
			assert.Equal(t, tc.upcoming, IsFollowUpUpcoming(tc.lead, clock))
			// A lead with a due date set and status dm_sent is in
			// exactly one of the two buckets, never both.
			if tc.lead.Status == entity.StatusDmSent && tc.lead.FollowUpDueDate != nil {
				assert.NotEqual(t, IsFollowUpDue(tc.lead, clock), IsFollowUpUpcoming(tc.lead, clock))
			}
		})
	}
}

func TestFollowUpFilters(t *testing.T) {
	past := clock.Add(-24 * time.Hour)
	future := clock.Add(24 * time.Hour)
	leads := []entity.Lead{
		{ID: "due", Status: entity.StatusDmSent, FollowUpDueDate: &past},
		{ID: "upcoming", Status: entity.StatusDmSent, FollowUpDueDate: &future},
		{ID: "fresh", Status: entity.StatusNew},
	}

	due := FollowUpDue(leads, clock)
	require.Len(t, due, 1)
	assert.Equal(t, "due", due[0].ID)

	upcoming := FollowUpUpcoming(leads, clock)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "upcoming", upcoming[0].ID)

	ready := ReadyToDm(leads)
	require.Len(t, ready, 1)
	assert.Equal(t, "fresh", ready[0].ID)
}

func TestEffectiveStatus(t *testing.T) {
	past := clock.Add(-time.Minute)
	future := clock.Add(time.Minute)

	overdue := entity.Lead{Status: entity.StatusDmSent, FollowUpDueDate: &past}
	assert.Equal(t, entity.StatusFollowUpDue, EffectiveStatus(overdue, clock))
	// The stored status is untouched.
	assert.Equal(t, entity.StatusDmSent, overdue.Status)

	pending := entity.Lead{Status: entity.StatusDmSent, FollowUpDueDate: &future}
	assert.Equal(t, entity.StatusDmSent, EffectiveStatus(pending, clock))
}

func TestDueDateFollowsClockWithoutRewrites(t *testing.T) {
	// The same stored lead flips from upcoming to due as time passes,
	// with no mutation in between.
	lead := MarkDmSent(entity.Lead{ID: "l1"}, "dm", 3, clock)

	assert.False(t, IsFollowUpDue(lead, clock))
	assert.True(t, IsFollowUpUpcoming(lead, clock))

	later := clock.AddDate(0, 0, 3)
	assert.True(t, IsFollowUpDue(lead, later))
	assert.False(t, IsFollowUpUpcoming(lead, later))
}
