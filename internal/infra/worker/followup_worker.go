package worker

import (
	"context"
	"log"
	"time"

	"github.com/leadpulse/leadpulse/internal/entity"
	"github.com/leadpulse/leadpulse/internal/infra/http/middleware"
	"github.com/leadpulse/leadpulse/internal/infra/queue"
	"github.com/leadpulse/leadpulse/internal/usecase"
)

type ReminderProducer interface {
	PublishReminder(ctx context.Context, payload queue.ReminderPayload) error
}

// FollowUpWorker periodically scans the due view and publishes one
// reminder per lead per due date. Due-ness is recomputed from the
// stored timestamps on every tick, never cached in the store itself.
type FollowUpWorker struct {
	store        *usecase.Store
	producer     ReminderProducer
	tickInterval time.Duration

	// notified remembers which (lead, due date) pairs already produced
	// a reminder this session. Re-marking a DM moves the due date and
	// arms a fresh reminder.
	notified map[string]time.Time
}

func NewFollowUpWorker(store *usecase.Store, producer ReminderProducer) *FollowUpWorker {
	return &FollowUpWorker{
		store:        store,
		producer:     producer,
		tickInterval: time.Minute,
		notified:     make(map[string]time.Time),
	}
}

func (w *FollowUpWorker) Start(ctx context.Context) {
	log.Println("🕒 Follow-up reminder worker started")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Follow-up reminder worker stopped")
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *FollowUpWorker) scan(ctx context.Context) {
	due := w.store.FollowUpDue()

	published := 0
	for _, lead := range due {
		if lead.FollowUpDueDate == nil {
			continue
		}
		if prev, ok := w.notified[lead.ID]; ok && prev.Equal(*lead.FollowUpDueDate) {
			continue
		}

		payload := reminderPayload(lead)
		if err := w.producer.PublishReminder(ctx, payload); err != nil {
			log.Printf("❌ failed to publish reminder for lead %s: %v", lead.ID, err)
			continue
		}
		w.notified[lead.ID] = *lead.FollowUpDueDate
		middleware.RecordReminderPublished()
		published++
	}

	if published > 0 {
		log.Printf("✅ %d follow-up reminder(s) published", published)
	}
}

func reminderPayload(lead entity.Lead) queue.ReminderPayload {
	return queue.ReminderPayload{
		LeadID:     lead.ID,
		Name:       lead.Name,
		ProfileURL: lead.ProfileURL,
		Platform:   string(lead.Platform),
		Category:   string(lead.Category),
		DueDate:    *lead.FollowUpDueDate,
		LastDmText: lead.LastDmText,
	}
}
