package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ReminderNotifier delivers a due-follow-up reminder to the user
// (today that means email, see infra/mail).
type ReminderNotifier interface {
	SendFollowUpReminder(payload ReminderPayload) error
}

type Worker struct {
	Channel  *amqp.Channel
	Notifier ReminderNotifier
}

func NewWorker(ch *amqp.Channel, notifier ReminderNotifier) *Worker {
	return &Worker{Channel: ch, Notifier: notifier}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ [WORKER] failed to register consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload ReminderPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] malformed reminder, dropping: %s", err)
				// Rejecting without requeue keeps a poison message from
				// blocking the queue; it lands in the DLQ.
				d.Nack(false, false)
				continue
			}

			log.Printf("📥 [WORKER] follow-up due for %s (%s)", payload.Name, payload.Platform)

			if err := w.Notifier.SendFollowUpReminder(payload); err != nil {
				log.Printf("❌ [WORKER] reminder delivery failed: %s", err)
				d.Nack(false, false)
			} else {
				log.Printf("✅ [WORKER] reminder sent for lead %s", payload.LeadID)
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Reminder worker waiting on queue '%s'", queueName)
	<-forever
}
