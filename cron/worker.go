package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"chefbook/config"
	"chefbook/models"
	"chefbook/services/booking"
	"chefbook/services/notification"

	"github.com/hibiken/asynq"
)

// TypeCompletionSweep moves confirmed bookings past their event date to
// completed.
const TypeCompletionSweep = "booking:completion_sweep"

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewQueueClient returns the asynq client used to enqueue background tasks.
func NewQueueClient() *asynq.Client {
	return asynq.NewClient(redisOpts())
}

// InitWorker runs the async worker and the periodic scheduler in background.
// The worker redelivers failed notifications and applies the completion
// sweep; asynq's own retry policy covers transient failures.
func InitWorker(sender notification.Sender, bookingSvc booking.BookingService) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeNotifyRetry, handleNotifyRetry(sender))
	mux.HandleFunc(TypeCompletionSweep, handleCompletionSweep(bookingSvc))

	go func() {
		log.Println("[Worker] Starting async worker...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] failed to start worker: %v", err)
		}
	}()

	scheduler := asynq.NewScheduler(redisOpts(), &asynq.SchedulerOpts{})
	if _, err := scheduler.Register("@hourly", asynq.NewTask(TypeCompletionSweep, nil)); err != nil {
		log.Fatalf("[Worker] failed to register completion sweep: %v", err)
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[Worker] failed to start scheduler: %v", err)
		}
	}()
}

func handleNotifyRetry(sender notification.Sender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.NotificationRetryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[NotifyRetry] invalid payload: %v", err)
			return err
		}

		log.Printf("[NotifyRetry] redelivering %s for booking %s", p.Notification.Type, p.BookingID)
		sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return sender.Send(sendCtx, p.Notification)
	}
}

func handleCompletionSweep(bookingSvc booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := bookingSvc.CompletePastBookings(ctx)
		if err != nil {
			log.Printf("[CompletionSweep] sweep failed: %v", err)
			return err
		}
		if n > 0 {
			log.Printf("[CompletionSweep] completed %d past bookings", n)
		}
		return nil
	}
}
