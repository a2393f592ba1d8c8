package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leadpulse/leadpulse/internal/infra/database"
	"github.com/leadpulse/leadpulse/internal/infra/http/handlers"
	"github.com/leadpulse/leadpulse/internal/infra/http/middleware"
	"github.com/leadpulse/leadpulse/internal/infra/integration/gemini"
	"github.com/leadpulse/leadpulse/internal/infra/localstore"
	"github.com/leadpulse/leadpulse/internal/infra/mail"
	"github.com/leadpulse/leadpulse/internal/infra/queue"
	"github.com/leadpulse/leadpulse/internal/infra/worker"
	"github.com/leadpulse/leadpulse/internal/usecase"
)

func main() {
	godotenv.Load()

	// 1. Local snapshot — always on, it is the offline backstop.
	local := localstore.New(os.Getenv("LEADPULSE_DATA_FILE"))

	// 2. Remote store — optional. Without DATABASE_URL and a user id
	// the store runs local-only and never touches the network.
	var (
		db     *sql.DB
		remote usecase.RemoteRepository
	)
	userID := os.Getenv("LEADPULSE_USER_ID")
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" && userID != "" {
		var err error
		db, err = database.NewDBConnection(dsn)
		if err != nil {
			log.Fatalf("❌ database connection failed: %v", err)
		}
		defer db.Close()
		remote = database.NewRepository(db)
	} else {
		log.Println("ℹ️ remote sync disabled (DATABASE_URL or LEADPULSE_USER_ID not set)")
	}

	// 3. Synchronization controller + one-time bulk load.
	store := usecase.NewStore(local, remote, userID)
	store.RemoteErrorHook = middleware.RecordRemoteSyncFailure
	store.Load(context.Background())

	// 4. Reminder pipeline — optional, needs RabbitMQ.
	if host := os.Getenv("RABBITMQ_HOST"); host != "" {
		rabbitMQ, err := queue.NewRabbitMQ(
			os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
			host, os.Getenv("RABBITMQ_PORT"),
		)
		if err != nil {
			log.Fatalf("❌ rabbitmq connection failed: %v", err)
		}
		defer rabbitMQ.Conn.Close()
		defer rabbitMQ.Ch.Close()

		mailPort, _ := strconv.Atoi(os.Getenv("MAIL_PORT"))
		if mailPort == 0 {
			mailPort = 587
		}
		mailSender := mail.NewEmailSender(
			os.Getenv("MAIL_HOST"), mailPort,
			os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
			os.Getenv("MAIL_FROM"), os.Getenv("MAIL_TO"),
		)

		reminderWorker := queue.NewWorker(rabbitMQ.Ch, mailSender)
		go reminderWorker.Start(queue.QueueName)

		producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
		followUps := worker.NewFollowUpWorker(store, producer)
		go followUps.Start(context.Background())
	} else {
		log.Println("ℹ️ reminder pipeline disabled (RABBITMQ_HOST not set)")
	}

	// 5. Handlers.
	leadHandler := handlers.NewLeadHandler(store)
	templateHandler := handlers.NewTemplateHandler(store)
	settingsHandler := handlers.NewSettingsHandler(store)
	aiHandler := handlers.NewAIHandler(store, gemini.NewClient())
	healthHandler := handlers.NewHealthHandler(db, store)

	// 6. Router.
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", leadHandler.List)
		r.Post("/", leadHandler.Create)
		r.Post("/bulk", leadHandler.BulkImport)
		r.Get("/follow-up-due", leadHandler.FollowUps)
		r.Get("/ready", leadHandler.Ready)
		r.Patch("/{id}", leadHandler.Update)
		r.Delete("/{id}", leadHandler.Delete)
		r.Post("/{id}/dm-sent", leadHandler.MarkDmSent)
		r.Post("/{id}/follow-up-sent", leadHandler.MarkFollowUpSent)
		r.Post("/{id}/status", leadHandler.MarkStatus)
	})

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", templateHandler.List)
		r.Post("/", templateHandler.Create)
		r.Patch("/{id}", templateHandler.Update)
		r.Delete("/{id}", templateHandler.Delete)
		r.Post("/{id}/render", templateHandler.Render)
	})

	r.Get("/settings", settingsHandler.Get)
	r.Put("/settings", settingsHandler.Update)

	r.Post("/ai/generate", aiHandler.Generate)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🔥 LeadPulse API listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
