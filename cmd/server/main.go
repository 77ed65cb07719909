// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/brightpost/mailing-backend/internal/access"
	"github.com/brightpost/mailing-backend/internal/auth"
	"github.com/brightpost/mailing-backend/internal/config"
	"github.com/brightpost/mailing-backend/internal/controller"
	"github.com/brightpost/mailing-backend/internal/db"
	"github.com/brightpost/mailing-backend/internal/events"
	"github.com/brightpost/mailing-backend/internal/logging"
	"github.com/brightpost/mailing-backend/internal/mailer"
	"github.com/brightpost/mailing-backend/internal/repository"
	"github.com/brightpost/mailing-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, relying on OS environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logging.Init(cfg.Log.Level)

	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer conn.Close()
	log.Info().Msg("connected to database")

	// List cache is best-effort; a dead redis just disables it.
	var cache *access.ListCache
	if cfg.Access.CacheEnabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Access.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, list cache disabled")
			rdb.Close()
		} else {
			cache = access.NewListCache(rdb, time.Duration(cfg.Access.CacheTTLSeconds)*time.Second)
		}
	}
	resolver := access.NewResolver(cache)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			log.Warn().Err(err).Msg("amqp unavailable, events disabled")
		} else {
			publisher = p
			defer p.Close()
		}
	}

	accountRepo := &repository.AccountRepository{DB: conn}
	subscriberRepo := &repository.SubscriberRepository{DB: conn}
	messageRepo := &repository.MessageRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	attemptRepo := &repository.AttemptRepository{DB: conn}

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP)

	mailingService := &service.MailingService{
		CampaignRepo:   campaignRepo,
		SubscriberRepo: subscriberRepo,
		MessageRepo:    messageRepo,
		AttemptRepo:    attemptRepo,
		Access:         resolver,
		Mailer:         smtpMailer,
		Events:         publisher,
		From:           cfg.SMTP.From,
	}
	subscriberService := &service.SubscriberService{
		SubscriberRepo: subscriberRepo,
		Access:         resolver,
	}
	messageService := &service.MessageService{
		MessageRepo: messageRepo,
		Access:      resolver,
	}
	accountService := &service.AccountService{
		AccountRepo: accountRepo,
		Mailer:      smtpMailer,
		From:        cfg.SMTP.From,
		BaseURL:     fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port),
	}

	campaignController := &controller.CampaignController{MailingService: mailingService}
	subscriberController := &controller.SubscriberController{SubscriberService: subscriberService}
	messageController := &controller.MessageController{MessageService: messageService}
	accountController := &controller.AccountController{AccountService: accountService}

	r := chi.NewRouter()

	// Public routes
	r.Get("/home", campaignController.Home)
	r.Post("/accounts", accountController.Register)
	r.Get("/accounts/email-confirm/{token}", accountController.ConfirmEmail)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(accountRepo))

		r.Get("/subscribers", subscriberController.List)
		r.Post("/subscribers", subscriberController.Create)
		r.Get("/subscribers/{id}", subscriberController.Get)
		r.Put("/subscribers/{id}", subscriberController.Update)
		r.Delete("/subscribers/{id}", subscriberController.Delete)

		r.Get("/messages", messageController.List)
		r.Post("/messages", messageController.Create)
		r.Get("/messages/{id}", messageController.Get)
		r.Put("/messages/{id}", messageController.Update)
		r.Delete("/messages/{id}", messageController.Delete)

		r.Get("/campaigns", campaignController.ListCampaigns)
		r.Post("/campaigns", campaignController.CreateCampaign)
		r.Get("/campaigns/{id}", campaignController.GetCampaign)
		r.Put("/campaigns/{id}", campaignController.UpdateCampaign)
		r.Delete("/campaigns/{id}", campaignController.DeleteCampaign)
		r.Post("/campaigns/{id}/send", campaignController.SendCampaign)
		r.Post("/campaigns/{id}/disable", campaignController.DisableCampaign)
		r.Get("/campaigns/{id}/attempts", campaignController.ListAttempts)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server running")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
