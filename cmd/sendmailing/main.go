// cmd/sendmailing/main.go
//
// Dispatches one or more campaigns by id from the command line, through
// the same lifecycle guard and dispatcher as the web route:
//
//	sendmailing 3 5 7
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/brightpost/mailing-backend/internal/access"
	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/config"
	"github.com/brightpost/mailing-backend/internal/db"
	"github.com/brightpost/mailing-backend/internal/events"
	"github.com/brightpost/mailing-backend/internal/logging"
	"github.com/brightpost/mailing-backend/internal/mailer"
	"github.com/brightpost/mailing-backend/internal/repository"
	"github.com/brightpost/mailing-backend/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: sendmailing <campaign-id> [<campaign-id> ...]")
		os.Exit(2)
	}

	_ = godotenv.Load()
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

	accountRepo := &repository.AccountRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}

	mailingService := &service.MailingService{
		CampaignRepo:   campaignRepo,
		SubscriberRepo: &repository.SubscriberRepository{DB: conn},
		MessageRepo:    &repository.MessageRepository{DB: conn},
		AttemptRepo:    &repository.AttemptRepository{DB: conn},
		Access:         access.NewResolver(nil),
		Mailer:         mailer.NewSMTPMailer(cfg.SMTP),
		Events:         events.NopPublisher{},
		From:           cfg.SMTP.From,
	}

	exitCode := 0
	for _, arg := range os.Args[1:] {
		id, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid campaign id %q\n", arg)
			exitCode = 1
			continue
		}
		if err := sendOne(mailingService, accountRepo, campaignRepo, id); err != nil {
			fmt.Fprintln(os.Stderr, err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

// sendOne dispatches on behalf of the campaign's owner, so the guard's
// capability check behaves exactly as in the interactive flow.
func sendOne(
	svc *service.MailingService,
	accounts repository.AccountRepositoryInterface,
	campaigns repository.CampaignRepositoryInterface,
	id int,
) error {
	campaign, err := campaigns.GetByID(id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return fmt.Errorf("campaign %d not found", id)
		}
		return err
	}
	if campaign.OwnerID == nil {
		return fmt.Errorf("campaign %d has no owner account", id)
	}
	actor, err := accounts.GetByID(*campaign.OwnerID)
	if err != nil {
		return err
	}

	report, err := svc.SendCampaign(context.Background(), actor, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoRecipients) {
			fmt.Printf("campaign %d has no recipients\n", id)
			return nil
		}
		if reason := apperrors.BlockedReason(err); reason != "" {
			return fmt.Errorf("campaign %d cannot be sent: %s", id, reason)
		}
		return err
	}

	fmt.Printf("campaign %d: sent %d, failed %d\n", id, report.Sent, report.Failed)
	return nil
}
