package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/aurorains/insurance-platform/internal/core"
	"github.com/aurorains/insurance-platform/internal/platform/config"
	"github.com/aurorains/insurance-platform/internal/platform/logging"
	"github.com/aurorains/insurance-platform/internal/store/dynamo"
	"github.com/aurorains/insurance-platform/internal/store/memory"
	"github.com/aurorains/insurance-platform/internal/store/mongo"
)

// Seeds the product catalogue and the bootstrap logins. Passwords come from
// the environment; nothing secret lives in this file.
func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.Env, "insurance-seed")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		products    core.ProductRepo
		credentials core.CredentialRepo
	)
	switch cfg.DBType {
	case "dynamodb":
		client, err := dynamo.NewClient(ctx, dynamo.Config{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.DynamoDBEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			log.Error("failed to connect to DynamoDB", "err", err)
			os.Exit(1)
		}
		if err := dynamo.EnsureTables(ctx, client.DB, log); err != nil {
			log.Error("failed to ensure DynamoDB tables", "err", err)
			os.Exit(1)
		}
		products = dynamo.NewProductRepo(client.DB)
		credentials = dynamo.NewCredentialRepo(client.DB)

	default:
		client, err := mongo.NewClient(cfg)
		if err != nil {
			log.Error("failed to connect to MongoDB", "err", err)
			os.Exit(1)
		}
		defer func() { _ = client.Close(context.Background()) }()

		if err := mongo.EnsureIndexes(ctx, client.DB); err != nil {
			log.Error("failed to ensure MongoDB indexes", "err", err)
			os.Exit(1)
		}
		products = mongo.NewProductRepo(client.DB, 5*time.Second)
		credentials = mongo.NewCredentialRepo(client.DB, 5*time.Second)
	}

	log.Info("seeding products")
	seedProducts(ctx, log, products)

	log.Info("seeding logins")
	seedLogins(ctx, log, credentials)

	log.Info("done seeding")
}

func seedProducts(ctx context.Context, log *slog.Logger, repo core.ProductRepo) {
	catalogue := []core.Product{
		{
			Slug:        "health-essential",
			Name:        "Essential Health Cover",
			Line:        core.ProductLineHealth,
			BasePremium: 1200,
			Description: "Hospitalization and outpatient cover for individuals.",
		},
		{
			Slug:        "health-family",
			Name:        "Family Health Cover",
			Line:        core.ProductLineHealth,
			BasePremium: 2400,
			Description: "Comprehensive cover for the whole household.",
		},
		{
			Slug:        "life-term",
			Name:        "Term Life Protection",
			Line:        core.ProductLineLife,
			BasePremium: 1500,
			Description: "Fixed-term life cover with level premiums.",
		},
		{
			Slug:        "motor-standard",
			Name:        "Standard Motor Cover",
			Line:        core.ProductLineMotor,
			BasePremium: 900,
			Description: "Third-party and own-damage motor cover.",
		},
	}

	for _, p := range catalogue {
		if err := repo.UpsertBySlug(ctx, p); err != nil {
			log.Error("failed to seed product", "slug", p.Slug, "err", err)
			continue
		}
		log.Info("seeded product", "slug", p.Slug)
	}
}

func seedLogins(ctx context.Context, log *slog.Logger, credentials core.CredentialRepo) {
	// Sessions are irrelevant here; registration only writes credentials.
	auth := core.NewAuthService(credentials, memory.NewSessionStore(), time.Minute)

	logins := []struct {
		emailVar, passwordVar string
		role                  core.Role
	}{
		{"SEED_ADMIN_EMAIL", "SEED_ADMIN_PASSWORD", core.RoleAdmin},
		{"SEED_UNDERWRITER_EMAIL", "SEED_UNDERWRITER_PASSWORD", core.RoleUnderwriter},
	}

	for _, l := range logins {
		email := os.Getenv(l.emailVar)
		password := os.Getenv(l.passwordVar)
		if email == "" || password == "" {
			log.Warn("skipping login seed, env vars unset", "email_var", l.emailVar)
			continue
		}

		_, err := auth.Register(ctx, email, password, l.role, "")
		if err != nil {
			if errors.Is(err, core.ErrCredentialExists) {
				log.Info("login already exists", "email", email)
				continue
			}
			log.Error("failed to seed login", "email", email, "err", err)
			continue
		}
		log.Info("seeded login", "email", email, "role", l.role)
	}
}
