package main

import (
	"context"
	"net/http"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/onramp-labs/backend/config"
	"github.com/onramp-labs/backend/internal/client"
	"github.com/onramp-labs/backend/internal/domain"
	"github.com/onramp-labs/backend/internal/middleware"
	"github.com/onramp-labs/backend/internal/model"
	"github.com/onramp-labs/backend/internal/repository"
	"github.com/onramp-labs/backend/pkg/api"
	"github.com/onramp-labs/backend/pkg/logger"
	"github.com/onramp-labs/backend/pkg/prometheus"
	"github.com/onramp-labs/backend/pkg/router"
	"github.com/onramp-labs/backend/pkg/xcontext"
)

type srv struct {
	app *cli.App

	configs config.Configs
	logger  logger.Logger
	db      *gorm.DB

	onRampRepo repository.OnRampTransactionRepository

	paymentGateway    client.PaymentGateway
	conversionGateway client.ConversionGateway

	onRampDomain domain.OnRampDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.toml"
	}

	if _, err := toml.DecodeFile(path, &s.configs); err != nil {
		panic(err)
	}

	// Secrets are taken from the environment when present, the config file
	// only carries defaults for local development.
	if key := os.Getenv("STRIPE_PRIVATE_KEY"); key != "" {
		s.configs.Stripe.PrivateKey = key
	}

	if key := os.Getenv("BRIDGE_API_KEY"); key != "" {
		s.configs.Bridge.APIKey = key
	}

	if pwd := os.Getenv("DATABASE_PASSWORD"); pwd != "" {
		s.configs.Database.Password = pwd
	}
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger(logger.ParseLevel(os.Getenv("LOG_LEVEL")))
}

func (s *srv) loadDatabase() {
	var err error
	switch s.configs.Database.Driver {
	case "sqlite":
		s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	default:
		s.db, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                      s.configs.Database.ConnectionString(),
			DefaultStringSize:        256,
			DisableDatetimePrecision: true,
		}), &gorm.Config{})
	}

	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.onRampRepo = repository.NewOnRampTransactionRepository()
}

func (s *srv) loadGateways() {
	s.paymentGateway = client.NewStripePaymentGateway(
		api.NewGenerator(s.configs.Stripe.BaseURL), s.configs.Stripe.PrivateKey)
	s.conversionGateway = client.NewBridgeConversionGateway(
		api.NewGenerator(s.configs.Bridge.BaseURL), s.configs.Bridge.APIKey)
}

func (s *srv) loadDomains() {
	s.onRampDomain = domain.NewOnRampDomain(s.onRampRepo, s.paymentGateway, s.conversionGateway)
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, s.configs, s.logger)
	s.router.Before(middleware.AllowCors())
	s.router.Before(middleware.WithStartTime())
	s.router.Before(s.withPartnerHTTPClient())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	router.GET(s.router, "/", func(context.Context, *model.GetHealthRequest) (*model.GetHealthResponse, error) {
		return &model.GetHealthResponse{Status: "ok"}, nil
	})

	onRampRouter := s.router.Branch()
	{
		router.POST(onRampRouter, "/initiateOnRamp", s.onRampDomain.Initiate)
		router.POST(onRampRouter, "/confirmPayment", s.onRampDomain.ConfirmPayment)
		router.GET(onRampRouter, "/getOnRampStatus", s.onRampDomain.GetStatus)
		router.GET(onRampRouter, "/getOnRampTransactions", s.onRampDomain.GetTransactions)
	}

	s.router.AddHandler("/metrics", prometheus.NewHandler())
}

// withPartnerHTTPClient bounds every outgoing partner call made during a
// request to the configured timeout.
func (s *srv) withPartnerHTTPClient() router.MiddlewareFunc {
	httpClient := &http.Client{Timeout: s.configs.OnRamp.PartnerTimeout}
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithHTTPClient(ctx, httpClient), nil
	}
}

func (s *srv) newContext() context.Context {
	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, s.configs)
	ctx = xcontext.WithLogger(ctx, s.logger)
	ctx = xcontext.WithDB(ctx, s.db)
	ctx = xcontext.WithHTTPClient(ctx, &http.Client{Timeout: s.configs.OnRamp.PartnerTimeout})
	return ctx
}
