package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/blockticket/blockticket/internal/config"
	"github.com/blockticket/blockticket/internal/database"
	"github.com/blockticket/blockticket/internal/handler"
	"github.com/blockticket/blockticket/internal/mail"
	"github.com/blockticket/blockticket/internal/queue"
	"github.com/blockticket/blockticket/internal/registry"
	"github.com/blockticket/blockticket/internal/repository"
	"github.com/blockticket/blockticket/internal/router"
	queue_publisher "github.com/blockticket/blockticket/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and response cache; nil degrades both
	// to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	runner := repository.NewSQLTxRunner(db)
	accounts := repository.NewAccountRepo(db)
	events := repository.NewEventRepo(db)
	tickets := repository.NewTicketRepo(db)
	listings := repository.NewListingRepo(db)
	fees := repository.NewFeeRepo(db)
	tokens := repository.NewTokenRepo(db)

	eventReg := registry.NewEventRegistry(runner, events)
	ticketReg := registry.NewTicketRegistry(runner, tickets, events, accounts, fees)
	marketReg := registry.NewMarketplace(runner, listings, tickets, events, accounts, fees,
		cfg.MarketAccountID, queue_publisher.NewSalePublisher())
	accountReg := registry.NewAccountRegistry(runner, accounts)

	// The sale consumer writes logs/sales.log and, when a relay is
	// configured, mails both parties of every sale.
	var notifier queue.Notifier
	if cfg.MailRelayURL != "" {
		notifier = mail.NewSaleNotifier(mail.NewRelayClient(cfg.MailRelayURL))
	}
	go func() {
		if err := queue.StartSaleConsumer(notifier); err != nil {
			log.Printf("sale consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, accounts, tokens),
		Events:  handler.NewEventHandler(eventReg),
		Tickets: handler.NewTicketHandler(ticketReg),
		Market:  handler.NewMarketplaceHandler(marketReg),
		Admin:   handler.NewAdminHandler(ticketReg, marketReg, accountReg),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
