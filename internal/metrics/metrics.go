// Package metrics defines the Prometheus counters exported by the
// service. Counters register themselves on the default registry and are
// served by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsCreated counts successfully registered events.
	EventsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockticket_events_created_total",
		Help: "Number of events registered.",
	})

	// TicketsMinted counts minted tickets, batch mints included.
	TicketsMinted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockticket_tickets_minted_total",
		Help: "Number of tickets minted.",
	})

	// TicketsSold counts completed marketplace purchases.
	TicketsSold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockticket_tickets_sold_total",
		Help: "Number of tickets sold on the marketplace.",
	})

	// ListingsCreated counts listings placed on the marketplace.
	ListingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockticket_listings_created_total",
		Help: "Number of marketplace listings created.",
	})

	// ListingsCancelled counts listings withdrawn by their seller.
	ListingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockticket_listings_cancelled_total",
		Help: "Number of marketplace listings cancelled.",
	})

	// MailsSent counts notification mails handed to the SMTP relay,
	// labelled by outcome.
	MailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blockticket_mails_sent_total",
		Help: "Number of notification mails sent, by outcome.",
	}, []string{"status"})
)
