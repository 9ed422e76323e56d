// Package mail implements the notification mail path: an SMTP sender used
// by the relay service and an HTTP client the sale consumer uses to reach
// the relay.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/blockticket/blockticket/internal/metrics"
	"github.com/blockticket/blockticket/internal/queue"
)

// Message is one outbound plain-text mail.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Sender delivers a single mail.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender sends mail over an authenticated SMTP connection.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds a sender for the given SMTP endpoint. Mail is sent
// from the authenticating address.
func NewSMTPSender(host string, port int, user, pass string) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(host, port, user, pass), from: user}
}

func (s *SMTPSender) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if err := s.dialer.DialAndSend(m); err != nil {
		metrics.MailsSent.WithLabelValues("error").Inc()
		return fmt.Errorf("smtp send: %w", err)
	}
	metrics.MailsSent.WithLabelValues("ok").Inc()
	return nil
}

// RelayClient posts mail to the relay service's /send-email route.
type RelayClient struct {
	baseURL string
	client  *http.Client
}

// NewRelayClient builds a client for the relay at baseURL, e.g.
// "http://localhost:3001".
func NewRelayClient(baseURL string) *RelayClient {
	return &RelayClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *RelayClient) Send(msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send-email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}
	return nil
}

// SaleNotifier turns sale events into the buyer and seller mails. It
// satisfies the consumer's Notifier interface with any Sender behind it.
type SaleNotifier struct {
	sender Sender
}

func NewSaleNotifier(sender Sender) *SaleNotifier { return &SaleNotifier{sender: sender} }

// NotifySale mails both parties of a sale. The seller failure does not
// suppress the buyer mail; the first error is returned.
func (n *SaleNotifier) NotifySale(ev queue.TicketSoldEvent) error {
	when := time.Unix(ev.EventDate, 0).UTC().Format("2006-01-02 15:04")
	sellerMsg := Message{
		To:      ev.SellerEmail,
		Subject: fmt.Sprintf("Your ticket for %s sold", ev.EventName),
		Text: fmt.Sprintf("Ticket #%d (%s, seat %s, %s) sold for %d units to account %d.",
			ev.TokenID, ev.EventType, ev.SeatingInfo, when, ev.PriceUnits, ev.BuyerID),
	}
	buyerMsg := Message{
		To:      ev.BuyerEmail,
		Subject: fmt.Sprintf("Your ticket for %s", ev.EventName),
		Text: fmt.Sprintf("You bought ticket #%d (%s, seat %s, %s) for %d units.",
			ev.TokenID, ev.EventType, ev.SeatingInfo, when, ev.PriceUnits),
	}
	err := n.sender.Send(sellerMsg)
	if buyerErr := n.sender.Send(buyerMsg); err == nil {
		err = buyerErr
	}
	return err
}
