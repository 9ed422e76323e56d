// The mailrelay service exposes a single route, POST /send-email, and
// forwards the mail over SMTP. Keeping SMTP credentials out of the main
// API process means only this small service ever holds them.
package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/blockticket/blockticket/internal/mail"
)

func main() {
	_ = godotenv.Load()

	host := envOr("SMTP_HOST", "smtp.gmail.com")
	port := 587
	if p, err := strconv.Atoi(envOr("SMTP_PORT", "587")); err == nil {
		port = p
	}
	user := os.Getenv("EMAIL_USER")
	pass := os.Getenv("EMAIL_PASS")
	if user == "" || pass == "" {
		log.Fatal("EMAIL_USER and EMAIL_PASS are required")
	}

	sender := mail.NewSMTPSender(host, port, user, pass)

	e := echo.New()
	e.POST("/send-email", func(c echo.Context) error {
		var msg mail.Message
		if err := c.Bind(&msg); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
		}
		if strings.TrimSpace(msg.To) == "" || strings.TrimSpace(msg.Subject) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "to and subject required"})
		}
		if err := sender.Send(msg); err != nil {
			log.Printf("send-email: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"message": "Error sending email",
				"error":   err.Error(),
			})
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Email sent successfully"})
	})

	addr := ":" + envOr("MAIL_RELAY_PORT", "3001")
	log.Printf("mail relay listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
