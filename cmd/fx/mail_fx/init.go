package mail_fx

import (
	"os"
	"strconv"

	"go.uber.org/fx"

	"careerkit/internal/services"
)

var Module = fx.Provide(provideMailService)

func provideMailService() services.IMailService {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}

	cfg := services.SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
		FromName: "CareerKit",
		UseSSL:   port == 465,

		AppName: "CareerKit",
	}
	return services.NewSMTPMailService(cfg)
}
