package forms

import (
	"fmt"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/pkg/logger"
	"github.com/booktime/booktime/pkg/mailer"
)

type ContactForm struct {
	Name    string `form:"name" json:"name" validate:"required,max=100"`
	Message string `form:"message" json:"message" validate:"required,max=600"`
}

func (f *ContactForm) Validate() Errors {
	trim(&f.Name, &f.Message)
	return check(f)
}

// SendMail forwards the message to customer service.
func (f *ContactForm) SendMail(m mailer.Mailer, cfg *config.MailConfig) error {
	logger.Named("forms").Info("Sending email to customer service", map[string]interface{}{
		"from_name": f.Name,
	})
	return m.Send(mailer.Message{
		Subject: "Site message",
		Body:    fmt.Sprintf("From: %s\n%s", f.Name, f.Message),
		From:    cfg.From,
		To:      []string{cfg.CustomerServiceEmail},
	})
}
