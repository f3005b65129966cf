package forms

import (
	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/pkg/logger"
	"github.com/booktime/booktime/pkg/mailer"
	"github.com/booktime/booktime/pkg/util"
)

const EmailTakenMessage = "A user with that email already exists."

type SignupForm struct {
	Email     string `form:"email" json:"email" validate:"required,email,max=254"`
	Password1 string `form:"password1" json:"-" validate:"required"`
	Password2 string `form:"password2" json:"-" validate:"required"`
}

// Validate checks field rules, that both passwords match and the password policy.
// Email uniqueness is checked when the user is created.
func (f *SignupForm) Validate() Errors {
	trim(&f.Email)
	errs := check(f)
	if errs.Has("password1") || errs.Has("password2") {
		return errs
	}
	if f.Password1 != f.Password2 {
		errs.Add("password2", util.ErrPasswordNotMatched.Error())
		return errs
	}
	if err := util.ValidatePassword(f.Password2, f.Email); err != nil {
		errs.Add("password2", err.Error())
	}
	return errs
}

func (f *SignupForm) SendMail(m mailer.Mailer, cfg *config.MailConfig) error {
	logger.Named("forms").Info("Sending signup email", map[string]interface{}{
		"email": f.Email,
	})
	return m.Send(mailer.Message{
		Subject: "Welcome to BookTime",
		Body:    "Welcome to BookTime. You can now log in with " + f.Email + ".",
		From:    cfg.From,
		To:      []string{f.Email},
	})
}
