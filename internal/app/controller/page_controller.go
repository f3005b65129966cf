package controller

import (
	"net/http"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/internal/app/forms"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/booktime/booktime/pkg/mailer"
	"github.com/gin-gonic/gin"
)

type PageController struct {
	mailer  mailer.Mailer
	mailCfg *config.MailConfig
}

func NewPageController(m mailer.Mailer, mailCfg *config.MailConfig) *PageController {
	return &PageController{
		mailer:  m,
		mailCfg: mailCfg,
	}
}

// Home renders the landing page
// GET /
func (ctrl *PageController) Home(c *gin.Context) {
	render(c, http.StatusOK, "home.html", nil)
}

// AboutUs renders the about page
// GET /about-us/
func (ctrl *PageController) AboutUs(c *gin.Context) {
	render(c, http.StatusOK, "about_us.html", nil)
}

// ContactUs shows the contact form
// GET /contact-us/
func (ctrl *PageController) ContactUs(c *gin.Context) {
	render(c, http.StatusOK, "contact_form.html", gin.H{
		"form":   &forms.ContactForm{},
		"errors": forms.Errors{},
	})
}

// SubmitContactUs validates the form and mails customer service
// POST /contact-us/
func (ctrl *PageController) SubmitContactUs(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var form forms.ContactForm
	bindForm(c, &form)

	if errs := form.Validate(); len(errs) > 0 {
		log.Warn("Invalid contact form", map[string]interface{}{
			"fields": len(errs),
		})
		render(c, http.StatusOK, "contact_form.html", gin.H{
			"form":   &form,
			"errors": errs,
		})
		return
	}

	if err := form.SendMail(ctrl.mailer, ctrl.mailCfg); err != nil {
		log.Error("Failed to send contact message", err)
		errs := forms.Errors{}
		errs.Add(forms.NonFieldErrors, "Your message could not be sent, please try again later.")
		render(c, http.StatusOK, "contact_form.html", gin.H{
			"form":   &form,
			"errors": errs,
		})
		return
	}

	c.Redirect(http.StatusFound, "/")
}
