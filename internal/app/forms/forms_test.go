package forms

import (
	"bytes"
	"strings"
	"testing"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/pkg/logger"
	"github.com/booktime/booktime/pkg/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mailCfg = &config.MailConfig{
	From:                 "site@booktime.domain",
	CustomerServiceEmail: "customerservice@booktime.domain",
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.Initialize(logger.Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() {
		logger.Initialize(logger.Config{Level: "info", Format: "console"})
	})
	return &buf
}

func infoLines(buf *bytes.Buffer) int {
	n := 0
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, `"level":"info"`) && strings.Contains(line, `"component":"forms"`) {
			n++
		}
	}
	return n
}

func TestContactForm_ValidSendsEmail(t *testing.T) {
	buf := captureLogs(t)
	m := mailer.NewMemoryMailer()

	form := &ContactForm{Name: "Luke Skywalker", Message: "Hi there"}
	assert.Empty(t, form.Validate())

	require.NoError(t, form.SendMail(m, mailCfg))

	outbox := m.Outbox()
	require.Len(t, outbox, 1)
	assert.Equal(t, "Site message", outbox[0].Subject)
	assert.Equal(t, []string{"customerservice@booktime.domain"}, outbox[0].To)
	assert.GreaterOrEqual(t, infoLines(buf), 1)
}

func TestContactForm_Invalid(t *testing.T) {
	form := &ContactForm{Message: "Hi there"}
	errs := form.Validate()
	assert.True(t, errs.Has("name"))
	assert.Equal(t, "This field is required.", errs.First("name"))

	form = &ContactForm{Name: "Luke", Message: "   \n\t "}
	errs = form.Validate()
	assert.Equal(t, "This field is required.", errs.First("message"))

	form = &ContactForm{Name: "Luke", Message: strings.Repeat("x", 601)}
	errs = form.Validate()
	assert.Contains(t, errs.First("message"), "at most 600")
}

func TestSignupForm_ValidSendsEmail(t *testing.T) {
	buf := captureLogs(t)
	m := mailer.NewMemoryMailer()

	form := &SignupForm{Email: "user@domain.com", Password1: "abcabcabc", Password2: "abcabcabc"}
	assert.Empty(t, form.Validate())

	require.NoError(t, form.SendMail(m, mailCfg))

	outbox := m.Outbox()
	require.Len(t, outbox, 1)
	assert.Equal(t, "Welcome to BookTime", outbox[0].Subject)
	assert.Equal(t, []string{"user@domain.com"}, outbox[0].To)
	assert.GreaterOrEqual(t, infoLines(buf), 1)
}

func TestSignupForm_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		form  SignupForm
		field string
	}{
		{"missing email", SignupForm{Password1: "abcabcabc", Password2: "abcabcabc"}, "email"},
		{"bad email", SignupForm{Email: "nope", Password1: "abcabcabc", Password2: "abcabcabc"}, "email"},
		{"mismatch", SignupForm{Email: "user@domain.com", Password1: "abcabcabc", Password2: "abcabcabd"}, "password2"},
		{"too short", SignupForm{Email: "user@domain.com", Password1: "abc", Password2: "abc"}, "password2"},
		{"numeric", SignupForm{Email: "user@domain.com", Password1: "12345678901", Password2: "12345678901"}, "password2"},
		{"missing password", SignupForm{Email: "user@domain.com"}, "password1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.form.Validate()
			assert.True(t, errs.Has(tt.field), "errors: %v", errs)
		})
	}
}

func TestLoginForm_Validate(t *testing.T) {
	form := &LoginForm{Email: " user@domain.com ", Password: "secret"}
	assert.Empty(t, form.Validate())
	assert.Equal(t, "user@domain.com", form.Email)

	form = &LoginForm{Email: "user@domain.com"}
	assert.True(t, form.Validate().Has("password"))
}

func TestAddressForm(t *testing.T) {
	form := &AddressForm{
		Name:     "john kercher",
		Address1: "1 av st",
		ZipCode:  "MA12GS",
		City:     "Manchester",
		Country:  "uk",
	}
	assert.Empty(t, form.Validate())

	in := form.Input()
	assert.Equal(t, model.CountryUK, in.Country)
	assert.Equal(t, "Manchester", in.City)

	form.Country = "fr"
	assert.Equal(t, "Select a valid choice.", form.Validate().First("country"))

	prefilled := AddressFormFrom(&model.Address{Name: "john", City: "London", Country: model.CountryUS})
	assert.Equal(t, "us", prefilled.Country)
	assert.Len(t, CountryChoices(), 2)
}

func TestErrors(t *testing.T) {
	errs := Errors{}
	assert.False(t, errs.Has("x"))
	assert.Equal(t, "", errs.First("x"))
	errs.Add("x", "one")
	errs.Add("x", "two")
	assert.Equal(t, "one", errs.First("x"))
	assert.Len(t, errs["x"], 2)
}
