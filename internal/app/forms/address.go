package forms

import (
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/service"
)

type AddressForm struct {
	Name     string `form:"name" json:"name" validate:"required,max=60"`
	Address1 string `form:"address1" json:"address1" validate:"required,max=60"`
	Address2 string `form:"address2" json:"address2" validate:"max=60"`
	ZipCode  string `form:"zip_code" json:"zip_code" validate:"max=12"`
	City     string `form:"city" json:"city" validate:"required,max=60"`
	Country  string `form:"country" json:"country" validate:"required,oneof=uk us"`
}

// AddressFormFrom prefills the form from a stored address.
func AddressFormFrom(a *model.Address) AddressForm {
	return AddressForm{
		Name:     a.Name,
		Address1: a.Address1,
		Address2: a.Address2,
		ZipCode:  a.ZipCode,
		City:     a.City,
		Country:  string(a.Country),
	}
}

func (f *AddressForm) Validate() Errors {
	trim(&f.Name, &f.Address1, &f.Address2, &f.ZipCode, &f.City, &f.Country)
	return check(f)
}

func (f *AddressForm) Input() service.AddressInput {
	return service.AddressInput{
		Name:     f.Name,
		Address1: f.Address1,
		Address2: f.Address2,
		ZipCode:  f.ZipCode,
		City:     f.City,
		Country:  model.Country(f.Country),
	}
}

// CountryChoices lists the selectable countries for the address template.
func CountryChoices() []model.Country {
	return model.SupportedCountries()
}
