package model

import "time"

type Country string

const (
	CountryUK Country = "uk"
	CountryUS Country = "us"
)

var countryNames = map[Country]string{
	CountryUK: "United Kingdom",
	CountryUS: "United States of America",
}

func (c Country) Valid() bool {
	_, ok := countryNames[c]
	return ok
}

func (c Country) DisplayName() string {
	return countryNames[c]
}

// SupportedCountries lists the shipping countries in display order.
func SupportedCountries() []Country {
	return []Country{CountryUK, CountryUS}
}

type Address struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"size:60;not null" json:"name"`
	Address1  string    `gorm:"size:60;not null" json:"address1"`
	Address2  string    `gorm:"size:60" json:"address2"`
	ZipCode   string    `gorm:"size:12" json:"zip_code"`
	City      string    `gorm:"size:60;not null" json:"city"`
	Country   Country   `gorm:"size:3;not null" json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}

func (a Address) String() string {
	parts := a.Name + "\n" + a.Address1
	if a.Address2 != "" {
		parts += "\n" + a.Address2
	}
	return parts + "\n" + a.ZipCode + " " + a.City + "\n" + a.Country.DisplayName()
}
