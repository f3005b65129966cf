package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const tagSeparator = "|"

var (
	ErrMissingName  = errors.New("missing name")
	ErrMissingPrice = errors.New("missing price")
	ErrBadPrice     = errors.New("price is not a valid non-negative number")
	ErrBadInStock   = errors.New("in_stock must be true or false")
)

// Record is a validated import row.
type Record struct {
	Line           int
	Name           string
	Slug           string
	Description    string
	Tags           []string
	Price          decimal.Decimal
	InStock        bool
	ImageFilenames []string
}

// Parse validates the row. Tags and image file names are split on "|".
func (r Row) Parse() (Record, error) {
	rec := Record{
		Line:        r.Line,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Tags:        splitList(r.Tags),
		InStock:     true,
	}

	if rec.Name == "" {
		return rec, ErrMissingName
	}

	if r.Price == "" {
		return rec, ErrMissingPrice
	}
	price, err := decimal.NewFromString(strings.TrimLeft(r.Price, "£$€"))
	if err != nil || price.IsNegative() {
		return rec, ErrBadPrice
	}
	rec.Price = price

	if r.InStock != "" {
		inStock, err := parseBool(r.InStock)
		if err != nil {
			return rec, err
		}
		rec.InStock = inStock
	}

	rec.ImageFilenames = splitList(r.ImageFilename)
	return rec, nil
}

func splitList(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, tagSeparator) {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y":
		return true, nil
	case "0", "false", "f", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrBadInStock, s)
}
