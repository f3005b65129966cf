package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
	}{
		{name: "nil", err: nil, wantCode: InternalServerError},
		{name: "product not found", err: gorm.ErrRecordNotFound, context: "get product", wantCode: ProductNotFound},
		{name: "tag not found", err: fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), context: "tag", wantCode: TagNotFound},
		{name: "address not found", err: gorm.ErrRecordNotFound, context: "update address", wantCode: AddressNotFound},
		{name: "duplicate email", err: errors.New("UNIQUE constraint failed: users.email"), wantCode: AuthEmailAlreadyExists},
		{name: "duplicate slug", err: errors.New(`duplicate key value violates unique constraint "idx_products_slug"`), wantCode: ResourceAlreadyExists},
		{name: "missing product", err: errors.New("FOREIGN KEY constraint failed on product_id"), wantCode: ProductNotFound},
		{name: "not null", err: errors.New("NOT NULL constraint failed: products.price"), wantCode: ValidationRequired},
		{name: "timeout", err: errors.New("dial tcp: i/o timeout"), wantCode: InternalExternalAPI},
		{name: "other", err: errors.New("boom"), context: "create product", wantCode: InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestParseError_MessagesHideDetails(t *testing.T) {
	info := ParseError(errors.New(`pq: duplicate key value violates unique constraint "idx_users_email"`), "signup")
	assert.NotContains(t, info.Message, "idx_users_email")
	assert.Equal(t, "A user with that email already exists", info.Message)
}
