package service

import (
	"testing"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAddressTest(t *testing.T) (AddressService, *model.User, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	auth := NewAuthService(repository.NewUserRepository(testDB), "secret", 0, 0)
	user1, err := auth.Signup("user1@domain.com", "pw432joij")
	require.NoError(t, err)
	user2, err := auth.Signup("user2@domain.com", "pw432joij")
	require.NoError(t, err)

	return NewAddressService(repository.NewAddressRepository(testDB)), user1, user2
}

func validAddress(name string) AddressInput {
	return AddressInput{
		Name:     name,
		Address1: "flat 2",
		Address2: "12 Stralz avenue",
		ZipCode:  "MA12GS",
		City:     "London",
		Country:  model.CountryUK,
	}
}

func TestAddressService_ListOnlyOwned(t *testing.T) {
	svc, user1, user2 := setupAddressTest(t)

	_, err := svc.Create(user1.ID, validAddress("john kimball"))
	require.NoError(t, err)
	own, err := svc.Create(user2.ID, validAddress("marc kimball"))
	require.NoError(t, err)

	list, err := svc.List(user2.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, own.ID, list[0].ID)
	assert.Equal(t, user2.ID, list[0].UserID)
}

func TestAddressService_Validation(t *testing.T) {
	svc, user1, _ := setupAddressTest(t)

	in := validAddress("  ")
	_, err := svc.Create(user1.ID, in)
	assert.ErrorIs(t, err, ErrAddressRequired)

	in = validAddress("john")
	in.Country = "fr"
	_, err = svc.Create(user1.ID, in)
	assert.ErrorIs(t, err, ErrInvalidCountry)
}

func TestAddressService_UpdateAndDeleteScoped(t *testing.T) {
	svc, user1, user2 := setupAddressTest(t)

	address, err := svc.Create(user1.ID, validAddress("john kimball"))
	require.NoError(t, err)

	_, err = svc.Update(user2.ID, address.ID, validAddress("stolen"))
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.ErrorIs(t, svc.Delete(user2.ID, address.ID), ErrAddressNotFound)

	in := validAddress("john kercher")
	in.City = "Manchester"
	updated, err := svc.Update(user1.ID, address.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Manchester", updated.City)

	require.NoError(t, svc.Delete(user1.ID, address.ID))
	_, err = svc.Get(user1.ID, address.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}
