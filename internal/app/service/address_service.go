package service

import (
	"errors"
	"strings"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAddressNotFound = errors.New("address not found")
	ErrInvalidCountry  = errors.New("unsupported country")
	ErrAddressRequired = errors.New("name, address line 1 and city are required")
)

type AddressInput struct {
	Name     string
	Address1 string
	Address2 string
	ZipCode  string
	City     string
	Country  model.Country
}

// AddressService scopes every operation to the owning user; another user's
// address behaves as if it did not exist.
type AddressService interface {
	List(userID uint) ([]model.Address, error)
	Get(userID, addressID uint) (*model.Address, error)
	Create(userID uint, in AddressInput) (*model.Address, error)
	Update(userID, addressID uint, in AddressInput) (*model.Address, error)
	Delete(userID, addressID uint) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func (s *addressService) List(userID uint) ([]model.Address, error) {
	return s.addressRepo.FindByUserID(userID)
}

func (s *addressService) Get(userID, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByIDAndUser(addressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return address, nil
}

func (s *addressService) Create(userID uint, in AddressInput) (*model.Address, error) {
	if err := validateAddressInput(&in); err != nil {
		return nil, err
	}

	address := &model.Address{UserID: userID}
	applyAddressInput(address, in)
	if err := s.addressRepo.Create(address); err != nil {
		return nil, err
	}

	logger.Info("Address created", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    userID,
	})
	return address, nil
}

func (s *addressService) Update(userID, addressID uint, in AddressInput) (*model.Address, error) {
	if err := validateAddressInput(&in); err != nil {
		return nil, err
	}

	address, err := s.Get(userID, addressID)
	if err != nil {
		return nil, err
	}
	applyAddressInput(address, in)
	if err := s.addressRepo.Update(address); err != nil {
		return nil, err
	}

	logger.Info("Address updated", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    userID,
	})
	return address, nil
}

func (s *addressService) Delete(userID, addressID uint) error {
	if err := s.addressRepo.Delete(addressID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAddressNotFound
		}
		return err
	}

	logger.Info("Address deleted", map[string]interface{}{
		"address_id": addressID,
		"user_id":    userID,
	})
	return nil
}

func validateAddressInput(in *AddressInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Address1 = strings.TrimSpace(in.Address1)
	in.Address2 = strings.TrimSpace(in.Address2)
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	in.City = strings.TrimSpace(in.City)
	if in.Name == "" || in.Address1 == "" || in.City == "" {
		return ErrAddressRequired
	}
	if !in.Country.Valid() {
		return ErrInvalidCountry
	}
	return nil
}

func applyAddressInput(a *model.Address, in AddressInput) {
	a.Name = in.Name
	a.Address1 = in.Address1
	a.Address2 = in.Address2
	a.ZipCode = in.ZipCode
	a.City = in.City
	a.Country = in.Country
}
