package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/booktime/booktime/internal/app/forms"
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/service"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{
		addressService: addressService,
	}
}

type addressField struct {
	Name  string
	Label string
	Value string
}

func addressFormData(form *forms.AddressForm, errs forms.Errors, object *model.Address) gin.H {
	return gin.H{
		"form":   form,
		"errors": errs,
		"object": object,
		"fields": []addressField{
			{"name", "Name", form.Name},
			{"address1", "Address line 1", form.Address1},
			{"address2", "Address line 2", form.Address2},
			{"zip_code", "ZIP / Postal code", form.ZipCode},
			{"city", "City", form.City},
			{"country", "Country", form.Country},
		},
		"countries": forms.CountryChoices(),
	}
}

// List shows the requesting user's addresses
// GET /address/
func (ctrl *AddressController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	user, _ := middleware.GetCurrentUser(c)

	addresses, err := ctrl.addressService.List(user.ID)
	if err != nil {
		log.Error("Failed to list addresses", err, map[string]interface{}{
			"user_id": user.ID,
		})
		renderError(c, http.StatusInternalServerError, "A server error occurred.")
		return
	}

	render(c, http.StatusOK, "address_list.html", gin.H{
		"object_list": addresses,
	})
}

// CreateForm shows an empty address form
// GET /address/create/
func (ctrl *AddressController) CreateForm(c *gin.Context) {
	form := &forms.AddressForm{Country: string(model.CountryUK)}
	render(c, http.StatusOK, "address_form.html", addressFormData(form, forms.Errors{}, nil))
}

// Create stores a new address owned by the requesting user
// POST /address/create/
func (ctrl *AddressController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	user, _ := middleware.GetCurrentUser(c)

	var form forms.AddressForm
	bindForm(c, &form)
	if errs := form.Validate(); len(errs) > 0 {
		render(c, http.StatusOK, "address_form.html", addressFormData(&form, errs, nil))
		return
	}

	address, err := ctrl.addressService.Create(user.ID, form.Input())
	if err != nil {
		if errs := addressErrors(err); errs != nil {
			render(c, http.StatusOK, "address_form.html", addressFormData(&form, errs, nil))
			return
		}
		log.Error("Failed to create address", err, map[string]interface{}{
			"user_id": user.ID,
		})
		renderError(c, http.StatusInternalServerError, "A server error occurred.")
		return
	}

	log.Info("Address created", map[string]interface{}{
		"user_id":    user.ID,
		"address_id": address.ID,
	})
	c.Redirect(http.StatusFound, "/address/")
}

// UpdateForm shows the address form prefilled
// GET /address/:id/
func (ctrl *AddressController) UpdateForm(c *gin.Context) {
	address, ok := ctrl.ownedAddress(c)
	if !ok {
		return
	}
	form := forms.AddressFormFrom(address)
	render(c, http.StatusOK, "address_form.html", addressFormData(&form, forms.Errors{}, address))
}

// Update saves changes to one of the user's addresses
// POST /address/:id/
func (ctrl *AddressController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	user, _ := middleware.GetCurrentUser(c)

	address, ok := ctrl.ownedAddress(c)
	if !ok {
		return
	}

	var form forms.AddressForm
	bindForm(c, &form)
	if errs := form.Validate(); len(errs) > 0 {
		render(c, http.StatusOK, "address_form.html", addressFormData(&form, errs, address))
		return
	}

	if _, err := ctrl.addressService.Update(user.ID, address.ID, form.Input()); err != nil {
		if errs := addressErrors(err); errs != nil {
			render(c, http.StatusOK, "address_form.html", addressFormData(&form, errs, address))
			return
		}
		if errors.Is(err, service.ErrAddressNotFound) {
			notFound(c)
			return
		}
		log.Error("Failed to update address", err, map[string]interface{}{
			"address_id": address.ID,
		})
		renderError(c, http.StatusInternalServerError, "A server error occurred.")
		return
	}
	c.Redirect(http.StatusFound, "/address/")
}

// ConfirmDelete asks before deleting
// GET /address/:id/delete/
func (ctrl *AddressController) ConfirmDelete(c *gin.Context) {
	address, ok := ctrl.ownedAddress(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "address_confirm_delete.html", gin.H{
		"object": address,
	})
}

// Delete removes one of the user's addresses
// POST /address/:id/delete/
func (ctrl *AddressController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	user, _ := middleware.GetCurrentUser(c)

	address, ok := ctrl.ownedAddress(c)
	if !ok {
		return
	}
	if err := ctrl.addressService.Delete(user.ID, address.ID); err != nil {
		if errors.Is(err, service.ErrAddressNotFound) {
			notFound(c)
			return
		}
		log.Error("Failed to delete address", err, map[string]interface{}{
			"address_id": address.ID,
		})
		renderError(c, http.StatusInternalServerError, "A server error occurred.")
		return
	}
	c.Redirect(http.StatusFound, "/address/")
}

// ownedAddress loads the :id address of the current user; another user's address is a 404.
func (ctrl *AddressController) ownedAddress(c *gin.Context) (*model.Address, bool) {
	user, _ := middleware.GetCurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		notFound(c)
		return nil, false
	}

	address, err := ctrl.addressService.Get(user.ID, uint(id))
	if err != nil {
		if !errors.Is(err, service.ErrAddressNotFound) {
			middleware.GetLoggerFromContext(c).Error("Failed to get address", err, map[string]interface{}{
				"address_id": id,
			})
		}
		notFound(c)
		return nil, false
	}
	return address, true
}

func addressErrors(err error) forms.Errors {
	switch {
	case errors.Is(err, service.ErrInvalidCountry):
		return forms.Errors{"country": {"Select a valid choice."}}
	case errors.Is(err, service.ErrAddressRequired):
		return forms.Errors{forms.NonFieldErrors: {"Name, address line 1 and city are required."}}
	}
	return nil
}
