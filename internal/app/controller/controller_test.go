package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/app/service"
	"github.com/booktime/booktime/internal/db"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/booktime/booktime/internal/storage"
	"github.com/booktime/booktime/internal/web"
	"github.com/booktime/booktime/pkg/logger"
	"github.com/booktime/booktime/pkg/mailer"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type controllerFixture struct {
	router   *gin.Engine
	db       *gorm.DB
	mail     *mailer.MemoryMailer
	auth     service.AuthService
	products service.ProductService
	tags     service.ProductTagService
	address  service.AddressService
}

func setupControllerTest(t *testing.T) *controllerFixture {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	mailCfg := &config.MailConfig{From: "site@booktime.domain", CustomerServiceEmail: "customerservice@booktime.domain"}
	mail := mailer.NewMemoryMailer()

	productRepo := repository.NewProductRepository(testDB)
	tagRepo := repository.NewProductTagRepository(testDB)
	authService := service.NewAuthService(repository.NewUserRepository(testDB), "test-secret", 0, 0)
	productService := service.NewProductService(productRepo, tagRepo)
	basketService := service.NewBasketService(repository.NewBasketRepository(testDB), productRepo)
	addressService := service.NewAddressService(repository.NewAddressRepository(testDB))

	store := storage.NewLocalStorage(t.TempDir(), "/media/")
	renderer, err := web.NewRenderer(store.URL)
	require.NoError(t, err)

	pages := NewPageController(mail, mailCfg)
	auth := NewAuthController(authService, basketService, mail, mailCfg, nil)
	products := NewProductController(productService)
	baskets := NewBasketController(basketService)
	addresses := NewAddressController(addressService)

	r := gin.New()
	r.HTMLRender = renderer
	r.Use(middleware.Sessions(&config.SessionConfig{Name: "session", Secret: "secret", MaxAge: 3600}, false))
	r.Use(middleware.SessionAuth(authService))
	r.Use(middleware.SessionBasket(basketService))

	r.POST("/contact-us/", pages.SubmitContactUs)
	r.POST("/login/", auth.Login)
	r.POST("/logout/", auth.Logout)
	r.GET("/products/:tag/", products.List)
	r.GET("/product/:slug/", products.Detail)
	r.GET("/api/v1/products", products.APIList)
	r.GET("/add_to_basket/", baskets.AddToBasket)
	r.GET("/basket/", baskets.View)
	r.POST("/basket/", baskets.Update)
	addr := r.Group("/address", middleware.LoginRequired())
	addr.GET("/", addresses.List)
	addr.GET("/:id/", addresses.UpdateForm)
	addr.POST("/:id/", addresses.Update)

	return &controllerFixture{
		router:   r,
		db:       testDB,
		mail:     mail,
		auth:     authService,
		products: productService,
		tags:     service.NewProductTagService(tagRepo),
		address:  addressService,
	}
}

func (f *controllerFixture) do(t *testing.T, method, path string, form url.Values, cookies []*http.Cookie, accept string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *controllerFixture) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	_, err := f.auth.Signup(email, "abcabcabc")
	require.NoError(t, err)
	w := f.do(t, http.MethodPost, "/login/", url.Values{"email": {email}, "password": {"abcabcabc"}}, nil, "")
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	return w.Result().Cookies()
}

func (f *controllerFixture) createProduct(t *testing.T, name, price string, active bool, tagIDs ...uint) *model.Product {
	t.Helper()
	p := decimal.RequireFromString(price)
	in := service.ProductInput{Name: &name, Price: &p, Active: &active}
	if len(tagIDs) > 0 {
		in.TagIDs = &tagIDs
	}
	product, err := f.products.Create(in)
	require.NoError(t, err)
	return product
}

func TestPageController_SubmitContactUs(t *testing.T) {
	f := setupControllerTest(t)

	w := f.do(t, http.MethodPost, "/contact-us/", url.Values{"message": {strings.Repeat("x", 601)}}, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")

	w = f.do(t, http.MethodPost, "/contact-us/", url.Values{"name": {"Luke"}, "message": {"  \n\t "}}, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")
	assert.Empty(t, f.mail.Outbox())

	f.mail.Err = errors.New("smtp down")
	w = f.do(t, http.MethodPost, "/contact-us/", url.Values{"name": {"Luke"}, "message": {"Hi"}}, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Your message could not be sent")

	f.mail.Err = nil
	w = f.do(t, http.MethodPost, "/contact-us/", url.Values{"name": {"Luke"}, "message": {"Hi"}}, nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	require.Len(t, f.mail.Outbox(), 1)
	assert.Contains(t, f.mail.Outbox()[0].Body, "Hi")
}

func TestAuthController_Login(t *testing.T) {
	f := setupControllerTest(t)
	_, err := f.auth.Signup("user@domain.com", "abcabcabc")
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/login/", url.Values{"email": {"user@domain.com"}, "password": {"wrong-one"}}, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a correct email and password.")

	w = f.do(t, http.MethodPost, "/login/", url.Values{
		"email":    {"user@DOMAIN.com"},
		"password": {"abcabcabc"},
		"next":     {"//evil.example.com/"},
	}, nil, "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	cookies := w.Result().Cookies()

	w = f.do(t, http.MethodGet, "/address/", nil, cookies, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/logout/", url.Values{}, cookies, "")
	require.Equal(t, http.StatusFound, w.Code)
	w = f.do(t, http.MethodGet, "/address/", nil, w.Result().Cookies(), "")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestProductController_List(t *testing.T) {
	f := setupControllerTest(t)
	name := "Classics"
	tag, err := f.tags.Create(service.TagInput{Name: &name})
	require.NoError(t, err)

	f.createProduct(t, "Pride and Prejudice", "2.00", true, tag.ID)
	f.createProduct(t, "Hidden Book", "3.00", false, tag.ID)
	f.createProduct(t, "Moby Dick", "4.50", true)

	tests := []struct {
		name     string
		path     string
		status   int
		contains []string
		excludes []string
	}{
		{"all active", "/products/all/", http.StatusOK, []string{"Pride and Prejudice", "Moby Dick"}, []string{"Hidden Book"}},
		{"by tag", "/products/classics/", http.StatusOK, []string{"Pride and Prejudice"}, []string{"Moby Dick", "Hidden Book"}},
		{"unknown tag", "/products/unknown/", http.StatusNotFound, nil, nil},
		{"detail", "/product/moby-dick/", http.StatusOK, []string{"4.50"}, nil},
		{"inactive detail", "/product/hidden-book/", http.StatusNotFound, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, tt.path, nil, nil, "")
			assert.Equal(t, tt.status, w.Code)
			for _, s := range tt.contains {
				assert.Contains(t, w.Body.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, w.Body.String(), s)
			}
		})
	}
}

func TestProductController_APIList(t *testing.T) {
	f := setupControllerTest(t)
	name := "Classics"
	tag, err := f.tags.Create(service.TagInput{Name: &name})
	require.NoError(t, err)
	f.createProduct(t, "Pride and Prejudice", "2.00", true, tag.ID)
	f.createProduct(t, "Moby Dick", "4.50", true)

	var resp struct {
		Products []model.Product `json:"products"`
		Count    int             `json:"count"`
	}

	w := f.do(t, http.MethodGet, "/api/v1/products?search=moby", nil, nil, "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "moby-dick", resp.Products[0].Slug)

	w = f.do(t, http.MethodGet, "/api/v1/products?tag=classics", nil, nil, "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "pride-and-prejudice", resp.Products[0].Slug)

	w = f.do(t, http.MethodGet, "/api/v1/products?tag=missing", nil, nil, "application/json")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "TAG_NOT_FOUND")
}

func TestBasketController_AddToBasket(t *testing.T) {
	f := setupControllerTest(t)
	product := f.createProduct(t, "Moby Dick", "4.50", true)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/add_to_basket/?product_id=abc", nil, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/add_to_basket/?product_id=999", nil, nil, "").Code)

	var count int64
	require.NoError(t, f.db.Model(&model.Basket{}).Count(&count).Error)
	assert.Zero(t, count)

	w := f.do(t, http.MethodGet, "/add_to_basket/?product_id="+strconv.FormatUint(uint64(product.ID), 10), nil, nil, "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/product/moby-dick/", w.Header().Get("Location"))

	w = f.do(t, http.MethodGet, "/basket/", nil, w.Result().Cookies(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Moby Dick")
	assert.Contains(t, w.Body.String(), `value="1"`)
}

func TestBasketController_EmptyBasket(t *testing.T) {
	f := setupControllerTest(t)

	w := f.do(t, http.MethodGet, "/basket/", nil, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "You have no items in the basket.")

	w = f.do(t, http.MethodPost, "/basket/", url.Values{"quantity_1": {"2"}}, nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/basket/", w.Header().Get("Location"))
}

func TestAddressController_Update(t *testing.T) {
	f := setupControllerTest(t)
	cookies := f.login(t, "owner@domain.com")

	var user model.User
	require.NoError(t, f.db.Where("email = ?", "owner@domain.com").First(&user).Error)
	address, err := f.address.Create(user.ID, service.AddressInput{
		Name:     "John Kimball",
		Address1: "127 Strudel road",
		City:     "London",
		Country:  model.CountryUK,
	})
	require.NoError(t, err)
	path := "/address/" + strconv.FormatUint(uint64(address.ID), 10) + "/"

	w := f.do(t, http.MethodGet, path, nil, cookies, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "127 Strudel road")

	w = f.do(t, http.MethodPost, path, url.Values{
		"name":     {"John Kimball"},
		"address1": {"1 Broadway"},
		"city":     {"New York"},
		"country":  {"us"},
	}, cookies, "")
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/address/", nil, cookies, "")
	assert.Contains(t, w.Body.String(), "1 Broadway")
	assert.Contains(t, w.Body.String(), "United States of America")

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/address/9999/", nil, cookies, "").Code)
}

func TestAuthController_LoginSendsOneSessionCookie(t *testing.T) {
	f := setupControllerTest(t)
	product := f.createProduct(t, "Moby Dick", "4.50", true)
	_, err := f.auth.Signup("user@domain.com", "abcabcabc")
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/add_to_basket/?product_id="+strconv.FormatUint(uint64(product.ID), 10), nil, nil, "")
	require.Equal(t, http.StatusFound, w.Code)

	w = f.do(t, http.MethodPost, "/login/", url.Values{"email": {"user@domain.com"}, "password": {"abcabcabc"}}, w.Result().Cookies(), "")
	require.Equal(t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	w = f.do(t, http.MethodGet, "/basket/", nil, cookies, "")
	assert.Contains(t, w.Body.String(), "Moby Dick")
	assert.Contains(t, w.Body.String(), "user@domain.com")
}

func TestPageController_LogsBindFailure(t *testing.T) {
	var buf bytes.Buffer
	logger.Initialize(logger.Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { logger.Initialize(logger.Config{Level: "info", Format: "console"}) })
	f := setupControllerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/contact-us/", strings.NewReader("name=Luke"))
	req.Header.Set("Content-Type", "multipart/form-data")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")
	assert.Contains(t, buf.String(), "Form binding failed")
	assert.Empty(t, f.mail.Outbox())
}
