package router

import (
	"net/http"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/internal/admin"
	"github.com/booktime/booktime/internal/app/controller"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

type Router struct {
	pageController    *controller.PageController
	authController    *controller.AuthController
	productController *controller.ProductController
	basketController  *controller.BasketController
	addressController *controller.AddressController
	admin             *admin.Admin
	authMiddleware    *middleware.AuthMiddleware
	users             middleware.UserLoader
	baskets           middleware.BasketLoader
	html              render.HTMLRender
	config            *config.Config
}

func NewRouter(
	pageController *controller.PageController,
	authController *controller.AuthController,
	productController *controller.ProductController,
	basketController *controller.BasketController,
	addressController *controller.AddressController,
	adminHandlers *admin.Admin,
	authMiddleware *middleware.AuthMiddleware,
	users middleware.UserLoader,
	baskets middleware.BasketLoader,
	html render.HTMLRender,
	cfg *config.Config,
) *Router {
	return &Router{
		pageController:    pageController,
		authController:    authController,
		productController: productController,
		basketController:  basketController,
		addressController: addressController,
		admin:             adminHandlers,
		authMiddleware:    authMiddleware,
		users:             users,
		baskets:           baskets,
		html:              html,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()
	router.HTMLRender = r.html

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware("/health", r.config.Media.URL))
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "BookTime is running",
		})
	})

	if r.config.Media.Backend == "local" {
		router.Static(r.config.Media.URL, r.config.Media.Root)
	}

	// JWT clients; no session cookies involved
	apiAuth := router.Group("/api-auth")
	{
		apiAuth.POST("/login/", r.authController.APILogin)
		apiAuth.POST("/logout/", r.authMiddleware.Authenticate(), r.authController.APILogout)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", r.productController.APIList)

		authed := v1.Group("")
		authed.Use(r.authMiddleware.Authenticate())
		{
			authed.GET("/me", r.authController.Me)
			authed.GET("/basket", r.basketController.APIGet)
			authed.POST("/basket", r.basketController.APIAdd)
		}
	}

	web := router.Group("")
	web.Use(middleware.Sessions(&r.config.Session, r.config.Server.Environment == "production"))
	web.Use(middleware.SessionAuth(r.users))
	web.Use(middleware.SessionBasket(r.baskets))
	{
		web.GET("/", r.pageController.Home)
		web.GET("/about-us/", r.pageController.AboutUs)
		web.GET("/contact-us/", r.pageController.ContactUs)
		web.POST("/contact-us/", r.pageController.SubmitContactUs)

		web.GET("/signup/", r.authController.SignupForm)
		web.POST("/signup/", r.authController.Signup)
		web.GET("/login/", r.authController.LoginForm)
		web.POST("/login/", r.authController.Login)
		web.POST("/logout/", r.authController.Logout)

		web.GET("/products/:tag/", r.productController.List)
		web.GET("/product/:slug/", r.productController.Detail)

		web.GET("/add_to_basket/", r.basketController.AddToBasket)
		web.GET("/basket/", r.basketController.View)
		web.POST("/basket/", r.basketController.Update)

		address := web.Group("/address")
		address.Use(middleware.LoginRequired())
		{
			address.GET("/", r.addressController.List)
			address.GET("/create/", r.addressController.CreateForm)
			address.POST("/create/", r.addressController.Create)
			address.GET("/:id/", r.addressController.UpdateForm)
			address.POST("/:id/", r.addressController.Update)
			address.GET("/:id/delete/", r.addressController.ConfirmDelete)
			address.POST("/:id/delete/", r.addressController.Delete)
		}

		for _, site := range admin.Sites() {
			r.admin.Mount(web, site)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
