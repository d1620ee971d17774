package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
	"github.com/bukohub/gym-fusion-training-sub001/internal/class"
	"github.com/bukohub/gym-fusion-training-sub001/internal/config"
	"github.com/bukohub/gym-fusion-training-sub001/internal/membership"
	"github.com/bukohub/gym-fusion-training-sub001/internal/payment"
	"github.com/bukohub/gym-fusion-training-sub001/internal/plan"
	"github.com/bukohub/gym-fusion-training-sub001/internal/product"
	"github.com/bukohub/gym-fusion-training-sub001/internal/user"
)

// Handlers groups the HTTP handlers of every domain package.
type Handlers struct {
	User       *user.Handler
	Plan       *plan.Handler
	Membership *membership.Handler
	Class      *class.Handler
	Product    *product.Handler
	Payment    *payment.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

func New(cfg *config.Config, h Handlers, checks map[string]Check, mailer Mailer) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	router.GET("/health", Health(checks))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	public := router.Group("/auth")
	{
		public.POST("/login", RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst), h.User.Login)
		public.POST("/refresh", h.User.RefreshToken)
	}

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/me", h.User.GetMe)
		protected.GET("/me/memberships", h.Membership.MyMemberships)
		protected.GET("/me/bookings", h.Class.MyBookings)
		protected.GET("/me/payments", h.Payment.MyPayments)

		protected.POST("/users", h.User.CreateUser)
		protected.GET("/users", h.User.ListUsers)
		protected.GET("/users/:id", h.User.GetUser)
		protected.PATCH("/users/:id/active", h.User.SetActive)
		protected.PUT("/users/:id/password", h.User.SetPassword)
		protected.DELETE("/users/:id", h.User.DeleteUser)
		protected.GET("/users/:id/bookings", h.Class.ListUserBookings)

		protected.POST("/plans", h.Plan.CreatePlan)
		protected.GET("/plans", h.Plan.ListPlans)
		protected.GET("/plans/:id", h.Plan.GetPlan)
		protected.PUT("/plans/:id", h.Plan.UpdatePlan)
		protected.DELETE("/plans/:id", h.Plan.DeletePlan)

		protected.POST("/memberships", h.Membership.CreateMembership)
		protected.GET("/memberships", h.Membership.ListMemberships)
		protected.GET("/memberships/expiring", h.Membership.ExpiringMemberships)
		protected.GET("/memberships/stats", h.Membership.MembershipStats)
		protected.GET("/memberships/:id", h.Membership.GetMembership)
		protected.POST("/memberships/:id/renew", h.Membership.RenewMembership)
		protected.POST("/memberships/:id/suspend", h.Membership.SuspendMembership)
		protected.POST("/memberships/:id/activate", h.Membership.ActivateMembership)
		protected.DELETE("/memberships/:id", h.Membership.DeleteMembership)

		protected.GET("/validations", h.Membership.ListValidationLogs)
		protected.POST("/validations/membership/:id", h.Membership.ValidateMembership)
		protected.POST("/validations/user/:id", h.Membership.ValidateUser)
		protected.POST("/validations/cedula/:cedula", h.Membership.ValidateCedula)
		protected.POST("/validations/holler/:holler", h.Membership.ValidateHoller)

		protected.POST("/classes", h.Class.CreateClass)
		protected.GET("/classes", h.Class.ListClasses)
		protected.GET("/classes/stats", h.Class.TrainerStats)
		protected.GET("/classes/:id", h.Class.GetClass)
		protected.PUT("/classes/:id", h.Class.UpdateClass)
		protected.DELETE("/classes/:id", h.Class.DeleteClass)
		protected.POST("/classes/:id/bookings", h.Class.BookClass)
		protected.DELETE("/classes/:id/bookings", h.Class.CancelBooking)
		protected.GET("/classes/:id/bookings", h.Class.ListClassBookings)
		protected.PUT("/bookings/:id/attendance", h.Class.MarkAttendance)

		protected.POST("/products", h.Product.CreateProduct)
		protected.GET("/products", h.Product.ListProducts)
		protected.GET("/products/:id", h.Product.GetProduct)
		protected.PUT("/products/:id", h.Product.UpdateProduct)
		protected.POST("/products/:id/restock", h.Product.RestockProduct)
		protected.DELETE("/products/:id", h.Product.DeleteProduct)

		protected.POST("/sales", h.Product.CreateSale)
		protected.GET("/sales", h.Product.ListSales)
		protected.GET("/sales/summary", h.Product.SalesSummary)
		protected.GET("/sales/:id", h.Product.GetSale)

		protected.POST("/payments", h.Payment.CreatePayment)
		protected.GET("/payments", h.Payment.ListPayments)
		protected.GET("/payments/totals", h.Payment.PaymentTotals)
		protected.GET("/payments/:id", h.Payment.GetPayment)
		protected.PUT("/payments/:id/status", h.Payment.UpdatePaymentStatus)
	}

	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware(cfg.JWTSecret), auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/test-email", TestEmail(mailer))
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
