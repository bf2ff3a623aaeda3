package httpserver

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meloogk/O-Maillot-Backend/internal/auth"
	"github.com/meloogk/O-Maillot-Backend/internal/domain"
	"github.com/meloogk/O-Maillot-Backend/internal/loyalty"
	cartsvc "github.com/meloogk/O-Maillot-Backend/internal/service/cart"
	ordersvc "github.com/meloogk/O-Maillot-Backend/internal/service/order"
	paymentsvc "github.com/meloogk/O-Maillot-Backend/internal/service/payment"
	referralsvc "github.com/meloogk/O-Maillot-Backend/internal/service/referral"
	rewardssvc "github.com/meloogk/O-Maillot-Backend/internal/service/rewards"
	usersvc "github.com/meloogk/O-Maillot-Backend/internal/service/user"
)

type userService interface {
	Signup(ctx context.Context, in usersvc.SignupInput) (*usersvc.AuthResult, error)
	Login(ctx context.Context, email, password string) (*usersvc.AuthResult, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

type productService interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

type cartService interface {
	Get(ctx context.Context, owner cartsvc.Owner) (*domain.Cart, error)
	AddItem(ctx context.Context, owner cartsvc.Owner, productID string, size domain.Size, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, owner cartsvc.Owner, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, owner cartsvc.Owner, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, owner cartsvc.Owner) error
	MergeSession(ctx context.Context, userID, sessionID string) (*domain.Cart, error)
}

type orderService interface {
	Checkout(ctx context.Context, userID string, in ordersvc.CheckoutInput) (*domain.Order, error)
	Get(ctx context.Context, requesterID string, isAdmin bool, orderID string) (*domain.Order, error)
	ListMine(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, next domain.OrderStatus) (*domain.Order, error)
	SetExpectedDelivery(ctx context.Context, orderID string, at time.Time) (*domain.Order, error)
	Cancel(ctx context.Context, orderID string) (*domain.Order, error)
}

type paymentService interface {
	Create(ctx context.Context, userID string, in paymentsvc.CreateInput) (*domain.Payment, error)
	Get(ctx context.Context, requesterID string, isAdmin bool, paymentID string) (*domain.Payment, error)
	GetByOrder(ctx context.Context, requesterID string, isAdmin bool, orderID string) (*domain.Payment, error)
	ListMine(ctx context.Context, userID string) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)
	ListHistory(ctx context.Context, userID string) ([]domain.PaymentHistory, error)
	ListAllHistory(ctx context.Context) ([]domain.PaymentHistory, error)
	DeleteHistory(ctx context.Context, id string) error
}

type invoiceService interface {
	Create(ctx context.Context, requesterID string, isAdmin bool, paymentID string) (*domain.Invoice, error)
	Get(ctx context.Context, requesterID string, isAdmin bool, id string) (*domain.Invoice, error)
	GetByPayment(ctx context.Context, requesterID string, isAdmin bool, paymentID string) (*domain.Invoice, error)
	List(ctx context.Context) ([]domain.Invoice, error)
}

type referralService interface {
	Redeem(ctx context.Context, currentUserID, code string) (*referralsvc.Result, error)
}

type rewardsService interface {
	Summary(ctx context.Context, userID string, currency domain.Currency) (*rewardssvc.Summary, error)
	Tiers() []loyalty.Tier
}

type tokenVerifier interface {
	Verify(token string) (auth.Principal, error)
}

// Deps carries every service the router needs.
type Deps struct {
	Users    userService
	Products productService
	Carts    cartService
	Orders   orderService
	Payments paymentService
	Invoices invoiceService
	Referral referralService
	Rewards  rewardsService
	Tokens   tokenVerifier
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(corsOrigins) > 0 {
		corsCfg.AllowOrigins = corsOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", sessionHeader)
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.signup)
	authGroup.POST("/login", h.login)
	authGroup.GET("/me", h.requireAuth, h.me)

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.POST("/products", h.requireAuth, h.requireAdmin, h.createProduct)
	api.PUT("/products/:id", h.requireAuth, h.requireAdmin, h.updateProduct)

	cart := api.Group("/cart", h.optionalAuth)
	cart.GET("", h.getCart)
	cart.DELETE("", h.clearCart)
	cart.POST("/merge", h.requireAuth, h.mergeCart)
	cart.POST("/items", h.addCartItem)
	cart.PUT("/items/:itemID", h.updateCartItem)
	cart.DELETE("/items/:itemID", h.removeCartItem)

	orders := api.Group("/orders", h.requireAuth)
	orders.POST("", h.checkout)
	orders.GET("", h.listMyOrders)
	orders.GET("/all", h.requireAdmin, h.listAllOrders)
	orders.GET("/:id", h.getOrder)
	orders.GET("/:id/payment", h.getOrderPayment)
	orders.POST("/:id/cancel", h.cancelOrder)
	orders.PUT("/:id/status", h.requireAdmin, h.updateOrderStatus)
	orders.PUT("/:id/delivery", h.requireAdmin, h.setOrderDelivery)

	payments := api.Group("/payments", h.requireAuth)
	payments.POST("", h.createPayment)
	payments.GET("", h.listMyPayments)
	payments.GET("/all", h.requireAdmin, h.listAllPayments)
	payments.GET("/:id", h.getPayment)
	payments.POST("/:id/invoice", h.createInvoice)
	payments.GET("/:id/invoice", h.getInvoiceByPayment)

	history := api.Group("/history", h.requireAuth)
	history.GET("", h.listMyHistory)
	history.GET("/all", h.requireAdmin, h.listAllHistory)
	history.DELETE("/:id", h.requireAdmin, h.deleteHistory)

	invoices := api.Group("/invoices", h.requireAuth)
	invoices.GET("", h.requireAdmin, h.listInvoices)
	invoices.GET("/:id", h.getInvoice)

	api.POST("/referral/redeem", h.requireAuth, h.redeemReferral)

	api.GET("/rewards", h.requireAuth, h.rewardsSummary)
	api.GET("/rewards/tiers", h.listTiers)

	return router
}
