package httpapi

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/atomic"

	"backoffice/internal/domain"
	"backoffice/internal/logger"
	"backoffice/internal/metrics"
	"backoffice/internal/repository"
	"backoffice/internal/service"
)

// Services набор сервисов, которые обслуживает HTTP API
type Services struct {
	Orders    *service.OrderService
	Stock     *service.StockService
	Catalog   *service.CatalogService
	Admins    *service.AdminService
	Invoices  *service.InvoiceService
	Dashboard *service.DashboardService
}

type Server struct {
	engine  *gin.Engine
	svc     Services
	log     logger.Logger
	metrics *metrics.Metrics
	limiter *RateLimiter
	ready   *atomic.Bool
}

// Option настраивает Server
type Option func(*Server)

func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithRateLimit включает ограничение запросов по IP; rps <= 0 выключает
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 {
			s.limiter = NewRateLimiter(rps, burst)
		}
	}
}

func NewServer(svc Services, opts ...Option) *Server {
	s := &Server{svc: svc, log: logger.NewNop(), ready: atomic.NewBool(true)}
	for _, opt := range opts {
		opt(s)
	}
	registerJSONTagNames()

	r := gin.New()
	r.Use(requestID(), recovery(s.log), accessLog(s.log), observe(s.metrics))
	if s.limiter != nil {
		r.Use(s.limiter.Middleware())
	}
	s.engine = r
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

// SetReady переключает ответ /health (503 во время остановки)
func (s *Server) SetReady(v bool) { s.ready.Store(v) }

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.health)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := s.engine.Group("/api")
	{
		orders := api.Group("/order")
		orders.POST("/create-order", s.createOrder)
		orders.PATCH("/update/:orderId", s.updateOrder)
		orders.GET("", s.listOrders)
		orders.GET("/:orderId", s.getOrder)
		orders.GET("/:orderId/next", s.nextAction)
		orders.PUT("/:orderId/revise", s.reviseOrder)
		orders.GET("/:orderId/invoice", s.invoice)

		stock := api.Group("/stock")
		stock.POST("/add-stock", s.addStock)
		stock.GET("/lookup/:identifier", s.lookupStock)
		stock.GET("/:pID", s.productStock)

		products := api.Group("/product")
		products.POST("", s.createProduct)
		products.GET("", s.listProducts)
		products.GET("/:pID", s.getProduct)
		products.PATCH("", s.patchProduct)

		categories := api.Group("/category")
		categories.POST("", s.createCategory)
		categories.GET("", s.listCategories)
		categories.PATCH("", s.topCategory)

		admins := api.Group("/user/admin")
		admins.POST("", s.createAdmin)
		admins.GET("", s.listAdmins)
		admins.GET("/:id", s.getAdmin)
		admins.PUT("/update/:id", s.updateAdmin)

		api.GET("/dashboard", s.dashboard)
	}
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// errorDetail одно нарушение валидации запроса
type errorDetail struct {
	Path string `json:"path"`
	Info string `json:"info"`
}

var tagNamesOnce sync.Once

// validator отдаёт имена полей из json-тегов, а не из Go-структуры
func registerJSONTagNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min", "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "max", "lte":
		return fe.Field() + " must be at most " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// bindJSON разбирает тело; при ошибке сам пишет 400 и возвращает false
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]errorDetail, 0, len(verrs))
		for _, fe := range verrs {
			path := fe.Namespace()
			if i := strings.IndexByte(path, '.'); i >= 0 {
				path = path[i+1:]
			}
			details = append(details, errorDetail{Path: path, Info: validationMessage(fe)})
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": details})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
	return false
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrMissingSKU),
		errors.Is(err, domain.ErrDuplicateSKU),
		errors.Is(err, domain.ErrSKUMismatch),
		errors.Is(err, domain.ErrInvalidItem),
		errors.Is(err, domain.ErrNoItems),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNegativeTotal),
		errors.Is(err, domain.ErrInvalidPayment),
		errors.Is(err, domain.ErrUnknownFlag):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrAlreadyExists),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSKUUnavailable),
		errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail пишет ошибку сервиса; текст 5xx не уходит клиенту
func (s *Server) fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Errorf(c.Request.Context(), "[HTTP] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
