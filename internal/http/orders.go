package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backoffice/internal/domain"
	"backoffice/internal/repository"
	"backoffice/internal/service"
)

type orderItemReq struct {
	ProductID   string   `json:"product_id" binding:"required"`
	ProductName string   `json:"product_name"`
	UnitPrice   *float64 `json:"product_price" binding:"omitempty,gte=0"`
	Quantity    int64    `json:"quantity" binding:"required,gte=1"`
	Comment     string   `json:"product_comments"`
}

type addressReq struct {
	RecipientName string `json:"recipient_name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	AddressLine1  string `json:"address_line1" binding:"required"`
	Email         string `json:"email" binding:"omitempty,email"`
}

type paymentReq struct {
	Method string `json:"method" binding:"omitempty,oneof=COD cash card bkash nagad"`
	Status string `json:"status" binding:"omitempty,oneof=Pending Paid"`
}

type createOrderReq struct {
	OrderID         string         `json:"order_id"`
	CustomerID      string         `json:"customer_id"`
	Mode            string         `json:"mode" binding:"omitempty,oneof=Online Offline"`
	Items           []orderItemReq `json:"items" binding:"required,min=1,dive"`
	ShippingCost    float64        `json:"shipping_cost" binding:"gte=0"`
	Discount        float64        `json:"discount" binding:"gte=0"`
	Payment         paymentReq     `json:"payment"`
	ShippingAddress addressReq     `json:"shipping_address"`
}

type createOrderResp struct {
	OrderID string        `json:"order_id"`
	Order   *domain.Order `json:"order"`
}

func toItems(in []orderItemReq) []service.LineInput {
	out := make([]service.LineInput, len(in))
	for i, it := range in {
		out[i] = service.LineInput{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Comment:     it.Comment,
		}
	}
	return out
}

// @Summary Create order
// @Tags orders
// @Accept json
// @Produce json
// @Param input body createOrderReq true "Order"
// @Success 201 {object} createOrderResp
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /order/create-order [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if !bindJSON(c, &req) {
		return
	}
	o, err := s.svc.Orders.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		OrderID:      req.OrderID,
		CustomerID:   req.CustomerID,
		Mode:         domain.OrderMode(req.Mode),
		Items:        toItems(req.Items),
		ShippingCost: req.ShippingCost,
		Discount:     req.Discount,
		Payment: domain.Payment{
			Method: domain.PaymentMethod(req.Payment.Method),
			Status: domain.PaymentStatus(req.Payment.Status),
		},
		ShippingAddress: domain.ShippingAddress{
			RecipientName: req.ShippingAddress.RecipientName,
			Phone:         req.ShippingAddress.Phone,
			AddressLine1:  req.ShippingAddress.AddressLine1,
			Email:         req.ShippingAddress.Email,
		},
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, createOrderResp{OrderID: o.ID, Order: o})
}

type updateOrderReq struct {
	Status  string                 `json:"status"`
	Items   []domain.SKUAssignment `json:"items"`
	Payment *paymentReq            `json:"payment"`
}

// @Summary Update order status and/or payment
// @Description Shipped requires a SKU for every line: items [{product_id, skuID}]
// @Tags orders
// @Accept json
// @Produce json
// @Param orderId path string true "Order ID"
// @Param input body updateOrderReq true "Update"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /order/update/{orderId} [patch]
func (s *Server) updateOrder(c *gin.Context) {
	var req updateOrderReq
	if !bindJSON(c, &req) {
		return
	}
	upd := service.OrderUpdate{
		Status:      domain.OrderStatus(req.Status),
		Assignments: req.Items,
	}
	if req.Payment != nil {
		upd.PaymentStatus = domain.PaymentStatus(req.Payment.Status)
	}
	o, err := s.svc.Orders.UpdateOrder(c.Request.Context(), c.Param("orderId"), upd)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary List orders
// @Tags orders
// @Produce json
// @Param status query string false "Status"
// @Param q query string false "Order id contains"
// @Param date query string false "Order date, YYYY-MM-DD"
// @Param product_id query string false "Contains product"
// @Success 200 {array} domain.Order
// @Failure 400 {object} map[string]string
// @Router /order [get]
func (s *Server) listOrders(c *gin.Context) {
	f := repository.OrderFilter{
		IDSubstring: c.Query("q"),
		ProductID:   c.Query("product_id"),
	}
	if v := c.Query("status"); v != "" {
		st, ok := domain.ParseOrderStatus(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		f.Status = st
	}
	if v := c.Query("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		f.Date = &d
	}
	list, err := s.svc.Orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} map[string]string
// @Router /order/{orderId} [get]
func (s *Server) getOrder(c *gin.Context) {
	o, err := s.svc.Orders.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Next status offered for an order
// @Tags orders
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {object} service.NextAction
// @Failure 404 {object} map[string]string
// @Router /order/{orderId}/next [get]
func (s *Server) nextAction(c *gin.Context) {
	na, err := s.svc.Orders.NextAction(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, na)
}

type reviseOrderReq struct {
	Items        []orderItemReq `json:"items" binding:"required,min=1,dive"`
	ShippingCost float64        `json:"shipping_cost" binding:"gte=0"`
	Discount     float64        `json:"discount" binding:"gte=0"`
}

// @Summary Revise a pending order
// @Tags orders
// @Accept json
// @Produce json
// @Param orderId path string true "Order ID"
// @Param input body reviseOrderReq true "New items and adjustments"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /order/{orderId}/revise [put]
func (s *Server) reviseOrder(c *gin.Context) {
	var req reviseOrderReq
	if !bindJSON(c, &req) {
		return
	}
	o, err := s.svc.Orders.ReviseOrder(c.Request.Context(), c.Param("orderId"), service.ReviseInput{
		Items:        toItems(req.Items),
		ShippingCost: req.ShippingCost,
		Discount:     req.Discount,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Invoice for an order
// @Tags orders
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {object} service.Invoice
// @Failure 404 {object} map[string]string
// @Router /order/{orderId}/invoice [get]
func (s *Server) invoice(c *gin.Context) {
	inv, err := s.svc.Invoices.Build(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
