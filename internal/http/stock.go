package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/service"
)

type addStockReq struct {
	ProductID string `json:"pID" binding:"required"`
	SKUID     string `json:"skuID" binding:"required"`
	Comment   string `json:"comment"`
}

// @Summary Stock intake of one SKU
// @Tags stock
// @Accept json
// @Produce json
// @Param input body addStockReq true "SKU"
// @Success 201 {object} domain.SKU
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /stock/add-stock [post]
func (s *Server) addStock(c *gin.Context) {
	var req addStockReq
	if !bindJSON(c, &req) {
		return
	}
	unit, err := s.svc.Stock.AddStock(c.Request.Context(), service.StockIntake{
		ProductID: req.ProductID,
		SKUID:     req.SKUID,
		Comment:   req.Comment,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}

// @Summary Look up stock by product id or SKU
// @Tags stock
// @Produce json
// @Param identifier path string true "Product ID or SKU"
// @Success 200 {object} service.StockLookup
// @Failure 404 {object} map[string]string
// @Router /stock/lookup/{identifier} [get]
func (s *Server) lookupStock(c *gin.Context) {
	res, err := s.svc.Stock.Lookup(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary SKUs and counters of a product
// @Tags stock
// @Produce json
// @Param pID path string true "Product ID"
// @Success 200 {object} service.StockLookup
// @Failure 404 {object} map[string]string
// @Router /stock/{pID} [get]
func (s *Server) productStock(c *gin.Context) {
	res, err := s.svc.Stock.ProductStock(c.Request.Context(), c.Param("pID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
