package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/domain"
	"backoffice/internal/repository"
)

type createProductReq struct {
	PID      string         `json:"pID" binding:"required"`
	Name     string         `json:"name" binding:"required"`
	Category string         `json:"category"`
	Price    domain.Pricing `json:"price"`
	Images   []string       `json:"images"`
	Comments string         `json:"comments"`
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param input body createProductReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /product [post]
func (s *Server) createProduct(c *gin.Context) {
	var req createProductReq
	if !bindJSON(c, &req) {
		return
	}
	p, err := s.svc.Catalog.CreateProduct(c.Request.Context(), domain.Product{
		PID:      req.PID,
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Images:   req.Images,
		Comments: req.Comments,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary List products
// @Tags products
// @Produce json
// @Param q query string false "Name contains"
// @Param id query string false "Product id contains"
// @Param category query string false "Category id"
// @Param flag query string false "isFeatured, isFlashSale, isBestSelling or isNewArrival"
// @Success 200 {array} domain.Product
// @Failure 400 {object} map[string]string
// @Router /product [get]
func (s *Server) listProducts(c *gin.Context) {
	f := repository.ProductFilter{
		NameSubstring: c.Query("q"),
		IDSubstring:   c.Query("id"),
		Category:      c.Query("category"),
	}
	if v := c.Query("flag"); v != "" {
		flag, err := domain.ParseFlag(v)
		if err != nil {
			s.fail(c, err)
			return
		}
		f.Flag = flag
	}
	list, err := s.svc.Catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param pID path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /product/{pID} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.svc.Catalog.GetProduct(c.Request.Context(), c.Param("pID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type patchProductReq struct {
	PID   string      `json:"pID" binding:"required"`
	Key   string      `json:"key" binding:"required"`
	Value interface{} `json:"value"`
}

// @Summary Toggle a campaign flag or set the discount
// @Description key is isFeatured, isFlashSale, isBestSelling, isNewArrival (bool value) or discount (number value)
// @Tags products
// @Accept json
// @Produce json
// @Param input body patchProductReq true "Patch"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /product [patch]
func (s *Server) patchProduct(c *gin.Context) {
	var req patchProductReq
	if !bindJSON(c, &req) {
		return
	}
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": []errorDetail{{Path: "value", Info: "value is required"}}})
		return
	}
	p, err := s.svc.Catalog.PatchProduct(c.Request.Context(), req.PID, req.Key, req.Value)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type createCategoryReq struct {
	CatID          string   `json:"catID" binding:"required"`
	CatName        string   `json:"catName" binding:"required"`
	Specifications []string `json:"specifications"`
}

// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Param input body createCategoryReq true "Category"
// @Success 201 {object} domain.Category
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /category [post]
func (s *Server) createCategory(c *gin.Context) {
	var req createCategoryReq
	if !bindJSON(c, &req) {
		return
	}
	cat, err := s.svc.Catalog.CreateCategory(c.Request.Context(), domain.Category{
		CatID:          req.CatID,
		CatName:        req.CatName,
		Specifications: req.Specifications,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// @Summary List categories
// @Tags categories
// @Produce json
// @Param q query string false "Id or name contains"
// @Success 200 {array} domain.Category
// @Router /category [get]
func (s *Server) listCategories(c *gin.Context) {
	list, err := s.svc.Catalog.ListCategories(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type topCategoryBody struct {
	CatID  string `json:"catID"`
	Action string `json:"action"`
}

// the dashboard sends the body wrapped in {"data": {...}}
type topCategoryReq struct {
	topCategoryBody
	Data *topCategoryBody `json:"data"`
}

// @Summary Add or remove a top category
// @Tags categories
// @Accept json
// @Produce json
// @Param input body topCategoryBody true "catID and action (add or remove); may be wrapped in data"
// @Success 200 {object} domain.Category
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /category [patch]
func (s *Server) topCategory(c *gin.Context) {
	var req topCategoryReq
	if !bindJSON(c, &req) {
		return
	}
	body := req.topCategoryBody
	if req.Data != nil {
		body = *req.Data
	}
	cat, err := s.svc.Catalog.SetTopCategory(c.Request.Context(), body.CatID, body.Action)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}
