package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/domain"
	"backoffice/internal/repository"
	"backoffice/internal/service"
)

type createAdminReq struct {
	FullName string `json:"fullName" binding:"required"`
	UserName string `json:"userName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
	Images   string `json:"images"`
	Role     string `json:"role" binding:"omitempty,oneof=Admin SuperAdmin"`
	Status   *bool  `json:"status"`
}

// @Summary Create admin user
// @Tags admins
// @Accept json
// @Produce json
// @Param input body createAdminReq true "Admin"
// @Success 201 {object} domain.Admin
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /user/admin [post]
func (s *Server) createAdmin(c *gin.Context) {
	var req createAdminReq
	if !bindJSON(c, &req) {
		return
	}
	a, err := s.svc.Admins.Create(c.Request.Context(), service.AdminInput{
		FullName: req.FullName,
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Images:   req.Images,
		Role:     domain.AdminRole(req.Role),
		Active:   req.Status,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// @Summary List admin users
// @Tags admins
// @Produce json
// @Param q query string false "Name, username, email or phone contains"
// @Param active query bool false "Only active admins"
// @Success 200 {array} domain.Admin
// @Router /user/admin [get]
func (s *Server) listAdmins(c *gin.Context) {
	f := repository.AdminFilter{Query: c.Query("q"), ActiveOnly: c.Query("active") == "true"}
	list, err := s.svc.Admins.List(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get admin user
// @Tags admins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} domain.Admin
// @Failure 404 {object} map[string]string
// @Router /user/admin/{id} [get]
func (s *Server) getAdmin(c *gin.Context) {
	a, err := s.svc.Admins.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// empty password means "keep the current one", as the dashboard form sends it
type updateAdminReq struct {
	FullName *string `json:"fullName"`
	UserName *string `json:"userName"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password"`
	Phone    *string `json:"phone"`
	Images   *string `json:"images"`
	Role     *string `json:"role" binding:"omitempty,oneof=Admin SuperAdmin"`
	Status   *bool   `json:"status"`
}

// @Summary Update admin user
// @Tags admins
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param input body updateAdminReq true "Fields to change"
// @Success 200 {object} domain.Admin
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /user/admin/update/{id} [put]
func (s *Server) updateAdmin(c *gin.Context) {
	var req updateAdminReq
	if !bindJSON(c, &req) {
		return
	}
	upd := service.AdminUpdate{
		FullName: req.FullName,
		UserName: req.UserName,
		Email:    req.Email,
		Phone:    req.Phone,
		Images:   req.Images,
		Active:   req.Status,
	}
	if req.Password != nil && *req.Password != "" {
		upd.Password = req.Password
	}
	if req.Role != nil {
		role := domain.AdminRole(*req.Role)
		upd.Role = &role
	}
	a, err := s.svc.Admins.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary Dashboard counters
// @Tags dashboard
// @Produce json
// @Success 200 {object} service.DashboardSummary
// @Router /dashboard [get]
func (s *Server) dashboard(c *gin.Context) {
	sum, err := s.svc.Dashboard.Summary(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
