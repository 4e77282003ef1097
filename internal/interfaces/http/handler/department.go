package handler

import (
	hrapp "github.com/erp/procurement/internal/application/hr"
	"github.com/gin-gonic/gin"
)

// DepartmentHandler handles department endpoints
type DepartmentHandler struct {
	BaseHandler
	departmentService *hrapp.DepartmentService
}

// NewDepartmentHandler creates a new DepartmentHandler
func NewDepartmentHandler(departmentService *hrapp.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

// Create creates a department.
//
// @Summary      Create a department
// @Description  Creates a department.
// @Tags         departments
// @Accept       json
// @Produce      json
// @Param        request body hrapp.CreateDepartmentRequest true "Department"
// @Success      201 {object} dto.Response{data=hrapp.DepartmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /departments [post]
func (h *DepartmentHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req hrapp.CreateDepartmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	dept, err := h.departmentService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dept)
}

// List lists departments.
//
// @Summary      List departments
// @Description  Lists departments.
// @Tags         departments
// @Produce      json
// @Param        filter query hrapp.ListFilter false "Filters"
// @Success      200 {object} dto.Response{data=[]hrapp.DepartmentResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /departments [get]
func (h *DepartmentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter hrapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	depts, total, err := h.departmentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, depts, total, filter.Page, filter.PageSize)
}

// Get returns a department.
//
// @Summary      Get a department
// @Description  Returns a department.
// @Tags         departments
// @Produce      json
// @Param        id path string true "Department ID" format(uuid)
// @Success      200 {object} dto.Response{data=hrapp.DepartmentResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /departments/{id} [get]
func (h *DepartmentHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	dept, err := h.departmentService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dept)
}

// Update renames or (de)activates a department.
//
// @Summary      Update a department
// @Description  Renames or (de)activates a department.
// @Tags         departments
// @Accept       json
// @Produce      json
// @Param        id path string true "Department ID" format(uuid)
// @Param        request body hrapp.UpdateDepartmentRequest true "Changes"
// @Success      200 {object} dto.Response{data=hrapp.DepartmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /departments/{id} [put]
func (h *DepartmentHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req hrapp.UpdateDepartmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	dept, err := h.departmentService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dept)
}

// SetManager assigns the department manager. Projects and open orders of
// the department follow the new manager.
//
// @Summary      Set the department manager
// @Description  Assigns the department manager. Projects and open orders of the department follow the new manager.
// @Tags         departments
// @Accept       json
// @Produce      json
// @Param        id path string true "Department ID" format(uuid)
// @Param        request body hrapp.SetManagerRequest true "Manager"
// @Success      200 {object} dto.Response{data=hrapp.DepartmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /departments/{id}/manager [put]
func (h *DepartmentHandler) SetManager(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req hrapp.SetManagerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	dept, err := h.departmentService.SetManager(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dept)
}

// Delete deletes a department without employees.
//
// @Summary      Delete a department
// @Description  Deletes a department without employees.
// @Tags         departments
// @Produce      json
// @Param        id path string true "Department ID" format(uuid)
// @Success      204
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /departments/{id} [delete]
func (h *DepartmentHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.departmentService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
