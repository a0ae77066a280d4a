package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskportal/internal/model"
	"taskportal/internal/service"
)

const employeeNotFound = "Employee not found"

type EmployeeHandler struct {
	svc    *service.EmployeeService
	logger *zap.Logger
}

func NewEmployeeHandler(svc *service.EmployeeService, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, logger: logger}
}

func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "ListEmployees", err, employeeNotFound, "Failed to fetch employees")
		return
	}
	c.JSON(http.StatusOK, employees)
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	var in model.EmployeeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	e, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, "CreateEmployee", err, employeeNotFound, "Failed to add employee")
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee id"})
		return
	}
	var in model.EmployeeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	e, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, "UpdateEmployee", err, employeeNotFound, "Failed to update employee")
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee id"})
		return
	}

	if _, err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "DeleteEmployee", err, employeeNotFound, "Failed to delete employee")
		return
	}
	c.Status(http.StatusNoContent)
}
