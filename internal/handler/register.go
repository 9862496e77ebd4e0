package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tillpoint/internal/apierror"
	"tillpoint/internal/dto"
	"tillpoint/internal/infra"
	"tillpoint/internal/middleware"
	"tillpoint/internal/service"
)

type RegisterHandler struct {
	svc        service.RegisterService
	pdfStorage string
}

func NewRegisterHandler(svc service.RegisterService, pdfStorage string) *RegisterHandler {
	return &RegisterHandler{svc: svc, pdfStorage: pdfStorage}
}

// operator returns the username of the authenticated caller.
func operator(c *gin.Context) string {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.Username
	}
	return ""
}

// Open godoc
// @Summary Opens a new cash register session
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenRegisterRequest true "Opening data"
// @Success 201 {object} dto.RegisterResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/register/open [post]
func (h *RegisterHandler) Open(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	reg, err := h.svc.Open(c.Request.Context(), req, operator(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

// AddMovement godoc
// @Summary Records a cash movement against the open register
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovementRequest true "Movement data"
// @Success 200 {object} model.CashRegister
// @Failure 409 {object} apierror.APIError
// @Router /v1/register/movement [post]
func (h *RegisterHandler) AddMovement(c *gin.Context) {
	var req dto.MovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	reg, err := h.svc.AddMovement(c.Request.Context(), req, operator(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}

// Close godoc
// @Summary Counts and closes the open register session
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseRegisterRequest true "Closing data"
// @Success 200 {object} model.CashRegister
// @Failure 409 {object} apierror.APIError
// @Router /v1/register/close [post]
func (h *RegisterHandler) Close(c *gin.Context) {
	var req dto.CloseRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	reg, err := h.svc.Close(c.Request.Context(), req, operator(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}

// Current returns the open register with its live reconciliation, or 404.
func (h *RegisterHandler) Current(c *gin.Context) {
	reg, err := h.svc.Refresh(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if reg == nil {
		c.JSON(http.StatusNotFound, apierror.New("no open register"))
		return
	}
	report, err := h.svc.Report(c.Request.Context(), reg.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Report godoc
// @Summary Session report with reconciliation breakdown
// @Tags register
// @Produce json
// @Security BearerAuth
// @Param id path string true "Register id"
// @Success 200 {object} dto.RegisterReportResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/register/{id}/report [get]
func (h *RegisterHandler) Report(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid register id"))
		return
	}
	report, err := h.svc.Report(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ReportPDF renders the session report as a printable PDF.
func (h *RegisterHandler) ReportPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid register id"))
		return
	}
	report, err := h.svc.Report(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	path, err := infra.GenerateRegisterReportPDF(report, h.pdfStorage)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("failed to render report"))
		return
	}
	c.FileAttachment(path, "register_"+report.Register.ID+".pdf")
}

// Movements returns the append-only ledger for a register in creation order.
func (h *RegisterHandler) Movements(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid register id"))
		return
	}
	movs, err := h.svc.Movements(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": movs})
}

// History returns a paginated list of closed register sessions.
func (h *RegisterHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	regs, total, err := h.svc.History(c.Request.Context(), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": regs, "total": total, "page": page, "limit": limit})
}
