package handler

import (
	"net/http"

	"restopos/internal/apierror"
	"restopos/internal/dto"
	"restopos/internal/middleware"
	"restopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RefundHandler struct{ svc service.RefundService }

func NewRefundHandler(svc service.RefundService) *RefundHandler { return &RefundHandler{svc: svc} }

// Create godoc
// @Summary Solicita una devolución sobre un pedido pagado
// @Tags refunds
// @Security BearerAuth
// @Router /v1/refunds [post]
func (h *RefundHandler) Create(c *gin.Context) {
	var req dto.CreateRefundRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, ok := claimsUserID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Approve resolves a pending refund; admin only (enforced in the router).
func (h *RefundHandler) Approve(c *gin.Context) {
	h.resolve(c, true)
}

func (h *RefundHandler) Reject(c *gin.Context) {
	h.resolve(c, false)
}

func (h *RefundHandler) resolve(c *gin.Context, approve bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	userID, ok := claimsUserID(c)
	if !ok {
		return
	}
	var (
		resp *dto.RefundResponse
		err  error
	)
	if approve {
		resp, err = h.svc.Approve(c.Request.Context(), id, userID)
	} else {
		resp, err = h.svc.Reject(c.Request.Context(), id, userID)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RefundHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func claimsUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de usuario inválido"))
		return uuid.Nil, false
	}
	return id, true
}
