package handler

import (
	"net/http"

	"recruithub/internal/services"
	"recruithub/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	service *services.CandidateService
}

func NewCandidateHandler(service *services.CandidateService) *CandidateHandler {
	return &CandidateHandler{service: service}
}

func (h *CandidateHandler) Create(c *gin.Context) {
	var req httpdto.CreateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	candidate, err := h.service.Create(c.Request.Context(), userID, services.CreateCandidateInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Position:   req.Position,
		Skills:     req.Skills,
		Experience: req.Experience,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(candidate))
}

func (h *CandidateHandler) Get(c *gin.Context) {
	candidateID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid candidate id", "INVALID_REQUEST"))
		return
	}

	candidate, err := h.service.Get(c.Request.Context(), candidateID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(candidate))
}

func (h *CandidateHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	candidates, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{
		"candidates": candidates,
		"total":      total,
		"page":       page,
		"limit":      limit,
	}))
}

// Update applies a partial update; a status transition notifies the other
// recruiters.
func (h *CandidateHandler) Update(c *gin.Context) {
	candidateID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid candidate id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.UpdateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	candidate, err := h.service.Update(c.Request.Context(), candidateID, userID, services.UpdateCandidateInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Position:   req.Position,
		Status:     req.Status,
		Skills:     req.Skills,
		Experience: req.Experience,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(candidate))
}

func (h *CandidateHandler) Delete(c *gin.Context) {
	candidateID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid candidate id", "INVALID_REQUEST"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), candidateID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}
