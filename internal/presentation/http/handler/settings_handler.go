package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/creance-pos/internal/application/service"
	"github.com/sangkips/creance-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/creance-pos/internal/presentation/http/dto/response"
)

// SettingsHandler handles the company profile
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetCompanyProfile returns the profile printed on receipts
func (h *SettingsHandler) GetCompanyProfile(c *gin.Context) {
	profile, err := h.settingsService.GetCompanyProfile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Company profile retrieved successfully", profile)
}

// UpdateCompanyProfile replaces the company profile
func (h *SettingsHandler) UpdateCompanyProfile(c *gin.Context) {
	var req request.CompanyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	profile, err := h.settingsService.UpdateCompanyProfile(c.Request.Context(), &service.UpdateCompanyProfileInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Logo:    req.Logo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Company profile updated successfully", profile)
}
