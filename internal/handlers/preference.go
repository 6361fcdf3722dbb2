// internal/handlers/preference.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chetanfram3/fram3-studio-backend/internal/services"
	"github.com/chetanfram3/fram3-studio-backend/internal/utils"
)

type PreferenceHandler struct {
	preferenceService *services.PreferenceService
}

func NewPreferenceHandler(preferenceService *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{
		preferenceService: preferenceService,
	}
}

// GET /preferences/:namespace
func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	pref, err := h.preferenceService.Get(userID, c.Param("namespace"))
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, pref)
}

// PUT /preferences
//
// Saves are best-effort: a storage failure is logged and the call still
// succeeds, so a flaky write never breaks the viewer.
func (h *PreferenceHandler) Save(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.SavePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	pref, err := h.preferenceService.Save(userID, &req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,
			"namespace": req.Namespace,
		}).WithError(err).Warn("Preference save failed, ignoring")
		utils.SuccessResponse(c, gin.H{"saved": false})
		return
	}

	utils.SuccessResponse(c, pref)
}
