// internal/handlers/script.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chetanfram3/fram3-studio-backend/internal/models"
	"github.com/chetanfram3/fram3-studio-backend/internal/services"
	"github.com/chetanfram3/fram3-studio-backend/internal/utils"
)

type ScriptHandler struct {
	scriptService *services.ScriptService
}

func NewScriptHandler(scriptService *services.ScriptService) *ScriptHandler {
	return &ScriptHandler{
		scriptService: scriptService,
	}
}

// POST /scripts
func (h *ScriptHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.CreateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	script, err := h.scriptService.Create(userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, script)
}

// GET /scripts/:id
func (h *ScriptHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	scriptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid script ID", nil)
		return
	}

	script, err := h.scriptService.Get(userID, scriptID)
	if err != nil {
		utils.NotFoundResponse(c, "script")
		return
	}

	utils.SuccessResponse(c, script)
}

// GET /scripts
func (h *ScriptHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	scripts, total, err := h.scriptService.List(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(scripts, total, params))
}

// PUT /scripts/:id
func (h *ScriptHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	scriptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid script ID", nil)
		return
	}

	var req services.UpdateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	script, err := h.scriptService.Update(userID, scriptID, &req)
	if err != nil {
		utils.NotFoundResponse(c, "script")
		return
	}

	utils.SuccessResponse(c, script)
}

// DELETE /scripts/:id
func (h *ScriptHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	scriptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid script ID", nil)
		return
	}

	if err := h.scriptService.Delete(userID, scriptID); err != nil {
		utils.NotFoundResponse(c, "script")
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "script deleted"})
}

// POST /scripts/:id/versions
func (h *ScriptHandler) AddVersion(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	scriptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid script ID", nil)
		return
	}

	var req struct {
		Content    models.JSONB `json:"content" binding:"required"`
		ModelTier  string       `json:"model_tier"`
		CreditCost int64        `json:"credit_cost" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	version, err := h.scriptService.AddVersion(userID, scriptID, req.Content, req.ModelTier, req.CreditCost)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, version)
}
