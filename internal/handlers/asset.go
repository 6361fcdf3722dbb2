// internal/handlers/asset.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chetanfram3/fram3-studio-backend/internal/models"
	"github.com/chetanfram3/fram3-studio-backend/internal/services"
	"github.com/chetanfram3/fram3-studio-backend/internal/utils"
)

type AssetHandler struct {
	assetService *services.AssetService
}

func NewAssetHandler(assetService *services.AssetService) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
	}
}

// parseIdentity builds the lookup key from query parameters. Unknown or
// malformed values fail here; variant completeness is checked by the service.
func parseIdentity(c *gin.Context) (*services.AssetIdentity, error) {
	id := &services.AssetIdentity{
		Type:       models.AssetType(c.Query("type")),
		MediaKind:  models.MediaKind(c.DefaultQuery("kind", string(models.MediaKindImage))),
		PromptType: c.Query("promptType"),
	}

	var err error
	if id.ScriptID, err = queryUUID(c, "scriptId"); err != nil {
		return nil, err
	}
	if id.ScriptVersionID, err = queryUUID(c, "versionId"); err != nil {
		return nil, err
	}
	if id.SceneID, err = queryInt64(c, "sceneId"); err != nil {
		return nil, err
	}
	if id.ShotID, err = queryInt64(c, "shotId"); err != nil {
		return nil, err
	}
	if id.ActorID, err = queryInt64(c, "actorId"); err != nil {
		return nil, err
	}
	if id.ActorVersionID, err = queryInt64(c, "actorVersionId"); err != nil {
		return nil, err
	}
	if id.LocationID, err = queryInt64(c, "locationId"); err != nil {
		return nil, err
	}
	if id.LocationVersionID, err = queryInt64(c, "locationVersionId"); err != nil {
		return nil, err
	}

	return id, nil
}

func queryUUID(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.New(name + " must be a UUID")
	}
	return &parsed, nil
}

func queryInt64(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.New(name + " must be an integer")
	}
	return &parsed, nil
}

// respondServiceError maps the service error taxonomy onto HTTP responses.
func respondServiceError(c *gin.Context, err error) {
	var scopeErr *services.MissingScopeError
	if errors.As(err, &scopeErr) {
		utils.ValidationErrorResponse(c, []utils.ValidationError{{
			Field:   scopeErr.Field,
			Message: scopeErr.Error(),
		}})
		return
	}

	var creditsErr *services.InsufficientCreditsError
	if errors.As(err, &creditsErr) {
		utils.InsufficientCreditsResponse(c, creditsErr.Required, creditsErr.Available)
		return
	}

	utils.BadRequestResponse(c, err.Error(), nil)
}

// GET /assets/complete-data
func (h *AssetHandler) GetCompleteData(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	identity, err := parseIdentity(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	data, err := h.assetService.GetCompleteData(userID, identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, data)
}

// POST /assets
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	identity, err := parseIdentity(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req services.AppendVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	asset, err := h.assetService.CreateAsset(c.Request.Context(), userID, identity, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, asset)
}

// POST /assets/versions
func (h *AssetHandler) AppendVersion(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	identity, err := parseIdentity(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req services.AppendVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	asset, err := h.assetService.AppendVersion(c.Request.Context(), userID, identity, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, asset)
}

// POST /assets/restore
func (h *AssetHandler) RestoreVersion(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	identity, err := parseIdentity(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req struct {
		Version int `json:"version" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	data, err := h.assetService.RestoreVersion(userID, identity, req.Version)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, data)
}

// GET /assets
func (h *AssetHandler) ListAssets(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	kind := models.MediaKind(c.Query("kind"))
	params := utils.GetPaginationParams(c)

	assets, total, err := h.assetService.ListAssets(userID, kind, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(assets, total, params))
}
