// internal/handlers/payment.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chetanfram3/fram3-studio-backend/internal/services"
	"github.com/chetanfram3/fram3-studio-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// GET /payments/quote?credits=N
func (h *PaymentHandler) QuoteCustomPackage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	credits, err := strconv.ParseInt(c.Query("credits"), 10, 64)
	if err != nil || credits <= 0 {
		utils.BadRequestResponse(c, "credits must be a positive integer", nil)
		return
	}

	quote, err := h.paymentService.QuoteCustomPackage(c.Request.Context(), userID, credits)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, quote)
}

// GET /payments/pricing-config
func (h *PaymentHandler) GetPricingConfig(c *gin.Context) {
	utils.SuccessResponse(c, h.paymentService.PricingConfig(c.Request.Context()))
}

// POST /payments/orders
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	response, err := h.paymentService.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, response)
}

// POST /payments/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	order, err := h.paymentService.VerifyPayment(c.Request.Context(), userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"order":   order,
		"message": "payment verified, credits added",
	})
}

// POST /payments/dismiss
func (h *PaymentHandler) DismissOrder(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.DismissOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.paymentService.DismissOrder(userID, &req); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "checkout dismissed"})
}

// GET /payments/orders
func (h *PaymentHandler) GetOrders(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	orders, total, err := h.paymentService.GetOrders(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// GET /payments/invoices
func (h *PaymentHandler) GetInvoices(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	invoices, total, err := h.paymentService.GetInvoices(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(invoices, total, params))
}
