package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/clients"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/ds"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/dto"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/wizard"
)

const maxProofSize = 10 << 20 // 10 MiB

// SelectPaymentOption godoc
// @Summary Choose how to pay for the submitted order
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Param request body dto.SelectPaymentOptionRequest true "Option"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/wizard/{session_id}/payment/option [put]
func (h *Handler) SelectPaymentOption(ctx *gin.Context) {
	var req dto.SelectPaymentOptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s, ok := h.loadSession(ctx)
	if !ok {
		return
	}

	if err := s.SelectPaymentOption(req.OptionID); err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}

	h.saveAndRespond(ctx, s, http.StatusOK)
}

// paymentCallbackURL builds the redirect target the gateway sends the user
// back to, carrying enough to find the session again.
func (h *Handler) paymentCallbackURL(s *wizard.Session) string {
	base := h.Config.Paystack.CallbackBaseURL
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/payment/callback?user_id=%d&session_id=%s",
		base, s.UserID, url.QueryEscape(s.ID))
}

// payerEmail prefers the address baked into the token and falls back to the
// upstream profile.
func (h *Handler) payerEmail(ctx *gin.Context) string {
	if email := ctx.GetString("userEmail"); email != "" {
		return email
	}
	profile, err := h.Cloud.GetProfile(ctx.Request.Context())
	if err != nil {
		logrus.Warnf("profile lookup failed: %v", err)
		return ""
	}
	return profile.Email
}

// Pay godoc
// @Summary Execute the selected payment option
// @Description Card payments return an authorization URL to redirect the
// @Description user to; bank transfers return the settlement account details
// @Description directly.
// @Tags payment
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/wizard/{session_id}/payment [post]
func (h *Handler) Pay(ctx *gin.Context) {
	s, ok := h.loadSession(ctx)
	if !ok {
		return
	}

	result, err := s.Pay(ctx.Request.Context(), h.Paystack, wizard.PayContext{
		PublicKey:   h.Config.Paystack.PublicKey,
		Email:       h.payerEmail(ctx),
		CallbackURL: h.paymentCallbackURL(s),
	})
	if err != nil {
		var precondition *wizard.ErrPaymentPrecondition
		if errors.As(err, &precondition) {
			h.errorResponse(ctx, http.StatusConflict, precondition.Error())
			return
		}
		if saveErr := h.RedisClient.SaveSession(ctx.Request.Context(), s); saveErr != nil {
			logrus.Error(saveErr)
		}
		logrus.Errorf("payment failed for order %s: %v", orderRef(s), err)
		h.errorResponse(ctx, http.StatusBadGateway, "card payment could not be started")
		return
	}

	switch {
	case result.Account != nil:
		if err := h.Repository.MarkOrderAwaitingTransfer(orderRef(s)); err != nil {
			logrus.Errorf("failed to mark order %s awaiting transfer: %v", orderRef(s), err)
		}
	case result.CloseWizard:
		h.closeSession(ctx, s)
		h.successResponse(ctx, http.StatusOK, "", dto.PayResponse{Result: result})
		return
	}

	if err := h.RedisClient.SaveSession(ctx.Request.Context(), s); err != nil {
		h.serverError(ctx, err)
		return
	}
	h.successResponse(ctx, http.StatusOK, "", dto.PayResponse{
		PublicKey: h.Config.Paystack.PublicKey,
		Result:    result,
	})
}

// PaymentCallback godoc
// @Summary Gateway redirect target after a card payment attempt
// @Description Verifies the transaction by reference and resolves the wizard
// @Description accordingly: success closes the flow, an abandoned checkout
// @Description returns silently to option selection, a failure surfaces the
// @Description error there.
// @Tags payment
// @Produce json
// @Param user_id query int true "User ID"
// @Param session_id query string true "Session ID"
// @Param reference query string true "Transaction reference"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/payment/callback [get]
func (h *Handler) PaymentCallback(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Query("user_id"), 10, 32)
	if err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, "invalid user_id")
		return
	}
	sessionID := ctx.Query("session_id")
	reference := ctx.Query("reference")
	if reference == "" {
		reference = ctx.Query("trxref")
	}
	if sessionID == "" || reference == "" {
		h.errorResponse(ctx, http.StatusBadRequest, "session_id and reference are required")
		return
	}

	s, err := h.RedisClient.GetSession(ctx.Request.Context(), uint(userID), sessionID)
	if err != nil {
		h.errorResponse(ctx, http.StatusNotFound, "wizard session not found")
		return
	}

	// the payment is keyed by the order's reference; a transaction for any
	// other order must not resolve this session
	if s.Order == nil || s.Order.Reference != reference {
		logrus.Warnf("callback reference %s does not match session %s order %s",
			reference, s.ID, orderRef(s))
		h.errorResponse(ctx, http.StatusConflict, "reference does not belong to this order")
		return
	}

	status, err := h.Paystack.Verify(ctx.Request.Context(), reference)
	if err != nil {
		logrus.Errorf("transaction verification failed for %s: %v", reference, err)
		status = clients.TxnFailed
	}

	switch status {
	case clients.TxnSuccess:
		s.HandlePaymentSuccess()
		if err := h.Repository.MarkOrderPaid(reference); err != nil {
			logrus.Errorf("failed to mark order %s paid: %v", reference, err)
		}
		h.closeSession(ctx, s)
		h.successResponse(ctx, http.StatusOK, "payment confirmed", gin.H{
			"reference": reference,
			"status":    ds.OrderPaid,
		})

	case clients.TxnAbandoned:
		s.HandlePaymentCancel()
		if err := h.RedisClient.SaveSession(ctx.Request.Context(), s); err != nil {
			logrus.Error(err)
		}
		h.successResponse(ctx, http.StatusOK, "payment cancelled", sessionResponse(s))

	default:
		s.HandlePaymentError(fmt.Errorf("transaction %s resolved as %s", reference, status))
		if err := h.RedisClient.SaveSession(ctx.Request.Context(), s); err != nil {
			logrus.Error(err)
		}
		h.successResponse(ctx, http.StatusOK, "payment failed", sessionResponse(s))
	}
}

// UploadPaymentProof godoc
// @Summary Attach a transfer receipt to an order
// @Tags orders
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param reference path string true "Order reference"
// @Param file formData file true "Receipt (pdf, jpg or png)"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/orders/{reference}/proof [post]
func (h *Handler) UploadPaymentProof(ctx *gin.Context) {
	userID, err := getUserFromContext(ctx)
	if err != nil {
		h.errorResponse(ctx, http.StatusForbidden, err.Error())
		return
	}

	reference := ctx.Param("reference")
	order, err := h.Repository.GetOrderByReference(reference)
	if err != nil || order.CreatorID != userID {
		h.errorResponse(ctx, http.StatusNotFound, "order not found")
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, "receipt file is required")
		return
	}
	if fileHeader.Size > maxProofSize {
		h.errorResponse(ctx, http.StatusBadRequest, "receipt file is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.serverError(ctx, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.serverError(ctx, err)
		return
	}

	var previous string
	if order.ProofObject != nil {
		previous = *order.ProofObject
	}

	objectName, err := h.Minio.UploadReceipt(data, reference, fileHeader.Filename)
	if err != nil {
		h.serverError(ctx, err)
		return
	}

	if err := h.Repository.AttachProof(reference, objectName); err != nil {
		h.serverError(ctx, err)
		return
	}

	// re-uploading replaces the previous receipt
	if previous != "" {
		if err := h.Minio.DeleteFile(previous); err != nil {
			logrus.Warnf("failed to delete replaced receipt %s: %v", previous, err)
		}
	}

	h.successResponse(ctx, http.StatusOK, "receipt uploaded", gin.H{"object": objectName})
}

// DownloadPaymentProof godoc
// @Summary Download the attached transfer receipt
// @Tags orders
// @Produce octet-stream
// @Security BearerAuth
// @Param reference path string true "Order reference"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/orders/{reference}/proof [get]
func (h *Handler) DownloadPaymentProof(ctx *gin.Context) {
	userID, err := getUserFromContext(ctx)
	if err != nil {
		h.errorResponse(ctx, http.StatusForbidden, err.Error())
		return
	}

	reference := ctx.Param("reference")
	order, err := h.Repository.GetOrderByReference(reference)
	if err != nil || order.CreatorID != userID {
		h.errorResponse(ctx, http.StatusNotFound, "order not found")
		return
	}
	if order.ProofObject == nil {
		h.errorResponse(ctx, http.StatusNotFound, "no receipt attached")
		return
	}

	data, err := h.Minio.DownloadFile(*order.ProofObject)
	if err != nil {
		h.serverError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", *order.ProofObject))
	ctx.Data(http.StatusOK, "application/octet-stream", data)
}

// GetOrders godoc
// @Summary List the caller's provisioning orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Router /api/orders [get]
func (h *Handler) GetOrders(ctx *gin.Context) {
	userID, err := getUserFromContext(ctx)
	if err != nil {
		h.errorResponse(ctx, http.StatusForbidden, err.Error())
		return
	}

	orders, err := h.Repository.GetOrdersByCreator(userID)
	if err != nil {
		h.serverError(ctx, err)
		return
	}

	resp := dto.OrderListResponse{Orders: make([]dto.OrderResponse, len(orders)), Total: len(orders)}
	for i := range orders {
		resp.Orders[i] = h.orderResponse(&orders[i])
	}
	h.successResponse(ctx, http.StatusOK, "", resp)
}

// GetOrder godoc
// @Summary One order by reference
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param reference path string true "Order reference"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/orders/{reference} [get]
func (h *Handler) GetOrder(ctx *gin.Context) {
	userID, err := getUserFromContext(ctx)
	if err != nil {
		h.errorResponse(ctx, http.StatusForbidden, err.Error())
		return
	}

	order, err := h.Repository.GetOrderByReference(ctx.Param("reference"))
	if err != nil || order.CreatorID != userID {
		h.errorResponse(ctx, http.StatusNotFound, "order not found")
		return
	}

	h.successResponse(ctx, http.StatusOK, "", h.orderResponse(order))
}

func (h *Handler) orderResponse(order *ds.ProvisionOrder) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:        order.ID,
		Reference: order.Reference,
		Status:    order.Status,
		Title:     order.Title,
		Total:     order.Total,
		Currency:  order.Currency,
		CreatedAt: order.CreatedAt,
		PaidAt:    order.PaidAt,
		Items:     len(order.Items),
	}
	if order.ProofObject != nil && h.Minio != nil {
		if proofURL, err := h.Minio.GetFileURL(*order.ProofObject); err == nil {
			resp.ProofURL = proofURL
		}
	}
	return resp
}

func orderRef(s *wizard.Session) string {
	if s.Order == nil {
		return ""
	}
	return s.Order.Reference
}
