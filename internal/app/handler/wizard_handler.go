package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/dto"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/wizard"
)

func sessionResponse(s *wizard.Session) dto.WizardSessionResponse {
	return dto.WizardSessionResponse{
		Session:      s,
		RequestCount: len(s.Requests),
	}
}

// loadSession fetches the caller's wizard session named in the path.
func (h *Handler) loadSession(ctx *gin.Context) (*wizard.Session, bool) {
	userID, err := getUserFromContext(ctx)
	if err != nil {
		h.errorResponse(ctx, http.StatusForbidden, err.Error())
		return nil, false
	}

	s, err := h.RedisClient.GetSession(ctx.Request.Context(), userID, ctx.Param("session_id"))
	if err != nil {
		h.errorResponse(ctx, http.StatusNotFound, "wizard session not found")
		return nil, false
	}
	return s, true
}

func (h *Handler) saveAndRespond(ctx *gin.Context, s *wizard.Session, statusCode int) {
	if err := h.RedisClient.SaveSession(ctx.Request.Context(), s); err != nil {
		h.serverError(ctx, err)
		return
	}
	h.successResponse(ctx, statusCode, "", sessionResponse(s))
}

// saveAndRespondInvalid is the validation-failure variant: the session state
// (field errors, general error) is the payload the client renders.
func (h *Handler) saveAndRespondInvalid(ctx *gin.Context, s *wizard.Session) {
	if err := h.RedisClient.SaveSession(ctx.Request.Context(), s); err != nil {
		h.serverError(ctx, err)
		return
	}
	ctx.JSON(http.StatusUnprocessableEntity, dto.SuccessResponse{
		Status: "invalid",
		Data:   sessionResponse(s),
	})
}

// CreateWizardSession godoc
// @Summary Start a new provisioning wizard
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.SuccessResponse
// @Router /api/wizard [post]
func (h *Handler) CreateWizardSession(ctx *gin.Context) {
	userID, err := getUserFromContext(ctx)
	if err != nil {
		h.errorResponse(ctx, http.StatusForbidden, err.Error())
		return
	}

	s := wizard.NewSession(userID)
	logrus.Infof("wizard session %s created for user %d", s.ID, userID)
	h.saveAndRespond(ctx, s, http.StatusCreated)
}

// GetWizardSession godoc
// @Summary Current wizard state
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/wizard/{session_id} [get]
func (h *Handler) GetWizardSession(ctx *gin.Context) {
	s, ok := h.loadSession(ctx)
	if !ok {
		return
	}
	h.successResponse(ctx, http.StatusOK, "", sessionResponse(s))
}

// UpdateDraftField godoc
// @Summary Write one wizard field
// @Description Text, number and boolean fields are written directly; select
// @Description fields are resolved against the live option list so stale
// @Description values cannot survive a project switch.
// @Tags wizard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Param request body dto.UpdateDraftFieldRequest true "Field update"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/wizard/{session_id}/fields [put]
func (h *Handler) UpdateDraftField(ctx *gin.Context) {
	var req dto.UpdateDraftFieldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s, ok := h.loadSession(ctx)
	if !ok {
		return
	}

	kind, known := wizard.FieldKindOf(req.Field)
	if !known {
		h.errorResponse(ctx, http.StatusBadRequest, "unknown field "+req.Field)
		return
	}

	var err error
	switch kind {
	case wizard.FieldReference:
		var options []wizard.Option
		options, err = h.optionsForReferenceField(ctx.Request.Context(), s, req.Field)
		if err != nil {
			h.errorResponse(ctx, http.StatusBadRequest, err.Error())
			return
		}
		err = s.SelectReference(req.Field, req.Value, options)
	case wizard.FieldMulti:
		h.errorResponse(ctx, http.StatusBadRequest, "use the toggle endpoint for "+req.Field)
		return
	default:
		err = s.UpdateField(req.Field, req.Value)
	}
	if err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}

	h.saveAndRespond(ctx, s, http.StatusOK)
}

// ToggleDraftValue godoc
// @Summary Toggle membership in a multi-value field
// @Tags wizard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Param request body dto.ToggleValueRequest true "Field and value"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/wizard/{session_id}/toggle [put]
func (h *Handler) ToggleDraftValue(ctx *gin.Context) {
	var req dto.ToggleValueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s, ok := h.loadSession(ctx)
	if !ok {
		return
	}

	if req.Field == "tags" {
		exists, err := h.Repository.TagsExist([]string{req.Value})
		if err != nil {
			h.serverError(ctx, err)
			return
		}
		if !exists {
			h.errorResponse(ctx, http.StatusBadRequest, "unknown tag "+req.Value)
			return
		}
	}

	if err := s.ToggleValue(req.Field, req.Value); err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}

	h.saveAndRespond(ctx, s, http.StatusOK)
}

// CommitDraft godoc
// @Summary Validate the draft and append it to the request list
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 422 {object} dto.SuccessResponse
// @Router /api/wizard/{session_id}/requests [post]
func (h *Handler) CommitDraft(ctx *gin.Context) {
	s, ok := h.loadSession(ctx)
	if !ok {
		return
	}

	if err := s.CommitDraft(); err != nil {
		if errors.Is(err, wizard.ErrValidation) {
			h.saveAndRespondInvalid(ctx, s)
			return
		}
		h.errorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}

	h.saveAndRespond(ctx, s, http.StatusOK)
}

// RemoveRequest godoc
// @Summary Remove one committed request by position
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Param index path int true "Request index"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/wizard/{session_id}/requests/{index} [delete]
func (h *Handler) RemoveRequest(ctx *gin.Context) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, "invalid request index")
		return
	}

	s, ok := h.loadSession(ctx)
	if !ok {
		return
	}

	if err := s.RemoveRequest(index); err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}

	h.saveAndRespond(ctx, s, http.StatusOK)
}

// NextStep godoc
// @Summary Advance the wizard one step
// @Description From Summary this submits the batch upstream; on success the
// @Description order is recorded and the wizard moves to Payment.
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 422 {object} dto.SuccessResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/wizard/{session_id}/next [post]
func (h *Handler) NextStep(ctx *gin.Context) {
	s, ok := h.loadSession(ctx)
	if !ok {
		return
	}

	submitting := s.Step == wizard.StepSummary

	if err := s.Next(ctx.Request.Context(), h.Cloud); err != nil {
		if errors.Is(err, wizard.ErrValidation) {
			h.saveAndRespondInvalid(ctx, s)
			return
		}
		logrus.Errorf("order submission failed for session %s: %v", s.ID, err)
		if saveErr := h.RedisClient.SaveSession(ctx.Request.Context(), s); saveErr != nil {
			logrus.Error(saveErr)
		}
		h.errorResponse(ctx, http.StatusBadGateway, "order could not be created, please try again")
		return
	}

	if submitting && s.Step == wizard.StepPayment && s.Order != nil {
		if _, err := h.Repository.RecordOrder(s.UserID, s.Title, s.FastTrack, s.Order, s.Requests); err != nil {
			// the upstream order exists either way, keep going
			logrus.Errorf("failed to record order %s: %v", s.Order.Reference, err)
		}
	}

	h.saveAndRespond(ctx, s, http.StatusOK)
}

// PreviousStep godoc
// @Summary Move the wizard one step back
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /api/wizard/{session_id}/back [post]
func (h *Handler) PreviousStep(ctx *gin.Context) {
	s, ok := h.loadSession(ctx)
	if !ok {
		return
	}

	s.Back()
	h.saveAndRespond(ctx, s, http.StatusOK)
}

// CloseWizardSession godoc
// @Summary Discard the wizard session
// @Tags wizard
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /api/wizard/{session_id}/close [post]
func (h *Handler) CloseWizardSession(ctx *gin.Context) {
	s, ok := h.loadSession(ctx)
	if !ok {
		return
	}

	h.closeSession(ctx, s)
	h.successResponse(ctx, http.StatusOK, "wizard closed", nil)
}

// closeSession runs the wizard's close hook, drops the cached catalog so the
// next run fetches fresh data, and removes the stored session.
func (h *Handler) closeSession(ctx *gin.Context, s *wizard.Session) {
	s.Close(func() {
		if err := h.RedisClient.InvalidateCatalog(ctx.Request.Context()); err != nil {
			logrus.Warnf("catalog invalidation failed: %v", err)
		}
	})
	if err := h.RedisClient.DeleteSession(ctx.Request.Context(), s.UserID, s.ID); err != nil {
		logrus.Warnf("failed to delete wizard session %s: %v", s.ID, err)
	}
}
