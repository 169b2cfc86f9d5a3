package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/clients"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/dto"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/wizard"
)

// GetTags godoc
// @Summary List available order tags
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Router /api/tags [get]
func (h *Handler) GetTags(ctx *gin.Context) {
	tags, err := h.Repository.GetAllTags()
	if err != nil {
		h.serverError(ctx, err)
		return
	}

	resp := dto.TagListResponse{Tags: make([]dto.TagResponse, len(tags)), Total: len(tags)}
	for i, t := range tags {
		resp.Tags[i] = dto.TagResponse{ID: t.ID, Name: t.Name}
	}
	h.successResponse(ctx, http.StatusOK, "", resp)
}

// CreateTag godoc
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTagRequest true "Tag data"
// @Success 201 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/tags [post]
func (h *Handler) CreateTag(ctx *gin.Context) {
	var req dto.CreateTagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tag, err := h.Repository.CreateTag(req.Name)
	if err != nil {
		h.errorResponse(ctx, http.StatusConflict, "tag already exists")
		return
	}

	h.successResponse(ctx, http.StatusCreated, "tag created", dto.TagResponse{ID: tag.ID, Name: tag.Name})
}

// DeleteTag godoc
// @Summary Delete a tag
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tag ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/tags/{id} [delete]
func (h *Handler) DeleteTag(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, "invalid tag id")
		return
	}

	if err := h.Repository.DeleteTag(uint(id)); err != nil {
		h.serverError(ctx, err)
		return
	}

	h.successResponse(ctx, http.StatusOK, "tag deleted", nil)
}

// cachedOptions serves an upstream catalog list through the redis cache so
// repeated wizard renders do not hammer the cloud API.
func (h *Handler) cachedOptions(ctx context.Context, key string, fetch func(context.Context) ([]wizard.Option, error)) ([]wizard.Option, error) {
	if opts, err := h.RedisClient.GetCatalog(ctx, key); err == nil {
		return opts, nil
	}

	opts, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.RedisClient.SetCatalog(ctx, key, opts); err != nil {
		logrus.Warnf("catalog cache write failed for %s: %v", key, err)
	}
	return opts, nil
}

// GetProjects godoc
// @Summary List projects from the cloud API
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Router /api/catalog/projects [get]
func (h *Handler) GetProjects(ctx *gin.Context) {
	opts, err := h.cachedOptions(ctx.Request.Context(), "projects", h.Cloud.ListProjects)
	if err != nil {
		h.serverError(ctx, err)
		return
	}
	h.successResponse(ctx, http.StatusOK, "", opts)
}

// GetProducts godoc
// @Summary List priced products for a region and category
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param region query string true "Region"
// @Param category query string true "Product category"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/catalog/products [get]
func (h *Handler) GetProducts(ctx *gin.Context) {
	region := ctx.Query("region")
	category := ctx.Query("category")
	if region == "" || category == "" {
		h.errorResponse(ctx, http.StatusBadRequest, "region and category are required")
		return
	}

	key := fmt.Sprintf("products:%s:%s", region, category)
	opts, err := h.cachedOptions(ctx.Request.Context(), key, func(c context.Context) ([]wizard.Option, error) {
		return h.Cloud.ListProducts(c, region, category)
	})
	if err != nil {
		h.serverError(ctx, err)
		return
	}
	h.successResponse(ctx, http.StatusOK, "", opts)
}

func (h *Handler) projectScopedList(
	ctx *gin.Context,
	resource string,
	fetch func(c context.Context, projectID, region string) ([]wizard.Option, error),
) {
	projectID := ctx.Query("project_id")
	region := ctx.Query("region")
	if projectID == "" {
		h.errorResponse(ctx, http.StatusBadRequest, "project_id is required")
		return
	}

	key := fmt.Sprintf("%s:%s:%s", resource, projectID, region)
	opts, err := h.cachedOptions(ctx.Request.Context(), key, func(c context.Context) ([]wizard.Option, error) {
		return fetch(c, projectID, region)
	})
	if err != nil {
		h.serverError(ctx, err)
		return
	}
	h.successResponse(ctx, http.StatusOK, "", opts)
}

// GetSubnets godoc
// @Summary List subnets of a project
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param project_id query string true "Project ID"
// @Param region query string false "Region"
// @Success 200 {object} dto.SuccessResponse
// @Router /api/catalog/subnets [get]
func (h *Handler) GetSubnets(ctx *gin.Context) {
	h.projectScopedList(ctx, "subnets", h.Cloud.ListSubnets)
}

// GetSecurityGroups godoc
// @Summary List security groups of a project
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param project_id query string true "Project ID"
// @Param region query string false "Region"
// @Success 200 {object} dto.SuccessResponse
// @Router /api/catalog/security-groups [get]
func (h *Handler) GetSecurityGroups(ctx *gin.Context) {
	h.projectScopedList(ctx, "security_groups", h.Cloud.ListSecurityGroups)
}

// GetKeyPairs godoc
// @Summary List key pairs of a project
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param project_id query string true "Project ID"
// @Param region query string false "Region"
// @Success 200 {object} dto.SuccessResponse
// @Router /api/catalog/key-pairs [get]
func (h *Handler) GetKeyPairs(ctx *gin.Context) {
	h.projectScopedList(ctx, "key_pairs", h.Cloud.ListKeyPairs)
}

// optionsForReferenceField returns the live option list a reference field is
// resolved against, keyed off the draft's current project and region.
func (h *Handler) optionsForReferenceField(ctx context.Context, s *wizard.Session, field string) ([]wizard.Option, error) {
	if field == "project_id" {
		return h.cachedOptions(ctx, "projects", h.Cloud.ListProjects)
	}

	if s.Draft.Project == nil {
		return nil, fmt.Errorf("select a project before choosing %s", field)
	}
	region := s.Draft.Project.Region

	var category string
	switch field {
	case "compute_instance_id":
		category = clients.CategoryComputeInstance
	case "os_image_id":
		category = clients.CategoryOSImage
	case "volume_type_id":
		category = clients.CategoryVolumeType
	case "bandwidth_id":
		category = clients.CategoryBandwidth
	case "floating_ip_id":
		category = clients.CategoryIP
	default:
		return nil, fmt.Errorf("field %q has no option source", field)
	}

	key := fmt.Sprintf("products:%s:%s", region, category)
	return h.cachedOptions(ctx, key, func(c context.Context) ([]wizard.Option, error) {
		return h.Cloud.ListProducts(c, region, category)
	})
}
