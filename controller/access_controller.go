// controller/access_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	"github.com/dev-mohitbeniwal/grantflow/model"
	"github.com/dev-mohitbeniwal/grantflow/service"
	"github.com/dev-mohitbeniwal/grantflow/util"
	helper_util "github.com/dev-mohitbeniwal/grantflow/util/helper"
)

type AccessController struct {
	accessService service.IAccessService
}

func NewAccessController(accessService service.IAccessService) *AccessController {
	return &AccessController{
		accessService: accessService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AccessController) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/requests")
	{
		requests.POST("", ac.SubmitRequest)
		requests.GET("", ac.ListRequests)
		requests.GET("/:id", ac.GetRequest)
		requests.POST("/:id/approve", ac.ApproveRequest)
		requests.POST("/:id/reject", ac.RejectRequest)
		requests.POST("/bulk/approve", ac.BulkApprove)
		requests.POST("/bulk/reject", ac.BulkReject)
	}

	grants := r.Group("/grants")
	{
		grants.GET("", ac.ListGrants)
		grants.GET("/:id", ac.GetGrant)
		grants.POST("/:id/revoke", ac.RevokeGrant)
	}
}

// SubmitRequest endpoint
func (ac *AccessController) SubmitRequest(c *gin.Context) {
	var in model.SubmitRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid access request data", err)
		return
	}
	// An authenticated caller always submits for themselves.
	if actor, err := util.GetActorFromContext(c); err == nil {
		in.RequesterEmail = actor
	}

	req, err := ac.accessService.SubmitRequest(c.Request.Context(), in)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, req)
}

// ListRequests endpoint
func (ac *AccessController) ListRequests(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	requests, err := ac.accessService.ListRequests(c.Request.Context(), model.RequestFilter{
		Status:         model.RequestStatus(c.Query("status")),
		ProjectID:      c.Query("projectId"),
		RequesterEmail: c.Query("requesterEmail"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

// GetRequest endpoint
func (ac *AccessController) GetRequest(c *gin.Context) {
	req, err := ac.accessService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// ApproveRequest endpoint
func (ac *AccessController) ApproveRequest(c *gin.Context) {
	actor, err := util.GetActorFromContext(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	req, err := ac.accessService.ApproveRequest(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// RejectRequest endpoint
func (ac *AccessController) RejectRequest(c *gin.Context) {
	actor, err := util.GetActorFromContext(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}
	var in model.RejectInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid rejection data", err)
			return
		}
	}

	req, err := ac.accessService.RejectRequest(c.Request.Context(), c.Param("id"), actor, in.Reason)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// BulkApprove endpoint. Per-item failures are reported in the body, never as the status.
func (ac *AccessController) BulkApprove(c *gin.Context) {
	ac.bulk(c, func(actor string, in model.BulkRequestInput) (*model.BulkResult, error) {
		return ac.accessService.BulkApprove(c.Request.Context(), in.RequestIDs, actor)
	})
}

// BulkReject endpoint
func (ac *AccessController) BulkReject(c *gin.Context) {
	ac.bulk(c, func(actor string, in model.BulkRequestInput) (*model.BulkResult, error) {
		return ac.accessService.BulkReject(c.Request.Context(), in.RequestIDs, actor, in.Reason)
	})
}

func (ac *AccessController) bulk(c *gin.Context, run func(string, model.BulkRequestInput) (*model.BulkResult, error)) {
	actor, err := util.GetActorFromContext(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}
	var in model.BulkRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid bulk action data", grant_errors.ErrInvalidRequestData)
		return
	}

	result, err := run(actor, in)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListGrants endpoint
func (ac *AccessController) ListGrants(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	grants, err := ac.accessService.ListGrants(c.Request.Context(), model.GrantFilter{
		Status:    model.GrantStatus(c.Query("status")),
		ProjectID: c.Query("projectId"),
		UserEmail: c.Query("userEmail"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grants)
}

// GetGrant endpoint
func (ac *AccessController) GetGrant(c *gin.Context) {
	grant, err := ac.accessService.GetGrant(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grant)
}

// RevokeGrant endpoint
func (ac *AccessController) RevokeGrant(c *gin.Context) {
	actor, err := util.GetActorFromContext(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	grant, err := ac.accessService.RevokeGrant(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grant)
}
