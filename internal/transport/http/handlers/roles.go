package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JLCarveth/blog/internal/usecase"
)

// RolesHandler serves role administration routes.
type RolesHandler struct {
	roles *usecase.RoleService
}

// NewRolesHandler constructs a RolesHandler.
func NewRolesHandler(roles *usecase.RoleService) *RolesHandler {
	return &RolesHandler{roles: roles}
}

// Create provisions a new role with an optional permission set.
func (h *RolesHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role name is required"))
		return
	}

	role, err := h.roles.CreateRole(c.Request.Context(), req.Name, req.Permissions)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRoleExists, Status: http.StatusConflict, Message: "role already exists"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "role creation failed")
		return
	}

	c.JSON(http.StatusCreated, RoleResponse{Name: role.Name, Permissions: role.Permissions})
}

// Grant attaches permissions to an existing role.
func (h *RolesHandler) Grant(c *gin.Context) {
	var req PermissionChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role and permissions are required"))
		return
	}

	if err := h.roles.GrantPermissions(c.Request.Context(), req.Role, req.Permissions); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Message: "role not found"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "permission grant failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "permissions granted"})
}

// Revoke detaches permissions from an existing role.
func (h *RolesHandler) Revoke(c *gin.Context) {
	var req PermissionChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role and permissions are required"))
		return
	}

	if err := h.roles.RevokePermissions(c.Request.Context(), req.Role, req.Permissions); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRoleNotFound, Status: http.StatusNotFound, Message: "role not found"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "permission revoke failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "permissions revoked"})
}

// List returns the full role table.
func (h *RolesHandler) List(c *gin.Context) {
	roles, err := h.roles.ListRoles(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "role listing failed")
		return
	}

	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, RoleResponse{Name: role.Name, Permissions: role.Permissions})
	}

	c.JSON(http.StatusOK, out)
}
