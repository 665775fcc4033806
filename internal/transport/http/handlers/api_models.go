package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// AccountSummary describes the account view returned by the API. Credential
// material never appears here.
type AccountSummary struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Verified bool      `json:"verified"`
	JoinedAt time.Time `json:"joined_at"`
}

func accountSummary(account domain.Account) AccountSummary {
	return AccountSummary{
		ID:       account.ID,
		Email:    account.Email,
		Username: account.Username,
		Role:     account.Role,
		Verified: account.Verified,
		JoinedAt: account.CreatedAt,
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the session token alongside the account view. The
// same token is also set as an HTTP-only cookie.
type LoginResponse struct {
	Token   string         `json:"token"`
	Account AccountSummary `json:"account"`
}

// RegisterRequest defines the payload for the registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest defines the payload for the password change endpoint.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// DeleteAccountRequest defines the payload for the account deletion endpoint.
type DeleteAccountRequest struct {
	Email string `json:"email" binding:"required"`
}

// PostRequest defines the payload for creating or updating a post.
type PostRequest struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
}

// PostResponse describes a post as returned by the API.
type PostResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle,omitempty"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	Approved  bool      `json:"approved"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func postResponse(post domain.Post) PostResponse {
	return PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Subtitle:  post.Subtitle,
		AuthorID:  post.AuthorID,
		Content:   post.Content,
		Tags:      post.Tags,
		Approved:  post.Approved,
		Views:     post.Views,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

func postResponses(posts []domain.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, postResponse(post))
	}
	return out
}

// CreateRoleRequest defines the payload for creating a role.
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
}

// PermissionChangeRequest defines the payload for granting or revoking
// permissions on a role.
type PermissionChangeRequest struct {
	Role        string   `json:"role" binding:"required"`
	Permissions []string `json:"permissions" binding:"required"`
}

// RoleResponse describes a role and its permission set.
type RoleResponse struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// BanRequest defines the payload for banning a client address.
type BanRequest struct {
	Address string `json:"address" binding:"required"`
	Reason  string `json:"reason"`
}

// UnbanRequest defines the payload for lifting a ban.
type UnbanRequest struct {
	Address string `json:"address" binding:"required"`
}

// BlockedAddressResponse describes a blocklist entry.
type BlockedAddressResponse struct {
	Address string    `json:"address"`
	Reason  string    `json:"reason,omitempty"`
	BanDate time.Time `json:"ban_date"`
}
