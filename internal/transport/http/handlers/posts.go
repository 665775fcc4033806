package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JLCarveth/blog/internal/core/port"
	"github.com/JLCarveth/blog/internal/repository"
	"github.com/JLCarveth/blog/internal/transport/http/middleware"
	"github.com/JLCarveth/blog/internal/usecase"
)

// PostsHandler serves blog post routes. Author identity comes from the
// token claims; the email is resolved to an account ID per request.
type PostsHandler struct {
	posts    *usecase.PostService
	accounts port.AccountRepository
}

// NewPostsHandler constructs a PostsHandler.
func NewPostsHandler(posts *usecase.PostService, accounts port.AccountRepository) *PostsHandler {
	return &PostsHandler{posts: posts, accounts: accounts}
}

func (h *PostsHandler) actorID(c *gin.Context) (string, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "missing access token"))
		return "", false
	}

	account, err := h.accounts.GetByEmail(c.Request.Context(), identity.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "account no longer exists"))
		} else {
			c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "service temporarily unavailable"))
		}
		return "", false
	}

	return account.ID, true
}

// Create stores a new post awaiting approval.
func (h *PostsHandler) Create(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid post payload"))
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), actorID, usecase.CreatePostInput{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Content:  req.Content,
		Tags:     req.Tags,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, postResponse(*post))
}

// Get returns a single post by ID.
func (h *PostsHandler) Get(c *gin.Context) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPostNotFound, Status: http.StatusNotFound, Message: "post not found"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "post lookup failed")
		return
	}

	c.JSON(http.StatusOK, postResponse(*post))
}

// List returns published posts, paginated via limit and offset query
// parameters.
func (h *PostsHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	posts, err := h.posts.ListPublished(c.Request.Context(), limit, offset)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "post listing failed")
		return
	}

	c.JSON(http.StatusOK, postResponses(posts))
}

// ListMine returns every post owned by the caller, drafts included.
func (h *PostsHandler) ListMine(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	posts, err := h.posts.ListByAuthor(c.Request.Context(), actorID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "post listing failed")
		return
	}

	c.JSON(http.StatusOK, postResponses(posts))
}

// Update edits a post the caller owns. The edit resets the approval flag.
func (h *PostsHandler) Update(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid post payload"))
		return
	}

	post, err := h.posts.UpdatePost(c.Request.Context(), actorID, c.Param("id"), usecase.CreatePostInput{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Content:  req.Content,
		Tags:     req.Tags,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPostNotFound, Status: http.StatusNotFound, Message: "post not found"},
			{Err: usecase.ErrNotPostAuthor, Status: http.StatusForbidden, Message: "not the post author"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "post update failed")
		return
	}

	c.JSON(http.StatusOK, postResponse(*post))
}

// Approve publishes a post. Requires the approvePost permission, enforced
// by the route chain.
func (h *PostsHandler) Approve(c *gin.Context) {
	if err := h.posts.ApprovePost(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPostNotFound, Status: http.StatusNotFound, Message: "post not found"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "post approval failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "post approved"})
}

// Delete removes a post. Requires the deletePost permission, enforced by
// the route chain.
func (h *PostsHandler) Delete(c *gin.Context) {
	if err := h.posts.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPostNotFound, Status: http.StatusNotFound, Message: "post not found"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "post deletion failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "post deleted"})
}

