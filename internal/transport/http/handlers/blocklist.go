package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JLCarveth/blog/internal/usecase"
)

// BlocklistHandler serves blocklist administration routes.
type BlocklistHandler struct {
	blocklist *usecase.BlocklistCache
}

// NewBlocklistHandler constructs a BlocklistHandler.
func NewBlocklistHandler(blocklist *usecase.BlocklistCache) *BlocklistHandler {
	return &BlocklistHandler{blocklist: blocklist}
}

// Ban adds a client address to the blocklist. Takes effect on the next
// request from that address.
func (h *BlocklistHandler) Ban(c *gin.Context) {
	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "address is required"))
		return
	}

	if err := h.blocklist.Ban(c.Request.Context(), req.Address, req.Reason); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAddressRequired, Status: http.StatusBadRequest, Message: "address is required"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "ban failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "address banned"})
}

// Unban removes a client address from the blocklist.
func (h *BlocklistHandler) Unban(c *gin.Context) {
	var req UnbanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "address is required"))
		return
	}

	if err := h.blocklist.Unban(c.Request.Context(), req.Address); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAddressNotBlocked, Status: http.StatusNotFound, Message: "address is not blocked"},
			{Err: usecase.ErrAddressRequired, Status: http.StatusBadRequest, Message: "address is required"},
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "unban failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "address unbanned"})
}

// List returns the full blocklist with ban reasons.
func (h *BlocklistHandler) List(c *gin.Context) {
	blocked, err := h.blocklist.ListBlocked(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUpstreamUnavailable, Status: http.StatusServiceUnavailable, Message: "service temporarily unavailable"},
		}, http.StatusInternalServerError, "blocklist listing failed")
		return
	}

	out := make([]BlockedAddressResponse, 0, len(blocked))
	for _, entry := range blocked {
		out = append(out, BlockedAddressResponse{
			Address: entry.Address,
			Reason:  entry.Reason,
			BanDate: entry.BanDate,
		})
	}

	c.JSON(http.StatusOK, out)
}
