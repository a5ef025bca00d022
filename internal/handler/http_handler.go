package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/internal/service"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
	"github.com/weiawesome/wes-io-canvas/pkg/response"
)

const codeElementExists = "ELEMENT_EXISTS"

// HTTPHandler serves the persistence gateway API.
type HTTPHandler struct {
	boards service.BoardService
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(boards service.BoardService) *HTTPHandler {
	return &HTTPHandler{boards: boards}
}

// RegisterRoutes registers all routes.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api/v1")
	{
		boards := api.Group("/boards")
		{
			boards.GET("", h.ListBoards)
			boards.POST("", h.CreateBoard)
			boards.GET("/:boardId", h.GetBoard)

			boards.GET("/:boardId/elements", h.ListElements)
			boards.POST("/:boardId/elements", h.CreateElement)
			boards.PUT("/:boardId/elements", h.UpsertElements)
			boards.POST("/:boardId/elements/delete", h.DeleteElements)
		}
	}
}

// CreateBoard creates a new board.
func (h *HTTPHandler) CreateBoard(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateBoardRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			l.Warn().Err(err).Msg("failed to bind create board request")
			response.BadRequest(c, err.Error())
			return
		}
	}

	board, err := h.boards.CreateBoard(ctx, req.Title)
	if err != nil {
		l.Error().Err(err).Msg("failed to create board")
		response.InternalError(c, "failed to create board")
		return
	}

	response.Created(c, board)
}

// GetBoard retrieves a board by ID.
func (h *HTTPHandler) GetBoard(c *gin.Context) {
	ctx := c.Request.Context()
	boardID := c.Param("boardId")

	board, err := h.boards.GetBoard(ctx, boardID)
	if err != nil {
		h.writeError(c, err, boardID, "failed to get board")
		return
	}

	response.Success(c, board)
}

// ListBoards lists boards with pagination.
func (h *HTTPHandler) ListBoards(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.ListBoardsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.boards.ListBoards(ctx, req.Page, req.PageSize)
	if err != nil {
		l.Error().Err(err).Msg("failed to list boards")
		response.InternalError(c, "failed to list boards")
		return
	}

	response.Success(c, result)
}

// ListElements returns a board's elements bottom to top.
func (h *HTTPHandler) ListElements(c *gin.Context) {
	ctx := c.Request.Context()
	boardID := c.Param("boardId")

	els, err := h.boards.ListElements(ctx, boardID)
	if err != nil {
		h.writeError(c, err, boardID, "failed to list elements")
		return
	}
	if els == nil {
		els = []domain.Element{}
	}

	response.Success(c, els)
}

// CreateElement stores one new element.
func (h *HTTPHandler) CreateElement(c *gin.Context) {
	ctx := c.Request.Context()
	boardID := c.Param("boardId")

	var el domain.Element
	if err := c.ShouldBindJSON(&el); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.boards.CreateElement(ctx, boardID, el); err != nil {
		h.writeError(c, err, boardID, "failed to create element")
		return
	}

	response.Created(c, el)
}

// UpsertElements creates or replaces a batch of elements.
func (h *HTTPHandler) UpsertElements(c *gin.Context) {
	ctx := c.Request.Context()
	boardID := c.Param("boardId")

	var req domain.ElementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.boards.UpsertElements(ctx, boardID, req.Elements); err != nil {
		h.writeError(c, err, boardID, "failed to update elements")
		return
	}

	response.Success(c, req.Elements)
}

// DeleteElements removes a batch of elements by id.
func (h *HTTPHandler) DeleteElements(c *gin.Context) {
	ctx := c.Request.Context()
	boardID := c.Param("boardId")

	var req domain.DeleteElementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	n, err := h.boards.DeleteElements(ctx, boardID, req.IDs)
	if err != nil {
		h.writeError(c, err, boardID, "failed to delete elements")
		return
	}

	response.Success(c, domain.DeleteElementsResponse{Deleted: n})
}

func (h *HTTPHandler) writeError(c *gin.Context, err error, boardID, msg string) {
	switch {
	case errors.Is(err, service.ErrBoardNotFound):
		response.NotFound(c, "board not found")
	case errors.Is(err, service.ErrElementExists):
		response.Error(c, http.StatusConflict, codeElementExists, "element already exists")
	case errors.Is(err, domain.ErrInvalidElement):
		response.BadRequest(c, err.Error())
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str(log.FieldBoardID, boardID).Msg(msg)
		response.InternalError(c, msg)
	}
}
