package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	statusservice "github.com/thenoetrevino/leadboard/internal/services/status"
)

// positionRequest carries either a target index or an explicit order value.
type positionRequest struct {
	Index    *int   `json:"index"`
	Position *int64 `json:"position"`
}

func (s *Server) listBoards(c *gin.Context) {
	boards, err := s.app.StatusService.ListBoards(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boards": boards})
}

func (s *Server) createBoard(c *gin.Context) {
	var req statusservice.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest("invalid request body"))
		return
	}
	board, err := s.app.StatusService.CreateBoard(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// showBoard returns the board with every status and its leads.
func (s *Server) showBoard(c *gin.Context) {
	ctx := c.Request.Context()
	board, err := s.app.StatusService.GetBoard(ctx, c.Param("board"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	columns, err := s.app.LeadService.ListBoard(ctx, board.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": board, "statuses": columns})
}

func (s *Server) listStatuses(c *gin.Context) {
	statuses, err := s.app.StatusService.ListStatuses(c.Request.Context(), c.Param("board"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

func (s *Server) createStatus(c *gin.Context) {
	var req statusservice.CreateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest("invalid request body"))
		return
	}
	req.BoardID = c.Param("board")

	status, err := s.app.StatusService.CreateStatus(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

func (s *Server) updateStatus(c *gin.Context) {
	var req statusservice.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest("invalid request body"))
		return
	}
	req.BoardID = c.Param("board")
	req.ID = c.Param("status")

	status, err := s.app.StatusService.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) deleteStatus(c *gin.Context) {
	if err := s.app.StatusService.DeleteStatus(c.Request.Context(), c.Param("board"), c.Param("status")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// reorderStatus moves a status to an index, or writes an explicit position.
func (s *Server) reorderStatus(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest("invalid request body"))
		return
	}

	ctx := c.Request.Context()
	boardID, statusID := c.Param("board"), c.Param("status")
	var err error
	switch {
	case req.Index != nil:
		err = s.app.StatusService.ReorderStatus(ctx, boardID, statusID, *req.Index)
	case req.Position != nil:
		err = s.app.StatusService.SetStatusPosition(ctx, boardID, statusID, *req.Position)
	default:
		err = badRequest("index or position is required")
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	statuses, err := s.app.StatusService.ListStatuses(ctx, boardID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}
