package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thenoetrevino/leadboard/internal/models"
	leadservice "github.com/thenoetrevino/leadboard/internal/services/lead"
)

type interactionRequest struct {
	Date   time.Time `json:"date"`
	Author string    `json:"author"`
	Notes  string    `json:"notes"`
}

func (s *Server) listLeads(c *gin.Context) {
	leads, err := s.app.LeadService.ListLeads(c.Request.Context(), c.Param("board"), c.Param("status"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

func (s *Server) createLead(c *gin.Context) {
	var req leadservice.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest("invalid request body"))
		return
	}
	req.BoardID = c.Param("board")
	req.StatusID = c.Param("status")

	lead, err := s.app.LeadService.CreateLead(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (s *Server) getLead(c *gin.Context) {
	lead, err := s.app.LeadService.GetLead(c.Request.Context(), c.Param("board"), c.Param("status"), c.Param("lead"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (s *Server) updateLead(c *gin.Context) {
	var req leadservice.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest("invalid request body"))
		return
	}
	req.BoardID = c.Param("board")
	req.StatusID = c.Param("status")
	req.ID = c.Param("lead")

	lead, err := s.app.LeadService.UpdateLead(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (s *Server) addInteraction(c *gin.Context) {
	var req interactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest("invalid request body"))
		return
	}

	lead, err := s.app.LeadService.AddInteraction(c.Request.Context(),
		c.Param("board"), c.Param("status"), c.Param("lead"),
		models.Interaction{Date: req.Date, Author: req.Author, Notes: req.Notes})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (s *Server) deleteLead(c *gin.Context) {
	if err := s.app.LeadService.DeleteLead(c.Request.Context(), c.Param("board"), c.Param("status"), c.Param("lead")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteAllLeads(c *gin.Context) {
	n, err := s.app.LeadService.DeleteAllLeads(c.Request.Context(), c.Param("board"), c.Param("status"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (s *Server) reorderLead(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		abortWithError(c, badRequest("index is required"))
		return
	}

	ctx := c.Request.Context()
	boardID, statusID := c.Param("board"), c.Param("status")
	if err := s.app.LeadService.ReorderLead(ctx, boardID, statusID, c.Param("lead"), *req.Index); err != nil {
		abortWithError(c, err)
		return
	}

	leads, err := s.app.LeadService.ListLeads(ctx, boardID, statusID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

func (s *Server) moveLead(c *gin.Context) {
	var req leadservice.MoveLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest("invalid request body"))
		return
	}
	req.BoardID = c.Param("board")
	req.ID = c.Param("lead")

	lead, err := s.app.LeadService.MoveLead(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (s *Server) rebalanceLeads(c *gin.Context) {
	ctx := c.Request.Context()
	boardID, statusID := c.Param("board"), c.Param("status")
	if err := s.app.LeadService.RebalanceLeads(ctx, boardID, statusID); err != nil {
		abortWithError(c, err)
		return
	}

	leads, err := s.app.LeadService.ListLeads(ctx, boardID, statusID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}
