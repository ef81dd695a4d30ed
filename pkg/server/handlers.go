package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynguyendang/sir/internal/manager"
	"github.com/duynguyendang/sir/pkg/common/errors"
	"github.com/duynguyendang/sir/pkg/kb"
	"github.com/duynguyendang/sir/pkg/sentence"
	"github.com/duynguyendang/sir/pkg/service"
)

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	ID string `json:"id"`
}

// FactRequest asserts one fact.
type FactRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Relation string `json:"relation" binding:"required"`
	Object   string `json:"object" binding:"required"`
}

// QueryRequest runs one path query.
type QueryRequest struct {
	Start   string `json:"start" binding:"required"`
	Pattern string `json:"pattern" binding:"required"`
	End     string `json:"end" binding:"required"`
}

// QueryResponse wraps a path search result.
type QueryResponse struct {
	Answer string `json:"answer"`
	service.Result
}

func (s *Server) handleCreateSession(c *gin.Context) {
	session := s.manager.Create()
	c.JSON(http.StatusCreated, SessionResponse{ID: session.ID})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.manager.Delete(c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleSay dispatches an English sentence.
func (s *Server) handleSay(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	reply, err := session.Say(req.Text)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (s *Server) handleAssertFact(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req FactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	fact, err := session.AssertFact(req.Subject, req.Relation, req.Object)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fact)
}

func (s *Server) handleListFacts(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	facts := session.Facts()
	if facts == nil {
		facts = []kb.Fact{}
	}
	c.JSON(http.StatusOK, gin.H{"facts": facts})
}

// handleQuery runs a single-pattern path query.
func (s *Server) handleQuery(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Invalid request body", err))
		return
	}

	res, err := session.QueryPath(req.Start, req.Pattern, req.End)
	if err != nil {
		handleError(c, err)
		return
	}
	answer := sentence.TextNotSure
	if res.Found {
		answer = sentence.TextYes
	}
	c.JSON(http.StatusOK, QueryResponse{Answer: answer, Result: res})
}

// handleGraph returns the session's facts as a D3 graph, with the chains
// of the last query highlighted.
func (s *Server) handleGraph(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Graph())
}

func (s *Server) session(c *gin.Context) (*manager.Session, bool) {
	session, err := s.manager.Get(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	return session, true
}

func handleError(c *gin.Context, err error) {
	appErr := errors.MapError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
