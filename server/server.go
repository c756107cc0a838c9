// Package server exposes the engine over HTTP and websockets. It is thin
// glue: schema validation in, snapshots and ordered events out. All game
// logic stays behind the engine boundary.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/wasapjg/teg-engine/engine"
	"github.com/wasapjg/teg-engine/game"
)

// Server routes transport requests to game sessions.
type Server struct {
	manager  *engine.Manager
	defaults game.Options
	log      zerolog.Logger
}

// New creates a server over the given session manager. defaults seed the
// options of newly created games.
func New(manager *engine.Manager, defaults game.Options, logger zerolog.Logger) *Server {
	return &Server{manager: manager, defaults: defaults, log: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/games", s.createGame)
	r.POST("/games/:code/join", s.joinGame)
	r.POST("/games/:code/start", s.startGame)
	r.POST("/games/:code/actions", s.submitAction)
	r.POST("/games/:code/pause", s.pauseGame)
	r.POST("/games/:code/resume", s.resumeGame)
	r.POST("/games/:code/forfeit", s.forfeitGame)
	r.GET("/games/:code", s.getSnapshot)
	r.GET("/games/:code/events", s.getEvents)
	r.GET("/games/:code/qr", s.joinQR)
	r.GET("/ws/:code", s.handleWS)
	return r
}

func (s *Server) session(c *gin.Context) (*engine.Session, bool) {
	sess, err := s.manager.GetByCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Error: "game not found"})
		return nil, false
	}
	return sess, true
}

// writeDomainError maps typed domain errors onto transport codes.
func (s *Server) writeDomainError(c *gin.Context, err error) {
	var derr *game.Error
	if errors.As(err, &derr) {
		status := http.StatusUnprocessableEntity
		switch derr.Code {
		case game.ErrConcurrencyViolation:
			status = http.StatusConflict
		case game.ErrInvalidConfiguration:
			status = http.StatusBadRequest
		case game.ErrResourceExhausted:
			status = http.StatusInternalServerError
		}
		c.JSON(status, errorResponse{Code: string(derr.Code), Error: derr.Reason})
		return
	}
	s.log.Error().Err(err).Msg("internal error")
	c.JSON(http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Error: "internal error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Error: err.Error()})
}

func (s *Server) createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, creator, err := s.manager.Create(req.UserID, req.Name, req.options(s.defaults))
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	snap, err := sess.Snapshot()
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"playerId": creator.ID,
		"snapshot": snap,
	})
}

func (s *Server) joinGame(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req joinGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, snap, err := sess.Join(req.UserID, req.Name, false, "")
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"playerId": p.ID, "snapshot": snap})
}

func (s *Server) startGame(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	events, snap, err := sess.Start(req.PlayerID)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, actionResponse{Snapshot: snap, Events: events})
}

func (s *Server) submitAction(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	events, snap, err := sess.Act(req.action())
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, actionResponse{Snapshot: snap, Events: events})
}

func (s *Server) pauseGame(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := sess.Pause(req.PlayerID); err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) resumeGame(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := sess.Resume(req.PlayerID); err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) forfeitGame(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := sess.Forfeit(req.PlayerID); err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getSnapshot(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	snap, err := sess.Snapshot()
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) getEvents(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var query struct {
		From uint64 `form:"from"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}
	events, err := sess.EventsSince(query.From)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// joinQR renders the join code as a QR PNG for sharing a game in person.
func (s *Server) joinQR(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	png, err := qrcode.Encode(sess.Code(), qrcode.Medium, 256)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
