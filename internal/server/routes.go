package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/colonyops/tasktalk/internal/core/task"
	"github.com/colonyops/tasktalk/internal/data/stores"
)

func (s *Server) routes(origins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.log), corsMiddleware(origins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ws", s.handleWebSocket)

	api := router.Group("/api")
	{
		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.listTasks)
			tasks.POST("", s.addTask)
			tasks.DELETE("/:id", s.deleteTask)
		}

		chat := api.Group("/chat")
		{
			chat.GET("", s.getChat)
			chat.POST("", s.postChat)
			chat.DELETE("", s.clearChat)
		}

		api.GET("/listening", s.getListening)
		api.POST("/listening", s.setListening)
		api.GET("/session", s.getSession)
	}

	return router
}

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.app.Tasks.List(c.Request.Context(), c.Query("date"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type addTaskRequest struct {
	Text string `json:"text"`
	Date string `json:"date"`
	Time string `json:"time"`
}

func (s *Server) addTask(c *gin.Context) {
	var req addTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := s.app.Tasks.Add(c.Request.Context(), req.Text, req.Date, req.Time)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) deleteTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	if err := s.app.Tasks.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getChat(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": s.app.Assistant.History()})
}

type chatRequest struct {
	Text string `json:"text" binding:"required"`
}

// postChat is the typed equivalent of speaking to the assistant.
func (s *Server) postChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply := s.app.Assistant.HandleTranscript(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, reply)
}

func (s *Server) clearChat(c *gin.Context) {
	if err := s.app.Assistant.ClearHistory(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getListening(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"listening": s.app.Assistant.Listening()})
}

type listeningRequest struct {
	Listening *bool `json:"listening" binding:"required"`
}

func (s *Server) setListening(c *gin.Context) {
	var req listeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if *req.Listening {
		s.app.Assistant.StartListening()
	} else {
		s.app.Assistant.StopListening()
	}
	c.JSON(http.StatusOK, gin.H{"listening": s.app.Assistant.Listening()})
}

func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.Assistant.Session())
}

// writeError maps domain and storage errors to HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var fieldErrs criterio.FieldErrors
	switch {
	case errors.Is(err, task.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &fieldErrs):
		status = http.StatusBadRequest
	case stores.IsBusyError(err):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && originAllowed(origins, origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Headers", "Content-Type, Accept")
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// originAllowed reports whether origin is in allowed. An empty list allows
// every origin.
func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
