// Package server exposes conversation sessions over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DachengChen/querymaster/chat"
	"github.com/DachengChen/querymaster/envelope"
	"github.com/DachengChen/querymaster/i18n"
	"github.com/DachengChen/querymaster/metrics"
	"github.com/DachengChen/querymaster/render"
)

// Options configures the API server.
type Options struct {
	Lang     i18n.Lang
	RowLimit int
	Render   render.Options
	Logger   *slog.Logger

	// SessionTTL drops a session after this long without a request.
	SessionTTL time.Duration
	// MaxSessions evicts the least recently used session beyond this count.
	MaxSessions uint64
}

const (
	defaultSessionTTL  = 24 * time.Hour
	defaultMaxSessions = 10000
)

// Server keeps in-memory sessions keyed by ID. Turns within one session run
// one at a time; different sessions run concurrently. Idle sessions expire.
type Server struct {
	dispatcher *chat.Dispatcher
	opts       Options
	log        *slog.Logger
	sessions   *ttlcache.Cache[string, *chat.Session]
}

// New creates a Server answering through d.
func New(d *chat.Dispatcher, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.MaxSessions == 0 {
		opts.MaxSessions = defaultMaxSessions
	}

	sessions := ttlcache.New(
		ttlcache.WithTTL[string, *chat.Session](opts.SessionTTL),
		ttlcache.WithCapacity[string, *chat.Session](opts.MaxSessions),
	)
	sessions.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *chat.Session]) {
		log.Info("session dropped", "session_id", item.Key(), "reason", evictionReason(reason))
	})

	return &Server{
		dispatcher: d,
		opts:       opts,
		log:        log,
		sessions:   sessions,
	}
}

func evictionReason(r ttlcache.EvictionReason) string {
	switch r {
	case ttlcache.EvictionReasonExpired:
		return "idle"
	case ttlcache.EvictionReasonCapacityReached:
		return "capacity"
	default:
		return "deleted"
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), metrics.Middleware(), s.requestLogger())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/presets", s.presets)
	api.POST("/sessions", s.createSession)
	api.POST("/sessions/:id/ask", s.ask)
	api.GET("/sessions/:id/messages", s.messages)
	api.DELETE("/sessions/:id/history", s.clearHistory)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sessions.Start()
	defer s.sessions.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// session looks up id and refreshes its idle timer.
func (s *Server) session(id string) (*chat.Session, bool) {
	item := s.sessions.Get(id)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) presets(c *gin.Context) {
	lang := s.opts.Lang
	if q := c.Query("lang"); q != "" {
		lang = i18n.Parse(q)
	}
	c.JSON(http.StatusOK, gin.H{"lang": lang, "presets": i18n.Presets(lang)})
}

func (s *Server) createSession(c *gin.Context) {
	var body struct {
		Lang string `json:"lang"`
	}
	_ = c.ShouldBindJSON(&body)

	lang := s.opts.Lang
	if body.Lang != "" {
		lang = i18n.Parse(body.Lang)
	}

	sess := chat.NewSession(s.dispatcher, lang, s.opts.RowLimit)
	s.sessions.Set(sess.ID, sess, ttlcache.DefaultTTL)

	s.log.Info("session created", "session_id", sess.ID, "lang", lang)
	c.JSON(http.StatusCreated, gin.H{"session_id": sess.ID, "lang": lang})
}

type askRequest struct {
	Question string `json:"question"`
	Preset   string `json:"preset"`
}

type askResponse struct {
	Envelope   envelope.Envelope `json:"envelope"`
	View       render.View       `json:"view"`
	Cached     bool              `json:"cached"`
	DurationMS int64             `json:"duration_ms"`
}

func (s *Server) ask(c *gin.Context) {
	sess, ok := s.session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	question := strings.TrimSpace(req.Question)
	if req.Preset != "" {
		p, ok := i18n.FindPreset(sess.Lang, req.Preset)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown preset " + req.Preset})
			return
		}
		question = p.Prompt
	}
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	res := sess.Ask(c.Request.Context(), question)
	c.JSON(http.StatusOK, askResponse{
		Envelope:   res.Envelope,
		View:       render.Build(res.Envelope, s.opts.Render),
		Cached:     res.Cached,
		DurationMS: res.Duration.Milliseconds(),
	})
}

func (s *Server) messages(c *gin.Context) {
	sess, ok := s.session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": sess.Messages()})
}

func (s *Server) clearHistory(c *gin.Context) {
	sess, ok := s.session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	sess.Clear()
	c.Status(http.StatusNoContent)
}
