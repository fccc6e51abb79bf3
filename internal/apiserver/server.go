// Package apiserver is the reference task API: the HTTP collaborator the
// dashboard talks to, backed by taskdb and the rule-based agent.
package apiserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"todo-dashboard/internal/model"
)

// Repo is the task persistence behind the API. *taskdb.DB implements it.
type Repo interface {
	List(ctx context.Context) ([]model.Task, error)
	Insert(ctx context.Context, t model.Task) error
	Update(ctx context.Context, t model.Task) error
	Delete(ctx context.Context, id int) error
}

// Responder answers chat messages. *agent.Agent implements it.
type Responder interface {
	Reply(ctx context.Context, message string) (string, error)
}

type Server struct {
	repo   Repo
	agent  Responder
	engine *gin.Engine
}

// New builds the router. mode is a gin mode: debug, release or test.
func New(repo Repo, agent Responder, mode string) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	s := &Server{repo: repo, agent: agent}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/", s.listTasks)
	r.GET("/health", s.health)
	r.POST("/add", s.addTask)
	r.PUT("/update/:id", s.updateTask)
	r.DELETE("/delete/:id", s.deleteTask)
	r.POST("/agent/chat", s.chat)

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		klog.Infof("apiserver: listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		klog.Infof("apiserver: shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		klog.V(4).Infof("apiserver: %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
