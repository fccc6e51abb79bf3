package apiserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"todo-dashboard/internal/model"
	"todo-dashboard/internal/taskdb"
)

// taskRequest mirrors model.Task with every field required.
type taskRequest struct {
	ID          *int    `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *bool   `json:"status"`
}

func (r taskRequest) task() (model.Task, error) {
	switch {
	case r.ID == nil:
		return model.Task{}, errors.New("field required: id")
	case r.Name == nil:
		return model.Task{}, errors.New("field required: name")
	case r.Description == nil:
		return model.Task{}, errors.New("field required: description")
	case r.Status == nil:
		return model.Task{}, errors.New("field required: status")
	}
	return model.Task{ID: *r.ID, Name: *r.Name, Description: *r.Description, Status: *r.Status}, nil
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.repo.List(c.Request.Context())
	if err != nil {
		klog.Errorf("apiserver: list tasks: %v", err)
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) addTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	t, err := req.task()
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.repo.Insert(c.Request.Context(), t); err != nil {
		klog.V(2).Infof("apiserver: add task %d: %v", t.ID, err)
		detail(c, http.StatusBadRequest, fmt.Sprintf("Failed to add task: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Task %d added.", t.ID)})
}

func (s *Server) updateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	// The path id wins over the body id.
	if req.ID == nil {
		req.ID = &id
	}
	t, err := req.task()
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	t.ID = id

	err = s.repo.Update(c.Request.Context(), t)
	switch {
	case errors.Is(err, taskdb.ErrNotFound):
		detail(c, http.StatusNotFound, err.Error())
	case err != nil:
		klog.Errorf("apiserver: update task %d: %v", id, err)
		detail(c, http.StatusInternalServerError, "Internal server error")
	default:
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Task %d updated.", id)})
	}
}

func (s *Server) deleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := s.repo.Delete(c.Request.Context(), id)
	switch {
	case errors.Is(err, taskdb.ErrNotFound):
		detail(c, http.StatusNotFound, err.Error())
	case err != nil:
		klog.Errorf("apiserver: delete task %d: %v", id, err)
		detail(c, http.StatusInternalServerError, "Internal server error")
	default:
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Task %d deleted.", id)})
	}
}

func (s *Server) chat(c *gin.Context) {
	var req struct {
		Message *string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == nil {
		detail(c, http.StatusUnprocessableEntity, "field required: message")
		return
	}
	reply, err := s.agent.Reply(c.Request.Context(), *req.Message)
	if err != nil {
		klog.Errorf("apiserver: chat: %v", err)
		c.JSON(http.StatusOK, gin.H{"reply": fmt.Sprintf("Sorry, something went wrong: %v", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "invalid task id")
		return 0, false
	}
	return id, true
}
