package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/samvad-hq/jsonfetch/internal/domain"
	"github.com/samvad-hq/jsonfetch/internal/storage"
	"github.com/samvad-hq/jsonfetch/pkg/jsonvalue"
	"github.com/samvad-hq/jsonfetch/pkg/publishers"
)

type createExampleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type updateExampleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": s.cfg.AppName,
	})
}

func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Welcome to %s", s.cfg.AppName),
		"version": s.cfg.Version,
	})
}

func (s *Server) listExamples(c *gin.Context) {
	examples, err := s.store.List()
	if err != nil {
		s.storageFailure(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    examples,
		"count":   len(examples),
	})
}

func (s *Server) getExample(c *gin.Context) {
	id, ok := exampleID(c)
	if !ok {
		return
	}
	ex, err := s.store.Get(id)
	if err != nil {
		s.storageFailure(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ex})
}

func (s *Server) createExample(c *gin.Context) {
	var req createExampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badBody(c, err)
		return
	}
	name, desc := strings.TrimSpace(req.Name), strings.TrimSpace(req.Description)
	if name == "" || desc == "" {
		fail(c, http.StatusBadRequest, "name and description are required")
		return
	}

	ex, err := s.store.Create(domain.Example{Name: name, Description: desc})
	if err != nil {
		s.storageFailure(c, "create", err)
		return
	}
	s.publish(c, publishers.ActionCreated, ex)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": ex})
}

func (s *Server) updateExample(c *gin.Context) {
	id, ok := exampleID(c)
	if !ok {
		return
	}
	var req updateExampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badBody(c, err)
		return
	}

	current, err := s.store.Get(id)
	if err != nil {
		s.storageFailure(c, "get", err)
		return
	}
	name, desc := current.Name, current.Description
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		desc = strings.TrimSpace(*req.Description)
	}
	if name == "" || desc == "" {
		fail(c, http.StatusBadRequest, "name and description must not be empty")
		return
	}

	ex, err := s.store.Update(id, name, desc)
	if err != nil {
		s.storageFailure(c, "update", err)
		return
	}
	s.publish(c, publishers.ActionUpdated, ex)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ex})
}

func (s *Server) deleteExample(c *gin.Context) {
	id, ok := exampleID(c)
	if !ok {
		return
	}
	ex, err := s.store.Get(id)
	if err == nil {
		err = s.store.Delete(id)
	}
	if err != nil {
		s.storageFailure(c, "delete", err)
		return
	}
	s.publish(c, publishers.ActionDeleted, ex)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Example %d deleted", id),
	})
}

// echo returns the request body as parsed JSON.
func (s *Server) echo(c *gin.Context) {
	v, err := jsonvalue.Decode(c.Request.Body)
	if err != nil {
		s.badBody(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "echo": v})
}

func exampleID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		abortWithError(c, http.StatusNotFound, "The requested resource was not found")
		return 0, false
	}
	return id, true
}

func (s *Server) badBody(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abortWithError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		msgs := make([]string, 0, len(invalid))
		for _, fe := range invalid {
			msgs = append(msgs, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		fail(c, http.StatusBadRequest, strings.Join(msgs, "; "))
		return
	}
	fail(c, http.StatusBadRequest, err.Error())
}

func (s *Server) storageFailure(c *gin.Context, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		fail(c, http.StatusNotFound, "Example not found")
		return
	}
	s.log.ErrorObj("storage operation failed", "storage_error", map[string]any{
		"op":         op,
		"error":      err.Error(),
		"request_id": c.GetString(requestIDKey),
	})
	abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
}

// publish fans the change out. Failures are logged and never fail the request.
func (s *Server) publish(c *gin.Context, action string, ex domain.Example) {
	if s.events == nil {
		return
	}
	n, err := s.events.Publish(c.Request.Context(), publishers.NewEvent(action, ex))
	if err != nil {
		s.log.WarnObj("example event publish failed", "publish_error", map[string]any{
			"action":     action,
			"example_id": ex.ID,
			"delivered":  n,
			"error":      err.Error(),
		})
		return
	}
	s.log.DebugObj("example event published", "publish_meta", map[string]any{
		"action":     action,
		"example_id": ex.ID,
		"delivered":  n,
	})
}
