package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type projectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type projectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
	LogoURL     string `json:"logo_url,omitempty"`
}

type inviteRequest struct {
	Email string `json:"email" binding:"required"`
}

func (s *Server) handleCreateProject(ctx *gin.Context) {
	var body projectRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	project, err := s.projects.Create(ctx.Request.Context(), currentUserID(ctx), body.Name, body.Description)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, projectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
	})
}

func (s *Server) handleListProjects(ctx *gin.Context) {
	summaries, err := s.projects.ListForUser(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	type documentInfo struct {
		Filename string `json:"filename"`
	}
	type summaryResponse struct {
		ID          string         `json:"id"`
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Documents   []documentInfo `json:"documents"`
	}

	response := make([]summaryResponse, 0, len(summaries))
	for _, sum := range summaries {
		docs := make([]documentInfo, 0, len(sum.Documents))
		for _, name := range sum.Documents {
			docs = append(docs, documentInfo{Filename: name})
		}
		response = append(response, summaryResponse{
			ID:          sum.ID,
			Name:        sum.Name,
			Description: sum.Description,
			Documents:   docs,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func (s *Server) handleGetProject(ctx *gin.Context) {
	project, err := s.projects.Get(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx))
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		LogoURL:     project.LogoURL,
	})
}

func (s *Server) handleUpdateProject(ctx *gin.Context) {
	var body projectRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	project, err := s.projects.Update(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx), body.Name, body.Description)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		LogoURL:     project.LogoURL,
	})
}

func (s *Server) handleDeleteProject(ctx *gin.Context) {
	if err := s.projects.Delete(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx)); err != nil {
		s.writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (s *Server) handleInvite(ctx *gin.Context) {
	var body inviteRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	participant, err := s.projects.Invite(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx), body.Email)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":         participant.ID,
		"project_id": participant.ProjectID,
		"user_id":    participant.UserID,
	})
}
