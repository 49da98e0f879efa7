package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlebedeva/projectdock/internal/common"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleRegister(ctx *gin.Context) {
	var body registerRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := s.users.Register(ctx.Request.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
}

func (s *Server) handleLogin(ctx *gin.Context) {
	var body loginRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	token, err := s.users.Login(ctx.Request.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect email or password"})
			return
		}
		s.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}
