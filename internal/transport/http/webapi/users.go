package webapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forge-server-go/internal/domain/identity"
	httptransport "forge-server-go/internal/transport/http"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

func (s *Service) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.identities.Register(c.Request.Context(), bearerToken(c), req.Username, req.Password, req.Role)
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, gin.H{
		"username": created.Username,
		"role":     created.Role,
	}, "user registered")
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Service) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.identities.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, result, "login successful")
}

func (s *Service) handleLogout(c *gin.Context) {
	if err := s.identities.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "logged out")
}

func (s *Service) handleUserGet(c *gin.Context) {
	username := c.Param("username")
	principal, _ := principalFrom(c)
	if principal.Username != username && !principal.IsAdmin() {
		httptransport.RespondError(c, http.StatusForbidden, "cannot view another user")
		return
	}
	user, err := s.identities.Get(c.Request.Context(), username)
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"username": user.Username,
		"role":     user.Role,
	}, "")
}

type updateUserRequest struct {
	Username    string `json:"username" binding:"required"`
	NewUsername string `json:"new_username"`
	NewPassword string `json:"new_password"`
	NewRole     string `json:"new_role"`
}

func (s *Service) handleUserUpdate(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := s.identities.Update(c.Request.Context(), bearerToken(c), identity.UpdateRequest{
		TargetUsername: req.Username,
		NewUsername:    req.NewUsername,
		NewPassword:    req.NewPassword,
		NewRole:        req.NewRole,
	})
	if err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"username": updated.Username,
		"role":     updated.Role,
	}, "user updated")
}

func (s *Service) handleUserDelete(c *gin.Context) {
	if err := s.identities.Delete(c.Request.Context(), bearerToken(c), c.Param("username")); err != nil {
		httptransport.RespondDomainError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "user deleted")
}
