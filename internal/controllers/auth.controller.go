package controllers

import (
	"ixadmin/internal/middleware"
	"ixadmin/internal/response"
	"ixadmin/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// UserView is the public projection of a user.
type UserView struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type AuthController struct {
	users *services.UserService
}

func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

// Login exchanges credentials for a bearer token.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Email and password are required")
		return
	}

	user, err := ac.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.GlobalSecurityLogger.LogFailedAuth(c.ClientIP(), err.Error())
		response.Fail(c, err, "Login failed")
		return
	}

	token, err := services.GenerateToken(user)
	if err != nil {
		response.Fail(c, err, "Login failed")
		return
	}
	middleware.GlobalSecurityLogger.LogTokenGenerated(c.ClientIP(), user.Email)

	response.OK(c, gin.H{
		"token": token,
		"user":  UserView{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role},
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, http.StatusNotFound, "User not found")
		return
	}
	response.OK(c, UserView{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role})
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Current and new password are required")
		return
	}

	user := middleware.CurrentUser(c)
	if err := ac.users.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		response.Fail(c, err, "Failed to change password")
		return
	}
	response.Message(c, "Password changed successfully")
}
