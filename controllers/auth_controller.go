package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"slipgen/services"
)

type AuthController struct {
	JWTService *services.JWTService
	adminEmail string
	adminHash  []byte
}

func NewAuthController(jwtService *services.JWTService, adminEmail, adminPassword string) *AuthController {
	c := &AuthController{
		JWTService: jwtService,
		adminEmail: adminEmail,
	}

	if adminPassword == "" {
		log.Printf("Warning: ADMIN_PASSWORD is not set; login is disabled")
		return c
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return c
	}
	c.adminHash = hash

	return c
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if c.adminHash == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Login is not configured"})
		return
	}

	if req.Email != c.adminEmail ||
		bcrypt.CompareHashAndPassword(c.adminHash, []byte(req.Password)) != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := c.JWTService.GenerateToken(req.Email)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}
