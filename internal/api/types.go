// Package api contains types for the portal's requests and responses.
package api

import (
	"github.com/kylejryan/artisan-request-portal/internal/identity"
	"github.com/kylejryan/artisan-request-portal/internal/models"
)

// SubmitRequestForm is the multipart/urlencoded body of POST /submit_request.
// Any username field a client sends is ignored; the user comes from the session.
type SubmitRequestForm struct {
	Email         string `form:"email"`
	Address       string `form:"address"`
	ContactNumber string `form:"contact_number"`
	ServiceTitle  string `form:"service_title"`
	ArtisanName   string `form:"artisan_name"`
	Description   string `form:"description"`
}

// LoginRequest is accepted as a form or JSON body.
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// SignupRequest is accepted as a form or JSON body.
type SignupRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Notice levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notice is a transient, user-facing message.
type Notice struct {
	Success  bool     `json:"success"`
	Level    string   `json:"level"`
	Message  string   `json:"message"`
	Redirect string   `json:"redirect,omitempty"`
	Missing  []string `json:"missing,omitempty"`
}

// LoginResponse carries the identity provider tokens after sign-in.
type LoginResponse struct {
	Notice
	Tokens identity.Tokens `json:"tokens"`
}

// HomeResponse is the catalog view for a signed-in user.
type HomeResponse struct {
	Username       string                  `json:"username"`
	Email          string                  `json:"email"`
	Artisans       []models.ArtisanListing `json:"artisans"`
	CategoryCounts map[models.Category]int `json:"category_counts"`
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status string `json:"status"`
}
