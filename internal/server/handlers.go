package server

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kylejryan/artisan-request-portal/internal/api"
	"github.com/kylejryan/artisan-request-portal/internal/authz"
	"github.com/kylejryan/artisan-request-portal/internal/catalog"
	"github.com/kylejryan/artisan-request-portal/internal/httpx"
	"github.com/kylejryan/artisan-request-portal/internal/identity"
	"github.com/kylejryan/artisan-request-portal/internal/intake"
	"github.com/kylejryan/artisan-request-portal/internal/validate"
)

const (
	msgLoginRequired   = "You need to be logged in to submit a request."
	msgMissingFields   = "Please fill in all required fields: email, service title, artisan, address, and description."
	msgSubmitFailed    = "Failed to submit request. Please try again."
	msgSubmitted       = "Request submitted successfully!"
	msgLoginOK         = "Login successful!"
	msgLoginFailed     = "Invalid credentials. Please try again."
	msgSignupOK        = "Signup successful! Check your email for verification."
	msgSignupFailed    = "Signup failed. User may already exist."
	msgAuthUnavailable = "Sign-in is not configured."
)

type handlers struct {
	intake    Submitter
	identity  identity.Gateway
	maxUpload int64
	rand      func() *rand.Rand
	log       *slog.Logger
}

func (h *handlers) health(c *gin.Context) {
	httpx.JSON(c, http.StatusOK, api.HealthResponse{Status: "healthy"})
}

func (h *handlers) signup(c *gin.Context) {
	log := requestLogger(c, h.log)

	var req api.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "All fields are required")
		return
	}
	if err := validate.Signup(req.Username, req.Email, req.Password); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if h.identity == nil {
		httpx.Error(c, http.StatusServiceUnavailable, msgAuthUnavailable)
		return
	}

	if err := h.identity.Register(c.Request.Context(), req.Username, req.Password, req.Email); err != nil {
		log.Warn("signup failed", "username", req.Username, "error", err)
		httpx.Error(c, http.StatusBadRequest, msgSignupFailed)
		return
	}
	log.Info("signup succeeded", "username", req.Username)
	httpx.Success(c, http.StatusOK, msgSignupOK)
}

func (h *handlers) login(c *gin.Context) {
	log := requestLogger(c, h.log)

	var req api.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "Username and password are required.")
		return
	}
	if err := validate.Credentials(req.Username, req.Password); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if h.identity == nil {
		httpx.Error(c, http.StatusServiceUnavailable, msgAuthUnavailable)
		return
	}

	tokens, err := h.identity.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			log.Info("login rejected", "username", req.Username)
		} else {
			log.Error("login failed", "username", req.Username, "error", err)
		}
		httpx.Error(c, http.StatusUnauthorized, msgLoginFailed)
		return
	}
	log.Info("login succeeded", "username", req.Username)
	httpx.JSON(c, http.StatusOK, api.LoginResponse{
		Notice: api.Notice{Success: true, Level: api.LevelSuccess, Message: msgLoginOK},
		Tokens: tokens,
	})
}

func (h *handlers) home(c *gin.Context) {
	p, ok := authz.PrincipalFrom(c)
	if !ok {
		httpx.Redirect(c, http.StatusUnauthorized, "Please log in to continue.", "/login")
		return
	}

	email := p.Email
	if email == "" {
		email = p.Username
	}
	username, _, _ := strings.Cut(email, "@")

	var r *rand.Rand
	if h.rand != nil {
		r = h.rand()
	}
	cat := catalog.Generate(r)
	httpx.JSON(c, http.StatusOK, api.HomeResponse{
		Username:       username,
		Email:          email,
		Artisans:       cat.Artisans,
		CategoryCounts: cat.CategoryCounts,
	})
}

func (h *handlers) submitRequest(c *gin.Context) {
	log := requestLogger(c, h.log)
	log.Info("submit_request reached")

	// Identity only ever comes from the verified principal.
	var id intake.Identity
	if p, ok := authz.PrincipalFrom(c); ok {
		id.Username = p.Username
	}
	if !id.Present() {
		log.Info("submit_request without a signed-in user")
		httpx.Redirect(c, http.StatusUnauthorized, msgLoginRequired, "/login")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	var form api.SubmitRequestForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Error(c, http.StatusRequestEntityTooLarge, "The attachment is too large.")
			return
		}
		log.Info("unreadable submission body", "error", err)
		httpx.Error(c, http.StatusBadRequest, "Could not read the submitted form.")
		return
	}

	file, closeFile, err := attachment(c)
	if err != nil {
		log.Info("unreadable attachment", "error", err)
		httpx.Error(c, http.StatusBadRequest, "Could not read the attached file.")
		return
	}
	defer closeFile()

	_, err = h.intake.Submit(c.Request.Context(), id, intake.Form{
		Email:         form.Email,
		Address:       form.Address,
		ContactNumber: form.ContactNumber,
		ServiceTitle:  form.ServiceTitle,
		ArtisanName:   form.ArtisanName,
		Description:   form.Description,
	}, file)

	var verr *intake.ValidationError
	switch {
	case err == nil:
		httpx.Success(c, http.StatusOK, msgSubmitted)
	case errors.Is(err, intake.ErrUnauthenticated):
		httpx.Redirect(c, http.StatusUnauthorized, msgLoginRequired, "/login")
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, api.Notice{
			Level:   api.LevelError,
			Message: msgMissingFields,
			Missing: verr.Missing,
		})
	default:
		httpx.Error(c, http.StatusInternalServerError, msgSubmitFailed)
	}
}

// attachment returns the optional "file" part. A missing part or an empty
// filename means no attachment.
func attachment(c *gin.Context) (*intake.Attachment, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}
	if fh.Filename == "" {
		return nil, noop, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &intake.Attachment{
		Filename:    fh.Filename,
		ContentType: contentType(fh),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
