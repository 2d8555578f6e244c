package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/todovault/todovault/internal/api/service"
	"github.com/todovault/todovault/pkg/apierr"
	"github.com/todovault/todovault/pkg/httpx"
	"github.com/todovault/todovault/pkg/slogx"

	validation "github.com/go-ozzo/ozzo-validation"
)

// UserHandler serves the registration, login and token-refresh endpoints.
type UserHandler struct {
	UserService  *service.UserService
	TokenService *service.TokenService
}

type registrationRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r registrationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	AccessToken string `json:"accessToken"`
}

// HandleRegistration godoc
//
//	@Summary		Register a new user
//	@Description	Creates an account and signs the user in, returning an access/refresh token pair.
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Param			body	body		registrationRequest	true	"Registration payload"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		400		{object}	apierr.Error	"Duplicate email or missing fields"
//	@Failure		500		{object}	apierr.Error
//	@Router			/user/registration [post]
func (h *UserHandler) HandleRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest("Wrong email or password").Write(w)
		return
	}
	if err := req.Validate(); err != nil {
		apierr.BadRequest("Wrong email or password").Write(w)
		return
	}

	_, pair, err := h.UserService.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongCredentials):
			apierr.BadRequest("Wrong email or password").Write(w)
		case errors.Is(err, service.ErrEmailTaken):
			apierr.BadRequest("User with this email already exists").Write(w)
		default:
			log.Error("registration failed", "err", err)
			apierr.Internal("Error on server").Write(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Authenticates by email and password. Issuing a new pair rotates out any previously held refresh token.
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"Login payload"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		400		{object}	apierr.Error	"Unknown user or wrong password"
//	@Failure		500		{object}	apierr.Error
//	@Router			/user/login [post]
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest("Wrong email or password").Write(w)
		return
	}
	if err := req.Validate(); err != nil {
		apierr.BadRequest("Wrong email or password").Write(w)
		return
	}

	_, pair, err := h.UserService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apierr.BadRequest("User not found!").Write(w)
		case errors.Is(err, service.ErrWrongPassword):
			apierr.BadRequest("Wrong password!").Write(w)
		default:
			log.Error("login failed", "err", err)
			apierr.Internal("Error on server").Write(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleRefresh godoc
//
//	@Summary		Refresh tokens
//	@Description	Exchanges a refresh token for a new pair. Superseded tokens are rejected even before their cryptographic expiry.
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Param			body	body		refreshRequest	true	"Refresh payload"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		401		{object}	apierr.Error	"Missing, invalid or expired refresh token"
//	@Failure		500		{object}	apierr.Error
//	@Router			/user/refresh [post]
func (h *UserHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Unauthorized("No refresh token provided").Write(w)
		return
	}
	if req.RefreshToken == "" {
		apierr.Unauthorized("No refresh token provided").Write(w)
		return
	}

	_, pair, err := h.UserService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshNotFound):
			apierr.Unauthorized("Invalid refresh token").Write(w)
		case errors.Is(err, service.ErrRefreshExpired):
			apierr.Unauthorized("Expired refresh token").Write(w)
		default:
			log.Error("refresh failed", "err", err)
			apierr.Internal("Error on server").Write(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleAuth godoc
//
//	@Summary		Check session liveness
//	@Description	Signs a fresh access token from the verified claims. Reads nothing from the store and does not rotate the refresh token.
//	@Tags			User
//	@Produce		json
//	@Success		200	{object}	authResponse
//	@Failure		401	{object}	apierr.Error
//	@Failure		500	{object}	apierr.Error
//	@Security		BearerAuth
//	@Router			/user/auth [get]
func (h *UserHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		apierr.Unauthorized("Not authorized").Write(w)
		return
	}

	token, err := h.TokenService.ReissueAccess(claims)
	if err != nil {
		log.Error("auth check failed", "err", err)
		apierr.Internal("Error on server").Write(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authResponse{AccessToken: token})
}
