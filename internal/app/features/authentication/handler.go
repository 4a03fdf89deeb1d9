// internal/app/features/authentication/handler.go
package authentication

import (
	"context"
	"net/http"

	userstore "github.com/purplesmurf1998/crm-api/internal/app/store/users"
	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/app/system/auditlog"
	"github.com/purplesmurf1998/crm-api/internal/app/system/auth"
	"github.com/purplesmurf1998/crm-api/internal/app/system/formutil"
	"github.com/purplesmurf1998/crm-api/internal/app/system/ratelimit"
	"github.com/purplesmurf1998/crm-api/internal/app/system/respond"
	"github.com/purplesmurf1998/crm-api/internal/app/system/timeouts"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves registration, login and token checks.
type Handler struct {
	Service *auth.Service
	Tokens  *auth.Tokens
	Users   *userstore.Store
	Guard   *ratelimit.LoginGuard // nil disables login throttling
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

// NewHandler wires the auth service over the users collection of db.
func NewHandler(db *mongo.Database, tokens *auth.Tokens, logger *zap.Logger) *Handler {
	users := userstore.New(db)
	return &Handler{
		Service: auth.NewService(users, tokens),
		Tokens:  tokens,
		Users:   users,
		Log:     logger,
	}
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type verifyResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sendToken writes the token both as the cookie and in the body.
func (h *Handler) sendToken(w http.ResponseWriter, s auth.Session) {
	h.Tokens.SetTokenCookie(w, s.Token)
	respond.JSON(w, http.StatusOK, tokenResponse{Success: true, Token: s.Token})
}

// HandleRegister creates a user and signs it in.
//
// Route: POST /auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := formutil.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	s, err := h.Service.Register(ctx, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("user registered", zap.String("user_id", s.User.ID.Hex()), zap.String("role", s.User.Role))
	h.Audit.Registered(ctx, r, s.User)
	h.sendToken(w, s)
}

// HandleLogin checks credentials and signs the user in.
//
// Route: POST /auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := formutil.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if h.Guard != nil {
		if err := h.Guard.Check(r, in.Email); err != nil {
			h.Log.Warn("login throttled", zap.String("ip", ratelimit.ClientIP(r)))
			h.Audit.LoginThrottled(r.Context(), r, in.Email)
			respond.Error(w, r, h.Log, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.Service.Login(ctx, in.Email, in.Password)
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidCredentials) {
			h.Audit.LoginFailed(ctx, r, in.Email, apperr.Message(err))
		}
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.LoginSucceeded(ctx, r, s.User)
	if h.Guard != nil {
		h.Guard.Succeeded(in.Email)
	}
	h.sendToken(w, s)
}

// HandleLogout expires the token cookie. The token itself stays valid until
// it expires.
//
// Route: GET /auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if h.Audit != nil {
		var uid *primitive.ObjectID
		if c, err := h.Tokens.Parse(auth.TokenFromRequest(r)); err == nil {
			if id, err := primitive.ObjectIDFromHex(c.ID); err == nil {
				uid = &id
			}
		}
		h.Audit.LoggedOut(r.Context(), r, uid)
	}
	h.Tokens.ClearTokenCookie(w)
	respond.OK(w, struct{}{})
}

// ServeVerify reports whether the request carries a usable token. A bad
// token is not an error.
//
// Route: GET /auth/verify
func (h *Handler) ServeVerify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.Service.Verify(ctx, auth.TokenFromRequest(r))
	if !ok {
		respond.JSON(w, http.StatusOK, verifyResponse{Authenticated: false})
		return
	}
	respond.JSON(w, http.StatusOK, verifyResponse{Authenticated: true, User: u})
}

// ServeMe returns the signed-in user.
//
// Route: GET /auth/me
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.Unauthorized())
		return
	}
	respond.OK(w, u)
}

// ServeUsers lists every user.
//
// Route: GET /auth/users
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, users)
}
