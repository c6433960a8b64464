package accounts

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"islaapp-backend/internal/shared/auth"
	"islaapp-backend/internal/shared/server/middleware"
	"islaapp-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/config", h.config)
	rg.GET("/auth/session", h.session)
	rg.POST("/auth/bootstrap", h.bootstrap)
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/logout", h.logout)
	rg.GET("/auth/users", middleware.RequireRole(auth.RoleOwner), h.listUsers)
	rg.POST("/auth/users", middleware.RequireRole(auth.RoleOwner), h.createUser)
	rg.GET("/admin/health", h.adminHealth)
}

func (h *Handler) config(c *gin.Context) {
	required, err := h.Svc.BootstrapRequired(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, configResponse{
		OK:                 true,
		BootstrapRequired:  required,
		RequiresAdminToken: h.Svc.RequiresAdminToken(),
		SessionHours:       int(SessionTTL / time.Hour),
	})
}

func (h *Handler) session(c *gin.Context) {
	p, ok := adminPrincipal(c)
	if !ok {
		respond.OK(c, sessionResponse{OK: true})
		return
	}
	respond.OK(c, sessionResponse{
		OK:            true,
		Authenticated: true,
		User:          &sessionUser{ID: p.ID, Username: p.Username, Role: p.Role, Source: p.Source},
	})
}

func (h *Handler) bootstrap(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Bootstrap(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, loginResponse{OK: true, User: res.User, SessionToken: res.Token})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, loginResponse{OK: true, User: res.User, SessionToken: res.Token})
}

func (h *Handler) logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		var req logoutRequest
		_ = c.ShouldBindJSON(&req)
		token = strings.TrimSpace(req.SessionToken)
	}
	if token != "" {
		if err := h.Svc.Logout(c.Request.Context(), token); err != nil {
			writeError(c, err)
			return
		}
	}
	respond.OK(c, gin.H{"ok": true})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if users == nil {
		users = []User{}
	}
	respond.OK(c, usersResponse{OK: true, Users: users})
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.CreateUser(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, userResponse{OK: true, User: u})
}

func (h *Handler) adminHealth(c *gin.Context) {
	resp := adminHealthResponse{OK: true, RequiresAdminToken: h.Svc.RequiresAdminToken()}
	if p, ok := adminPrincipal(c); ok {
		resp.Authorized = auth.HasRole(p.Role, auth.RoleAdmin)
		resp.Role = p.Role
		resp.Username = p.Username
	}
	respond.OK(c, resp)
}

// adminPrincipal returns the caller when it is an admin user or the admin token.
func adminPrincipal(c *gin.Context) (middleware.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok || p.Guest || p.Role == "" {
		return middleware.Principal{}, false
	}
	return p, true
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Request body must be a JSON object", nil)
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(c, http.StatusBadRequest, "invalid_input", verr.Message, nil)
	case errors.Is(err, ErrBootstrapClosed):
		respond.Error(c, http.StatusBadRequest, "bootstrap_completed", "Bootstrap already completed", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", "username already exists", nil)
	case errors.Is(err, ErrBadCredentials):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid username or password", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to process account request", nil)
	}
}
