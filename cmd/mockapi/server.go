package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	routeLogin    = "/auth/login"
	routeRegister = "/auth/register"

	tokenLifetime = time.Hour
)

// devSigningSecret signs the demo tokens. This server exists for local
// development only; nothing downstream verifies these tokens.
var devSigningSecret = []byte("medibook-mockapi-dev-secret")

type apiServer struct {
	catalog *catalog
	log     zerolog.Logger
}

func newRouter(cat *catalog, log zerolog.Logger) *mux.Router {
	s := &apiServer{catalog: cat, log: log}

	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)
	r.HandleFunc(routeLogin, s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc(routeRegister, s.handleRegister).Methods(http.MethodPost)
	return r
}

func (s *apiServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *apiServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	acct := s.catalog.authenticate(req.Username, req.Password)
	if acct == nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	s.writeAuthResponse(w, acct)
}

func (s *apiServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
		Phone    string `json:"phone"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	role := strings.ToUpper(req.Role)
	if role == "" {
		role = "PATIENT"
	}

	acct, err := s.catalog.add(req.Username, req.Password, req.Email, req.FullName, req.Phone, role)
	if err == errDuplicateUsername {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	if err != nil {
		s.log.Err(err).Msg("failed to register account")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeAuthResponse(w, acct)
}

func (s *apiServer) writeAuthResponse(w http.ResponseWriter, acct *account) {
	tok, err := s.issueToken(acct)
	if err != nil {
		s.log.Err(err).Msg("failed to issue token")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":        tok,
		"refreshToken": uuid.New().String(),
		"id":           acct.ID,
		"username":     acct.Username,
		"email":        acct.Email,
		"role":         acct.Role,
		"fullName":     acct.FullName,
	})
}

func (s *apiServer) issueToken(acct *account) (string, error) {
	now := time.Now()
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub":  acct.ID,
		"role": acct.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenLifetime).Unix(),
	}).SignedString(devSigningSecret)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
