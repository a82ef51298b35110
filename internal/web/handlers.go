// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quillboard/quillboard/internal/account"
	"github.com/quillboard/quillboard/internal/observability"
	"github.com/quillboard/quillboard/pkg/errutil"
)

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	Token     string    `json:"token"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		s.countRegistration(observability.OutcomeValidationFailed)
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
	}

	session, err := s.accounts.Register(c.Request().Context(), account.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return s.renderError(c, err, s.countRegistration)
	}

	s.countRegistration(observability.OutcomeSuccess)
	return c.JSON(http.StatusOK, newSessionResponse(session))
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		s.countLogin(observability.OutcomeValidationFailed)
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
	}

	session, err := s.accounts.Login(c.Request().Context(), account.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return s.renderError(c, err, s.countLogin)
	}

	s.countLogin(observability.OutcomeSuccess)
	return c.JSON(http.StatusOK, newSessionResponse(session))
}

// handleMe resolves the bearer token from the Authorization header to the
// account it was issued for.
func (s *Server) handleMe(c echo.Context) error {
	token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Wrong credentials"})
	}

	user, err := s.accounts.Authenticate(c.Request().Context(), token)
	if err != nil {
		return s.renderError(c, err, func(string) {})
	}

	return c.JSON(http.StatusOK, profileResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// renderError maps a flow error to its status, message, and outcome label.
// Anything that is not a flow error is an infrastructure failure: logged with
// full context, reported to the client as an opaque 500.
func (s *Server) renderError(c echo.Context, err error, count func(string)) error {
	flowErr, ok := account.AsFlowError(err)
	if !ok {
		count(observability.OutcomeInternalError)
		errutil.LogError(s.logger, "account flow failed", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
	}

	status, message, outcome := flowDisposition(flowErr)
	count(outcome)
	return c.JSON(status, errorResponse{
		Message: message,
		Errors:  flowErr.FieldMap(),
	})
}

func flowDisposition(flowErr *account.FlowError) (status int, message, outcome string) {
	switch flowErr.Kind {
	case account.KindDuplicateUsername:
		return http.StatusConflict, "This username is taken", observability.OutcomeDuplicateUsername
	case account.KindNotFound:
		return http.StatusNotFound, "User not found", observability.OutcomeUserNotFound
	case account.KindInvalidCredentials:
		return http.StatusUnauthorized, "Wrong credentials", observability.OutcomeInvalidCredentials
	default:
		return http.StatusBadRequest, "Invalid input", observability.OutcomeValidationFailed
	}
}

func newSessionResponse(session *account.Session) sessionResponse {
	return sessionResponse{
		ID:        session.ID.String(),
		Username:  session.Username,
		Email:     session.Email,
		CreatedAt: session.CreatedAt,
		Token:     session.Token,
	}
}

func (s *Server) countRegistration(outcome string) {
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) countLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}
