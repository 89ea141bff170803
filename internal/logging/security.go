// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package logging

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// AuditEvent is a security-relevant action: credentials checked, tokens
// issued, roles changed, access refused.
type AuditEvent struct {
	Event    string
	UserID   int64
	Username string
	Method   string // token, jwt, basic, password
	IP       string
	Success  bool
	Reason   string
	Details  map[string]string
}

// AuditLogger writes AuditEvents with secrets masked.
type AuditLogger struct {
	logger zerolog.Logger
}

// NewAuditLogger returns an AuditLogger on the global logger.
func NewAuditLogger() *AuditLogger {
	return &AuditLogger{logger: WithComponent("audit")}
}

// NewAuditLoggerWithLogger is used by tests to capture audit output.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditLoggerWithLogger(logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.With().Str("component", "audit").Logger()}
}

// Log writes event at info level on success, warn otherwise.
func (l *AuditLogger) Log(ctx context.Context, event *AuditEvent) {
	e := l.logger.Info()
	if !event.Success {
		e = l.logger.Warn()
	}
	e = e.Str("event", event.Event).Bool("success", event.Success)

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		e = e.Str("request_id", requestID)
	}
	if event.UserID != 0 {
		e = e.Int64("user_id", event.UserID)
	}
	if event.Username != "" {
		e = e.Str("username", SanitizeUsername(event.Username))
	}
	if event.Method != "" {
		e = e.Str("method", event.Method)
	}
	if event.IP != "" {
		e = e.Str("ip", event.IP)
	}
	if event.Reason != "" {
		e = e.Str("reason", SanitizeError(event.Reason))
	}
	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}
	e.Send()
}

// LoginSucceeded records a successful credential check.
func (l *AuditLogger) LoginSucceeded(ctx context.Context, userID int64, username, method, ip string) {
	l.Log(ctx, &AuditEvent{Event: "login", UserID: userID, Username: username, Method: method, IP: ip, Success: true})
}

// LoginFailed records a rejected credential check.
func (l *AuditLogger) LoginFailed(ctx context.Context, username, method, ip, reason string) {
	l.Log(ctx, &AuditEvent{Event: "login", Username: username, Method: method, IP: ip, Reason: reason})
}

// TokenIssued records a token returned to a client.
func (l *AuditLogger) TokenIssued(ctx context.Context, userID int64, method string, created bool) {
	l.Log(ctx, &AuditEvent{
		Event:   "token_issued",
		UserID:  userID,
		Method:  method,
		Success: true,
		Details: map[string]string{"created": strconv.FormatBool(created)},
	})
}

// UserRegistered records a new account.
func (l *AuditLogger) UserRegistered(ctx context.Context, userID int64, username string) {
	l.Log(ctx, &AuditEvent{Event: "user_registered", UserID: userID, Username: username, Success: true})
}

// RoleChanged records a profile role update.
func (l *AuditLogger) RoleChanged(ctx context.Context, actorID, targetID int64, from, to string) {
	l.Log(ctx, &AuditEvent{
		Event:   "role_changed",
		UserID:  actorID,
		Success: true,
		Details: map[string]string{
			"target_user_id": strconv.FormatInt(targetID, 10),
			"from":           from,
			"to":             to,
		},
	})
}

// AccessDenied records a refused request.
func (l *AuditLogger) AccessDenied(ctx context.Context, userID int64, action, resource, reason string) {
	l.Log(ctx, &AuditEvent{
		Event:   "access_denied",
		UserID:  userID,
		Reason:  reason,
		Details: map[string]string{"action": action, "resource": resource},
	})
}

// SanitizeToken masks a token, keeping the first and last four characters.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeUsername keeps the first two characters.
func SanitizeUsername(username string) string {
	if len(username) <= 2 {
		if username == "" {
			return ""
		}
		return "***"
	}
	return username[:2] + "***"
}

// SanitizeEmail masks the local part: "john.doe@example.com" -> "jo***@example.com".
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	if at <= 2 {
		return "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}

var sensitiveWords = []string{"password", "secret", "token", "authorization", "bearer", "cookie"}

// SanitizeError replaces messages that mention credentials with a generic one.
func SanitizeError(msg string) string {
	lower := strings.ToLower(msg)
	for _, word := range sensitiveWords {
		if strings.Contains(lower, word) {
			return "authentication error"
		}
	}
	return truncateString(msg, 200)
}

var sensitiveKeys = map[string]bool{
	"token":         true,
	"key":           true,
	"password":      true,
	"secret":        true,
	"authorization": true,
	"jwt":           true,
}

// SanitizeValue masks value when key names a credential or value looks like an e-mail.
func SanitizeValue(key, value string) string {
	if sensitiveKeys[strings.ToLower(key)] {
		return SanitizeToken(value)
	}
	if strings.Contains(value, "@") && strings.Contains(value, ".") {
		return SanitizeEmail(value)
	}
	return value
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
