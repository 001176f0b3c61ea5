package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent is one security-relevant occurrence tied to an employee
// account
type AuditEvent struct {
	EventType     string
	EmployeeID    string
	IPAddress     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger writes structured audit records through the application
// logger. Every record shares the "audit" message with an audit_type
// discriminator so downstream tooling can filter the trail out of the
// regular log stream.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

func (al *AuditLogger) emit(level slog.Level, auditType string, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", auditType),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.EmployeeID != "" {
		attrs = append(attrs, slog.String("employee_id", event.EmployeeID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogAuthAttempt records login, refresh, logout, and lockout events.
// Failures log at warn so they surface in alerting.
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.emit(level, "auth", event)
}

// LogPasswordChange records a password change attempt
func (al *AuditLogger) LogPasswordChange(employeeID, ipAddress string, success bool) {
	level := slog.LevelInfo
	if !success {
		level = slog.LevelWarn
	}
	al.emit(level, "password", AuditEvent{
		EventType:  "password_change",
		EmployeeID: employeeID,
		IPAddress:  ipAddress,
		Success:    success,
	})
}

// LogAccountAction records administrative and workflow actions taken
// against an account, such as leave decisions or role changes
func (al *AuditLogger) LogAccountAction(eventType, employeeID, ipAddress string, metadata map[string]string) {
	al.emit(slog.LevelInfo, "account", AuditEvent{
		EventType:  eventType,
		EmployeeID: employeeID,
		Success:    true,
		IPAddress:  ipAddress,
		Metadata:   metadata,
	})
}
