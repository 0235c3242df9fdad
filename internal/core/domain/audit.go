package domain

import "time"

// AuditAction names a security-relevant event worth keeping.
type AuditAction string

const (
	AuditLoginSucceeded AuditAction = "login_succeeded"
	AuditLoginFailed    AuditAction = "login_failed"
	AuditLoginThrottled AuditAction = "login_throttled"
	AuditRoleChanged    AuditAction = "role_changed"
	AuditAccessDenied   AuditAction = "access_denied"
	AuditGateFailure    AuditAction = "gate_failure"
)

// AuditEvent is an append-only record of an authentication or authorization outcome.
type AuditEvent struct {
	ID        string      `bson:"_id"`
	Action    AuditAction `bson:"action"`
	UserID    string      `bson:"user_id,omitempty"`
	Email     string      `bson:"email,omitempty"`
	Method    string      `bson:"method,omitempty"`
	Path      string      `bson:"path,omitempty"`
	Detail    string      `bson:"detail,omitempty"`
	Timestamp time.Time   `bson:"timestamp"`
}
