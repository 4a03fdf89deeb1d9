// internal/app/system/auditlog/auditlog.go
package auditlog

import (
	"context"
	"net/http"

	auditstore "github.com/purplesmurf1998/crm-api/internal/app/store/audit"
	"github.com/purplesmurf1998/crm-api/internal/app/system/auth"
	"github.com/purplesmurf1998/crm-api/internal/app/system/ratelimit"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	ModeAll = "all" // MongoDB and zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config selects where each category is recorded.
type Config struct {
	Auth string
	Data string
}

// Logger records audit events. A nil *Logger is a no-op.
type Logger struct {
	store  *auditstore.Store
	zapLog *zap.Logger
	config Config
}

func New(store *auditstore.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) mode(category string) string {
	var m string
	switch category {
	case auditstore.CategoryAuth:
		m = l.config.Auth
	case auditstore.CategoryData:
		m = l.config.Data
	}
	if m == "" {
		return ModeAll
	}
	return m
}

func (l *Logger) logToZap(e auditstore.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
		zap.String("ip", e.IP),
	}
	if e.UserID != nil {
		fields = append(fields, zap.String("user_id", e.UserID.Hex()))
	}
	if e.ActorID != nil {
		fields = append(fields, zap.String("actor_id", e.ActorID.Hex()))
	}
	if e.TargetID != nil {
		fields = append(fields, zap.String("target_id", e.TargetID.Hex()))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}
	for k, v := range e.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if e.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records e according to the mode of its category. Store failures are
// logged, never returned.
func (l *Logger) Log(ctx context.Context, e auditstore.Event) {
	if l == nil {
		return
	}
	m := l.mode(e.Category)
	if m == ModeOff {
		return
	}
	if m == ModeAll || m == ModeLog {
		l.logToZap(e)
	}
	if (m == ModeAll || m == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, e); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", e.EventType))
		}
	}
}

func fromRequest(r *http.Request, category, eventType string, success bool) auditstore.Event {
	return auditstore.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// Registered records a new account.
func (l *Logger) Registered(ctx context.Context, r *http.Request, u models.User) {
	e := fromRequest(r, auditstore.CategoryAuth, auditstore.EventRegistered, true)
	e.UserID = &u.ID
	e.Details = map[string]string{"email": u.Email, "role": u.Role}
	l.Log(ctx, e)
}

func (l *Logger) LoginSucceeded(ctx context.Context, r *http.Request, u models.User) {
	e := fromRequest(r, auditstore.CategoryAuth, auditstore.EventLoginSuccess, true)
	e.UserID = &u.ID
	e.Details = map[string]string{"email": u.Email}
	l.Log(ctx, e)
}

func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := fromRequest(r, auditstore.CategoryAuth, auditstore.EventLoginFailed, false)
	e.FailureReason = reason
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

func (l *Logger) LoginThrottled(ctx context.Context, r *http.Request, email string) {
	e := fromRequest(r, auditstore.CategoryAuth, auditstore.EventLoginThrottled, false)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, e)
}

// LoggedOut records a logout. The user is known only when the request
// carried a valid token.
func (l *Logger) LoggedOut(ctx context.Context, r *http.Request, userID *primitive.ObjectID) {
	e := fromRequest(r, auditstore.CategoryAuth, auditstore.EventLogout, true)
	e.UserID = userID
	l.Log(ctx, e)
}

// Deleted records the removal of the document id by the signed-in user.
func (l *Logger) Deleted(ctx context.Context, r *http.Request, eventType string, id primitive.ObjectID) {
	e := fromRequest(r, auditstore.CategoryData, eventType, true)
	e.TargetID = &id
	if u, ok := auth.CurrentUser(r); ok {
		e.ActorID = &u.ID
	}
	l.Log(ctx, e)
}
