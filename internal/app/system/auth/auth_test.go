package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// memUsers is an in-memory CredentialStore.
type memUsers struct {
	byID map[primitive.ObjectID]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[primitive.ObjectID]models.User{}}
}

func (m *memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return models.User{}, ErrDuplicateEmail
		}
	}
	u.ID = primitive.NewObjectID()
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, mongo.ErrNoDocuments
}

func (m *memUsers) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, mongo.ErrNoDocuments
	}
	u.PasswordHash = ""
	return u, nil
}

func testTokens(t *testing.T) *Tokens {
	t.Helper()
	tok, err := NewTokens(TokenConfig{Secret: "test-secret", Expiry: time.Hour})
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	return tok
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("123456")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "123456" {
		t.Fatal("hash equals plaintext")
	}

	ok, err := CheckPassword(hash, "123456")
	if err != nil || !ok {
		t.Errorf("CheckPassword(correct) = %v, %v; want true, nil", ok, err)
	}
	ok, err = CheckPassword(hash, "1234567")
	if err != nil || ok {
		t.Errorf("CheckPassword(wrong) = %v, %v; want false, nil", ok, err)
	}
	ok, err = CheckPassword("not-a-hash", "123456")
	if err != nil || ok {
		t.Errorf("CheckPassword(malformed) = %v, %v; want false, nil", ok, err)
	}

	other, _ := HashPassword("123456")
	if other == hash {
		t.Error("two hashes of the same password are identical; expected distinct salts")
	}
}

func TestNewTokens_RejectsEmptySecret(t *testing.T) {
	if _, err := NewTokens(TokenConfig{Expiry: time.Hour}); err != ErrEmptySecret {
		t.Errorf("err = %v, want ErrEmptySecret", err)
	}
}

func TestTokens_SignParse(t *testing.T) {
	tok := testTokens(t)
	id := primitive.NewObjectID().Hex()

	raw, err := tok.Sign(id, "Jane")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := tok.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.ID != id || claims.Name != "Jane" {
		t.Errorf("claims = %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("lifetime = %v, want 1h", got)
	}
}

func TestTokens_ParseRejects(t *testing.T) {
	tok := testTokens(t)
	raw, _ := tok.Sign(primitive.NewObjectID().Hex(), "Jane")

	other, _ := NewTokens(TokenConfig{Secret: "other", Expiry: time.Hour})
	if _, err := other.Parse(raw); err == nil {
		t.Error("token verified with the wrong secret")
	}

	expired := testTokens(t)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := expired.Parse(raw); err == nil {
		t.Error("expired token accepted")
	}

	if _, err := tok.Parse("garbage"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"bearer header", "Bearer abc", "", "abc"},
		{"lowercase scheme", "bearer abc", "", "abc"},
		{"cookie fallback", "", "fromcookie", "fromcookie"},
		{"header wins", "Bearer abc", "fromcookie", "abc"},
		{"basic ignored", "Basic xyz", "", ""},
		{"logout placeholder", "", "none", ""},
		{"nothing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			if got := TokenFromRequest(r); got != tt.want {
				t.Errorf("TokenFromRequest = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCookies(t *testing.T) {
	tok, _ := NewTokens(TokenConfig{Secret: "s", Expiry: time.Hour, CookieExpiry: 24 * time.Hour, Secure: true})

	rec := httptest.NewRecorder()
	tok.SetTokenCookie(rec, "abc")
	c := rec.Result().Cookies()[0]
	if c.Name != CookieName || c.Value != "abc" || !c.HttpOnly || !c.Secure {
		t.Errorf("set cookie = %+v", c)
	}
	if c.MaxAge != 86400 {
		t.Errorf("MaxAge = %d, want 86400", c.MaxAge)
	}

	rec = httptest.NewRecorder()
	tok.ClearTokenCookie(rec)
	c = rec.Result().Cookies()[0]
	if c.MaxAge >= 0 || c.Value != "" {
		t.Errorf("cleared cookie = %+v", c)
	}
}

func TestService_RegisterLoginVerify(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemUsers(), testTokens(t))

	sess, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "123456"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.User.Role != models.RoleGuest {
		t.Errorf("role = %q, want guest", sess.User.Role)
	}
	if len(sess.User.Privileges) != 1 || sess.User.Privileges[0] != models.PrivilegeUser {
		t.Errorf("privileges = %v, want [user]", sess.User.Privileges)
	}
	if sess.User.PasswordHash == "123456" {
		t.Error("password stored in plaintext")
	}

	login, err := svc.Login(ctx, "jane@example.com", "123456")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.PasswordHash != "" {
		t.Error("login returned the password hash")
	}

	u, ok := svc.Verify(ctx, login.Token)
	if !ok || u.Email != "jane@example.com" {
		t.Errorf("Verify = %+v, %v", u, ok)
	}
}

func TestService_RegisterErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemUsers(), testTokens(t))
	if _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "123456"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"short password", RegisterInput{Name: "B", Email: "b@example.com", Password: "123"}, "at least 6"},
		{"bad email", RegisterInput{Name: "B", Email: "nope", Password: "123456"}, "valid email"},
		{"missing name", RegisterInput{Email: "b@example.com", Password: "123456"}, "Please provide name"},
		{"bad role", RegisterInput{Name: "B", Email: "b@example.com", Password: "123456", Role: "owner"}, "role"},
		{"duplicate", RegisterInput{Name: "A2", Email: "a@example.com", Password: "123456"}, "Duplicate field value entered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("err = %q, want it to mention %q", err.Error(), tt.msg)
			}
		})
	}
}

func TestService_LoginErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemUsers(), testTokens(t))
	if _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "123456"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		kind     apperr.Kind
	}{
		{"missing email", "", "123456", apperr.KindMissingArguments},
		{"missing password", "a@example.com", "", apperr.KindMissingArguments},
		{"unknown email", "x@example.com", "123456", apperr.KindInvalidCredentials},
		{"wrong password", "a@example.com", "654321", apperr.KindInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.email, tt.password)
			if !apperr.Is(err, tt.kind) {
				t.Errorf("err = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestService_VerifySoftFails(t *testing.T) {
	ctx := context.Background()
	tokens := testTokens(t)
	svc := NewService(newMemUsers(), tokens)

	if _, ok := svc.Verify(ctx, ""); ok {
		t.Error("empty token verified")
	}
	if _, ok := svc.Verify(ctx, "garbage"); ok {
		t.Error("garbage token verified")
	}
	orphan, _ := tokens.Sign(primitive.NewObjectID().Hex(), "Ghost")
	if _, ok := svc.Verify(ctx, orphan); ok {
		t.Error("token for a missing user verified")
	}
}

func TestProtectAndAuthorize(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	tokens := testTokens(t)
	svc := NewService(users, tokens)
	mw := NewMiddleware(tokens, users, zap.NewNop())

	guest, _ := svc.Register(ctx, RegisterInput{Name: "G", Email: "g@example.com", Password: "123456"})
	admin, _ := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "123456", Role: models.RoleAdmin})

	var seen *models.User
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentUser(r)
		w.WriteHeader(http.StatusNoContent)
	})
	h := mw.Protect(mw.Authorize(models.RoleAdmin)(final))

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "garbage", http.StatusUnauthorized},
		{"wrong role", guest.Token, http.StatusForbidden},
		{"admin", admin.Token, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				r.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status == http.StatusNoContent && (seen == nil || seen.ID != admin.User.ID) {
				t.Errorf("current user = %+v, want admin", seen)
			}
		})
	}
}
