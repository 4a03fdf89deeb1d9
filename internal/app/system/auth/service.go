package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateEmail is what a CredentialStore returns when the email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// CredentialStore is the user persistence the Service needs.
type CredentialStore interface {
	UserFetcher
	Create(ctx context.Context, u models.User) (models.User, error)
	// GetByEmail must include the password hash.
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email_address"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=account_manager team_manager admin maintenance guest"`
}

// Session is a signed token and the user it was issued for.
type Session struct {
	Token string
	User  models.User
}

// Service registers users, checks credentials and resolves tokens.
type Service struct {
	Users  CredentialStore
	Tokens *Tokens
}

func NewService(users CredentialStore, tokens *Tokens) *Service {
	return &Service{Users: users, Tokens: tokens}
}

// Register creates a user and issues a token for it. The caller may pick
// the role; the default is guest.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := inputval.Struct(in); err != nil {
		return Session{}, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleGuest
	}
	u, err := s.Users.Create(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		Role:         role,
		Privileges:   []string{models.PrivilegeUser},
		PasswordHash: hash,
	})
	if errors.Is(err, ErrDuplicateEmail) {
		return Session{}, apperr.Validation("Duplicate field value entered")
	}
	if err != nil {
		return Session{}, err
	}
	return s.issue(u)
}

// Login checks email and password. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, apperr.MissingArguments("Please provide an email and password")
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Session{}, apperr.InvalidCredentials()
	}
	if err != nil {
		return Session{}, err
	}
	ok, err := CheckPassword(u.PasswordHash, password)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, apperr.InvalidCredentials()
	}
	u.PasswordHash = ""
	return s.issue(u)
}

// Verify resolves raw to its user. Any failure, including a missing user,
// reports ok=false rather than an error.
func (s *Service) Verify(ctx context.Context, raw string) (*models.User, bool) {
	if raw == "" {
		return nil, false
	}
	claims, err := s.Tokens.Parse(raw)
	if err != nil {
		return nil, false
	}
	oid, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil, false
	}
	u, err := s.Users.GetByID(ctx, oid)
	if err != nil {
		return nil, false
	}
	return &u, true
}

func (s *Service) issue(u models.User) (Session, error) {
	tok, err := s.Tokens.Sign(u.ID.Hex(), u.Name)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, User: u}, nil
}
