package account

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/validation"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service struct {
	users   UserRepository
	clinics ClinicRepository
	v       *validation.Validator
	cost    int
}

func NewService(users UserRepository, clinics ClinicRepository, v *validation.Validator) *Service {
	return &Service{users: users, clinics: clinics, v: v, cost: bcrypt.DefaultCost}
}

// SignUp registers a user. The new user has no clinic yet.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*auth.Session, error) {
	if errs := in.Check(s.v); errs != nil {
		return nil, errs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{Name: in.Name, Email: in.Email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return &auth.Session{UserID: u.ID, UserName: u.Name, UserEmail: u.Email}, nil
}

// SignIn checks the credentials and returns the user's session, including
// their first clinic when they have one.
func (s *Service) SignIn(ctx context.Context, in SignInInput) (*auth.Session, error) {
	if errs := in.Check(s.v); errs != nil {
		return nil, errs
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess := &auth.Session{UserID: u.ID, UserName: u.Name, UserEmail: u.Email}
	c, err := s.clinics.FirstForUser(ctx, u.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		// signed up but no clinic yet
	case err != nil:
		return nil, err
	default:
		sess.ClinicID = c.ID
		sess.ClinicName = c.Name
	}
	return sess, nil
}

// CreateClinic creates a clinic for the signed-in user and returns the
// session updated to carry it.
func (s *Service) CreateClinic(ctx context.Context, sess *auth.Session, in ClinicInput) (*auth.Session, error) {
	if errs := in.Check(s.v); errs != nil {
		return nil, errs
	}

	c := &Clinic{Name: in.Name}
	if err := s.clinics.CreateForUser(ctx, c, sess.UserID); err != nil {
		return nil, err
	}

	out := *sess
	out.ClinicID = c.ID
	out.ClinicName = c.Name
	return &out, nil
}
