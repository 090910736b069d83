package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "clinic_session"

const sessionIssuer = "clinic-server"

var ErrInvalidSession = errors.New("invalid session")

// Session is the signed-in staff member and the clinic they work for.
type Session struct {
	UserID     uuid.UUID
	UserName   string
	UserEmail  string
	ClinicID   uuid.UUID
	ClinicName string
}

// HasClinic reports whether the user is associated with a clinic.
func (s *Session) HasClinic() bool {
	return s != nil && s.ClinicID != uuid.Nil
}

// Claims is the JWT payload of a session cookie.
type Claims struct {
	jwt.RegisteredClaims
	Name       string `json:"name"`
	Email      string `json:"email"`
	ClinicID   string `json:"clinic_id,omitempty"`
	ClinicName string `json:"clinic_name,omitempty"`
}

// SessionManager signs sessions into HS256 JWTs stored in a cookie.
type SessionManager struct {
	key    []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(key []byte, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{key: key, ttl: ttl, secure: secure, now: time.Now}
}

// Sign encodes s as a token valid for the manager's TTL.
func (m *SessionManager) Sign(s Session) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   s.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Name:  s.UserName,
		Email: s.UserEmail,
	}
	if s.HasClinic() {
		claims.ClinicID = s.ClinicID.String()
		claims.ClinicName = s.ClinicName
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// Parse verifies token and returns the session it carries.
func (m *SessionManager) Parse(token string) (*Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %v", ErrInvalidSession, err)
	}

	s := &Session{
		UserID:    userID,
		UserName:  claims.Name,
		UserEmail: claims.Email,
	}
	if claims.ClinicID != "" {
		clinicID, err := uuid.Parse(claims.ClinicID)
		if err != nil {
			return nil, fmt.Errorf("%w: clinic_id: %v", ErrInvalidSession, err)
		}
		s.ClinicID = clinicID
		s.ClinicName = claims.ClinicName
	}
	return s, nil
}

// Issue signs s and stores it in the session cookie.
func (m *SessionManager) Issue(c echo.Context, s Session) error {
	token, err := m.Sign(s)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  m.now().Add(m.ttl),
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
