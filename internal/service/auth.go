package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const authCookieName = "auth_token"

// Claims is the verified content of a session token.
type Claims struct {
	UserID   int64
	Username string
}

type AuthService struct {
	userRepository repository.UserRepository
	jwtSecret      string
	jwtExpiry      time.Duration
	isProduction   bool
}

func NewAuthService(userRepository repository.UserRepository, jwtSecret string, jwtExpiry time.Duration, isProduction bool) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		jwtSecret:      jwtSecret,
		jwtExpiry:      jwtExpiry,
		isProduction:   isProduction,
	}
}

// Register creates a new user. Duplicates are checked explicitly before the
// insert; two concurrent registrations of the same name can race past the
// check, in which case the unique constraint maps to the same error.
func (s *AuthService) Register(username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	_, err := s.userRepository.ByUsername(username)
	if err == nil {
		return nil, ErrDuplicateUser
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	_, err = s.userRepository.ByEmail(email)
	if err == nil {
		return nil, ErrDuplicateUser
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies a username/password pair. An unknown username and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Authenticate(username, password string) (*model.User, error) {
	user, err := s.userRepository.ByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AuthService) ByID(id int64) (*model.User, error) {
	return s.userRepository.ByID(id)
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.jwtExpiry).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyJWT checks a session token. Expired, malformed and badly signed
// tokens all collapse into the same error so no cryptographic detail leaks.
func (s *AuthService) VerifyJWT(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthenticated
	}

	userID, ok := mapClaims["user_id"].(float64)
	if !ok {
		return nil, ErrUnauthenticated
	}
	username, _ := mapClaims["username"].(string)

	return &Claims{UserID: int64(userID), Username: username}, nil
}

// ResolveUser turns a raw token into the acting user. The repository lookup
// runs on every call so a deleted user is deauthorized immediately.
func (s *AuthService) ResolveUser(tokenString string) (*model.User, error) {
	claims, err := s.VerifyJWT(tokenString)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepository.ByID(claims.UserID)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	return user, nil
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Expires:  time.Now().Add(s.jwtExpiry),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// CookieName returns the name of the session cookie.
func (s *AuthService) CookieName() string {
	return authCookieName
}
