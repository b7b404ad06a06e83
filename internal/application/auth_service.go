package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/expense-tracker/internal/domain/apperr"
	"github.com/oksasatya/expense-tracker/internal/domain/entity"
	repo "github.com/oksasatya/expense-tracker/internal/domain/repository"
	"github.com/oksasatya/expense-tracker/pkg/helpers"
)

// Client-facing messages. Login failures share one message whether or not the
// account exists; reset failures share one whether the token is unknown or stale.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgNotVerified        = "Please verify your email before logging in"
	MsgUserExists         = "User with this email already exists"
	MsgUserNotFound       = "User not found"
	MsgAlreadyVerified    = "Email already verified"
	MsgInvalidOTP         = "Invalid or expired OTP"
	MsgInvalidResetToken  = "Invalid or expired reset token"
	MsgResetRequested     = "If the email exists, a password reset link has been sent"
	MsgSignupEmailSent    = "User registered successfully. Please check your email for OTP verification."
	MsgSignupEmailLogged  = "User registered successfully. Check the server console for OTP."
)

const resetTokenBytes = 32

type AuthService struct {
	Users  repo.UserRepository
	Tokens TokenIssuer
	Mailer Mailer
	Logger *logrus.Logger

	OTPTTL   time.Duration
	ResetTTL time.Duration
	// MailDelivers is false when outgoing mail only goes to the log.
	MailDelivers bool

	now      func() time.Time
	genOTP   func() (string, error)
	genToken func() (string, error)
}

func NewAuthService(users repo.UserRepository, tokens TokenIssuer, mailer Mailer, logger *logrus.Logger, otpTTL, resetTTL time.Duration, mailDelivers bool) *AuthService {
	return &AuthService{
		Users:        users,
		Tokens:       tokens,
		Mailer:       mailer,
		Logger:       logger,
		OTPTTL:       otpTTL,
		ResetTTL:     resetTTL,
		MailDelivers: mailDelivers,
		now:          time.Now,
		genOTP:       helpers.GenOTPCode,
		genToken:     func() (string, error) { return helpers.GenToken(resetTokenBytes) },
	}
}

func (s *AuthService) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type SignupResult struct {
	User    *entity.User
	Message string
}

// AuthResult is returned by every operation that opens a session.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	const failMsg = "Internal server error during signup"

	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return nil, apperr.Validation("Validation failed", map[string]string{"name": "is required"})
	}

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict(MsgUserExists)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.Internal(failMsg, fmt.Errorf("lookup user: %w", err))
	}

	hash, err := hashPassword(in.Password, failMsg)
	if err != nil {
		return nil, err
	}
	code, err := s.genOTP()
	if err != nil {
		return nil, apperr.Internal(failMsg, fmt.Errorf("generate otp: %w", err))
	}
	expires := s.clock().Add(s.OTPTTL)

	u := &entity.User{
		Name:         name,
		Email:        email,
		Password:     hash,
		OTPCode:      code,
		OTPExpiresAt: &expires,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, apperr.Conflict(MsgUserExists)
		}
		return nil, apperr.Internal(failMsg, fmt.Errorf("create user: %w", err))
	}
	signupsTotal.Add(1)

	// Signup succeeds even when the OTP email cannot be sent.
	if err := s.Mailer.SendOTP(ctx, u.Name, u.Email, code, expires); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("otp email failed")
		}
	}

	msg := MsgSignupEmailSent
	if !s.MailDelivers {
		msg = MsgSignupEmailLogged
	}
	return &SignupResult{User: u, Message: msg}, nil
}

// hashPassword reports over-long passwords as a validation error.
func hashPassword(plain, failMsg string) (string, error) {
	hash, err := helpers.HashPassword(plain)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return "", apperr.Validation("Validation failed", map[string]string{"password": "must be at most 72 bytes long"})
	}
	if err != nil {
		return "", apperr.Internal(failMsg, fmt.Errorf("hash password: %w", err))
	}
	return hash, nil
}

func (s *AuthService) issue(u *entity.User, failMsg string) (*AuthResult, error) {
	tok, exp, err := s.Tokens.GenerateToken(u.ID)
	if err != nil {
		return nil, apperr.Internal(failMsg, fmt.Errorf("generate token: %w", err))
	}
	return &AuthResult{Token: tok, ExpiresAt: exp, User: u}, nil
}

func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	const failMsg = "Internal server error during OTP verification"

	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(failMsg, fmt.Errorf("lookup user: %w", err))
	}
	if u.IsVerified {
		return nil, apperr.State(MsgAlreadyVerified)
	}
	if !u.OTPValid(strings.TrimSpace(code), s.clock(), helpers.SecureEqual) {
		return nil, apperr.Validation(MsgInvalidOTP, nil)
	}

	u.MarkVerified()
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, apperr.Internal(failMsg, fmt.Errorf("update user: %w", err))
	}
	return s.issue(u, failMsg)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const failMsg = "Internal server error during login"

	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		helpers.BurnPasswordCompare(password)
		return nil, apperr.Auth(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Internal(failMsg, fmt.Errorf("lookup user: %w", err))
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, apperr.Auth(MsgInvalidCredentials)
	}
	if !u.IsVerified {
		return nil, apperr.Auth(MsgNotVerified)
	}

	now := s.clock()
	u.LastLogin = &now
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, apperr.Internal(failMsg, fmt.Errorf("update last login: %w", err))
	}
	loginsTotal.Add(1)
	return s.issue(u, failMsg)
}

// ForgotPassword returns nil for unknown and unverified emails so callers
// cannot tell accounts apart. Only a failed email surfaces as an error.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	const failMsg = "Internal server error during password reset request"

	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Internal(failMsg, fmt.Errorf("lookup user: %w", err))
	}
	if !u.IsVerified {
		if s.Logger != nil {
			s.Logger.WithField("user_id", u.ID).Info("password reset requested for unverified account; ignored")
		}
		return nil
	}

	token, err := s.genToken()
	if err != nil {
		return apperr.Internal(failMsg, fmt.Errorf("generate reset token: %w", err))
	}
	expires := s.clock().Add(s.ResetTTL)
	u.SetReset(helpers.HashToken(token), expires)
	if err := s.Users.Update(ctx, u); err != nil {
		return apperr.Internal(failMsg, fmt.Errorf("store reset token: %w", err))
	}

	if err := s.Mailer.SendPasswordReset(ctx, u.Name, u.Email, token, expires); err != nil {
		return apperr.Internal("Failed to send reset email", fmt.Errorf("send reset email: %w", err))
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	const failMsg = "Internal server error during password reset"

	token = strings.TrimSpace(token)
	if token == "" || password == "" {
		return apperr.Validation("Token and password are required", nil)
	}

	u, err := s.Users.GetByResetTokenHash(ctx, helpers.HashToken(token))
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.Validation(MsgInvalidResetToken, nil)
	}
	if err != nil {
		return apperr.Internal(failMsg, fmt.Errorf("lookup reset token: %w", err))
	}
	if u.ResetExpiresAt == nil || !s.clock().Before(*u.ResetExpiresAt) {
		return apperr.Validation(MsgInvalidResetToken, nil)
	}

	hash, err := hashPassword(password, failMsg)
	if err != nil {
		return err
	}
	u.Password = hash
	u.ClearReset()
	if err := s.Users.Update(ctx, u); err != nil {
		return apperr.Internal(failMsg, fmt.Errorf("update password: %w", err))
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("Internal server error while fetching profile", fmt.Errorf("get user: %w", err))
	}
	return u, nil
}
