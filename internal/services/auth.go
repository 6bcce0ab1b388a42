package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
	"github.com/AnshRaj112/portfolio-backend/internal/models"
	"github.com/AnshRaj112/portfolio-backend/pkg/utils"
)

// ResetTokenTTL bounds how long a reset OTP stays valid.
const ResetTokenTTL = 15 * time.Minute

// Soft authentication failures. Handlers answer these with 200 and
// success:false; the messages are shown to the admin as-is.
var (
	ErrInvalidCredentials = errors.New("Invalid username/email/mobile or password")
	ErrCurrentCredentials = errors.New("Current credentials are invalid")
	ErrInvalidResetToken  = errors.New("Invalid or expired reset token")
	ErrResetNotPossible   = errors.New("Unable to process a password reset for that account")
	ErrLoginTaken         = errors.New("Username or email already exists")
	ErrEmailTaken         = errors.New("Email already exists for another user")
	ErrUserNotFound       = errors.New("User not found")
)

// IsSoftAuthError reports whether err is one of the soft failures above.
func IsSoftAuthError(err error) bool {
	for _, soft := range []error{
		ErrInvalidCredentials, ErrCurrentCredentials, ErrInvalidResetToken,
		ErrResetNotPossible, ErrLoginTaken, ErrEmailTaken, ErrUserNotFound,
	} {
		if errors.Is(err, soft) {
			return true
		}
	}
	return false
}

// UserUpdate lists the user attributes to change; nil pointers are left alone.
type UserUpdate struct {
	Username     *string
	Email        *string
	Password     *string
	ResetToken   *string
	ResetExpires *time.Time
	ClearReset   bool
	UpdatedAt    time.Time
}

// UserStore persists admin accounts.
type UserStore interface {
	// FindByLogin matches login against username or email.
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	// FindConflict returns any user holding one of the given unique values.
	FindConflict(ctx context.Context, username, email, mobile string) (*models.User, error)
	// LoginTaken reports whether value is used as a username or email by
	// a user other than except.
	LoginTaken(ctx context.Context, value string, except primitive.ObjectID) (bool, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, upd UserUpdate) error
	Count(ctx context.Context) (int64, error)
}

// SessionIssuer hands out admin bearer tokens.
type SessionIssuer interface {
	Enabled() bool
	Create(ctx context.Context, adminID string) (string, error)
	Invalidate(ctx context.Context, token string) error
}

type LoginResult struct {
	User  *models.User
	Token string
}

// ResetRequest describes how a reset OTP was handed out. Token is only set
// when email delivery failed and the fallback is enabled.
type ResetRequest struct {
	Delivered   bool
	MaskedEmail string
	Token       string
}

type RegisterInput struct {
	Username string
	Email    string
	Mobile   string
	Password string
}

type CredentialsUpdate struct {
	CurrentLogin    string
	CurrentPassword string
	NewUsername     string
	NewPassword     string
}

// AuthService covers admin login, registration and password reset.
type AuthService struct {
	users    UserStore
	mailer   Mailer
	sessions SessionIssuer
	fallback bool
	siteName string
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService wires authentication. sessions may be nil; fallback
// controls whether an undeliverable OTP is returned to the caller.
func NewAuthService(users UserStore, mailer Mailer, sessions SessionIssuer, fallback bool, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		mailer:   mailer,
		sessions: sessions,
		fallback: fallback,
		siteName: "Portfolio Admin",
		logger:   logger,
		now:      time.Now,
	}
}

// Login checks credentials and, when sessions are available, issues a token.
func (s *AuthService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperr.Invalid("", "Username/email and password are required")
	}

	user, err := s.authenticate(ctx, login, password)
	if err != nil {
		if errors.Is(err, ErrCurrentCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	res := &LoginResult{User: user}
	if s.sessions != nil && s.sessions.Enabled() {
		token, err := s.sessions.Create(ctx, user.ID.Hex())
		if err != nil {
			return nil, fmt.Errorf("create admin session: %w", err)
		}
		res.Token = token
	}
	return res, nil
}

// Logout drops the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.sessions == nil || !s.sessions.Enabled() {
		return nil
	}
	return s.sessions.Invalidate(ctx, token)
}

// ForgotPassword issues a 6-digit OTP valid for ResetTokenTTL and emails it.
func (s *AuthService) ForgotPassword(ctx context.Context, login string) (*ResetRequest, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, apperr.Invalid("username", "Username or email is required")
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrResetNotPossible
		}
		return nil, err
	}
	if user.Email == "" {
		return nil, ErrResetNotPossible
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	expires := now.Add(ResetTokenTTL)
	digest := digestToken(otp)
	if err := s.users.Update(ctx, user.ID, UserUpdate{ResetToken: &digest, ResetExpires: &expires, UpdatedAt: now}); err != nil {
		return nil, err
	}

	res := &ResetRequest{MaskedEmail: MaskEmail(user.Email)}
	email := BuildPasswordResetEmail(user.Email, PasswordResetEmailData{
		SiteName:  s.siteName,
		Username:  user.Username,
		Code:      otp,
		ExpiresIn: "15 minutes",
	})

	var sendErr error
	if s.mailer == nil {
		sendErr = apperr.External("smtp", errMailerNotConfigured)
	} else {
		sendErr = s.mailer.Send(ctx, email)
	}
	if sendErr == nil {
		res.Delivered = true
		return res, nil
	}

	s.logger.Warn("password reset email not delivered", zap.String("user", user.Username), zap.Error(sendErr))
	if !s.fallback {
		return nil, sendErr
	}
	res.Token = otp
	return res, nil
}

// ResetPassword completes a reset. The OTP is single use.
func (s *AuthService) ResetPassword(ctx context.Context, login, token, newPassword string) error {
	login = strings.TrimSpace(login)
	token = strings.TrimSpace(token)
	if login == "" || token == "" || newPassword == "" {
		return apperr.Invalid("", "Username, reset token and new password are required")
	}
	if err := utils.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if isNotFound(err) {
			return ErrInvalidResetToken
		}
		return err
	}

	now := s.now().UTC()
	if user.ResetPasswordToken == "" || user.ResetPasswordExpires == nil ||
		!user.ResetPasswordExpires.After(now) ||
		!utils.ConstantTimeEquals(user.ResetPasswordToken, digestToken(token)) {
		return ErrInvalidResetToken
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, user.ID, UserUpdate{Password: &hash, ClearReset: true, UpdatedAt: now})
}

// UpdateCredentials changes username and/or password after re-checking the
// current credentials.
func (s *AuthService) UpdateCredentials(ctx context.Context, in CredentialsUpdate) error {
	user, err := s.authenticate(ctx, strings.TrimSpace(in.CurrentLogin), in.CurrentPassword)
	if err != nil {
		return err
	}

	upd := UserUpdate{UpdatedAt: s.now().UTC()}

	newUsername := strings.TrimSpace(in.NewUsername)
	if newUsername != "" && newUsername != user.Username {
		if err := utils.ValidateUsername(newUsername); err != nil {
			return err
		}
		taken, err := s.users.LoginTaken(ctx, newUsername, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrLoginTaken
		}
		upd.Username = &newUsername
	}

	if in.NewPassword != "" {
		if err := utils.ValidatePassword(in.NewPassword); err != nil {
			return err
		}
		hash, err := utils.HashPassword(in.NewPassword)
		if err != nil {
			return err
		}
		upd.Password = &hash
	}

	if err := s.users.Update(ctx, user.ID, upd); err != nil {
		if errors.Is(err, apperr.ErrDuplicateKey) {
			return ErrLoginTaken
		}
		return err
	}
	return nil
}

// UpdateEmail changes the admin's email after re-checking credentials.
func (s *AuthService) UpdateEmail(ctx context.Context, login, password, email string) error {
	user, err := s.authenticate(ctx, strings.TrimSpace(login), password)
	if err != nil {
		if errors.Is(err, ErrCurrentCredentials) {
			return ErrInvalidCredentials
		}
		return err
	}

	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return apperr.Invalid("email", "Invalid email format")
	}

	taken, err := s.users.LoginTaken(ctx, email, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}

	if err := s.users.Update(ctx, user.ID, UserUpdate{Email: &email, UpdatedAt: s.now().UTC()}); err != nil {
		if errors.Is(err, apperr.ErrDuplicateKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// Profile returns the user matching login by username or email.
func (s *AuthService) Profile(ctx context.Context, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, apperr.Invalid("username", "username is required")
	}
	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Register creates an admin. A collision names the clashing field.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := utils.NormalizeEmail(in.Email)
	mobile := strings.TrimSpace(in.Mobile)

	if username == "" || email == "" || in.Password == "" {
		return nil, apperr.Invalid("", "Username, email, and password are required")
	}
	if err := utils.ValidateUsername(username); err != nil {
		return nil, err
	}
	if !utils.IsValidEmail(email) {
		return nil, apperr.Invalid("email", "Please provide a valid email")
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	existing, err := s.users.FindConflict(ctx, username, email, mobile)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		field := "Mobile number"
		switch {
		case existing.Username == username:
			field = "Username"
		case existing.Email == email:
			field = "Email"
		}
		return nil, &apperr.DuplicateError{Field: field}
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Mobile:    mobile,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the first admin when no users exist.
func (s *AuthService) EnsureAdmin(ctx context.Context, in RegisterInput) (*models.User, bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return nil, false, err
	}
	if n > 0 {
		return nil, false, nil
	}
	user, err := s.Register(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// authenticate resolves login and checks password. Legacy plaintext
// passwords are compared in constant time and upgraded to a hash on success.
func (s *AuthService) authenticate(ctx context.Context, login, password string) (*models.User, error) {
	if login == "" || password == "" {
		return nil, ErrCurrentCredentials
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCurrentCredentials
		}
		return nil, err
	}

	if utils.IsPasswordHash(user.Password) {
		ok, err := utils.VerifyPassword(password, user.Password)
		if err != nil {
			s.logger.Error("stored password hash is malformed", zap.String("user", user.Username), zap.Error(err))
			return nil, ErrCurrentCredentials
		}
		if !ok {
			return nil, ErrCurrentCredentials
		}
		return user, nil
	}

	if user.Password == "" || !utils.ConstantTimeEquals(user.Password, password) {
		return nil, ErrCurrentCredentials
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user.ID, UserUpdate{Password: &hash, UpdatedAt: s.now().UTC()}); err != nil {
		s.logger.Warn("failed to upgrade plaintext password", zap.String("user", user.Username), zap.Error(err))
	} else {
		user.Password = hash
		s.logger.Info("upgraded plaintext password to argon2id", zap.String("user", user.Username))
	}
	return user, nil
}

// generateOTP returns a uniformly random code in 100000-999999.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func digestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// MaskEmail shortens the local part for display: "jane@example.com" -> "j***@example.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}
	return email[:1] + "***" + email[at:]
}
