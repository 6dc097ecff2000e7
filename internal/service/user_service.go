package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"todo-api/internal/domain"
	"todo-api/internal/email"
	"todo-api/internal/repository"
)

const (
	minPasswordLength = 8
	// bcrypt rechaza passwords de mas de 72 bytes.
	maxPasswordBytes = 72
	birthdateLayout   = "2006-01-02"
)

// UserService coordina registro, verificacion por OTP e inicio de sesion.
type UserService struct {
	logger          *zap.Logger
	users           repository.UserRepository
	emailSender     email.Sender
	otpTTL          time.Duration
	verifyLimiter   RateLimiter
	resendLimiter   RateLimiter
	requireVerified bool
	now             func() time.Time
}

type UserServiceOptions struct {
	OTPTTL time.Duration
	// VerifyLimiter acota intentos de verificacion por email.
	VerifyLimiter RateLimiter
	// ResendLimiter acota reenvios de codigo por email.
	ResendLimiter   RateLimiter
	RequireVerified bool
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, emailSender email.Sender, opts UserServiceOptions) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = defaultOTPTTL
	}
	if opts.VerifyLimiter == nil {
		opts.VerifyLimiter = NewMemoryRateLimiter(opts.OTPTTL, 5)
	}
	if opts.ResendLimiter == nil {
		opts.ResendLimiter = NewMemoryRateLimiter(opts.OTPTTL, 3)
	}
	return &UserService{
		logger:          logger,
		users:           users,
		emailSender:     emailSender,
		otpTTL:          opts.OTPTTL,
		verifyLimiter:   opts.VerifyLimiter,
		resendLimiter:   opts.ResendLimiter,
		requireVerified: opts.RequireVerified,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

type SignUpInput struct {
	Name      string
	Email     string
	Password  string
	Birthdate string
}

type signUpData struct {
	name      string
	email     string
	password  string
	birthdate time.Time
}

func (in SignUpInput) validate(now time.Time) (signUpData, error) {
	emailAddr, err := parseEmail(in.Email)
	if err != nil {
		return signUpData{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return signUpData{}, validationError("name is required")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return signUpData{}, validationError("password must be at least 8 characters")
	}
	if len(in.Password) > maxPasswordBytes {
		return signUpData{}, validationError("password must be at most 72 bytes")
	}
	raw := strings.TrimSpace(in.Birthdate)
	if raw == "" {
		return signUpData{}, validationError("birthdate is required")
	}
	birthdate, err := time.Parse(birthdateLayout, raw)
	if err != nil {
		return signUpData{}, validationError("birthdate must be YYYY-MM-DD")
	}
	if birthdate.After(now) {
		return signUpData{}, validationError("birthdate is in the future")
	}
	return signUpData{name: name, email: emailAddr, password: in.Password, birthdate: birthdate}, nil
}

// SignUp registra un usuario no verificado y le envia el codigo OTP.
// Un fallo de envio no revierte el registro: el usuario puede pedir reenvio.
func (s *UserService) SignUp(ctx context.Context, input SignUpInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	now := s.now()
	data, err := input.validate(now)
	if err != nil {
		return domain.User{}, err
	}

	_, err = s.users.GetByEmail(ctx, data.email)
	if err == nil {
		return domain.User{}, ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	passwordHash, err := hashPassword(data.password)
	if err != nil {
		return domain.User{}, err
	}
	code, otpHash, expiresAt, err := generateOTP(now, s.otpTTL)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        data.email,
		DisplayName:  data.name,
		Birthdate:    &data.birthdate,
		PasswordHash: passwordHash,
		OtpCodeHash:  otpHash,
		OtpExpiresAt: &expiresAt,
		CreatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	if err := s.sendOTP(ctx, user, code, expiresAt); err != nil {
		s.logger.Warn("signup otp delivery failed", zap.Error(err), zap.String("user_id", user.ID))
	}
	return user, nil
}

// SignIn valida credenciales contra el hash bcrypt guardado.
func (s *UserService) SignIn(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, validationError("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrUserNotFound
	}
	if !checkPassword(user.PasswordHash, password) {
		return domain.User{}, ErrInvalidPassword
	}
	if s.requireVerified && !user.Verified() {
		return domain.User{}, ErrEmailNotVerified
	}
	return user, nil
}

// VerifyOTP pasa el usuario de no verificado a verificado si el codigo coincide.
// El codigo se consume en la misma sentencia, por lo que no valida dos veces.
func (s *UserService) VerifyOTP(ctx context.Context, emailAddr, code string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	if len(code) != otpLength {
		return domain.User{}, ErrOTPLength
	}
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if !s.verifyLimiter.Allow(emailAddr) {
		return domain.User{}, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrOTPInvalid
		}
		return domain.User{}, err
	}
	if user.OtpCodeHash == "" {
		return domain.User{}, ErrOTPInvalid
	}
	now := s.now()
	if user.OtpExpiresAt != nil && now.After(*user.OtpExpiresAt) {
		return domain.User{}, ErrOTPInvalid
	}
	if !verifyOTP(code, user.OtpCodeHash) {
		return domain.User{}, ErrOTPInvalid
	}

	if err := s.users.ConsumeOTP(ctx, user.ID, user.OtpCodeHash, now); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrOTPInvalid
		}
		return domain.User{}, err
	}

	user.EmailVerifiedAt = &now
	user.OtpCodeHash = ""
	user.OtpExpiresAt = nil
	return user, nil
}

// ResendOTP genera un codigo nuevo para un usuario pendiente de verificacion.
// Emails desconocidos o ya verificados responden igual que los pendientes.
func (s *UserService) ResendOTP(ctx context.Context, emailAddr string) error {
	if s.users == nil {
		return errors.New("user service not configured")
	}
	emailAddr, err := parseEmail(emailAddr)
	if err != nil {
		return err
	}
	if !s.resendLimiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug("otp resend for unknown email")
			return nil
		}
		return err
	}
	if user.Verified() {
		s.logger.Debug("otp resend for verified email", zap.String("user_id", user.ID))
		return nil
	}

	code, otpHash, expiresAt, err := generateOTP(s.now(), s.otpTTL)
	if err != nil {
		return err
	}
	if err := s.users.UpdateOTP(ctx, user.ID, otpHash, expiresAt); err != nil {
		return err
	}
	if err := s.sendOTP(ctx, user, code, expiresAt); err != nil {
		s.logger.Warn("resend otp delivery failed", zap.Error(err), zap.String("user_id", user.ID))
		return ErrEmailSendFailure
	}
	return nil
}

func (s *UserService) sendOTP(ctx context.Context, user domain.User, code string, expiresAt time.Time) error {
	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	return s.emailSender.SendVerificationOTP(ctx, email.Recipient{Email: user.Email, Name: user.DisplayName}, code, expiresAt)
}

func parseEmail(raw string) (string, error) {
	emailAddr := normalizeEmail(raw)
	if emailAddr == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(emailAddr)
	if err != nil || addr.Address != emailAddr {
		return "", ErrInvalidEmail
	}
	return emailAddr, nil
}

// normalizeEmail solo recorta espacios: el email se compara tal como se guardo.
func normalizeEmail(emailAddr string) string {
	return strings.TrimSpace(emailAddr)
}
