package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/config"
	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/pkg/helpers"
	"github.com/oksasatya/go-account-service/pkg/mailer"
	tpl "github.com/oksasatya/go-account-service/pkg/mailer/templates"
	"github.com/oksasatya/go-account-service/pkg/validation"
)

// EmailSender accepts jobs for best-effort background delivery.
type EmailSender interface {
	Send(job mailer.EmailJob)
}

// UserIndexer mirrors account changes into the user directory.
type UserIndexer interface {
	IndexUser(ctx context.Context, u *entity.User)
}

// AccountService drives the account lifecycle: sign-up, activation and
// password recovery.
type AccountService struct {
	Store      *CredentialStore
	Auth       *AuthService
	Activation *helpers.ActivationTokens
	Resets     *helpers.ResetTokenManager
	Mail       EmailSender
	Directory  UserIndexer
	Cfg        *config.Config
	Logger     *logrus.Logger

	// Geo, when set, adds an approximate location to security emails.
	Geo tpl.GeoResolver
}

func NewAccountService(
	store *CredentialStore,
	auth *AuthService,
	activation *helpers.ActivationTokens,
	resets *helpers.ResetTokenManager,
	mail EmailSender,
	directory UserIndexer,
	cfg *config.Config,
	logger *logrus.Logger,
) *AccountService {
	return &AccountService{
		Store:      store,
		Auth:       auth,
		Activation: activation,
		Resets:     resets,
		Mail:       mail,
		Directory:  directory,
		Cfg:        cfg,
		Logger:     logger,
	}
}

// SignUp creates an inactive user and emails the activation link. A taken
// email is reported before any other field problem.
func (s *AccountService) SignUp(ctx context.Context, name, email, password string) (*entity.User, error) {
	email = entity.NormalizeEmail(email)
	if email != "" {
		if _, err := s.Store.FindByEmail(ctx, email); err == nil {
			return nil, ErrDuplicateEmail
		} else if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
	}
	verr := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		verr.Add("first_name", "This field is required.")
	}
	if problems := validation.CheckPassword(password, identityAttrs(name, email)); len(problems) > 0 {
		verr.Add("password", strings.Join(problems, " "))
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	u, err := s.Store.CreateUser(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	metrics.Add(metricSignups, 1)
	s.Logger.WithField("user_id", u.ID).Info("user signed up")

	s.sendActivation(ctx, u)
	s.index(ctx, u)
	return u, nil
}

// ActivationLink builds the URL a user follows to activate u.
func (s *AccountService) ActivationLink(u *entity.User) string {
	token := s.Activation.Issue(u.ID, u.IsActive)
	return strings.TrimRight(s.Cfg.VerifyEmailURL, "/") + "/" + helpers.EncodeUID(u.ID) + "/" + token
}

func (s *AccountService) sendActivation(ctx context.Context, u *entity.User) {
	now := time.Now()
	data := tpl.NewActivateAccountData(s.Cfg, u.FirstName, u.Email, s.ActivationLink(u),
		append(s.requestOptions(ctx, now), tpl.WithExpiresAt(now.Add(s.Cfg.ActivationTokenTTL)))...)
	s.send(u.Email, data)
}

// ActivateUser verifies the emailed link and activates the account. Every
// failure, including an unknown user, returns ErrInvalidActivation.
func (s *AccountService) ActivateUser(ctx context.Context, encodedUID, token string) error {
	id, err := helpers.DecodeUID(encodedUID)
	if err != nil {
		metrics.Add(metricActivationFails, 1)
		return ErrInvalidActivation
	}
	u, err := s.Store.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.Logger.WithError(err).Warn("activation lookup failed")
		}
		metrics.Add(metricActivationFails, 1)
		return ErrInvalidActivation
	}
	if !s.Activation.Verify(u.ID, u.IsActive, token) {
		metrics.Add(metricActivationFails, 1)
		return ErrInvalidActivation
	}

	if err := s.Store.Activate(ctx, u); err != nil {
		return err
	}
	metrics.Add(metricActivations, 1)
	s.Logger.WithField("user_id", u.ID).Info("user activated")
	s.index(ctx, u)
	return nil
}

// ResendActivation re-sends the link to a pending account. The outcome is
// never revealed to the caller.
func (s *AccountService) ResendActivation(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return NewValidationError("email", "Email required")
	}
	u, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.Logger.WithError(err).Warn("resend activation lookup failed")
		}
		return nil
	}
	if !u.IsActive {
		s.sendActivation(ctx, u)
	}
	return nil
}

// ForgotPassword emails a signed, expiring reset link. The credential is
// left untouched until the link is used.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return NewValidationError("email", "Email required")
	}
	u, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, exp, err := s.Resets.Generate(u.ID, u.Password)
	if err != nil {
		return err
	}
	link := s.Cfg.ResetPasswordURL + "?" + url.Values{"token": {token}}.Encode()

	data := tpl.NewForgotPasswordData(s.Cfg, u.FirstName, u.Email, link,
		append(s.requestOptions(ctx, time.Now()), tpl.WithExpiresAt(exp))...)
	s.send(u.Email, data)
	s.Logger.WithField("user_id", u.ID).Info("password reset requested")
	return nil
}

// ResetPassword consumes a reset link. The token stops working once the
// password changes, so it can be used once.
func (s *AccountService) ResetPassword(ctx context.Context, token, password1, password2 string) error {
	claims, err := s.Resets.Parse(token)
	if err != nil {
		return ErrInvalidResetToken
	}
	u, err := s.Store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(claims.Fingerprint), []byte(helpers.PasswordFingerprint(u.Password))) != 1 {
		return ErrInvalidResetToken
	}
	if password1 != password2 {
		return ErrPasswordMismatch
	}
	if problems := validation.CheckPassword(password1, identityAttrs(u.FirstName, u.Email)); len(problems) > 0 {
		return NewValidationError("password1", strings.Join(problems, " "))
	}

	if err := s.Store.SetPassword(ctx, u, password1); err != nil {
		return err
	}
	metrics.Add(metricPasswordResets, 1)
	s.notifyPasswordChanged(ctx, u)
	return nil
}

// ChangePassword changes the caller's password and notifies them by email.
func (s *AccountService) ChangePassword(ctx context.Context, u *entity.User, password1, password2 string) error {
	if err := s.Auth.ChangePassword(ctx, u, password1, password2); err != nil {
		return err
	}
	metrics.Add(metricPasswordChanges, 1)
	s.notifyPasswordChanged(ctx, u)
	return nil
}

func (s *AccountService) notifyPasswordChanged(ctx context.Context, u *entity.User) {
	data := tpl.NewPasswordChangedData(s.Cfg, u.FirstName, u.Email, s.requestOptions(ctx, time.Now())...)
	s.send(u.Email, data)
}

func (s *AccountService) send(to string, data map[string]any) {
	if s.Mail == nil {
		return
	}
	s.Mail.Send(mailer.EmailJob{
		From:     s.Cfg.DefaultFromEmail,
		To:       []string{to},
		Template: tpl.Universal,
		Data:     data,
	})
}

func (s *AccountService) index(ctx context.Context, u *entity.User) {
	if s.Directory != nil {
		s.Directory.IndexUser(ctx, u)
	}
}

func (s *AccountService) requestOptions(ctx context.Context, now time.Time) []tpl.Option {
	info := ClientInfoFrom(ctx)
	opts := []tpl.Option{tpl.WithTime(now), tpl.WithIP(info.IP), tpl.WithUserAgent(info.UserAgent)}
	if s.Geo != nil {
		opts = append(opts, tpl.WithGeoFromIP(ctx, s.Geo, info.IP))
	}
	return opts
}

func identityAttrs(name, email string) map[string]string {
	return map[string]string{"first name": name, "email address": email}
}
