package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/drapcode/exchange-engine/internal/auth/tokens"
	"github.com/drapcode/exchange-engine/internal/pkg/log"
	"github.com/drapcode/exchange-engine/internal/platform/email"
	"github.com/drapcode/exchange-engine/internal/platform/sms"
	"github.com/drapcode/exchange-engine/internal/types"
	otperrors "github.com/drapcode/exchange-engine/otp/errors"
	"github.com/drapcode/exchange-engine/otp/models"
	usersrepo "github.com/drapcode/exchange-engine/users/repository"
)

// Service issues one-time passcodes and exchanges them for a login token.
type Service interface {
	GenerateEmailOTP(ctx context.Context, projectID string, req models.GenerateEmailRequest) (*models.GenerateResponse, error)
	GenerateSmsOTP(ctx context.Context, projectID string, req models.GenerateSMSRequest) (*models.GenerateResponse, error)
	VerifyEmailOTP(ctx context.Context, projectID string, req models.VerifyRequest) (*models.LoginResponse, error)
	VerifySmsOTP(ctx context.Context, projectID string, req models.VerifyRequest) (*models.LoginResponse, error)
}

// Config controls code generation and the issued token.
type Config struct {
	Length          int
	Expiry          time.Duration
	DefaultRole     string
	TokenExpiry     time.Duration
	EmailFrom       string
	EmailSubject    string
	MessageTemplate string
	PrivateKey      string
	KeyID           string
}

type service struct {
	users    usersrepo.Repository
	email    email.Sender
	sms      sms.Sender
	cfg      Config
	validate *validator.Validate
	now      func() time.Time
	random   io.Reader
}

// NewService constructs the OTP service. Either sender may be nil when that
// channel is not configured.
func NewService(users usersrepo.Repository, emailSender email.Sender, smsSender sms.Sender, cfg Config) Service {
	if cfg.Length <= 0 {
		cfg.Length = 6
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = 5 * time.Minute
	}
	if cfg.MessageTemplate == "" {
		cfg.MessageTemplate = "Your verification code is {{otp}}"
	}
	return &service{
		users:    users,
		email:    emailSender,
		sms:      smsSender,
		cfg:      cfg,
		validate: validator.New(),
		now:      time.Now,
		random:   rand.Reader,
	}
}

func (s *service) GenerateEmailOTP(ctx context.Context, projectID string, req models.GenerateEmailRequest) (*models.GenerateResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if s.email == nil {
		return nil, fmt.Errorf("email channel: %w", otperrors.ErrDeliveryFailed)
	}
	return s.generate(ctx, projectID, s.emailChannel(), req.Email, req.AuthType)
}

func (s *service) GenerateSmsOTP(ctx context.Context, projectID string, req models.GenerateSMSRequest) (*models.GenerateResponse, error) {
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if s.sms == nil {
		return nil, fmt.Errorf("sms channel: %w", otperrors.ErrDeliveryFailed)
	}
	return s.generate(ctx, projectID, s.smsChannel(), req.PhoneNumber, req.AuthType)
}

func (s *service) VerifyEmailOTP(ctx context.Context, projectID string, req models.VerifyRequest) (*models.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.verify(ctx, projectID, s.emailChannel(), req)
}

func (s *service) VerifySmsOTP(ctx context.Context, projectID string, req models.VerifyRequest) (*models.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	return s.verify(ctx, projectID, s.smsChannel(), req)
}

func (s *service) generate(ctx context.Context, projectID string, ch channel, address string, authType models.AuthType) (*models.GenerateResponse, error) {
	found, err := s.users.FindByField(ctx, projectID, ch.addressField, address)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	user, exists := found.Get()

	switch {
	case authType == models.AuthTypeSignUp && exists:
		return nil, otperrors.ErrUserExists
	case authType == models.AuthTypeLogin && !exists:
		return nil, otperrors.ErrUserNotRegistered
	case !exists:
		user, err = s.signUp(ctx, projectID, ch, address)
		if err != nil {
			return nil, err
		}
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash otp: %w", err)
	}
	otpToken := uuid.Must(uuid.NewV4()).String()

	userUUID := fmt.Sprint(user["uuid"])
	err = s.users.UpdateUser(ctx, projectID, userUUID, usersrepo.Document{
		ch.codeField:   string(hash),
		ch.expiryField: s.now().Add(s.cfg.Expiry).UnixMilli(),
		ch.tokenField:  otpToken,
	})
	if err != nil {
		return nil, fmt.Errorf("store otp: %w", err)
	}

	if err := ch.deliver(ctx, address, code); err != nil {
		log.ErrorWithContext(ctx, "[OTP] %s delivery to user %s failed: %v", ch.name, userUUID, err)
		return nil, fmt.Errorf("%w: %v", otperrors.ErrDeliveryFailed, err)
	}
	log.InfoWithContext(ctx, "[OTP] %s code sent to user %s", ch.name, userUUID)

	return &models.GenerateResponse{Code: http.StatusOK, Message: "OTP sent successfully", OTPToken: otpToken}, nil
}

func (s *service) signUp(ctx context.Context, projectID string, ch channel, address string) (usersrepo.Document, error) {
	if s.cfg.DefaultRole == "" {
		return nil, otperrors.ErrSignUpRoleMissing
	}
	found, err := s.users.FindRoleByUUID(ctx, projectID, s.cfg.DefaultRole)
	if err != nil {
		return nil, fmt.Errorf("find sign up role: %w", err)
	}
	role, ok := found.Get()
	if !ok {
		return nil, otperrors.ErrSignUpRoleNotFound
	}

	password, err := s.newPassword()
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := usersrepo.Document{
		"uuid":          uuid.Must(uuid.NewV4()).String(),
		ch.addressField: address,
		"password":      string(hash),
		"userRoles":     []interface{}{role["name"]},
		"createdAt":     s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, projectID, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *service) verify(ctx context.Context, projectID string, ch channel, req models.VerifyRequest) (*models.LoginResponse, error) {
	found, err := s.users.FindByField(ctx, projectID, ch.tokenField, req.Token)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	user, ok := found.Get()
	if !ok {
		return nil, otperrors.ErrUserNotFound
	}

	hash, _ := user[ch.codeField].(string)
	expiry, _ := toInt64(user[ch.expiryField])
	if hash == "" || s.now().UnixMilli() > expiry ||
		bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.OTP)) != nil {
		return nil, otperrors.ErrInvalidOTP
	}

	userUUID := fmt.Sprint(user["uuid"])
	if err := s.users.UnsetUserFields(ctx, projectID, userUUID, ch.stateFields()); err != nil {
		return nil, fmt.Errorf("clear otp: %w", err)
	}
	return s.login(ctx, projectID, user, ch)
}

// login resolves role, tenant and user setting for user and issues a token.
func (s *service) login(ctx context.Context, projectID string, user usersrepo.Document, ch channel) (*models.LoginResponse, error) {
	details := make(map[string]interface{}, len(user))
	for k, v := range user {
		details[k] = v
	}
	for _, k := range append([]string{"_id", "updatedAt", "password"}, ch.stateFields()...) {
		delete(details, k)
	}

	roleUUID := ""
	if name, ok := types.FirstOf(details["userRoles"]).Get(); ok {
		if err := s.applyRole(ctx, projectID, fmt.Sprint(name), details, &roleUUID); err != nil {
			return nil, err
		}
	}

	tenant, err := s.lookup(ctx, projectID, details["tenantId"], s.users.FindTenant)
	if err != nil {
		return nil, err
	}
	setting, err := s.lookup(ctx, projectID, details["userSettingId"], s.users.FindUserSetting)
	if err != nil {
		return nil, err
	}
	if tenant != nil {
		if name := mappedRole(details, "tenantId", tenant["uuid"]); name != "" {
			if err := s.applyRole(ctx, projectID, name, details, &roleUUID); err != nil {
				return nil, err
			}
		}
	}
	if setting != nil {
		if name := mappedRole(details, "userSettingId", setting["uuid"]); name != "" {
			if err := s.applyRole(ctx, projectID, name, details, &roleUUID); err != nil {
				return nil, err
			}
		}
	}

	subject := firstString(details, "userName", "email", "phone_number")
	expiry := s.cfg.TokenExpiry
	if expiry <= 0 {
		expiry = 48 * time.Hour
	}
	token, err := tokens.CreateToken(s.cfg.PrivateKey, s.cfg.KeyID, tokens.TokenRequest{
		Subject:   subject,
		ProjectID: projectID,
		Role:      roleUUID,
		Expiry:    expiry,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &models.LoginResponse{
		Auth:        true,
		Token:       token,
		ExpiresIn:   int64(expiry.Seconds()),
		UserDetails: details,
		Role:        roleUUID,
		Tenant:      tenant,
		UserSetting: setting,
		ProjectID:   projectID,
	}, nil
}

// applyRole sets the role named name on details when it exists.
func (s *service) applyRole(ctx context.Context, projectID, name string, details map[string]interface{}, roleUUID *string) error {
	found, err := s.users.FindRoleByName(ctx, projectID, name)
	if err != nil {
		return fmt.Errorf("find role: %w", err)
	}
	role, ok := found.Get()
	if !ok {
		return nil
	}
	*roleUUID = fmt.Sprint(role["uuid"])
	details["role"] = *roleUUID
	details["userRoles"] = []interface{}{name}
	return nil
}

type documentLookup func(ctx context.Context, projectID, id string) (types.Optional[usersrepo.Document], error)

func (s *service) lookup(ctx context.Context, projectID string, ids interface{}, find documentLookup) (map[string]interface{}, error) {
	id, ok := types.FirstOf(ids).Get()
	if !ok {
		return nil, nil
	}
	found, err := find(ctx, projectID, fmt.Sprint(id))
	if err != nil {
		return nil, err
	}
	return found.OrElse(nil), nil
}

// mappedRole returns the role of the tenantRoleMapping entry whose key
// field equals id.
func mappedRole(details map[string]interface{}, key string, id interface{}) string {
	mappings := reflect.ValueOf(details["tenantRoleMapping"])
	if mappings.Kind() != reflect.Slice {
		return ""
	}
	for i := 0; i < mappings.Len(); i++ {
		entry := asMap(mappings.Index(i).Interface())
		if entry == nil || fmt.Sprint(entry[key]) != fmt.Sprint(id) {
			continue
		}
		if role, ok := entry["role"].(string); ok {
			return role
		}
	}
	return ""
}

func asMap(v interface{}) map[string]interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		return m
	case primitive.M:
		return m
	case primitive.D:
		return m.Map()
	}
	return nil
}

func firstString(doc map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := doc[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

const digits = "0123456789"

func (s *service) newCode() (string, error) {
	return s.randomString(digits, s.cfg.Length)
}

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%"

func (s *service) newPassword() (string, error) {
	return s.randomString(passwordAlphabet, 16)
}

func (s *service) randomString(alphabet string, n int) (string, error) {
	size := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(s.random, size)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}
