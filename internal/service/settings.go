package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agency-backend/internal/client"
	"agency-backend/internal/config"
	"agency-backend/internal/dto"
	"agency-backend/internal/model"
	"agency-backend/internal/repository"
)

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Actor is the authenticated admin performing a settings action.
type Actor struct {
	UserID string
	Role   string
}

var (
	ErrForbidden      = errors.New("insufficient role")
	ErrBadAction      = errors.New("unknown settings action")
	ErrBadProvider    = errors.New("unknown payment provider")
	ErrBadEnvironment = errors.New("environment must be sandbox or production")
)

type SettingsService interface {
	HandleAction(ctx context.Context, actor Actor, req *dto.SettingsActionRequest) (*dto.SettingsActionResponse, error)

	ProviderEnabled(ctx context.Context, provider model.PaymentProvider) (bool, error)
	ProviderEnvironment(ctx context.Context, provider model.PaymentProvider) (model.ProviderEnvironment, error)
	ProviderStates(ctx context.Context) ([]dto.ProviderView, error)

	MidtransCredentials(ctx context.Context) (client.MidtransCredentials, model.ProviderEnvironment, error)
	PaypalCredentials(ctx context.Context) (client.PaypalCredentials, model.ProviderEnvironment, error)
	XenditCredentials(ctx context.Context) (client.XenditCredentials, model.ProviderEnvironment, error)

	PublicSettings(ctx context.Context) (map[string]string, error)
}

type settingsServiceImpl struct {
	cfg          *config.Config
	settingsRepo repository.SettingsRepository
	auditRepo    repository.AuditRepository
}

func NewSettingsService(
	cfg *config.Config,
	settingsRepo repository.SettingsRepository,
	auditRepo repository.AuditRepository,
) SettingsService {
	return &settingsServiceImpl{
		cfg:          cfg,
		settingsRepo: settingsRepo,
		auditRepo:    auditRepo,
	}
}

// publicSettingKeys are the website settings exposed without auth.
var publicSettingKeys = []string{
	"site_name",
	"site_tagline",
	"contact_email",
	"contact_phone",
	"contact_address",
	"social_instagram",
	"social_linkedin",
	"ga4_measurement_id",
	"gsc_verification",
}

func parseProvider(s string) (model.PaymentProvider, error) {
	switch model.PaymentProvider(s) {
	case model.ProviderMidtrans, model.ProviderPaypal, model.ProviderXendit:
		return model.PaymentProvider(s), nil
	}
	return "", ErrBadProvider
}

func parseEnvironment(s string) (model.ProviderEnvironment, error) {
	switch model.ProviderEnvironment(s) {
	case model.EnvSandbox, model.EnvProduction:
		return model.ProviderEnvironment(s), nil
	}
	return "", ErrBadEnvironment
}

func (s *settingsServiceImpl) HandleAction(ctx context.Context, actor Actor, req *dto.SettingsActionRequest) (*dto.SettingsActionResponse, error) {
	if actor.Role != RoleAdmin && actor.Role != RoleSuperAdmin {
		return nil, ErrForbidden
	}

	switch req.Action {
	case "get":
		value, err := s.settingsRepo.Get(ctx, req.Key)
		if err != nil && !errors.Is(err, repository.ErrSettingNotFound) {
			return nil, fmt.Errorf("get setting: %w", err)
		}
		return &dto.SettingsActionResponse{Key: req.Key, Value: value, OK: true}, nil

	case "set":
		if len(req.Secrets) > 0 {
			return s.setSecrets(ctx, actor, req)
		}
		if req.Key == "" {
			return nil, fmt.Errorf("set requires a key")
		}
		// environment keys are validated so the single stored value is
		// always one of the two credential sets
		if strings.HasSuffix(req.Key, "_environment") {
			if _, err := parseEnvironment(req.Value); err != nil {
				return nil, err
			}
		}
		if err := s.settingsRepo.Set(ctx, req.Key, req.Value, actor.UserID); err != nil {
			return nil, fmt.Errorf("set setting: %w", err)
		}
		s.audit(ctx, actor, "settings.set", req.Key, req.Value)
		return &dto.SettingsActionResponse{Key: req.Key, Value: req.Value, OK: true}, nil

	case "clear":
		if req.Provider != "" {
			return s.clearSecrets(ctx, actor, req)
		}
		if err := s.settingsRepo.Clear(ctx, req.Key); err != nil {
			return nil, fmt.Errorf("clear setting: %w", err)
		}
		s.audit(ctx, actor, "settings.clear", req.Key, "")
		return &dto.SettingsActionResponse{Key: req.Key, OK: true}, nil

	case "set_enabled":
		provider, err := parseProvider(req.Provider)
		if err != nil {
			return nil, err
		}
		if req.Enabled == nil {
			return nil, fmt.Errorf("set_enabled requires enabled")
		}
		key := string(provider) + "_enabled"
		value := "false"
		if *req.Enabled {
			value = "true"
		}
		if err := s.settingsRepo.Set(ctx, key, value, actor.UserID); err != nil {
			return nil, fmt.Errorf("set enabled: %w", err)
		}
		s.audit(ctx, actor, "settings.set_enabled", key, value)
		return &dto.SettingsActionResponse{Key: key, Value: value, OK: true}, nil
	}

	return nil, ErrBadAction
}

func (s *settingsServiceImpl) setSecrets(ctx context.Context, actor Actor, req *dto.SettingsActionRequest) (*dto.SettingsActionResponse, error) {
	if actor.Role != RoleSuperAdmin {
		return nil, ErrForbidden
	}
	provider, err := parseProvider(req.Provider)
	if err != nil {
		return nil, err
	}
	env, err := parseEnvironment(req.Environment)
	if err != nil {
		return nil, err
	}

	for name, value := range req.Secrets {
		err := s.settingsRepo.UpsertSecret(ctx, &model.IntegrationSecret{
			Provider:    provider,
			Environment: env,
			Name:        name,
			Value:       value,
			Plaintext:   true,
			UpdatedBy:   actor.UserID,
		})
		if err != nil {
			return nil, fmt.Errorf("upsert secret %s: %w", name, err)
		}
		// audit the key name only, never the value
		s.audit(ctx, actor, "secrets.set", fmt.Sprintf("%s/%s/%s", provider, env, name), "")
	}

	return &dto.SettingsActionResponse{OK: true}, nil
}

func (s *settingsServiceImpl) clearSecrets(ctx context.Context, actor Actor, req *dto.SettingsActionRequest) (*dto.SettingsActionResponse, error) {
	if actor.Role != RoleSuperAdmin {
		return nil, ErrForbidden
	}
	provider, err := parseProvider(req.Provider)
	if err != nil {
		return nil, err
	}
	env, err := parseEnvironment(req.Environment)
	if err != nil {
		return nil, err
	}

	if err := s.settingsRepo.ClearSecrets(ctx, provider, env); err != nil {
		return nil, fmt.Errorf("clear secrets: %w", err)
	}
	s.audit(ctx, actor, "secrets.clear", fmt.Sprintf("%s/%s", provider, env), "")

	return &dto.SettingsActionResponse{OK: true}, nil
}

func (s *settingsServiceImpl) audit(ctx context.Context, actor Actor, action, target, detail string) {
	// audit failure never blocks the admin action itself
	_ = s.auditRepo.Append(ctx, &model.AuditLog{
		ActorID: actor.UserID,
		Action:  action,
		Target:  target,
		Detail:  detail,
	})
}

func (s *settingsServiceImpl) setting(ctx context.Context, key, fallback string) (string, error) {
	value, err := s.settingsRepo.Get(ctx, key)
	if errors.Is(err, repository.ErrSettingNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *settingsServiceImpl) ProviderEnabled(ctx context.Context, provider model.PaymentProvider) (bool, error) {
	var fallback bool
	switch provider {
	case model.ProviderMidtrans:
		fallback = s.cfg.Midtrans.Enabled
	case model.ProviderPaypal:
		fallback = s.cfg.Paypal.Enabled
	case model.ProviderXendit:
		fallback = s.cfg.Xendit.Enabled
	default:
		return false, ErrBadProvider
	}

	fb := "false"
	if fallback {
		fb = "true"
	}
	value, err := s.setting(ctx, string(provider)+"_enabled", fb)
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

func (s *settingsServiceImpl) ProviderEnvironment(ctx context.Context, provider model.PaymentProvider) (model.ProviderEnvironment, error) {
	var fallback string
	switch provider {
	case model.ProviderMidtrans:
		fallback = s.cfg.Midtrans.Environment
	case model.ProviderPaypal:
		fallback = s.cfg.Paypal.Environment
	case model.ProviderXendit:
		fallback = s.cfg.Xendit.Environment
	default:
		return "", ErrBadProvider
	}

	value, err := s.setting(ctx, string(provider)+"_environment", fallback)
	if err != nil {
		return "", err
	}
	return parseEnvironment(value)
}

func (s *settingsServiceImpl) ProviderStates(ctx context.Context) ([]dto.ProviderView, error) {
	providers := []model.PaymentProvider{model.ProviderMidtrans, model.ProviderPaypal, model.ProviderXendit}

	views := make([]dto.ProviderView, 0, len(providers))
	for _, p := range providers {
		enabled, err := s.ProviderEnabled(ctx, p)
		if err != nil {
			return nil, err
		}
		env, err := s.ProviderEnvironment(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, dto.ProviderView{
			Provider:    string(p),
			Environment: string(env),
			Enabled:     enabled,
		})
	}
	return views, nil
}

// secret reads a stored credential, falling back to the bootstrap config
// value so a fresh deployment works before any admin edits.
func (s *settingsServiceImpl) secret(ctx context.Context, provider model.PaymentProvider, env model.ProviderEnvironment, name, fallback string) (string, error) {
	value, err := s.settingsRepo.GetSecret(ctx, provider, env, name)
	if errors.Is(err, repository.ErrSettingNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *settingsServiceImpl) MidtransCredentials(ctx context.Context) (client.MidtransCredentials, model.ProviderEnvironment, error) {
	env, err := s.ProviderEnvironment(ctx, model.ProviderMidtrans)
	if err != nil {
		return client.MidtransCredentials{}, "", err
	}

	fallback := s.cfg.Midtrans.ServerKey
	if env == model.EnvProduction {
		fallback = s.cfg.Midtrans.ProdServerKey
	}
	serverKey, err := s.secret(ctx, model.ProviderMidtrans, env, "server_key", fallback)
	if err != nil {
		return client.MidtransCredentials{}, "", err
	}

	return client.MidtransCredentials{
		ServerKey:  serverKey,
		Production: env == model.EnvProduction,
	}, env, nil
}

func (s *settingsServiceImpl) PaypalCredentials(ctx context.Context) (client.PaypalCredentials, model.ProviderEnvironment, error) {
	env, err := s.ProviderEnvironment(ctx, model.ProviderPaypal)
	if err != nil {
		return client.PaypalCredentials{}, "", err
	}

	baseURL := s.cfg.Paypal.BaseApiURL
	clientID := s.cfg.Paypal.ClientID
	clientSecret := s.cfg.Paypal.ClientSecret
	if env == model.EnvProduction {
		baseURL = s.cfg.Paypal.ProdBaseApiURL
		clientID = s.cfg.Paypal.ProdClientID
		clientSecret = s.cfg.Paypal.ProdClientSecret
	}

	id, err := s.secret(ctx, model.ProviderPaypal, env, "client_id", clientID)
	if err != nil {
		return client.PaypalCredentials{}, "", err
	}
	sec, err := s.secret(ctx, model.ProviderPaypal, env, "client_secret", clientSecret)
	if err != nil {
		return client.PaypalCredentials{}, "", err
	}
	webhookID, err := s.secret(ctx, model.ProviderPaypal, env, "webhook_id", s.cfg.Paypal.WebhookID)
	if err != nil {
		return client.PaypalCredentials{}, "", err
	}

	return client.PaypalCredentials{
		BaseApiURL:   baseURL,
		ClientID:     id,
		ClientSecret: sec,
		WebhookID:    webhookID,
	}, env, nil
}

func (s *settingsServiceImpl) XenditCredentials(ctx context.Context) (client.XenditCredentials, model.ProviderEnvironment, error) {
	env, err := s.ProviderEnvironment(ctx, model.ProviderXendit)
	if err != nil {
		return client.XenditCredentials{}, "", err
	}

	secretKey := s.cfg.Xendit.SecretKey
	callbackToken := s.cfg.Xendit.CallbackToken
	if env == model.EnvProduction {
		secretKey = s.cfg.Xendit.ProdSecretKey
		callbackToken = s.cfg.Xendit.ProdCallbackToken
	}

	key, err := s.secret(ctx, model.ProviderXendit, env, "secret_key", secretKey)
	if err != nil {
		return client.XenditCredentials{}, "", err
	}
	token, err := s.secret(ctx, model.ProviderXendit, env, "callback_token", callbackToken)
	if err != nil {
		return client.XenditCredentials{}, "", err
	}

	return client.XenditCredentials{
		BaseApiURL:    s.cfg.Xendit.BaseApiURL,
		SecretKey:     key,
		CallbackToken: token,
	}, env, nil
}

func (s *settingsServiceImpl) PublicSettings(ctx context.Context) (map[string]string, error) {
	return s.settingsRepo.GetMany(ctx, publicSettingKeys)
}
