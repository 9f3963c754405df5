package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookkeeperapp/bookkeeper-server/internal/auth"
	"github.com/bookkeeperapp/bookkeeper-server/internal/config"
	"github.com/bookkeeperapp/bookkeeper-server/internal/logger"
)

// AuthKey is the 32-byte PASETO key.
type AuthKey []byte

// ProvideAuthKey uses AUTH_KEY when set and otherwise the key file in the
// data directory, creating it on first start.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Auth.KeyHex, cfg.Storage.DataPath)
	if err != nil {
		return nil, err
	}
	cfg.Auth.AccessTokenKey = key

	source := "key file"
	if cfg.Auth.KeyHex != "" {
		source = "AUTH_KEY"
	}
	log.Debug("auth key ready", "source", source)
	return AuthKey(key), nil
}

// ProvideTokenService issues tokens valid for the configured duration.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)
	log := do.MustInvoke[*logger.Logger](i)

	tokens, err := auth.NewTokenService(key, cfg.Auth.AccessTokenDuration)
	if err != nil {
		return nil, err
	}
	log.Info("token service ready", "access_token_duration", cfg.Auth.AccessTokenDuration)
	return tokens, nil
}
