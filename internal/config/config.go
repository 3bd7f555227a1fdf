package config

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kelseyhightower/envconfig"

	"github.com/cleardeed/closing-service/internal/constants"
)

type Config struct {
	AppName string
	AppPort string `envconfig:"APP_PORT" default:"8080"`
	AppURL  string `envconfig:"APP_URL" required:"true"`

	// Database
	DBUrl string `envconfig:"DB_URL" required:"true"`

	// External collaborators
	PermissionServiceURL  string `envconfig:"PERMISSION_SERVICE_URL" required:"true"`
	TitleSearchServiceURL string `envconfig:"TITLE_SEARCH_SERVICE_URL" required:"true"`
	ServiceAPIKey         string `envconfig:"SERVICE_API_KEY"`

	// Auth: base64-encoded PEM of the RSA public key that signed the
	// access tokens. Token issuance lives elsewhere.
	RSAPublicKeyB64 string         `envconfig:"RSA_PUBLIC_KEY_BASE64" required:"true"`
	RSAPublicKey    *rsa.PublicKey `ignored:"true"`

	// Allow localhost origins alongside AppURL (dev/staging only).
	CORSAllowLocalhost bool `envconfig:"CORS_ALLOW_LOCALHOST" default:"false"`

	// Seed the DB with demo data on boot.
	SeedTestData bool `envconfig:"SEED_TEST_DATA" default:"false"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	cfg.AppName = constants.AppName

	pub, err := parseRSAPublicKey(cfg.RSAPublicKeyB64)
	if err != nil {
		return nil, fmt.Errorf("invalid RSA_PUBLIC_KEY_BASE64: %w", err)
	}
	cfg.RSAPublicKey = pub

	return &cfg, nil
}

func parseRSAPublicKey(b64 string) (*rsa.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	// Accept either PKIX "PUBLIC KEY" PEM or the jwt helper's formats.
	if block, _ := pem.Decode(raw); block != nil {
		pub, perr := x509.ParsePKIXPublicKey(block.Bytes)
		if perr == nil {
			if rsaPub, ok := pub.(*rsa.PublicKey); ok {
				return rsaPub, nil
			}
			return nil, fmt.Errorf("not an RSA public key")
		}
	}
	return jwt.ParseRSAPublicKeyFromPEM(raw)
}
