// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"go.yaml.in/yaml/v3"
)

// Runtime modes.
const (
	ModeService    = "service"
	ModeLambdaHTTP = "lambda-http"
)

// Catalyst Center credential providers.
const (
	AuthModeEnv = "env"
	AuthModeSSM = "ssm"
)

// Deployment modes forwarded to Catalyst Center.
const (
	DeploymentModeDeploy  = "Deploy"
	DeploymentModePreview = "Preview"
)

// Interface path variants.
const (
	InterfacePathGeneric  = "generic"
	InterfacePathWireless = "wireless"
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// Catalyst is a struct that contains the configuration for the Catalyst Center controller.
	Catalyst catalyst
	// NetBox is a struct that contains the configuration for inbound NetBox webhooks.
	NetBox netbox
	// Service is a struct that contains the configuration for the service mode.
	Service service
	// Lambda is a struct that contains the configuration for the lambda mode.
	Lambda lambda
	// Archive is a struct that contains the configuration for archiving verified deliveries to S3.
	Archive archive
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"service"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type catalyst struct {
	// Host is the base URL of the controller, e.g. https://dnac.example.net.
	Host     string `yaml:"host,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	// AuthMode selects where credentials come from. Supported values are 'env' and 'ssm'.
	AuthMode string `yaml:"authMode,omitempty" default:"env"`
	// SSMKey is the SSM parameter holding a JSON document with username, password and webhook_secret.
	SSMKey string `yaml:"ssmKey,omitempty"`
	// VerifyTLS disables certificate validation when false (self-signed lab controllers only).
	VerifyTLS      bool   `yaml:"verifyTLS,omitempty" default:"true"`
	DeploymentMode string `yaml:"deploymentMode,omitempty" default:"Deploy"`
	InterfacePath  string `yaml:"interfacePath,omitempty" default:"generic"`
	// LoginTimeout bounds the token exchange.
	LoginTimeout time.Duration `yaml:"loginTimeout,omitempty" default:"15s"`
	// RequestTimeout bounds every interface update call.
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty" default:"20s"`
	// TokenTTL, when positive, discards cached tokens older than the TTL before use.
	TokenTTL time.Duration `yaml:"tokenTTL,omitempty"`
	// Preflight performs a login when the runtime starts.
	Preflight bool `yaml:"preflight,omitempty"`
}

type netbox struct {
	// WebhookSecret is the shared HMAC secret. Empty disables verification.
	WebhookSecret   string `yaml:"webhookSecret,omitempty"`
	SignatureHeader string `yaml:"signatureHeader,omitempty" default:"X-Hook-Signature"`
	// CustomField is the NetBox custom field carrying the Catalyst Center interface UUID.
	CustomField string `yaml:"customField,omitempty" default:"catalyst_interface_uuid"`
}

type service struct {
	Path    string        `yaml:"path,omitempty" default:"/netbox/interface-updated"`
	Addr    string        `yaml:"addr,omitempty" default:"0.0.0.0"`
	Port    string        `yaml:"port,omitempty" default:"5100"`
	Timeout time.Duration `yaml:"timeout,omitempty" default:"90s"`
	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool `yaml:"metrics,omitempty" default:"true"`
}

type lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
}

type archive struct {
	Enabled    bool   `yaml:"enabled,omitempty"`
	BucketName string `yaml:"bucketName,omitempty"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&Catalyst),
		defaults.Set(&NetBox),
		defaults.Set(&Service),
		defaults.Set(&Lambda),
		defaults.Set(&Archive),
	)
}

// Reset discards every loaded value and re-applies the defaults.
func Reset() error {
	Global, Catalyst, NetBox = global{}, catalyst{}, netbox{}
	Service, Lambda, Archive = service{}, lambda{}, archive{}
	return SetDefaults()
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	type all struct {
		Global   global   `yaml:"global,omitempty"`
		Catalyst catalyst `yaml:"catalyst,omitempty"`
		NetBox   netbox   `yaml:"netbox,omitempty"`
		Service  service  `yaml:"service,omitempty"`
		Lambda   lambda   `yaml:"lambda,omitempty"`
		Archive  archive  `yaml:"archive,omitempty"`
	}
	var a all
	if err = yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	Global = a.Global
	Catalyst = a.Catalyst
	NetBox = a.NetBox
	Service = a.Service
	Lambda = a.Lambda
	Archive = a.Archive

	return nil
}

// Normalise trims and canonicalises the enumerated settings and validates the Catalyst Center configuration.
func Normalise() error {
	Global.Mode = strings.TrimSpace(strings.ToLower(Global.Mode))
	Catalyst.Host = strings.TrimRight(strings.TrimSpace(Catalyst.Host), "/")
	Catalyst.AuthMode = strings.TrimSpace(strings.ToLower(Catalyst.AuthMode))
	Catalyst.InterfacePath = strings.TrimSpace(strings.ToLower(Catalyst.InterfacePath))

	var errs []error
	switch Global.Mode {
	case ModeService, ModeLambdaHTTP:
	default:
		errs = append(errs, fmt.Errorf("invalid mode: %q", Global.Mode))
	}

	if Catalyst.Host == "" {
		errs = append(errs, errors.New("missing Catalyst Center host [CC_HOST]"))
	} else if u, err := url.Parse(Catalyst.Host); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid Catalyst Center host: %q", Catalyst.Host))
	}

	switch Catalyst.AuthMode {
	case AuthModeEnv:
		if Catalyst.Username == "" || Catalyst.Password == "" {
			errs = append(errs, errors.New("missing Catalyst Center credentials [CC_USER, CC_PASS]"))
		}
	case AuthModeSSM:
		if Catalyst.SSMKey == "" {
			errs = append(errs, errors.New("missing SSM parameter key for auth mode 'ssm'"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported auth mode: %q", Catalyst.AuthMode))
	}

	switch strings.ToLower(strings.TrimSpace(Catalyst.DeploymentMode)) {
	case "deploy":
		Catalyst.DeploymentMode = DeploymentModeDeploy
	case "preview":
		Catalyst.DeploymentMode = DeploymentModePreview
	default:
		errs = append(errs, fmt.Errorf("invalid deployment mode: %q", Catalyst.DeploymentMode))
	}

	switch Catalyst.InterfacePath {
	case InterfacePathGeneric, InterfacePathWireless:
	default:
		errs = append(errs, fmt.Errorf("invalid interface path variant: %q", Catalyst.InterfacePath))
	}

	if Archive.Enabled && Archive.BucketName == "" {
		errs = append(errs, errors.New("archive enabled without a bucket name"))
	}

	return errors.Join(errs...)
}
