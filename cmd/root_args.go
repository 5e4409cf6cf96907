package cmd

import (
	"time"

	"github.com/isometry/netbox-catalyst-bridge/internal/config"
	"github.com/isometry/netbox-catalyst-bridge/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'service' and 'lambda-http'",
		Short:       helpers.Ptr("m"),
	},
	&config.Catalyst.Host: {
		Name:        "catalyst-host",
		Description: "The Catalyst Center base URL, e.g. https://dnac.example.net",
		Env:         helpers.Ptr("CC_HOST"),
	},
	&config.Catalyst.Username: {
		Name:        "catalyst-username",
		Description: "The Catalyst Center username",
		Env:         helpers.Ptr("CC_USER"),
	},
	&config.Catalyst.Password: {
		Name:        "catalyst-password",
		Description: "The Catalyst Center password. Prefer the environment variable",
		Env:         helpers.Ptr("CC_PASS"),
		Hidden:      true,
	},
	&config.Catalyst.AuthMode: {
		Name:        "catalyst-auth-mode",
		Description: "Credentials provider. Supported values are 'env' and 'ssm'",
		Short:       helpers.Ptr("A"),
	},
	&config.Catalyst.SSMKey: {
		Name:        "catalyst-ssm-key",
		Description: "The SSM parameter holding a JSON document with username, password and webhook_secret",
	},
	&config.Catalyst.DeploymentMode: {
		Name:        "catalyst-deployment-mode",
		Description: "The deploymentMode forwarded on updates. Supported values are 'Deploy' and 'Preview'",
		Env:         helpers.Ptr("DEPLOYMENT_MODE"),
	},
	&config.Catalyst.InterfacePath: {
		Name:        "catalyst-interface-path",
		Description: "The interface update route. Supported values are 'generic' and 'wireless'",
		Env:         helpers.Ptr("INTERFACE_PATH"),
	},
	&config.NetBox.WebhookSecret: {
		Name:        "netbox-webhook-secret",
		Description: "The secret NetBox signs deliveries with. If not specified, no validation is performed",
		Env:         helpers.Ptr("NB_SECRET"),
		Hidden:      true,
	},
	&config.NetBox.SignatureHeader: {
		Name:        "netbox-signature-header",
		Description: "The header carrying the HMAC-SHA512 signature",
	},
	&config.NetBox.CustomField: {
		Name:        "netbox-custom-field",
		Description: "The NetBox custom field holding the Catalyst Center interface UUID",
	},
	&config.Archive.BucketName: {
		Name:        "archive-s3-bucket",
		Description: "The S3 bucket verified deliveries are archived to",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
	&config.Catalyst.VerifyTLS: {
		Name:        "catalyst-verify-tls",
		Description: "Verify the Catalyst Center certificate. Disable for self-signed lab controllers only",
		Env:         helpers.Ptr("VERIFY_TLS"),
	},
	&config.Catalyst.Preflight: {
		Name:        "catalyst-preflight",
		Description: "Log in to Catalyst Center at startup",
	},
	&config.Archive.Enabled: {
		Name:        "archive-s3",
		Description: "Enable archiving of verified deliveries to S3",
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Catalyst.LoginTimeout: {
		Name:        "catalyst-login-timeout",
		Description: "The timeout of the token exchange",
	},
	&config.Catalyst.RequestTimeout: {
		Name:        "catalyst-request-timeout",
		Description: "The timeout of each interface update",
	},
	&config.Catalyst.TokenTTL: {
		Name:        "catalyst-token-ttl",
		Description: "Discard cached tokens older than this before use. 0 renews on rejection only",
	},
}
