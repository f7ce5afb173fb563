package restclient

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	_validate     *validator.Validate
	_validateOnce sync.Once
)

func getValidator() *validator.Validate {
	_validateOnce.Do(func() {
		_validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return _validate
}

// configurationRules mirrors the settings of a Configuration that have
// constraints.
type configurationRules struct {
	Host           string        `validate:"required,http_url"`
	RequestTimeout time.Duration `validate:"gte=0"`
	BasicAuthUser  string        `validate:"required_with=BasicAuthPass"`
	BasicAuthPass  string
	TrustStore     string `validate:"required_with=TrustStorePass"`
	TrustStorePass string
	KeyStore       string `validate:"required_with=KeyStorePass"`
	KeyStorePass   string
	Proxy          *proxyRules `validate:"omitempty"`
}

type proxyRules struct {
	Host     string `validate:"required,hostname_rfc1123|ip"`
	Port     int    `validate:"min=1,max=65535"`
	Scheme   string `validate:"oneof=http https socks5"`
	Username string `validate:"required_with=Password"`
	Password string
}

func validateConfiguration(c *Configuration) error {
	rules := configurationRules{
		Host:           c.host,
		RequestTimeout: c.requestTimeout,
		BasicAuthUser:  c.basicAuth.Username,
		BasicAuthPass:  c.basicAuth.Password,
		TrustStore:     c.trustStore.Path,
		TrustStorePass: c.trustStore.Password,
		KeyStore:       c.keyStore.Path,
		KeyStorePass:   c.keyStore.Password,
	}
	if c.proxy != nil {
		rules.Proxy = &proxyRules{
			Host:     c.proxy.host,
			Port:     c.proxy.port,
			Scheme:   c.proxy.scheme,
			Username: c.proxy.username,
			Password: c.proxy.password,
		}
	}

	err := getValidator().Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return &ConfigError{Err: err}
	}

	first := fieldErrors[0]
	return &ConfigError{
		Field:  strings.TrimPrefix(first.Namespace(), "configurationRules."),
		Reason: formatValidationError(first),
		Err:    err,
	}
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "is required when " + e.Param() + " is set"
	case "http_url":
		return "must be an absolute http or https URL"
	case "gte":
		return "must not be negative"
	case "min", "max":
		return "must be between 1 and 65535"
	case "oneof":
		return "must be one of: " + e.Param()
	case "hostname_rfc1123|ip":
		return "must be a host name or an IP address"
	default:
		return "is invalid"
	}
}
