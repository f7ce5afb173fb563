package restclient

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultEnvPrefix prefixes the environment variables read by
// LoadConfiguration, e.g. RESTCLIENT_HOST or RESTCLIENT_PROXY_PORT.
const DefaultEnvPrefix = "RESTCLIENT"

// FileConfig is the layout of a configuration file.
//
//	host: api.example.com
//	request_timeout: 30s
//	basic_auth: {username: alice, password: s3cret}
//	proxy: {host: proxy.local, port: 3128, scheme: http}
//	headers:
//	  - {name: Accept, value: application/json}
type FileConfig struct {
	Host                    string            `mapstructure:"host"`
	RequestTimeout          time.Duration     `mapstructure:"request_timeout"`
	BasicAuth               CredentialsConfig `mapstructure:"basic_auth"`
	Proxy                   ProxyConfig       `mapstructure:"proxy"`
	InsecureSSLCertificates bool              `mapstructure:"insecure_ssl_certificates"`
	TrustStore              StoreConfig       `mapstructure:"trust_store"`
	KeyStore                StoreConfig       `mapstructure:"key_store"`
	Headers                 []HeaderConfig    `mapstructure:"headers"`
}

// CredentialsConfig is a username and password pair.
type CredentialsConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ProxyConfig configures the proxy. It is ignored when Host is empty.
type ProxyConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Scheme   string `mapstructure:"scheme"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// StoreConfig locates a trust or key store.
type StoreConfig struct {
	Path     string `mapstructure:"path"`
	Password string `mapstructure:"password"`
}

// HeaderConfig is a static request header.
type HeaderConfig struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

var _envKeys = []string{
	"host",
	"request_timeout",
	"basic_auth.username",
	"basic_auth.password",
	"proxy.host",
	"proxy.port",
	"proxy.scheme",
	"proxy.username",
	"proxy.password",
	"insecure_ssl_certificates",
	"trust_store.path",
	"trust_store.password",
	"key_store.path",
	"key_store.password",
}

type loaderOptions struct {
	envPrefix string
	viper     *viper.Viper
}

// LoaderOption configures LoadConfiguration.
type LoaderOption func(*loaderOptions)

// WithEnvPrefix changes the prefix of the environment variables read.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(o *loaderOptions) { o.envPrefix = prefix }
}

// WithViper reads settings from v instead of a new viper instance, so that
// defaults or flags bound to it are taken into account.
func WithViper(v *viper.Viper) LoaderOption {
	return func(o *loaderOptions) { o.viper = v }
}

// LoadConfiguration reads the YAML, JSON or TOML file at path, overlays the
// environment variables prefixed with DefaultEnvPrefix and returns a builder
// primed with the result. A missing file or an empty path only uses the
// environment.
//
// Errors are of type *ConfigError.
func LoadConfiguration(path string, opts ...LoaderOption) (*ConfigurationBuilder, error) {
	o := loaderOptions{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	v := o.viper
	if v == nil {
		v = viper.New()
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, &ConfigError{Field: "file", Reason: "cannot be read", Err: err}
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Field: "file", Reason: "cannot be read", Err: err}
		}
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range _envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, &ConfigError{Field: key, Err: err}
		}
	}

	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, &ConfigError{Reason: "cannot decode settings", Err: err}
	}

	if fc.Host == "" {
		return nil, &ConfigError{Field: "Host", Reason: "is required"}
	}

	return fc.Builder(), nil
}

// Builder returns a ConfigurationBuilder with the settings of fc.
func (fc FileConfig) Builder() *ConfigurationBuilder {
	b := NewConfigurationBuilder(fc.Host)

	if fc.RequestTimeout != 0 {
		b.UseRequestTimeout(fc.RequestTimeout)
	}
	if fc.BasicAuth.Username != "" || fc.BasicAuth.Password != "" {
		b.UseBasicAuth(fc.BasicAuth.Username, fc.BasicAuth.Password)
	}
	if fc.Proxy.Host != "" {
		b.UseProxy(NewProxyConfigurationBuilder().
			UseProxy(fc.Proxy.Host, fc.Proxy.Port, fc.Proxy.Scheme).
			UseProxyAuthentication(fc.Proxy.Username, fc.Proxy.Password).
			Build())
	}
	if fc.InsecureSSLCertificates {
		b.UseInsecureSSLCertificates()
	}
	if fc.TrustStore.Path != "" {
		b.UseTrustStore(fc.TrustStore.Path, fc.TrustStore.Password)
	}
	if fc.KeyStore.Path != "" {
		b.UseKeyStore(fc.KeyStore.Path, fc.KeyStore.Password)
	}
	for _, h := range fc.Headers {
		b.WithRequestHeader(h.Name, h.Value)
	}

	return b
}
