// Command restclient submits a single request to a REST API configured from
// a file, the environment and flags, and prints the response body.
//
//	restclient --config api.yaml GET /v1/items --param q=go
//	RESTCLIENT_HOST=api.example.com restclient POST /v1/items --json '{"name":"x"}'
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luizaranda/go-restclient/pkg/log"
	"github.com/luizaranda/go-restclient/pkg/otel"
	"github.com/luizaranda/go-restclient/pkg/restclient"
	"github.com/luizaranda/go-restclient/pkg/telemetry"
	"github.com/luizaranda/go-restclient/pkg/transport"
	"github.com/luizaranda/go-restclient/pkg/transport/httpclient"
)

type flags struct {
	configPath string
	logLevel   string
	params     []string
	headers    []string
	data       string
	jsonData   string
	cache      bool
	requestID  bool
	otel       bool
	datadog    string
	license    string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var f flags
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "restclient METHOD ENDPOINT",
		Short:         "Submit a request to a REST API",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return run(ctx, v, f, restclient.Method(strings.ToUpper(args[0])), args[1])
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "configuration file (YAML, JSON or TOML)")
	fs.String("host", "", "API host, overrides the configuration")
	fs.Duration("timeout", 0, "request timeout, overrides the configuration")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level")
	fs.StringArrayVarP(&f.params, "param", "p", nil, "form parameter name=value, repeatable")
	fs.StringArrayVarP(&f.headers, "header", "H", nil, "request header 'Name: value', repeatable")
	fs.StringVarP(&f.data, "data", "d", "", "text body of POST and PUT requests")
	fs.StringVar(&f.jsonData, "json", "", "JSON body of POST and PUT requests")
	fs.BoolVar(&f.cache, "cache", false, "cache GET responses in memory")
	fs.BoolVar(&f.requestID, "request-id", true, "send a random "+restclient.DefaultRequestIDHeader+" header")
	fs.BoolVar(&f.otel, "otel", false, "export traces and metrics to the OTLP collector")
	fs.StringVar(&f.datadog, "datadog", "", "statsd address of the Datadog agent, metrics are discarded when empty")
	fs.StringVar(&f.license, "newrelic-license", "", "NewRelic license key")

	_ = v.BindPFlag("host", fs.Lookup("host"))
	_ = v.BindPFlag("request_timeout", fs.Lookup("timeout"))

	return cmd
}

// newTelemetry reports to Datadog and NewRelic when either is configured.
func newTelemetry(f flags) (telemetry.Client, error) {
	if f.datadog == "" && f.license == "" {
		return telemetry.NewNoOpClient(), nil
	}
	return telemetry.NewClient(telemetry.Config{
		ApplicationName: "restclient",
		NewRelicLicense: f.license,
		DatadogAddress:  f.datadog,
	})
}

func run(ctx context.Context, v *viper.Viper, f flags, method restclient.Method, endpoint string) error {
	lvl, err := log.ParseLevel(f.logLevel)
	if err != nil {
		return err
	}
	level := log.NewAtomicLevelAt(lvl)
	logger := log.NewProductionLogger(&level)

	tracer, err := newTelemetry(f)
	if err != nil {
		return err
	}
	defer tracer.Close()
	ctx = log.Context(telemetry.Context(ctx, tracer), logger)

	if f.otel {
		shutdown, err := otel.Start(ctx, otel.Config{SampleRatio: 1})
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn("otel shutdown", log.Err(err))
			}
		}()
	}

	go transport.ReportPoolStats(ctx, tracer, 10*time.Second)

	builder, err := restclient.LoadConfiguration(f.configPath, restclient.WithViper(v))
	if err != nil {
		return err
	}
	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q, want 'Name: value'", h)
		}
		builder.WithRequestHeader(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if f.requestID {
		builder.AddRequestInterceptor(restclient.RequestIDInterceptor{})
	}

	cfg, err := builder.Build()
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", log.Stringer("configuration", cfg))

	var opts []restclient.Option
	if f.cache {
		opts = append(opts, restclient.WithHTTPClientOptions(httpclient.EnableCache()))
	}
	client, err := restclient.New(cfg, append(opts, restclient.WithLogger(logger))...)
	if err != nil {
		return err
	}
	defer client.Close()

	req, err := newRequest(method, endpoint, f)
	if err != nil {
		return err
	}

	ctx, end := tracer.StartTransaction(ctx, "restclient "+string(method))
	defer end()

	res, err := client.Submit(ctx, req)
	if res != nil {
		fmt.Println(res.String())
	}
	if err != nil {
		var invalid *restclient.InvalidRequestError
		if errors.As(err, &invalid) {
			return fmt.Errorf("request failed with status %d", invalid.StatusCode)
		}
		return err
	}
	return nil
}

func newRequest(method restclient.Method, endpoint string, f flags) (restclient.Request, error) {
	params := make([]restclient.Parameter, 0, len(f.params))
	for _, p := range f.params {
		name, value, _ := strings.Cut(p, "=")
		params = append(params, restclient.Param(name, value))
	}

	body := restclient.NoBody()
	switch {
	case f.jsonData != "":
		var v any
		if err := json.Unmarshal([]byte(f.jsonData), &v); err != nil {
			return restclient.Request{}, fmt.Errorf("invalid --json: %w", err)
		}
		body = restclient.JSONBody(v)
	case f.data != "":
		body = restclient.TextBody(f.data)
	case len(params) > 0:
		body = restclient.FormBody(params...)
	}

	if method == restclient.MethodGet {
		return restclient.Get(endpoint, params...), nil
	}
	return restclient.NewRequest(method, endpoint, body), nil
}
