package vapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	PublicKeyEnvVarNameShort = "VAPI_KEY"
	PublicKeyEnvVarNameLong  = "VAPI_PUBLIC_KEY"

	DefaultHost = "api.vapi.ai"
)

type clientConfig struct {
	publicKey      string
	baseURL        string
	httpClient     *http.Client
	transport      Transport
	logger         *slog.Logger
	payloadLogSize int
	eventBuffer    int
}

func (c *clientConfig) validate() error {
	if c.publicKey == "" {
		return fmt.Errorf("missing public key")
	}
	if c.baseURL == "" {
		return fmt.Errorf("missing host")
	}
	if c.transport == nil {
		return fmt.Errorf("missing transport")
	}
	return nil
}

type ClientOption func(*clientConfig)

// WithHost sets the API host. Without a scheme, https is used.
func WithHost(host string) ClientOption {
	return func(config *clientConfig) {
		if !strings.Contains(host, "://") {
			host = "https://" + host
		}
		config.baseURL = strings.TrimSuffix(host, "/")
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(config *clientConfig) {
		config.httpClient = client
	}
}

func WithTransport(t Transport) ClientOption {
	return func(config *clientConfig) {
		config.transport = t
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(o *clientConfig) {
		o.logger = logger
	}
}

func WithDefaultLogger() ClientOption {
	return WithLogger(slog.Default())
}

// WithPayloadLogSize sets how many bytes of raw app messages are kept for
// diagnostics per call.
func WithPayloadLogSize(size int) ClientOption {
	return func(o *clientConfig) {
		o.payloadLogSize = size
	}
}

// WithEventBuffer sets the channel capacity of each subscription.
func WithEventBuffer(n int) ClientOption {
	return func(o *clientConfig) {
		o.eventBuffer = n
	}
}

func WithKey(publicKey string) ClientOption {
	return func(o *clientConfig) {
		o.publicKey = publicKey
	}
}

func WithEnvKey(vars ...string) ClientOption {
	return func(o *clientConfig) {
		for _, envVarName := range vars {
			if k := os.Getenv(envVarName); k != "" {
				o.publicKey = k
				return
			}
		}
	}
}

func WithOptions(opts ...ClientOption) ClientOption {
	return func(o *clientConfig) {
		for _, opt := range opts {
			opt(o)
		}
	}
}

func withDefaults() ClientOption {
	return WithOptions(
		WithLogger(slog.New(slog.DiscardHandler)),
		WithHost(DefaultHost),
		WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		WithTransport(&WebsocketTransport{}),
		WithPayloadLogSize(64<<10),
		WithEventBuffer(64),
		WithEnvKey(PublicKeyEnvVarNameShort, PublicKeyEnvVarNameLong),
	)
}
