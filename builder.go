package goGuard

import (
	"errors"
	"log/slog"
	"time"

	"github.com/MrEthical07/goGuard/password"
	"github.com/MrEthical07/goGuard/token"
)

// Builder defines a public type used by goGuard APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	store      CredentialStore
	sessions   SessionBinding
	captchaGen CaptchaGenerator
	auditSink  AuditSink
	logger     *slog.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore supplies the credential store backing users and permissions.
func (b *Builder) WithStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithSessions supplies the session binding backing login state and the
// transient captcha slot.
func (b *Builder) WithSessions(sessions SessionBinding) *Builder {
	b.sessions = sessions
	return b
}

// WithCaptchaGenerator supplies the challenge generator. Required when
// captcha is enabled.
func (b *Builder) WithCaptchaGenerator(gen CaptchaGenerator) *Builder {
	b.captchaGen = gen
	return b
}

// WithAuditSink supplies the sink that receives audit events when auditing
// is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger supplies the structured logger used for server-side failure
// detail. Defaults to a discard logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and assembles the engine. Every
// configuration problem surfaces here; nothing is deferred to call time.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.store == nil {
		return nil, errors.New("credential store required")
	}
	if b.sessions == nil {
		return nil, errors.New("session binding required")
	}
	if cfg.Captcha.Enabled && b.captchaGen == nil {
		return nil, errors.New("captcha generator required when captcha is enabled")
	}

	hasher, err := password.New(password.Config{
		Algorithm: cfg.Password.Algorithm,
		Depth:     cfg.Password.Depth,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := token.NewService(token.Config{
		Secret:      cloneBytes(cfg.PasswordReset.Secret),
		ExpireAfter: cfg.PasswordReset.ExpireAfter,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cfg,
		store:      b.store,
		sessions:   b.sessions,
		hasher:     hasher,
		tokens:     tokens,
		captchaGen: b.captchaGen,
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:    NewMetrics(cfg.Metrics),
		logger:     b.logger,
		sleep:      time.Sleep,
	}

	b.built = true

	return engine, nil
}
