// Package config loads the retcalc YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/utkarsh5026/parmap/pool"
)

const (
	defaultKeyDay         = 15
	defaultForwardStart   = 1
	defaultForwardEnd     = 5
	defaultLogLevel       = "info"
	defaultNamespace      = "parmap"
	defaultRetryDelay     = 10 * time.Millisecond
	defaultRateLimitBurst = 1
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Pool       *PoolConfig    `yaml:"pool,omitempty" json:"pool,omitempty"`
	Logging    *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
	Prometheus *PromConfig    `yaml:"prometheus,omitempty" json:"prometheus,omitempty"`
	Returns    *ReturnsConfig `yaml:"returns,omitempty" json:"returns,omitempty"`
}

type PoolConfig struct {
	// Workers defaults to the number of CPUs.
	Workers int `yaml:"workers,omitempty" json:"workers,omitempty"`
	Buffer  int `yaml:"buffer,omitempty" json:"buffer,omitempty"`
	// Executor is "os-thread" or "goroutine".
	Executor string `yaml:"executor,omitempty" json:"executor,omitempty"`
	// Scheduling is "shared", "round-robin" or "work-stealing".
	Scheduling      string           `yaml:"scheduling,omitempty" json:"scheduling,omitempty"`
	PinCPU          bool             `yaml:"pin-cpu,omitempty" json:"pin-cpu,omitempty"`
	Timeout         time.Duration    `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Progress        bool             `yaml:"progress,omitempty" json:"progress,omitempty"`
	ContinueOnError bool             `yaml:"continue-on-error,omitempty" json:"continue-on-error,omitempty"`
	Retry           *RetryConfig     `yaml:"retry,omitempty" json:"retry,omitempty"`
	RateLimit       *RateLimitConfig `yaml:"rate-limit,omitempty" json:"rate-limit,omitempty"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max-attempts,omitempty" json:"max-attempts,omitempty"`
	InitialDelay time.Duration `yaml:"initial-delay,omitempty" json:"initial-delay,omitempty"`
}

type RateLimitConfig struct {
	PerSecond float64 `yaml:"per-second,omitempty" json:"per-second,omitempty"`
	Burst     int     `yaml:"burst,omitempty" json:"burst,omitempty"`
}

type LoggingConfig struct {
	Level string `yaml:"level,omitempty" json:"level,omitempty"`
	// Format is "text" or "json".
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

type PromConfig struct {
	// Address enables the /metrics endpoint when set.
	Address   string `yaml:"address,omitempty" json:"address,omitempty"`
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`
}

type ReturnsConfig struct {
	KeyDay  int            `yaml:"key-day,omitempty" json:"key-day,omitempty"`
	Forward *ForwardConfig `yaml:"forward,omitempty" json:"forward,omitempty"`
}

// ForwardConfig is the horizon [Start, End] in periods ahead.
type ForwardConfig struct {
	Start int `yaml:"start,omitempty" json:"start,omitempty"`
	End   int `yaml:"end,omitempty" json:"end,omitempty"`
}

// New reads file. An empty file name returns the defaults.
func New(file string) (*Config, error) {
	c := new(Config)
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	}
	if err := c.validateSetDefaults(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validateSetDefaults() error {
	if c.Pool == nil {
		c.Pool = new(PoolConfig)
	}
	if err := c.Pool.validateSetDefaults(); err != nil {
		return err
	}
	if c.Logging == nil {
		c.Logging = new(LoggingConfig)
	}
	if err := c.Logging.validateSetDefaults(); err != nil {
		return err
	}
	if c.Prometheus == nil {
		c.Prometheus = new(PromConfig)
	}
	if c.Prometheus.Namespace == "" {
		c.Prometheus.Namespace = defaultNamespace
	}
	if c.Returns == nil {
		c.Returns = new(ReturnsConfig)
	}
	return c.Returns.validateSetDefaults()
}

func (p *PoolConfig) validateSetDefaults() error {
	if p.Workers < 0 {
		return fmt.Errorf("%w: pool.workers must not be negative, got %d", ErrInvalid, p.Workers)
	}
	if p.Buffer < 0 {
		return fmt.Errorf("%w: pool.buffer must not be negative, got %d", ErrInvalid, p.Buffer)
	}
	if p.Timeout < 0 {
		return fmt.Errorf("%w: pool.timeout must not be negative, got %s", ErrInvalid, p.Timeout)
	}
	if p.Executor == "" {
		p.Executor = pool.KindOSThread.String()
	}
	if _, err := p.executorKind(); err != nil {
		return err
	}
	if p.Scheduling == "" {
		p.Scheduling = pool.SchedulingShared.String()
	}
	if _, err := p.schedulingStrategy(); err != nil {
		return err
	}
	if p.Retry != nil {
		if p.Retry.MaxAttempts < 1 {
			p.Retry.MaxAttempts = 1
		}
		if p.Retry.MaxAttempts > 1 && p.Retry.InitialDelay <= 0 {
			p.Retry.InitialDelay = defaultRetryDelay
		}
	}
	if p.RateLimit != nil {
		if p.RateLimit.PerSecond <= 0 {
			return fmt.Errorf("%w: pool.rate-limit.per-second must be positive", ErrInvalid)
		}
		if p.RateLimit.Burst <= 0 {
			p.RateLimit.Burst = defaultRateLimitBurst
		}
	}
	return nil
}

func (p *PoolConfig) executorKind() (pool.ExecutorKind, error) {
	switch p.Executor {
	case pool.KindOSThread.String():
		return pool.KindOSThread, nil
	case pool.KindGoroutine.String():
		return pool.KindGoroutine, nil
	}
	return 0, fmt.Errorf("%w: unknown pool.executor %q", ErrInvalid, p.Executor)
}

func (p *PoolConfig) schedulingStrategy() (pool.SchedulingStrategyType, error) {
	switch p.Scheduling {
	case pool.SchedulingShared.String():
		return pool.SchedulingShared, nil
	case pool.SchedulingRoundRobin.String():
		return pool.SchedulingRoundRobin, nil
	case pool.SchedulingWorkStealing.String():
		return pool.SchedulingWorkStealing, nil
	}
	return 0, fmt.Errorf("%w: unknown pool.scheduling %q", ErrInvalid, p.Scheduling)
}

// PoolOptions converts the pool section into pool options. Call it on a validated config.
func (c *Config) PoolOptions() []pool.Option {
	p := c.Pool
	kind, _ := p.executorKind()
	strategy, _ := p.schedulingStrategy()

	opts := []pool.Option{
		pool.WithExecutorKind(kind),
		pool.WithSchedulingStrategy(strategy),
		pool.WithCPUPinning(p.PinCPU),
		pool.WithProgress(p.Progress),
	}
	if p.Workers > 0 {
		opts = append(opts, pool.WithWorkerCount(p.Workers))
	}
	if p.Buffer > 0 {
		opts = append(opts, pool.WithTaskBuffer(p.Buffer))
	}
	if p.Timeout > 0 {
		opts = append(opts, pool.WithTimeout(p.Timeout))
	}
	if p.ContinueOnError {
		opts = append(opts, pool.WithContinueOnError())
	}
	if p.Retry != nil && p.Retry.MaxAttempts > 1 {
		opts = append(opts, pool.WithRetryPolicy(p.Retry.MaxAttempts, p.Retry.InitialDelay))
	}
	if p.RateLimit != nil {
		opts = append(opts, pool.WithRateLimit(p.RateLimit.PerSecond, p.RateLimit.Burst))
	}
	return opts
}

func (l *LoggingConfig) validateSetDefaults() error {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if _, err := log.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch l.Format {
	case "":
		l.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown logging.format %q", ErrInvalid, l.Format)
	}
	return nil
}

// Apply sets the level and formatter of logger.
func (l *LoggingConfig) Apply(logger *log.Logger) {
	if lvl, err := log.ParseLevel(l.Level); err == nil {
		logger.SetLevel(lvl)
	}
	if l.Format == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
		return
	}
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func (r *ReturnsConfig) validateSetDefaults() error {
	if r.KeyDay == 0 {
		r.KeyDay = defaultKeyDay
	}
	if r.KeyDay < 1 || r.KeyDay > 28 {
		return fmt.Errorf("%w: returns.key-day must be in [1, 28], got %d", ErrInvalid, r.KeyDay)
	}
	if r.Forward == nil {
		r.Forward = &ForwardConfig{Start: defaultForwardStart, End: defaultForwardEnd}
	}
	if r.Forward.Start < 1 || r.Forward.End < r.Forward.Start {
		return fmt.Errorf("%w: returns.forward needs 1 <= start <= end, got [%d, %d]",
			ErrInvalid, r.Forward.Start, r.Forward.End)
	}
	return nil
}

// Validate re-checks c after fields were changed in place, filling any new defaults.
func (c *Config) Validate() error {
	return c.validateSetDefaults()
}
