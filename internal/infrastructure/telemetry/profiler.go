package telemetry

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// profileTypes is what a record-serving process spends its time on: request
// CPU, view allocations and the event bus goroutines.
var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

// ProfilerConfig configures continuous profiling
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
	// Tags are attached to every profile; hostname is added when missing.
	Tags map[string]string
}

func (c ProfilerConfig) validate() error {
	var errs []error
	if c.ServerAddress == "" {
		errs = append(errs, errors.New("profiler server address is required"))
	}
	if c.ApplicationName == "" {
		errs = append(errs, errors.New("profiler application name is required"))
	}
	return errors.Join(errs...)
}

// Profiler owns one Pyroscope session. The zero value is a stopped no-op.
type Profiler struct {
	mu      sync.Mutex
	session *pyroscope.Profiler
}

// NewProfiler starts a session when cfg is enabled.
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	if !cfg.Enabled {
		return &Profiler{}, nil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	tags := make(map[string]string, len(cfg.Tags)+1)
	for k, v := range cfg.Tags {
		tags[k] = v
	}
	if _, ok := tags["hostname"]; !ok {
		if host, err := os.Hostname(); err == nil {
			tags["hostname"] = host
		}
	}

	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          logger.Named("pyroscope").Sugar(),
		Tags:            tags,
		ProfileTypes:    profileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("start profiler: %w", err)
	}
	logger.Info("profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application", cfg.ApplicationName))
	return &Profiler{session: session}, nil
}

// IsEnabled reports whether a session is running
func (p *Profiler) IsEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session != nil
}

// Stop flushes and ends the session. Later calls do nothing.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	session := p.session
	p.session = nil
	p.mu.Unlock()
	if session == nil {
		return nil
	}
	if err := session.Stop(); err != nil {
		return fmt.Errorf("stop profiler: %w", err)
	}
	return nil
}
