package discovery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sheetjet/sheetjet-go/device"
	"github.com/sheetjet/sheetjet-go/logger"
	"github.com/sheetjet/sheetjet-go/serial"
)

// DefaultProbeTimeout bounds the reply read of one identification
// probe. It is kept short so ports connected to unrelated hardware do
// not stall the scan.
const DefaultProbeTimeout = 300 * time.Millisecond

// Overridable transport hooks so tests can scan simulated ports.
var (
	listPorts = serial.ListPorts
	openPort  = serial.Open
)

type config struct {
	probeTimeout time.Duration
	cachePath    string
	useCache     bool
	logger       logger.Logger
}

// Option configures a discovery run.
type Option func(*config) error

// WithProbeTimeout bounds the reply read of each identification probe.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return fmt.Errorf("discovery: probe timeout %v must be positive", d)
		}
		c.probeTimeout = d
		return nil
	}
}

// WithCacheFile persists discovered assignments to path and reuses them
// on later runs after revalidation against the live port list.
func WithCacheFile(path string) Option {
	return func(c *config) error {
		c.cachePath = path
		c.useCache = true
		return nil
	}
}

// WithLogger sets the logger for probe traces.
func WithLogger(l logger.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return errors.New("discovery: nil logger")
		}
		c.logger = l
		return nil
	}
}

// Discover probes the serial ports currently visible to the OS and
// returns the mapping from instrument identity to candidate ports.
//
// Per-port failures (permission, port in use, no or foreign reply) only
// exclude that port; Discover fails as a whole only when the OS port
// enumeration itself fails or ctx is canceled. Every probed port is
// closed before Discover returns.
func Discover(ctx context.Context, opts ...Option) (Result, error) {
	cfg := config{
		probeTimeout: DefaultProbeTimeout,
		logger:       logger.GetLogger(),
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return Result{}, err
		}
	}

	ports, err := listPorts()
	if err != nil {
		return Result{}, err
	}

	result := Result{Matches: make(map[device.Identity][]string)}

	// A validated cache entry pins its identity and removes its port
	// from the scan.
	remaining := device.Identities()
	if cfg.useCache {
		cached := loadCache(cfg.cachePath, ports, cfg.logger)
		for id, port := range cached {
			result.Matches[id] = []string{port}
			remaining = slices.DeleteFunc(remaining, func(i device.Identity) bool { return i == id })
			ports = slices.DeleteFunc(ports, func(p string) bool { return p == port })
		}
	}

	for _, port := range ports {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if len(remaining) == 0 {
			break
		}

		matched := probePort(port, remaining, cfg)
		switch len(matched) {
		case 0:
			// Unrelated hardware or an unresponsive port; not an error.
		case 1:
			result.Matches[matched[0]] = append(result.Matches[matched[0]], port)
		default:
			// A port answering several signatures cannot be assigned.
			cfg.logger.Warn("port matches multiple signatures, skipping",
				"port", port, "identities", matched)
		}
	}

	if cfg.useCache {
		saveCache(cfg.cachePath, result, cfg.logger)
	}

	return result, nil
}

// probePort tries each candidate family's identification command on one
// port and returns the identities whose signature matched.
func probePort(portName string, identities []device.Identity, cfg config) []device.Identity {
	var matched []device.Identity

	for _, id := range identities {
		codec := codecs[id]
		if probe(portName, codec, cfg) {
			matched = append(matched, id)
		}
	}

	return matched
}

// probe opens the port at the family's line speed, sends its
// identification command, and matches the reply against the family
// signature. The probe connection is always closed before returning.
func probe(portName string, codec device.Codec, cfg config) bool {
	port, err := openPort(portName, serial.Config{
		BaudRate:    codec.Baud(),
		ReadTimeout: cfg.probeTimeout,
	})
	if err != nil {
		cfg.logger.Debug("probe open failed", "port", portName, "error", err)
		return false
	}
	defer func() { _ = port.Close() }()

	data, err := codec.Encode(codec.IdentifyCommand())
	if err != nil {
		return false
	}
	if _, err := port.Write(data); err != nil {
		cfg.logger.Debug("probe write failed", "port", portName, "error", err)
		return false
	}

	raw, err := port.ReadUntil(codec.Terminator(), cfg.probeTimeout)
	if err != nil {
		cfg.logger.Debug("probe read failed",
			"port", portName, "identity", codec.Identity(), "error", err)
		return false
	}

	ok := codec.MatchSignature(raw)
	if ok {
		cfg.logger.Info("identified device",
			"port", portName, "identity", codec.Identity())
	}

	return ok
}
