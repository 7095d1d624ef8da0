package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetjet/sheetjet-go/device"
	"github.com/sheetjet/sheetjet-go/serial"
)

// simPort simulates one instrument behind a serial port: it answers its
// own identification command and stays silent for everything else.
type simPort struct {
	name     string
	identity device.Identity // IdentityUnknown simulates unrelated hardware
	opens    int
	closes   int
	pending  []byte
}

var _ serial.Port = (*simPort)(nil)

func (p *simPort) Name() string { return p.name }

func (p *simPort) Write(b []byte) (int, error) {
	switch p.identity {
	case device.VCMini:
		if bytes.Equal(b, []byte("=")) {
			p.pending = []byte(".=0M8\r\n\r>")
		}
	case device.MXII:
		if bytes.Equal(b, []byte("S\r")) {
			p.pending = []byte("3\r")
		}
	case device.TG5012A:
		if bytes.Equal(b, []byte("*IDN?\n")) {
			p.pending = []byte("THURLBY THANDAR, TG5012A, 527758, 1.08-2.02\n")
		}
	}
	return len(b), nil
}

func (p *simPort) Read(b []byte) (int, error) { return 0, nil }

func (p *simPort) ReadUntil(term byte, timeout time.Duration) ([]byte, error) {
	reply := p.pending
	p.pending = nil
	if i := bytes.IndexByte(reply, term); i >= 0 {
		return reply[:i+1], nil
	}
	return nil, fmt.Errorf("no reply: %w", serial.ErrReadTimeout)
}

func (p *simPort) SetReadTimeout(d time.Duration) error { return nil }

func (p *simPort) Close() error {
	p.closes++
	return nil
}

// simBench wires a set of simulated ports into the discovery hooks for
// one test.
type simBench struct {
	ports   []*simPort
	badOpen map[string]error // ports whose open fails
}

func (b *simBench) install(t *testing.T) {
	t.Helper()

	origList, origOpen := listPorts, openPort
	t.Cleanup(func() { listPorts, openPort = origList, origOpen })

	listPorts = func() ([]string, error) {
		names := make([]string, len(b.ports))
		for i, p := range b.ports {
			names[i] = p.name
		}
		return names, nil
	}
	openPort = func(name string, cfg serial.Config) (serial.Port, error) {
		if err, ok := b.badOpen[name]; ok {
			return nil, err
		}
		for _, p := range b.ports {
			if p.name == name {
				p.opens++
				return p, nil
			}
		}
		return nil, fmt.Errorf("%s: %w", name, serial.ErrPortUnavailable)
	}
}

func TestDiscover_OneOfEach(t *testing.T) {
	bench := &simBench{ports: []*simPort{
		{name: "COM3", identity: device.MXII},
		{name: "COM5", identity: device.TG5012A},
		{name: "COM6", identity: device.VCMini},
	}}
	bench.install(t)

	result, err := Discover(context.Background())
	require.NoError(t, err)

	// Each identity resolves to exactly one port, no ambiguity.
	assert.Empty(t, result.Ambiguous())

	port, err := result.Port(device.VCMini)
	require.NoError(t, err)
	assert.Equal(t, "COM6", port)

	port, err = result.Port(device.MXII)
	require.NoError(t, err)
	assert.Equal(t, "COM3", port)

	port, err = result.Port(device.TG5012A)
	require.NoError(t, err)
	assert.Equal(t, "COM5", port)

	// Every probe connection is closed before Discover returns.
	for _, p := range bench.ports {
		assert.Equal(t, p.opens, p.closes, "port %s left open", p.name)
	}
}

func TestDiscover_AmbiguousPortsAllReported(t *testing.T) {
	// Two ports answer the micro-valve signature (duplicate COM
	// assignment): discovery must report both, not pick one.
	bench := &simBench{ports: []*simPort{
		{name: "COM6", identity: device.VCMini},
		{name: "COM7", identity: device.VCMini},
	}}
	bench.install(t)

	result, err := Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []device.Identity{device.VCMini}, result.Ambiguous())

	_, err = result.Port(device.VCMini)
	require.ErrorIs(t, err, ErrAmbiguous)

	var ambErr *AmbiguityError
	require.ErrorAs(t, err, &ambErr)
	assert.ElementsMatch(t, []string{"COM6", "COM7"}, ambErr.Ports)
}

func TestDiscover_UnmatchedIdentityAbsent(t *testing.T) {
	bench := &simBench{ports: []*simPort{
		{name: "COM6", identity: device.VCMini},
	}}
	bench.install(t)

	result, err := Discover(context.Background())
	require.NoError(t, err)

	_, ok := result.Matches[device.TG5012A]
	assert.False(t, ok, "identities with no matching port are absent, not errors")

	_, err = result.Port(device.TG5012A)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDiscover_UnrelatedHardwareSkipped(t *testing.T) {
	bench := &simBench{ports: []*simPort{
		{name: "COM1", identity: device.IdentityUnknown}, // e.g. a GPS mouse
		{name: "COM6", identity: device.VCMini},
	}}
	bench.install(t)

	result, err := Discover(context.Background())
	require.NoError(t, err)

	port, err := result.Port(device.VCMini)
	require.NoError(t, err)
	assert.Equal(t, "COM6", port)
	assert.Len(t, result.Matches, 1)
}

func TestDiscover_OpenFailureSkipsPortOnly(t *testing.T) {
	bench := &simBench{
		ports: []*simPort{
			{name: "COM2"},
			{name: "COM6", identity: device.VCMini},
		},
		badOpen: map[string]error{"COM2": serial.ErrPortUnavailable},
	}
	bench.install(t)

	result, err := Discover(context.Background())
	require.NoError(t, err, "a single unopenable port must not fail discovery")

	port, err := result.Port(device.VCMini)
	require.NoError(t, err)
	assert.Equal(t, "COM6", port)
}

func TestDiscover_EnumerationFailureFailsCall(t *testing.T) {
	orig := listPorts
	listPorts = func() ([]string, error) { return nil, errors.New("sysfs unavailable") }
	t.Cleanup(func() { listPorts = orig })

	_, err := Discover(context.Background())
	require.Error(t, err)
}

func TestDiscover_ContextCanceled(t *testing.T) {
	bench := &simBench{ports: []*simPort{{name: "COM6", identity: device.VCMini}}}
	bench.install(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_CacheRoundTrip(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "sheetjet.yaml")
	bench := &simBench{ports: []*simPort{
		{name: "COM6", identity: device.VCMini},
	}}
	bench.install(t)

	// First run probes and persists the assignment.
	result, err := Discover(context.Background(), WithCacheFile(cachePath))
	require.NoError(t, err)
	port, err := result.Port(device.VCMini)
	require.NoError(t, err)
	require.Equal(t, "COM6", port)

	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "VCMini")
	assert.Contains(t, string(data), "COM6")

	// Second run trusts the validated cache entry and skips the probe.
	probes := bench.ports[0].opens
	result, err = Discover(context.Background(), WithCacheFile(cachePath))
	require.NoError(t, err)
	port, err = result.Port(device.VCMini)
	require.NoError(t, err)
	assert.Equal(t, "COM6", port)
	assert.Equal(t, probes, bench.ports[0].opens, "cached assignment must not be re-probed")
}

func TestDiscover_StaleCacheEntryReprobed(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "sheetjet.yaml")
	require.NoError(t, os.WriteFile(cachePath,
		[]byte("devices:\n    VCMini: COM99\n"), 0o644))

	// COM99 is gone; the device now lives on COM6.
	bench := &simBench{ports: []*simPort{
		{name: "COM6", identity: device.VCMini},
	}}
	bench.install(t)

	result, err := Discover(context.Background(), WithCacheFile(cachePath))
	require.NoError(t, err)

	port, err := result.Port(device.VCMini)
	require.NoError(t, err)
	assert.Equal(t, "COM6", port)
}

func TestRegistry_EveryIdentityHasCodec(t *testing.T) {
	for _, id := range device.Identities() {
		codec, ok := Codec(id)
		require.True(t, ok, "missing codec for %s", id)
		assert.Equal(t, id, codec.Identity())
	}
}
