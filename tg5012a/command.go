package tg5012a

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sheetjet/sheetjet-go/device"
)

// Recognized instrument parameters and commands.
const (
	KeyChannel        = "CHN"
	KeyWave           = "WAVE"
	KeyFrequency      = "FREQ"
	KeyAmplitude      = "AMPL"
	KeyOffset         = "DCOFFS"
	KeyHighLevel      = "HILVL"
	KeyLowLevel       = "LOLVL"
	KeyOutput         = "OUTPUT"
	KeyOutputLoad     = "ZLOAD"
	KeyPhase          = "PHASE"
	KeyAlign          = "ALIGN"
	KeyPulseFrequency = "PULSFREQ"
	KeyPulseWidth     = "PULSWID"
	KeyPulseRise      = "PULSRISE"
	KeyPulseFall      = "PULSFALL"
	KeyPulseDelay     = "PULSDLY"
	KeyQueryError     = "QER"
	KeyExecError      = "EER"
	KeyClearStatus    = "*CLS"
	KeyReset          = "*RST"
	KeySave           = "*SAV"
	KeyRecall         = "*RCL"
	KeyID             = "*IDN"
	KeyOpComplete     = "*OPC"
	KeyLocal          = "LOCAL"
	KeyBeep           = "BEEP"
)

// keySpec describes how a recognized key may be used.
type keySpec struct {
	settable  bool // accepts "KEY value"
	queryable bool // accepts "KEY?"
	bare      bool // accepts "KEY" with no value
}

var keySpecs = map[string]keySpec{
	KeyChannel:        {settable: true, queryable: true},
	KeyWave:           {settable: true},
	KeyFrequency:      {settable: true},
	KeyAmplitude:      {settable: true},
	KeyOffset:         {settable: true},
	KeyHighLevel:      {settable: true},
	KeyLowLevel:       {settable: true},
	KeyOutput:         {settable: true},
	KeyOutputLoad:     {settable: true},
	KeyPhase:          {settable: true},
	KeyAlign:          {bare: true},
	KeyPulseFrequency: {settable: true},
	KeyPulseWidth:     {settable: true},
	KeyPulseRise:      {settable: true},
	KeyPulseFall:      {settable: true},
	KeyPulseDelay:     {settable: true},
	KeyQueryError:     {queryable: true},
	KeyExecError:      {queryable: true},
	KeyClearStatus:    {bare: true},
	KeyReset:          {bare: true},
	KeySave:           {settable: true},
	KeyRecall:         {settable: true},
	KeyID:             {queryable: true},
	KeyOpComplete:     {queryable: true},
	KeyLocal:          {bare: true},
	KeyBeep:           {bare: true},
}

// command is the closed command variant for the TG5012A family.
type command struct {
	key   string
	kind  device.Kind
	value string
}

func (c *command) Name() string        { return c.key }
func (c *command) Kind() device.Kind   { return c.kind }
func (c *command) Arg() (string, bool) { return c.value, c.value != "" }

// QueryCmd builds a "KEY?" query. A trailing "?" on key is tolerated,
// so callers may pass either "CHN" or "CHN?".
func QueryCmd(key string) device.Command {
	return &command{key: normalizeKey(key), kind: device.KindQuery}
}

// SetCmd builds a "KEY value" setting write.
func SetCmd(key, value string) device.Command {
	return &command{key: normalizeKey(key), kind: device.KindSet, value: value}
}

// BareCmd builds a value-less command such as ALIGN, *RST or LOCAL.
func BareCmd(key string) device.Command {
	return &command{key: normalizeKey(key), kind: device.KindExecute}
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSuffix(strings.TrimSpace(key), "?"))
}

// checkValue enforces the numeric domains known at this layer.
func checkValue(key, value string) error {
	switch key {
	case KeyChannel:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > ChannelCount {
			return fmt.Errorf("%w: channel %q out of range [1, %d]", device.ErrValidation, value, ChannelCount)
		}
	case KeyPulseWidth:
		s, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: pulse width %q is not numeric", device.ErrValidation, value)
		}
		// The driven micro valves require trigger pulses of at least
		// MinPulseWidth; shorter settings are known-bad statically.
		if s < MinPulseWidth {
			return fmt.Errorf("%w: pulse width %ss below the %g s floor", device.ErrValidation, value, MinPulseWidth)
		}
	case KeySave, KeyRecall:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("%w: memory address %q is not numeric", device.ErrValidation, value)
		}
	}
	return nil
}
