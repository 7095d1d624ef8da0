package vcmini

import (
	"strconv"

	"github.com/sheetjet/sheetjet-go/device"
)

// Param tags a queryable/settable VC Mini parameter.
type Param int

const (
	// PeakTime is the peak current time initiating valve opening, in µs
	// (manual parameter A/a).
	PeakTime Param = iota

	// OpenTime is the valve open time in µs (B/b).
	OpenTime

	// CycleTime is the firing period in µs (C/c).
	CycleTime

	// PeakCurrent is the peak current code D (actual current is
	// 450mA + D*50mA; the manual recommends 11, i.e. 1A).
	PeakCurrent

	// NumShots is the number of shots fired per series; 0 means
	// infinite (G/g).
	NumShots

	// Address is the module address (*/=). Querying it also returns the
	// module type suffix.
	Address

	// ParamPosition is the active EEPROM parameter-set position (N/p,
	// load via n).
	ParamPosition
)

// paramSpec describes one parameter's wire letters and legal range.
type paramSpec struct {
	name        string
	queryLetter byte
	setLetter   byte
	min, max    int
	overridable bool // range check can be bypassed per the manual
}

var paramSpecs = map[Param]paramSpec{
	PeakTime:      {name: "peak_time", queryLetter: 'a', setLetter: 'A', min: 100, max: 500, overridable: true},
	OpenTime:      {name: "open_time", queryLetter: 'b', setLetter: 'B', min: 400, max: 9999999, overridable: true},
	CycleTime:     {name: "cycle_time", queryLetter: 'c', setLetter: 'C', min: 10, max: 9999999},
	PeakCurrent:   {name: "peak_current", queryLetter: 'd', setLetter: 'D', min: 0, max: 15},
	NumShots:      {name: "num_shots", queryLetter: 'g', setLetter: 'G', min: 0, max: 65535},
	Address:       {name: "address", queryLetter: '=', setLetter: '*', min: 0, max: 9},
	ParamPosition: {name: "param_position", queryLetter: 'p', setLetter: 'N', min: 0, max: 7},
}

// String returns the parameter's logical name.
func (p Param) String() string {
	if spec, ok := paramSpecs[p]; ok {
		return spec.name
	}
	return "invalid"
}

// TriggerMode arms or disarms the external hardware trigger.
type TriggerMode byte

const (
	// TriggerSingle arms a single shot on V1 and V2 per hardware trigger edge.
	TriggerSingle TriggerMode = 'X'
	// TriggerPulse arms a single shot whose opening time follows the
	// external trigger pulse length.
	TriggerPulse TriggerMode = 'T'
	// TriggerSeries arms a shot series per hardware trigger edge.
	TriggerSeries TriggerMode = 'P'
	// TriggerPulseSeries arms a shot series running while the external
	// trigger stays high.
	TriggerPulseSeries TriggerMode = 'L'
	// TriggerStop exits external trigger mode and disarms all triggers.
	// While any other mode is active the module accepts no other command.
	TriggerStop TriggerMode = 'S'
)

// FireMode opens the valves via software trigger. The command delay
// until the first shot is roughly 2 ms; time-critical work should use
// the hardware trigger instead.
type FireMode byte

const (
	// FireV1 fires a single shot of valve V1.
	FireV1 FireMode = 'Y'
	// FireV2 fires a single shot of valve V2.
	FireV2 FireMode = 'Z'
	// FireBoth fires both valves simultaneously.
	FireBoth FireMode = 'V'
	// FireSeriesV1 fires a series on V1 until NumShots is reached.
	FireSeriesV1 FireMode = 'Q'
	// FireSeriesV2 fires a series on V2 until NumShots is reached.
	FireSeriesV2 FireMode = 'R'
	// FireForever fires both valves until FireStop is issued.
	FireForever FireMode = 'U'
	// FireStop stops any running series.
	FireStop FireMode = 'S'
)

// Counter query letters per valve.
const (
	statusLetter = 'q'

	shotCounterV1 = 'y'
	shotCounterV2 = 'z'

	totalCounterV1High = 'u'
	totalCounterV1Low  = 'v'
	totalCounterV2High = 'w'
	totalCounterV2Low  = 'x'

	zeroCounterV1 = 'I'
	zeroCounterV2 = 'J'

	loadParamsLetter = 'n'
)

// command is the closed command variant for the VC Mini family. Only
// the constructors below produce instances, so every command reaching
// the codec names a known letter.
type command struct {
	name     string
	kind     device.Kind
	letter   byte
	value    int
	hasValue bool

	// unchecked bypasses the range check for overridable parameters.
	unchecked bool
}

func (c *command) Name() string      { return c.name }
func (c *command) Kind() device.Kind { return c.kind }
func (c *command) Arg() (string, bool) {
	if !c.hasValue {
		return "", false
	}
	return strconv.Itoa(c.value), true
}

// Query builds a pure read of p.
func Query(p Param) device.Command {
	spec := paramSpecs[p]
	return &command{name: spec.name, kind: device.KindQuery, letter: spec.queryLetter}
}

// Set builds a write of p, range-checked at encode time.
func Set(p Param, value int) device.Command {
	spec := paramSpecs[p]
	return &command{name: spec.name, kind: device.KindSet, letter: spec.setLetter, value: value, hasValue: true}
}

// SetUnchecked builds a write of p bypassing the range check, for the
// parameters the manual marks overridable (peak time, open time).
func SetUnchecked(p Param, value int) device.Command {
	spec := paramSpecs[p]
	return &command{name: spec.name, kind: device.KindSet, letter: spec.setLetter, value: value, hasValue: true, unchecked: true}
}

// LoadParams builds the query-form command loading the parameter set at
// the given EEPROM position (letter n).
func LoadParams(position int) device.Command {
	return &command{name: "load_params", kind: device.KindQuery, letter: loadParamsLetter, value: position, hasValue: true}
}

// Trigger builds the execute command arming the given trigger mode.
func Trigger(mode TriggerMode) device.Command {
	return &command{name: "trigger_mode", kind: device.KindExecute, letter: byte(mode)}
}

// Fire builds the software-trigger execute command.
func Fire(mode FireMode) device.Command {
	return &command{name: "fire", kind: device.KindExecute, letter: byte(mode)}
}

// Status builds the valve status query (letter q).
func Status() device.Command {
	return &command{name: "valve_status", kind: device.KindQuery, letter: statusLetter}
}

// ShotCounter builds the volatile shot counter query for valve 0 or 1.
// Any other valve number fails with ErrValidation at encode time.
func ShotCounter(valve int) device.Command {
	return &command{name: "shot_counter", kind: device.KindQuery, letter: valveLetter(valve, shotCounterV1, shotCounterV2)}
}

// ZeroShotCounter builds the counter reset execute for valve 0 or 1.
func ZeroShotCounter(valve int) device.Command {
	return &command{name: "zero_shot_counter", kind: device.KindExecute, letter: valveLetter(valve, zeroCounterV1, zeroCounterV2)}
}

// valveLetter selects the per-valve command letter, or 0 for an invalid
// valve number so the codec rejects the command before any write.
func valveLetter(valve int, v1, v2 byte) byte {
	switch valve {
	case 0:
		return v1
	case 1:
		return v2
	default:
		return 0
	}
}

// totalCounter builds one half of the non-volatile total counter query.
func totalCounter(letter byte) device.Command {
	return &command{name: "total_shot_counter", kind: device.KindQuery, letter: letter}
}
