package vcmini

import (
	"fmt"
	"strconv"

	"github.com/sheetjet/sheetjet-go/device"
	"github.com/sheetjet/sheetjet-go/serial"
)

// Parameters is one set of valve control parameters, as stored in the
// controller's RAM. The defaults mirror the manual's factory values.
type Parameters struct {
	// PeakTime is the peak current time in µs (A).
	PeakTime int
	// OpenTime is the valve open time in µs (B).
	OpenTime int
	// CycleTime is the firing period in µs (C).
	CycleTime int
	// PeakCurrent is the peak current code (D); 11 means 1 A.
	PeakCurrent int
	// NumShots is the series length (G); 0 means infinite.
	NumShots int
}

// DefaultParameters returns the factory parameter values.
func DefaultParameters() Parameters {
	return Parameters{
		PeakTime:    150,
		OpenTime:    100000,
		CycleTime:   1000000,
		PeakCurrent: 11,
		NumShots:    1,
	}
}

// Session drives one VC Mini valve controller.
type Session struct {
	dev *device.Session
}

// Open opens the named serial port at the VC Mini line settings and
// binds a session to it. It then selects module address 0 and parameter
// set 0, matching the controller's documented startup sequence; failures
// there close the port and fail Open.
func Open(portName string, opts ...device.Option) (*Session, error) {
	port, err := serial.Open(portName, serial.Config{BaudRate: BaudRate})
	if err != nil {
		return nil, err
	}

	s, err := NewSession(port, opts...)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	if _, err := s.SetAddress(0); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.LoadParameters(0); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// NewSession binds a session to an already-open transport. The caller
// supplies the transport when port assignment is known without
// discovery.
func NewSession(t device.Transport, opts ...device.Option) (*Session, error) {
	dev, err := device.NewSession(t, Codec{}, opts...)
	if err != nil {
		return nil, err
	}
	return &Session{dev: dev}, nil
}

// Close closes the session and its transport.
func (s *Session) Close() error { return s.dev.Close() }

// ID returns the module address and module type reported by the
// controller, e.g. (0, "M8").
func (s *Session) ID() (int, string, error) {
	return s.Address()
}

// Query reads the current value of p.
func (s *Session) Query(p Param) (int, error) {
	resp, err := s.dev.Query(Query(p))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(resp.Value)
}

// Set writes p and confirms the controller's echo, returning the value
// the controller settled to.
func (s *Session) Set(p Param, value int) (int, error) {
	resp, err := s.dev.Set(Set(p, value))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(resp.Value)
}

// SetUnchecked writes p bypassing the range check, for overridable
// parameters.
func (s *Session) SetUnchecked(p Param, value int) (int, error) {
	resp, err := s.dev.Set(SetUnchecked(p, value))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(resp.Value)
}

// Address queries the module address and module type.
func (s *Session) Address() (int, string, error) {
	resp, err := s.dev.Query(Query(Address))
	if err != nil {
		return 0, "", err
	}
	if resp.Value == "" {
		return 0, "", fmt.Errorf("%w: empty address reply", device.ErrDecode)
	}
	addr, err := strconv.Atoi(resp.Value[:1])
	if err != nil {
		return 0, "", fmt.Errorf("%w: address %q is not numeric", device.ErrDecode, resp.Value)
	}
	return addr, resp.Value[1:], nil
}

// SetAddress sets the module address (0-9) with echo confirmation.
func (s *Session) SetAddress(addr int) (int, error) {
	return s.Set(Address, addr)
}

// PeakTime queries the peak current time in µs.
func (s *Session) PeakTime() (int, error) { return s.Query(PeakTime) }

// SetPeakTime sets the peak current time in µs (100-500).
func (s *Session) SetPeakTime(us int) (int, error) { return s.Set(PeakTime, us) }

// OpenTime queries the valve open time in µs.
func (s *Session) OpenTime() (int, error) { return s.Query(OpenTime) }

// SetOpenTime sets the valve open time in µs (400-9999999).
func (s *Session) SetOpenTime(us int) (int, error) { return s.Set(OpenTime, us) }

// CycleTime queries the firing period in µs.
func (s *Session) CycleTime() (int, error) { return s.Query(CycleTime) }

// SetCycleTime sets the firing period in µs (10-9999999).
func (s *Session) SetCycleTime(us int) (int, error) { return s.Set(CycleTime, us) }

// PeakCurrent queries the peak current code.
func (s *Session) PeakCurrent() (int, error) { return s.Query(PeakCurrent) }

// SetPeakCurrent sets the peak current code (0-15). The manual
// recommends keeping it at 11 (1 A).
func (s *Session) SetPeakCurrent(code int) (int, error) { return s.Set(PeakCurrent, code) }

// NumShots queries the series length.
func (s *Session) NumShots() (int, error) { return s.Query(NumShots) }

// SetNumShots sets the series length (0-65535, 0 = infinite).
func (s *Session) SetNumShots(n int) (int, error) { return s.Set(NumShots, n) }

// Parameters reads the full RAM parameter set from the controller.
func (s *Session) Parameters() (Parameters, error) {
	var p Parameters
	var err error

	if p.PeakTime, err = s.PeakTime(); err != nil {
		return p, err
	}
	if p.OpenTime, err = s.OpenTime(); err != nil {
		return p, err
	}
	if p.CycleTime, err = s.CycleTime(); err != nil {
		return p, err
	}
	if p.PeakCurrent, err = s.PeakCurrent(); err != nil {
		return p, err
	}
	p.NumShots, err = s.NumShots()

	return p, err
}

// ValveStatus reports whether valves V1 and V2 are active.
func (s *Session) ValveStatus() (v1, v2 bool, err error) {
	resp, err := s.dev.Query(Status())
	if err != nil {
		return false, false, err
	}
	v, err := strconv.Atoi(resp.Value)
	if err != nil {
		return false, false, fmt.Errorf("%w: status %q is not numeric", device.ErrDecode, resp.Value)
	}
	return v&0x10 != 0, v&0x01 != 0, nil
}

// ShotCounter reads the volatile shot counter of valve 0 or 1.
// The counter resets to 0 at power-on.
func (s *Session) ShotCounter(valve int) (int, error) {
	resp, err := s.dev.Query(ShotCounter(valve))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(resp.Value)
}

// ZeroShotCounter resets the volatile shot counter of valve 0 or 1.
func (s *Session) ZeroShotCounter(valve int) error {
	return s.dev.Execute(ZeroShotCounter(valve))
}

// TotalShotCounter reads the non-volatile total counter of valve 0 or
// 1, combining the high and low words.
func (s *Session) TotalShotCounter(valve int) (int64, error) {
	var highLetter, lowLetter byte
	switch valve {
	case 0:
		highLetter, lowLetter = totalCounterV1High, totalCounterV1Low
	case 1:
		highLetter, lowLetter = totalCounterV2High, totalCounterV2Low
	default:
		return 0, fmt.Errorf("%w: valve %d is not 0 or 1", device.ErrValidation, valve)
	}

	high, err := s.queryInt(totalCounter(highLetter))
	if err != nil {
		return 0, err
	}
	low, err := s.queryInt(totalCounter(lowLetter))
	if err != nil {
		return 0, err
	}

	return int64(high)<<24 | int64(low), nil
}

// TriggerMode arms or disarms the external hardware trigger. While a
// trigger mode is active only Trigger(TriggerStop) is accepted; other
// commands fail with device.ErrBusy.
func (s *Session) TriggerMode(mode TriggerMode) error {
	return s.dev.Execute(Trigger(mode))
}

// Fire opens the valves via software trigger according to mode.
func (s *Session) Fire(mode FireMode) error {
	return s.dev.Execute(Fire(mode))
}

// LoadParameters loads the parameter set stored at the given EEPROM
// position (0-7) into RAM.
func (s *Session) LoadParameters(position int) error {
	_, err := s.dev.Exchange(LoadParams(position))
	return err
}

// SaveParameters stores the active RAM parameters at the given EEPROM
// position (0-7).
func (s *Session) SaveParameters(position int) error {
	_, err := s.dev.Set(Set(ParamPosition, position))
	return err
}

// ParamPosition queries the active parameter-set position.
func (s *Session) ParamPosition() (int, error) { return s.Query(ParamPosition) }

func (s *Session) queryInt(cmd device.Command) (int, error) {
	resp, err := s.dev.Query(cmd)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(resp.Value)
}
