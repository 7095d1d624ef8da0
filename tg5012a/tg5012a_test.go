package tg5012a

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetjet/sheetjet-go/device"
	"github.com/sheetjet/sheetjet-go/serial"
)

// fakeGenerator records writes and serves scripted newline-terminated
// replies for the queries among them.
type fakeGenerator struct {
	writes  [][]byte
	replies []string
}

func (f *fakeGenerator) Name() string { return "COM5" }

func (f *fakeGenerator) Write(p []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeGenerator) ReadUntil(term byte, timeout time.Duration) ([]byte, error) {
	if len(f.replies) == 0 {
		return nil, fmt.Errorf("no reply: %w", serial.ErrReadTimeout)
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return []byte(reply), nil
}

func (f *fakeGenerator) Close() error { return nil }

func newTestSession(t *testing.T, fg *fakeGenerator) *Session {
	t.Helper()

	s, err := NewSession(fg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func writtenLines(fg *fakeGenerator) []string {
	lines := make([]string, len(fg.writes))
	for i, w := range fg.writes {
		lines[i] = string(w)
	}
	return lines
}

func TestCodec_Encode(t *testing.T) {
	data, err := Codec{}.Encode(QueryCmd("CHN"))
	require.NoError(t, err)
	assert.Equal(t, []byte("CHN?\n"), data)

	// A trailing "?" on the key is tolerated.
	data, err = Codec{}.Encode(QueryCmd("CHN?"))
	require.NoError(t, err)
	assert.Equal(t, []byte("CHN?\n"), data)

	data, err = Codec{}.Encode(SetCmd("WAVE", "PULSE"))
	require.NoError(t, err)
	assert.Equal(t, []byte("WAVE PULSE\n"), data)

	data, err = Codec{}.Encode(BareCmd("*RST"))
	require.NoError(t, err)
	assert.Equal(t, []byte("*RST\n"), data)
}

func TestCodec_UnrecognizedKey(t *testing.T) {
	_, err := Codec{}.Encode(SetCmd("BOGUS", "1"))
	require.ErrorIs(t, err, device.ErrValidation)

	_, err = Codec{}.Encode(QueryCmd("FRORBLE"))
	require.ErrorIs(t, err, device.ErrValidation)
}

func TestCodec_KeyUsageValidation(t *testing.T) {
	// WAVE is settable but not queryable.
	_, err := Codec{}.Encode(QueryCmd("WAVE"))
	require.ErrorIs(t, err, device.ErrValidation)

	// ALIGN takes no value.
	_, err = Codec{}.Encode(SetCmd("ALIGN", "1"))
	require.ErrorIs(t, err, device.ErrValidation)
}

func TestCodec_PulseWidthFloor(t *testing.T) {
	// The driven micro valves need pulses of at least 10 µs.
	_, err := Codec{}.Encode(SetCmd("PULSWID", "1e-6"))
	require.ErrorIs(t, err, device.ErrValidation)

	_, err = Codec{}.Encode(SetCmd("PULSWID", "0.0001"))
	require.NoError(t, err)
}

func TestCodec_ChannelRange(t *testing.T) {
	for _, ch := range []string{"0", "3", "x"} {
		_, err := Codec{}.Encode(SetCmd("CHN", ch))
		assert.ErrorIs(t, err, device.ErrValidation, "channel %q", ch)
	}
}

func TestCodec_MatchSignature(t *testing.T) {
	assert.True(t, Codec{}.MatchSignature([]byte("THURLBY THANDAR, TG5012A, 527758, 1.08-2.02\n")))
	assert.False(t, Codec{}.MatchSignature([]byte("3\r")))
	assert.False(t, Codec{}.MatchSignature([]byte(".=0M8\r\n\r>")))
}

func TestSession_ChannelScenario(t *testing.T) {
	// set CHN 2, query CHN -> 2; set CHN 1, query CHN -> 1.
	fg := &fakeGenerator{replies: []string{"2\n", "2\n", "1\n", "1\n"}}
	s := newTestSession(t, fg)

	require.NoError(t, s.Set("CHN", "2"))
	got, err := s.Query("CHN?")
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	require.NoError(t, s.Set("CHN", "1"))
	got, err = s.Query("CHN?")
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	assert.Equal(t, []string{
		"CHN 2\n", "CHN?\n", "LOCAL\n",
		"CHN?\n", "LOCAL\n",
		"CHN 1\n", "CHN?\n", "LOCAL\n",
		"CHN?\n", "LOCAL\n",
	}, writtenLines(fg))
}

func TestSession_SetChannelUnconfirmed(t *testing.T) {
	// The instrument reports channel 1 after a request for channel 2.
	fg := &fakeGenerator{replies: []string{"1\n"}}
	s := newTestSession(t, fg)

	err := s.SetChannel(2)
	require.ErrorIs(t, err, device.ErrUnconfirmedSet)
}

func TestSession_WriteOnlySet(t *testing.T) {
	// FREQ is not queryable; the set is write-only plus auto-LOCAL.
	fg := &fakeGenerator{}
	s := newTestSession(t, fg)

	require.NoError(t, s.SetFrequency(1000))
	assert.Equal(t, []string{"FREQ 1000\n", "LOCAL\n"}, writtenLines(fg))
}

func TestSession_AutoLocalDisabled(t *testing.T) {
	fg := &fakeGenerator{}
	s := newTestSession(t, fg)
	s.SetAutoLocal(false)

	require.NoError(t, s.SetFrequency(1000))
	assert.Equal(t, []string{"FREQ 1000\n"}, writtenLines(fg))
}

func TestSession_ValidationWritesNothing(t *testing.T) {
	fg := &fakeGenerator{}
	s := newTestSession(t, fg)

	err := s.Set("NOT_A_KEY", "1")
	require.ErrorIs(t, err, device.ErrValidation)
	assert.Empty(t, fg.writes)

	err = s.SetPulseWidth(1e-6)
	require.ErrorIs(t, err, device.ErrValidation)
	assert.Empty(t, fg.writes)
}

func TestSession_QueryTimeout(t *testing.T) {
	fg := &fakeGenerator{} // withholds every reply
	s := newTestSession(t, fg)

	_, err := s.Query("CHN")
	require.ErrorIs(t, err, device.ErrCommunicationTimeout)
}

func TestSession_ID(t *testing.T) {
	fg := &fakeGenerator{replies: []string{"THURLBY THANDAR, TG5012A, 527758, 1.08-2.02\n"}}
	s := newTestSession(t, fg)

	id, err := s.ID()
	require.NoError(t, err)
	assert.Contains(t, id, "TG5012A")
}

func TestSession_Pulse(t *testing.T) {
	fg := &fakeGenerator{}
	s := newTestSession(t, fg)
	s.SetAutoLocal(false)

	require.NoError(t, s.Pulse(DefaultPulseConfig()))

	lines := writtenLines(fg)
	require.Len(t, lines, 10)
	assert.Equal(t, "WAVE PULSE\n", lines[0])
	assert.Contains(t, lines, "PULSWID 0.1\n")
	assert.Contains(t, lines, "OUTPUT ON\n")
}
