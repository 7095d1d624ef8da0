package vcmini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetjet/sheetjet-go/device"
)

func TestCodec_EncodeQuery(t *testing.T) {
	data, err := Codec{}.Encode(Query(PeakTime))
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)

	data, err = Codec{}.Encode(Query(Address))
	require.NoError(t, err)
	assert.Equal(t, []byte("="), data)
}

func TestCodec_EncodeSet(t *testing.T) {
	data, err := Codec{}.Encode(Set(PeakTime, 150))
	require.NoError(t, err)
	assert.Equal(t, []byte("150A"), data)

	data, err = Codec{}.Encode(Set(Address, 3))
	require.NoError(t, err)
	assert.Equal(t, []byte("3*"), data)
}

func TestCodec_EncodeExecute(t *testing.T) {
	data, err := Codec{}.Encode(Fire(FireV1))
	require.NoError(t, err)
	assert.Equal(t, []byte("Y"), data)

	data, err = Codec{}.Encode(Trigger(TriggerStop))
	require.NoError(t, err)
	assert.Equal(t, []byte("S"), data)
}

func TestCodec_EncodeRangeValidation(t *testing.T) {
	cases := []struct {
		name string
		cmd  device.Command
	}{
		{"peak time low", Set(PeakTime, 50)},
		{"peak time high", Set(PeakTime, 501)},
		{"open time low", Set(OpenTime, 100)},
		{"cycle time low", Set(CycleTime, 5)},
		{"peak current high", Set(PeakCurrent, 16)},
		{"num shots high", Set(NumShots, 70000)},
		{"address high", Set(Address, 10)},
		{"param position high", Set(ParamPosition, 8)},
		{"load position high", LoadParams(9)},
		{"invalid valve", ShotCounter(2)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Codec{}.Encode(tc.cmd)
			assert.ErrorIs(t, err, device.ErrValidation)
		})
	}
}

func TestCodec_EncodeUncheckedBypassesLimits(t *testing.T) {
	data, err := Codec{}.Encode(SetUnchecked(PeakTime, 50))
	require.NoError(t, err)
	assert.Equal(t, []byte("50A"), data)
}

func TestCodec_DecodeQuery(t *testing.T) {
	resp, err := Codec{}.Decode(Query(PeakTime), []byte(".a150\r\n\r>"))
	require.NoError(t, err)
	assert.Equal(t, "150", resp.Value)
}

func TestCodec_DecodeAddressQuery(t *testing.T) {
	// The address reply carries the address and the module type.
	resp, err := Codec{}.Decode(Query(Address), []byte(".=0M8\r\n\r>"))
	require.NoError(t, err)
	assert.Equal(t, "0M8", resp.Value)
}

func TestCodec_DecodeSetEcho(t *testing.T) {
	resp, err := Codec{}.Decode(Set(PeakTime, 150), []byte("150A\r\n\r>"))
	require.NoError(t, err)
	assert.Equal(t, "150", resp.Value)

	// The controller may settle to a different value; decode reports
	// what it echoed and leaves confirmation to the session.
	resp, err = Codec{}.Decode(Set(Address, 1), []byte("2*\r\n\r>"))
	require.NoError(t, err)
	assert.Equal(t, "2", resp.Value)
}

func TestCodec_DecodeExecute(t *testing.T) {
	_, err := Codec{}.Decode(Fire(FireV1), []byte("Y\r\n\r>"))
	require.NoError(t, err)

	_, err = Codec{}.Decode(Fire(FireV1), []byte("Z\r\n\r>"))
	require.ErrorIs(t, err, device.ErrDecode)
}

func TestCodec_DecodeLoadParams(t *testing.T) {
	resp, err := Codec{}.Decode(LoadParams(3), []byte("3.n\r\n\r>"))
	require.NoError(t, err)
	assert.Equal(t, "3", resp.Value)
}

func TestCodec_DecodeBusy(t *testing.T) {
	_, err := Codec{}.Decode(Fire(FireV1), []byte("?\r\n\r>"))
	require.ErrorIs(t, err, device.ErrBusy)
}

func TestCodec_DecodeMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing prompt", ".a150\r\n"},
		{"wrong echo", ".b150\r\n\r>"},
		{"non numeric set echo", "xyzA\r\n\r>"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := Query(PeakTime)
			if tc.name == "non numeric set echo" {
				cmd = Set(PeakTime, 150)
			}
			_, err := Codec{}.Decode(cmd, []byte(tc.raw))
			assert.ErrorIs(t, err, device.ErrDecode)
		})
	}
}

func TestCodec_MatchSignature(t *testing.T) {
	assert.True(t, Codec{}.MatchSignature([]byte(".=0M8\r\n\r>")))
	assert.False(t, Codec{}.MatchSignature([]byte("3\r")))
	assert.False(t, Codec{}.MatchSignature([]byte("THURLBY THANDAR, TG5012A\n")))
}

func TestCodec_Identity(t *testing.T) {
	assert.Equal(t, device.VCMini, Codec{}.Identity())
	assert.Equal(t, BaudRate, Codec{}.Baud())
	assert.Equal(t, byte('>'), Codec{}.Terminator())
}
