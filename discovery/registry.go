package discovery

import (
	"github.com/sheetjet/sheetjet-go/device"
	"github.com/sheetjet/sheetjet-go/mxii"
	"github.com/sheetjet/sheetjet-go/tg5012a"
	"github.com/sheetjet/sheetjet-go/vcmini"
)

// codecs is the process-wide table mapping each instrument family to
// its codec. It is built once and never mutated at runtime.
var codecs = map[device.Identity]device.Codec{
	device.VCMini:  vcmini.Codec{},
	device.MXII:    mxii.Codec{},
	device.TG5012A: tg5012a.Codec{},
}

// Codec returns the codec registered for id.
func Codec(id device.Identity) (device.Codec, bool) {
	c, ok := codecs[id]
	return c, ok
}
