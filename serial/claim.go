package serial

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// claims tracks which port names are open inside this process.
// It backs the one-owner-per-port invariant: Open claims, Close releases.
var claims = xsync.NewMapOf[string, struct{}]()

// claim records ownership of the named port.
// It reports false if the port is already claimed.
func claim(name string) bool {
	_, loaded := claims.LoadOrStore(name, struct{}{})
	return !loaded
}

// release drops the claim on the named port.
func release(name string) {
	claims.Delete(name)
}

// Claimed reports whether the named port is currently open in this process.
func Claimed(name string) bool {
	_, ok := claims.Load(name)
	return ok
}
