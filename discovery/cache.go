package discovery

import (
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/sheetjet/sheetjet-go/device"
	"github.com/sheetjet/sheetjet-go/logger"
)

// DefaultCacheFile is the conventional cache location, relative to the
// working directory. Caching is opt-in via WithCacheFile.
const DefaultCacheFile = "sheetjet.yaml"

// cacheFile is the on-disk format of persisted port assignments.
type cacheFile struct {
	// Devices maps instrument family name to port name.
	Devices map[string]string `yaml:"devices"`
}

// loadCache reads the cache at path and returns the entries whose port
// is still present in the live enumeration. A missing or unreadable
// cache is not an error; stale entries are dropped and re-probed.
func loadCache(path string, livePorts []string, log logger.Logger) map[device.Identity]string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("could not read discovery cache", "path", path, "error", err)
		}
		return nil
	}

	var cf cacheFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		log.Warn("could not parse discovery cache", "path", path, "error", err)
		return nil
	}

	valid := make(map[device.Identity]string)
	for _, id := range device.Identities() {
		port, ok := cf.Devices[id.String()]
		if !ok {
			continue
		}
		if !slices.Contains(livePorts, port) {
			log.Warn("cached port no longer present, re-probing",
				"identity", id, "port", port)
			continue
		}
		valid[id] = port
	}

	return valid
}

// saveCache persists the unambiguous assignments in result to path.
// Ambiguous identities are omitted; they must be resolved by the
// operator, not frozen into the cache.
func saveCache(path string, result Result, log logger.Logger) {
	cf := cacheFile{Devices: make(map[string]string)}
	for id, ports := range result.Matches {
		if len(ports) == 1 {
			cf.Devices[id.String()] = ports[0]
		}
	}
	if len(cf.Devices) == 0 {
		return
	}

	data, err := yaml.Marshal(&cf)
	if err != nil {
		log.Warn("could not encode discovery cache", "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn("could not write discovery cache", "path", path, "error", err)
	}
}
