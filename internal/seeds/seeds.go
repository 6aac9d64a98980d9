// Package seeds holds the static data the service boots from: the
// geographic health catalog, the initial resource ledger and the
// historical anomaly catalog.
package seeds

import (
	_ "embed"
)

//go:embed data/catalog.yaml
var catalogYAML []byte

//go:embed data/resources.yaml
var resourcesYAML []byte

//go:embed data/anomalies.yaml
var anomaliesYAML []byte

// Catalog returns the embedded state/district catalog.
func Catalog() []byte { return clone(catalogYAML) }

// Resources returns the embedded resource ledger seed.
func Resources() []byte { return clone(resourcesYAML) }

// Anomalies returns the embedded anomaly catalog.
func Anomalies() []byte { return clone(anomaliesYAML) }

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
