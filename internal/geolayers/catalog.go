// Package geolayers serves the static GeoJSON layers and the zone and report
// feature collections drawn on the dashboard map.
package geolayers

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/paulmach/orb/geojson"
)

// ErrLayerNotFound is returned for a layer name with no file behind it.
var ErrLayerNotFound = errors.New("layer not found")

const (
	layerExt      = ".geojson"
	geoPackageExt = ".gpkg"
)

// Catalog loads every *.geojson file in a directory once, on first use.
// Files that fail to parse are logged and skipped. GeoPackage files are not
// read; convert them first, e.g. ogr2ogr -f GeoJSON danubio.geojson danubio.gpkg.
type Catalog struct {
	dir    string
	logger *slog.Logger

	once   sync.Once
	layers map[string]*geojson.FeatureCollection
}

// NewCatalog returns a catalog over dir. The directory is not read until a
// layer is requested.
func NewCatalog(dir string, logger *slog.Logger) *Catalog {
	return &Catalog{dir: dir, logger: logger}
}

// Layers returns every loaded layer keyed by file name without extension.
func (c *Catalog) Layers() map[string]*geojson.FeatureCollection {
	c.once.Do(c.load)
	return c.layers
}

// Names lists the loaded layer names in sorted order.
func (c *Catalog) Names() []string {
	layers := c.Layers()
	names := make([]string, 0, len(layers))
	for name := range layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Layer returns one layer by name.
func (c *Catalog) Layer(name string) (*geojson.FeatureCollection, error) {
	fc, ok := c.Layers()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, name)
	}
	return fc, nil
}

func (c *Catalog) load() {
	c.layers = make(map[string]*geojson.FeatureCollection)

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("read layers dir failed", "dir", c.dir, "error", err)
		}
		return
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if strings.EqualFold(ext, geoPackageExt) {
			c.logger.Warn("geopackage layers are not supported, convert to geojson",
				"path", filepath.Join(c.dir, e.Name()))
			continue
		}
		if !strings.EqualFold(ext, layerExt) {
			continue
		}
		path := filepath.Join(c.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			c.logger.Warn("read layer failed", "path", path, "error", err)
			continue
		}
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			c.logger.Warn("parse layer failed", "path", path, "error", err)
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		c.layers[name] = fc
	}
	c.logger.Info("geo layers loaded", "dir", c.dir, "count", len(c.layers))
}
