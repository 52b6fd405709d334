package photos

import (
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// readExif extracts GPS position, capture time and camera from an image
// file. Files without EXIF yield an empty result.
func readExif(path string) ExifData {
	var data ExifData

	f, err := os.Open(path)
	if err != nil {
		return data
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return data
	}
	return exifFrom(x)
}

func exifFrom(x *exif.Exif) ExifData {
	var data ExifData

	// LatLong applies the N/S and E/W reference signs.
	if lat, lon, err := x.LatLong(); err == nil && lat != 0 && lon != 0 {
		data.Latitude = &lat
		data.Longitude = &lon
	}
	if tag, err := x.Get(exif.DateTime); err == nil {
		if s, err := tag.StringVal(); err == nil {
			data.DateTime = strings.TrimSpace(s)
		}
	}
	data.Make = stringTag(x, exif.Make)
	data.Model = stringTag(x, exif.Model)
	return data
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(s), "\x00")
}
