package sites

import (
	"fmt"
	"math"
	"os"

	"howett.net/plist"
)

// ImportPlist loads site definitions from an Apple property list file (XML
// or binary) and upserts them into the catalog. The file holds an array of
// dictionaries with name, lat, lon and height_km keys. Returns the number
// of sites imported.
func (d *DB) ImportPlist(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("sites: read %s: %w", path, err)
	}
	var entries []Site
	if _, err := plist.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("sites: parse %s: %w", path, err)
	}
	imported := 0
	for i, s := range entries {
		if err := validate(s); err != nil {
			return imported, fmt.Errorf("sites: entry %d: %w", i, err)
		}
		if err := d.Upsert(s); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func validate(s Site) error {
	if s.Name == "" {
		return fmt.Errorf("missing name")
	}
	if math.Abs(s.Lat) > 90 {
		return fmt.Errorf("%s: latitude %v out of range", s.Name, s.Lat)
	}
	if s.Lon < -180 || s.Lon > 360 {
		return fmt.Errorf("%s: longitude %v out of range", s.Name, s.Lon)
	}
	return nil
}
