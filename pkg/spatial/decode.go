package spatial

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// Field matching is case-insensitive, like the capture tool's serializer.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

type vec3JSON struct {
	X, Y, Z float32
}

type vec4JSON struct {
	X, Y, Z, W float32
}

// surfaceJSON mirrors the dump layout. Pointers distinguish absent fields
// from empty ones.
type surfaceJSON struct {
	ID                jsoniter.RawMessage `json:"Id"`
	VertexData        *[]float32          `json:"VertexData"`
	IndexData         *[]int32            `json:"IndexData"`
	BoundsCenter      *vec3JSON           `json:"BoundsCenter"`
	BoundsOrientation *vec4JSON           `json:"BoundsOrientation"`
}

// ParseSurface decodes and validates a single surface object.
func ParseSurface(data []byte) (*SurfaceRecord, error) {
	var raw surfaceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	switch {
	case raw.VertexData == nil:
		return nil, fmt.Errorf("%w: VertexData", ErrMissingField)
	case raw.IndexData == nil:
		return nil, fmt.Errorf("%w: IndexData", ErrMissingField)
	case raw.BoundsCenter == nil:
		return nil, fmt.Errorf("%w: BoundsCenter", ErrMissingField)
	case raw.BoundsOrientation == nil:
		return nil, fmt.Errorf("%w: BoundsOrientation", ErrMissingField)
	}

	indices, err := convertIndices(*raw.IndexData)
	if err != nil {
		return nil, err
	}

	c, o := raw.BoundsCenter, raw.BoundsOrientation
	rec := &SurfaceRecord{
		ID:                decodeID(raw.ID),
		VertexData:        *raw.VertexData,
		IndexData:         indices,
		BoundsCenter:      math.Vec3{X: c.X, Y: c.Y, Z: c.Z},
		BoundsOrientation: math.Quat{X: o.X, Y: o.Y, Z: o.Z, W: o.W},
	}
	rec.Label = rec.ID

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// ParseDump decodes either a single surface object or a mapping of
// identifier to surface object. Entries are parsed independently: a broken
// entry produces an error for its key and does not affect the others.
// Records are returned sorted by key.
func ParseDump(data []byte) ([]*SurfaceRecord, []error) {
	records, errs, _ := parseDump(data)
	return records, errs
}

func parseDump(data []byte) (records []*SurfaceRecord, errs []error, single bool) {
	var entries map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("%w: %v", ErrInvalidJSON, err)}, false
	}

	if isSingleSurface(entries) {
		rec, err := ParseSurface(data)
		if err != nil {
			return nil, []error{err}, true
		}
		return []*SurfaceRecord{rec}, nil, true
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		rec, err := ParseSurface(entries[key])
		if err != nil {
			errs = append(errs, fmt.Errorf("surface %q: %w", key, err))
			continue
		}
		rec.Label = key
		if rec.ID == "" {
			rec.ID = key
		}
		records = append(records, rec)
	}
	return records, errs, false
}

// LoadFile reads and parses one dump file. A file holding a single surface
// is labelled with its file name minus extension.
func LoadFile(path string) ([]*SurfaceRecord, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("reading surface file: %w", err)}
	}

	records, errs, single := parseDump(data)
	base := filepath.Base(path)
	label := strings.TrimSuffix(base, filepath.Ext(base))

	for i, err := range errs {
		errs[i] = fmt.Errorf("%s: %w", base, err)
	}
	if single && len(records) == 1 {
		records[0].Label = label
	}
	return records, errs
}

// isSingleSurface reports whether the top-level object is itself a surface
// rather than a mapping of surfaces. A mapping holds objects; a top-level
// object with only scalar members is a surface missing its streams.
func isSingleSurface(entries map[string]jsoniter.RawMessage) bool {
	objects := 0
	for k, v := range entries {
		switch strings.ToLower(k) {
		case "id", "vertexdata", "indexdata", "boundscenter", "boundsorientation":
			return true
		}
		if isObject(v) {
			objects++
		}
	}
	return len(entries) > 0 && objects == 0
}

func isObject(raw jsoniter.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c == '{'
	}
	return false
}

// convertIndices maps the dump's index values to uint16. The capture tool
// writes indices as signed shorts, so negative values carry the upper half
// of the unsigned range.
func convertIndices(raw []int32) ([]uint16, error) {
	out := make([]uint16, len(raw))
	for i, v := range raw {
		if v < -32768 || v > 65535 {
			return nil, fmt.Errorf("%w: index[%d] = %d", ErrIndexRange, i, v)
		}
		if v < 0 {
			out[i] = uint16(int16(v))
		} else {
			out[i] = uint16(v)
		}
	}
	return out, nil
}

// decodeID accepts the identifier as a JSON string or any other scalar.
func decodeID(raw jsoniter.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
