package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe lengths and the page size presets. Layout
// arithmetic happens in points; renderers convert at their boundary.

// Unit represents the original unit of a length value as written by the user.
type Unit int

const (
	UnitNone Unit = iota // bare numbers, read as points
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 25.4 / 72.0
	MmToPt = 72.0 / 25.4
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPT converts the length to points. Unit-less values are already points.
func (l Length) ToPT() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value * MmToPt
	case UnitCM:
		return l.Value * 10 * MmToPt
	case UnitIN:
		return l.Value * 72
	default:
		return l.Value
	}
}

// ToMM converts the length to millimeters.
func (l Length) ToMM() float64 { return l.ToPT() * PtToMm }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseLength parses strings such as "36", "36pt", "0.5in", "12.7mm" or "1.27cm".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("empty length")
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

// pagePresets holds portrait sizes in points.
var pagePresets = map[string]PageSize{
	"A3":     {Width: 842, Height: 1191},
	"A4":     {Width: 595, Height: 842},
	"A5":     {Width: 420, Height: 595},
	"LETTER": {Width: 612, Height: 792},
	"LEGAL":  {Width: 612, Height: 1008},
}

// A4 is the default page size.
var A4 = pagePresets["A4"]

// ResolvePageSize looks up a named paper size; landscape swaps the sides.
func ResolvePageSize(name string, landscape bool) (PageSize, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		key = "A4"
	}
	size, ok := pagePresets[key]
	if !ok {
		return PageSize{}, fmt.Errorf("暂不支持的纸张尺寸：%s", name)
	}
	if landscape {
		size.Width, size.Height = size.Height, size.Width
	}
	return size, nil
}
