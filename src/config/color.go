package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Color is an 8-bit non-premultiplied RGBA color. In JSON it is written as
// [r, g, b, a] and read from [r, g, b], [r, g, b, a] or a color string
// ("#rrggbb", "#aarrggbb", "red").
type Color struct {
	R, G, B, A uint8
}

func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// NRGBA converts to the image/color type used by the renderer.
func (c Color) NRGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// WithAlphaScale returns c with its alpha multiplied by scale (clamped to [0,1]).
func (c Color) WithAlphaScale(scale float64) Color {
	if scale <= 0 {
		c.A = 0
		return c
	}
	if scale >= 1 {
		return c
	}
	c.A = uint8(float64(c.A) * scale)
	return c
}

// Hex formats the color as #aarrggbb, alpha first like Qt.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([]int{int(c.R), int(c.G), int(c.B), int(c.A)})
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseColor(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts a decoded JSON value: a 3 or 4 element number array or a
// color string.
func ParseColor(v any) (Color, error) {
	switch val := v.(type) {
	case string:
		return parseColorString(val)
	case []any:
		if len(val) != 3 && len(val) != 4 {
			return Color{}, fmt.Errorf("color sequence must have 3 or 4 components, got %d", len(val))
		}
		comps := [4]uint8{0, 0, 0, 255}
		for i, item := range val {
			n, ok := item.(float64)
			if !ok {
				return Color{}, fmt.Errorf("color component %d is not a number: %v", i, item)
			}
			comps[i] = clampByte(n)
		}
		return Color{R: comps[0], G: comps[1], B: comps[2], A: comps[3]}, nil
	}
	return Color{}, fmt.Errorf("unsupported color specification: %v", v)
}

// parseColorString reads the string forms Qt accepts: #rgb, #rrggbb,
// #aarrggbb (alpha first), #rrrgggbbb, #rrrrggggbbbb, "transparent" and SVG
// color names such as "red" or "light blue".
func parseColorString(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s)
	}
	name := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	if name == "transparent" {
		return Color{}, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return Color{R: c.R, G: c.G, B: c.B, A: 255}, nil
	}
	return Color{}, fmt.Errorf("invalid color string: %s", s)
}

func parseHexColor(s string) (Color, error) {
	digits := s[1:]
	if _, err := strconv.ParseUint(digits, 16, 64); err != nil {
		return Color{}, fmt.Errorf("invalid color string: %s", s)
	}
	switch len(digits) {
	case 3, 6:
		c, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color string: %s", s)
		}
		r, g, b := c.RGB255()
		return Color{R: r, G: g, B: b, A: 255}, nil
	case 8:
		a, _ := strconv.ParseUint(digits[:2], 16, 8)
		c, err := colorful.Hex("#" + digits[2:])
		if err != nil {
			return Color{}, fmt.Errorf("invalid color string: %s", s)
		}
		r, g, b := c.RGB255()
		return Color{R: r, G: g, B: b, A: uint8(a)}, nil
	case 9, 12:
		// 12 or 16 bits per channel, keep the high byte.
		width := len(digits) / 3
		var comps [3]uint8
		for i := range comps {
			v, _ := strconv.ParseUint(digits[i*width:(i+1)*width], 16, 16)
			comps[i] = uint8(v >> (4*width - 8))
		}
		return Color{R: comps[0], G: comps[1], B: comps[2], A: 255}, nil
	}
	return Color{}, fmt.Errorf("invalid color string: %s", s)
}

func clampByte(n float64) uint8 {
	n = math.Trunc(n)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
