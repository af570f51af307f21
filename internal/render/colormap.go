package render

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
)

// stop is one control point of a piecewise-linear color channel.
type stop struct{ at, v float64 }

type channels struct{ r, g, b []stop }

// Control points follow the matplotlib colormaps of the same names.
var colormaps = map[string]channels{
	"gray": {
		r: []stop{{0, 0}, {1, 1}},
		g: []stop{{0, 0}, {1, 1}},
		b: []stop{{0, 0}, {1, 1}},
	},
	"inverted": {
		r: []stop{{0, 1}, {1, 0}},
		g: []stop{{0, 1}, {1, 0}},
		b: []stop{{0, 1}, {1, 0}},
	},
	"bone": {
		r: []stop{{0, 0}, {0.746032, 0.652778}, {1, 1}},
		g: []stop{{0, 0}, {0.365079, 0.319444}, {0.746032, 0.777778}, {1, 1}},
		b: []stop{{0, 0}, {0.365079, 0.444444}, {1, 1}},
	},
	"hot": {
		r: []stop{{0, 0.0416}, {0.365079, 1}, {1, 1}},
		g: []stop{{0, 0}, {0.365079, 0}, {0.746032, 1}, {1, 1}},
		b: []stop{{0, 0}, {0.746032, 0}, {1, 1}},
	},
}

// Colormaps lists the known colormap names in sorted order.
func Colormaps() []string {
	names := make([]string, 0, len(colormaps))
	for name := range colormaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Palette returns the 256-entry palette of the named colormap. Entry i is the
// color of intensity i/255.
func Palette(name string) (color.Palette, error) {
	cm, ok := colormaps[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown colormap %q (valid: %s)", name, strings.Join(Colormaps(), ", "))
	}

	p := make(color.Palette, 256)
	for i := range p {
		t := float64(i) / 255
		p[i] = color.RGBA{
			R: channel(cm.r, t),
			G: channel(cm.g, t),
			B: channel(cm.b, t),
			A: 255,
		}
	}
	return p, nil
}

func channel(stops []stop, t float64) uint8 {
	v := stops[len(stops)-1].v
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].at {
			a, b := stops[i-1], stops[i]
			v = a.v + (b.v-a.v)*(t-a.at)/(b.at-a.at)
			break
		}
	}
	return uint8(v*255 + 0.5)
}
