package scene

import (
	"fmt"
	"strings"

	"github.com/keagan/beatreel/internal/effects"
)

// Theme selects which effect layers make up a background
type Theme string

const (
	ThemeAbstract  Theme = "abstract"
	ThemeRealistic Theme = "realistic"
	ThemeAnimated  Theme = "animated"
	ThemeCinematic Theme = "cinematic"
)

// Themes lists the supported themes in a stable order
func Themes() []Theme {
	return []Theme{ThemeAbstract, ThemeRealistic, ThemeAnimated, ThemeCinematic}
}

// ParseTheme resolves a theme name
func ParseTheme(name string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := themeLayers[t]; !ok {
		return "", fmt.Errorf("unknown theme %q (supported: %v)", name, Themes())
	}
	return t, nil
}

// layerKind is one stateless or stateful contribution to a frame
type layerKind int

const (
	layerParticles layerKind = iota
	layerCircles
	layerWaves
	layerFlare
	layerBokeh
)

// themeLayers lists layers in compositing order
var themeLayers = map[Theme][]layerKind{
	ThemeAbstract:  {layerParticles, layerCircles},
	ThemeRealistic: {layerBokeh, layerFlare},
	ThemeAnimated:  {layerParticles, layerWaves},
	ThemeCinematic: {layerBokeh},
}

// cinematicGrade is the look applied to the cinematic theme before the
// configured post chain
var cinematicGrade = effects.GradingParams{
	Contrast:   effects.Float(0.1),
	Brightness: effects.Float(-0.05),
	Saturation: effects.Float(0.8),
}

func (t Theme) grading() effects.GradingParams {
	if t == ThemeCinematic {
		return cinematicGrade
	}
	return effects.GradingParams{}
}

func (t Theme) usesParticles() bool {
	for _, l := range themeLayers[t] {
		if l == layerParticles {
			return true
		}
	}
	return false
}
