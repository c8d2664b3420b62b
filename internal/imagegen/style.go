package imagegen

import (
	"fmt"
	"strings"
)

// Style selects the keyword set appended to a scene description
type Style string

const (
	StyleRealistic Style = "realistic"
	StyleAnimated  Style = "animated"
	StyleAbstract  Style = "abstract"
	StyleCinematic Style = "cinematic"
)

var styleKeywords = map[Style]string{
	StyleRealistic: "highly detailed, photorealistic, 8k uhd, high quality",
	StyleAnimated:  "3D animation style, pixar style, vibrant colors, smooth textures",
	StyleAbstract:  "abstract art, geometric shapes, modern art style, minimalist",
	StyleCinematic: "cinematic lighting, movie scene, dramatic atmosphere, professional photography",
}

const (
	composition = "vertical composition, portrait orientation, centered composition"
	quality     = "masterpiece, best quality, highly detailed"
)

// Styles lists the supported styles in a stable order
func Styles() []Style {
	return []Style{StyleRealistic, StyleAnimated, StyleAbstract, StyleCinematic}
}

// ParseStyle resolves a style name
func ParseStyle(name string) (Style, error) {
	s := Style(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := styleKeywords[s]; !ok {
		return "", fmt.Errorf("unsupported style %q (supported: %v)", name, Styles())
	}
	return s, nil
}

// BuildPrompt expands a scene description into a full generation prompt
func BuildPrompt(description string, style Style) (string, error) {
	keywords, ok := styleKeywords[style]
	if !ok {
		return "", fmt.Errorf("unsupported style %q", style)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return "", fmt.Errorf("scene description is empty")
	}
	return strings.Join([]string{description, keywords, composition, quality}, ", "), nil
}
