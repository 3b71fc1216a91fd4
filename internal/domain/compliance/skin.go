package compliance

import "math"

// isSkinTone reports whether a pixel looks like skin. Three independent
// rules are combined with OR semantics: the rules disagree on edge
// colors and any single hit counts.
func isSkinTone(r, g, b uint8) bool {
	return skinRGB(r, g, b) || skinYCbCr(r, g, b) || skinHSV(r, g, b)
}

// skinRGB is the classic plain-RGB rule for light to medium skin.
func skinRGB(r, g, b uint8) bool {
	rf, gf, bf := int(r), int(g), int(b)
	maxC := max3(rf, gf, bf)
	minC := min3(rf, gf, bf)
	return rf > 95 && gf > 40 && bf > 20 &&
		maxC-minC > 15 &&
		abs(rf-gf) > 15 &&
		rf > gf && rf > bf
}

// skinYCbCr tests the chroma band where skin clusters regardless of
// brightness.
func skinYCbCr(r, g, b uint8) bool {
	rf, gf, bf := float64(r), float64(g), float64(b)
	cb := 128 - 0.168736*rf - 0.331264*gf + 0.5*bf
	cr := 128 + 0.5*rf - 0.418688*gf - 0.081312*bf
	return cb >= 77 && cb <= 127 && cr >= 133 && cr <= 173
}

// skinHSV tests hue and saturation bounds for skin-like colors.
func skinHSV(r, g, b uint8) bool {
	h, s, v := rgbToHSV(r, g, b)
	return h >= 0 && h <= 50 && s >= 0.1 && s <= 0.68 && v >= 0.35
}

// rgbToHSV converts to HSV with h in degrees [0,360) and s, v in [0,1].
func rgbToHSV(r, g, b uint8) (h, s, v float64) {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	maxC := math.Max(rf, math.Max(gf, bf))
	minC := math.Min(rf, math.Min(gf, bf))
	delta := maxC - minC

	v = maxC
	if maxC > 0 {
		s = delta / maxC
	}

	if delta == 0 {
		return 0, s, v
	}
	switch maxC {
	case rf:
		h = 60 * math.Mod((gf-bf)/delta, 6)
	case gf:
		h = 60 * ((bf-rf)/delta + 2)
	default:
		h = 60 * ((rf-gf)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func max3(a, b, c int) int {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
