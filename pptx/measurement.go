package pptx

import "math"

// EMU (English Metric Units) conversion helpers.
// 1 inch = 914400 EMU, 1 point = 12700 EMU, 1 pixel at 96 DPI = 9525 EMU.

const (
	emuPerInch  = 914400
	emuPerPoint = 12700
	emuPerPixel = 9525
	// maxEMU is the maximum safe EMU value to prevent overflow.
	maxEMU = math.MaxInt64 / 2
)

// Inch converts inches to EMU.
func Inch(n float64) int64 {
	return clampEMU(n * emuPerInch)
}

// Point converts points to EMU, rounding to the nearest unit.
func Point(n float64) int64 {
	return clampEMU(math.Round(n * emuPerPoint))
}

// Pixel converts pixels at 96 DPI to EMU.
func Pixel(n int) int64 {
	return clampEMU(float64(n) * emuPerPixel)
}

// EMUToInch converts EMU to inches.
func EMUToInch(emu int64) float64 {
	return float64(emu) / emuPerInch
}

// EMUToPoint converts EMU to points.
func EMUToPoint(emu int64) float64 {
	return float64(emu) / emuPerPoint
}

// clampEMU converts a float64 to int64, clamping to prevent overflow.
func clampEMU(v float64) int64 {
	if v > float64(maxEMU) {
		return maxEMU
	}
	if v < -float64(maxEMU) {
		return -maxEMU
	}
	return int64(v)
}
