package bluelink

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// The vendor encodes climate setpoints as an index into a per-region table of half-degree Celsius
// steps, rendered as a zero-padded hex value with an "H" suffix (e.g. 16.0C in the US range is
// "04H").

const temperatureStep = 0.5

func temperatureRange(region Region) (low, high float64) {
	switch region {
	case RegionCA:
		return 16, 32
	case RegionAU:
		return 17, 27
	default:
		return 14, 30
	}
}

// CelsiusToTempCode converts a Celsius setpoint to the vendor's hex temperature code. The value
// must fall on a half-degree step within the region's supported range.
func CelsiusToTempCode(region Region, celsius float64) (string, error) {
	low, high := temperatureRange(region)
	if celsius < low || celsius > high {
		return "", fmt.Errorf("temperature %.1fC outside supported range [%.0f, %.0f] for region %s", celsius, low, high, region)
	}
	steps := (celsius - low) / temperatureStep
	index := int(steps)
	if float64(index) != steps {
		return "", fmt.Errorf("temperature %.1fC is not on a half-degree boundary", celsius)
	}
	code := strings.ToUpper(strconv.FormatInt(int64(index), 16))
	for len(code) < 2 {
		code = "0" + code
	}
	return code + "H", nil
}

// CelsiusToFahrenheit converts a setpoint to Fahrenheit, rounded to the nearest half degree, the
// finest granularity the vendor accepts.
func CelsiusToFahrenheit(celsius float64) float64 {
	return math.Round((celsius*9/5+32)/temperatureStep) * temperatureStep
}

// FahrenheitToCelsius converts a setpoint to Celsius, rounded to the nearest half degree.
func FahrenheitToCelsius(fahrenheit float64) float64 {
	return math.Round((fahrenheit-32)*5/9/temperatureStep) * temperatureStep
}

// TempCodeToCelsius converts a vendor temperature code back to Celsius.
func TempCodeToCelsius(region Region, code string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.ToUpper(code), "H")
	index, err := strconv.ParseInt(trimmed, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed temperature code %q: %w", code, err)
	}
	low, high := temperatureRange(region)
	celsius := low + float64(index)*temperatureStep
	if celsius > high {
		return 0, fmt.Errorf("temperature code %q outside supported range for region %s", code, region)
	}
	return celsius, nil
}

// ParseTimestamp decodes the vendor's compact timestamp format: YYYYMM, YYYYMMDD, or
// YYYYMMDDHHMMSS depending on the endpoint.
func ParseTimestamp(value string) (time.Time, error) {
	switch len(value) {
	case 6:
		return time.Parse("200601", value)
	case 8:
		return time.Parse("20060102", value)
	case 14:
		return time.Parse("20060102150405", value)
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format %q", value)
}
