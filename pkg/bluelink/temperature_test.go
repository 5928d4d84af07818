package bluelink

import "testing"

func TestCelsiusToTempCode(t *testing.T) {
	type params struct {
		region  Region
		celsius float64
		code    string
		isErr   bool
	}
	testCases := []params{
		{region: RegionUS, celsius: 14, code: "00H"},
		{region: RegionUS, celsius: 21.5, code: "0FH"},
		{region: RegionUS, celsius: 30, code: "20H"},
		{region: RegionCA, celsius: 16, code: "00H"},
		{region: RegionCA, celsius: 21, code: "0AH"},
		{region: RegionCA, celsius: 32, code: "20H"},
		{region: RegionAU, celsius: 17, code: "00H"},
		{region: RegionUS, celsius: 13.5, isErr: true},
		{region: RegionUS, celsius: 30.5, isErr: true},
		{region: RegionUS, celsius: 21.3, isErr: true},
		{region: RegionCA, celsius: 14, isErr: true},
	}
	for _, test := range testCases {
		code, err := CelsiusToTempCode(test.region, test.celsius)
		if (err != nil) != test.isErr {
			t.Errorf("CelsiusToTempCode(%s, %.1f) gave unexpected err = %v", test.region, test.celsius, err)
			continue
		}
		if err == nil && code != test.code {
			t.Errorf("CelsiusToTempCode(%s, %.1f) = %q, want %q", test.region, test.celsius, code, test.code)
		}
	}
}

func TestTempCodeRoundTrip(t *testing.T) {
	for _, region := range []Region{RegionUS, RegionCA, RegionAU} {
		low, high := temperatureRange(region)
		for celsius := low; celsius <= high; celsius += temperatureStep {
			code, err := CelsiusToTempCode(region, celsius)
			if err != nil {
				t.Fatalf("CelsiusToTempCode(%s, %.1f): %s", region, celsius, err)
			}
			back, err := TempCodeToCelsius(region, code)
			if err != nil {
				t.Fatalf("TempCodeToCelsius(%s, %q): %s", region, code, err)
			}
			if back != celsius {
				t.Errorf("round trip %s %.1fC -> %q -> %.1fC", region, celsius, code, back)
			}
		}
	}
}

func TestTempCodeToCelsiusErrors(t *testing.T) {
	if _, err := TempCodeToCelsius(RegionUS, "ZZH"); err == nil {
		t.Error("expected error for malformed code")
	}
	if _, err := TempCodeToCelsius(RegionUS, "FFH"); err == nil {
		t.Error("expected error for out-of-range code")
	}
	if celsius, err := TempCodeToCelsius(RegionUS, "0fH"); err != nil || celsius != 21.5 {
		t.Errorf("lowercase code: got %.1f, %v", celsius, err)
	}
}

func TestUnitConversion(t *testing.T) {
	type params struct {
		celsius    float64
		fahrenheit float64
	}
	// Conversions round to the nearest half degree.
	testCases := []params{
		{celsius: 0, fahrenheit: 32},
		{celsius: 21, fahrenheit: 70},
		{celsius: 21.5, fahrenheit: 70.5},
		{celsius: 22, fahrenheit: 71.5},
	}
	for _, test := range testCases {
		if got := CelsiusToFahrenheit(test.celsius); got != test.fahrenheit {
			t.Errorf("CelsiusToFahrenheit(%.1f) = %.1f, want %.1f", test.celsius, got, test.fahrenheit)
		}
	}
	if got := FahrenheitToCelsius(72); got != 22 {
		t.Errorf("FahrenheitToCelsius(72) = %.1f, want 22.0", got)
	}
	if got := FahrenheitToCelsius(32); got != 0 {
		t.Errorf("FahrenheitToCelsius(32) = %.1f, want 0.0", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	if ts, err := ParseTimestamp("20240115"); err != nil || ts.Year() != 2024 || ts.Month() != 1 || ts.Day() != 15 {
		t.Errorf("ParseTimestamp('20240115') = %s, %v", ts, err)
	}
	if ts, err := ParseTimestamp("20240115093045"); err != nil || ts.Hour() != 9 || ts.Minute() != 30 {
		t.Errorf("ParseTimestamp long form = %s, %v", ts, err)
	}
	if _, err := ParseTimestamp("202401"); err != nil {
		t.Errorf("ParseTimestamp('202401'): %s", err)
	}
	if _, err := ParseTimestamp("jan 15"); err == nil {
		t.Error("expected error for unrecognized format")
	}
}
