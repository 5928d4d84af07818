package main

import (
	"errors"
	"testing"
)

func TestParseTemperature(t *testing.T) {
	type params struct {
		str     string
		degrees float64
		unit    string
		isErr   bool
	}
	testCases := []params{
		{str: "21C", degrees: 21, unit: "C"},
		{str: "21.5c", degrees: 21.5, unit: "C"},
		{str: "72F", degrees: 72, unit: "F"},
		{str: "72f", degrees: 72, unit: "F"},
		{str: "22", degrees: 22, unit: ""},
		{str: "", isErr: true},
		{str: "C", isErr: true},
		{str: "warm", isErr: true},
		{str: "21K", isErr: true},
	}
	for _, test := range testCases {
		degrees, unit, err := parseTemperature(test.str)
		if (err != nil) != test.isErr {
			t.Errorf("temperature '%s' gave unexpected err = %s", test.str, err)
			continue
		}
		if err != nil {
			continue
		}
		if degrees != test.degrees || unit != test.unit {
			t.Errorf("parseTemperature('%s') = (%f, %q), want (%f, %q)", test.str, degrees, unit, test.degrees, test.unit)
		}
	}
}

func TestCheckReadiness(t *testing.T) {
	if _, err := checkReadiness("self-destruct", true); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %s", err)
	}
	if _, err := checkReadiness("lock", false); !errors.Is(err, ErrRequiresVIN) {
		t.Errorf("expected ErrRequiresVIN, got %s", err)
	}
	if _, err := checkReadiness("lock", true); err != nil {
		t.Errorf("expected lock to be ready, got %s", err)
	}
	if _, err := checkReadiness("list", false); err != nil {
		t.Errorf("expected list to work without a vehicle, got %s", err)
	}
}

func TestCommandArgumentCounts(t *testing.T) {
	for name, info := range commands {
		if info.handler == nil {
			t.Errorf("command %s has no handler", name)
		}
		for _, arg := range append(append([]Argument{}, info.args...), info.optional...) {
			if arg.name == "" || arg.help == "" {
				t.Errorf("command %s has an undocumented argument", name)
			}
		}
	}
}
