package controller

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The vendor's JSON is loosely typed: booleans arrive as true/false or 0/1 depending on the
// endpoint, and numbers are sometimes quoted. flexBool and flexFloat absorb both encodings.

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	trimmed := bytes.Trim(data, `"`)
	switch strings.ToLower(string(trimmed)) {
	case "true", "1", "y", "on":
		*b = true
		return nil
	case "false", "0", "n", "off", "null", "":
		*b = false
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = flexBool(v)
	return nil
}

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	trimmed := string(bytes.Trim(data, `"`))
	if trimmed == "null" {
		trimmed = ""
	}
	*s = flexString(trimmed)
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	trimmed := string(bytes.Trim(data, `"`))
	if trimmed == "" || trimmed == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
