// Package bluelink defines types shared by the Bluelink client packages: account configuration,
// region and brand identifiers, and the error taxonomy used across controllers.
package bluelink

import (
	"fmt"
	"strings"
)

// Brand identifies the vehicle manufacturer program the account is enrolled in. Hyundai and Kia
// share backend infrastructure but use separate hosts and application credentials.
type Brand string

const (
	BrandHyundai Brand = "hyundai"
	BrandKia     Brand = "kia"
)

// Region identifies the Bluelink deployment an account belongs to. Accounts are region-locked;
// logging in against the wrong region fails with an AuthError.
type Region string

const (
	RegionUS Region = "US"
	RegionCA Region = "CA"
	RegionEU Region = "EU"
	RegionCN Region = "CN"
	RegionAU Region = "AU"
)

// Regions lists all recognized regions, including those served by placeholder controllers.
var Regions = []Region{RegionUS, RegionCA, RegionEU, RegionCN, RegionAU}

// ParseRegion converts a user-supplied region name into a Region.
func ParseRegion(name string) (Region, error) {
	canonical := Region(strings.ToUpper(strings.TrimSpace(name)))
	for _, region := range Regions {
		if canonical == region {
			return region, nil
		}
	}
	return "", fmt.Errorf("unrecognized region %q", name)
}

// ParseBrand converts a user-supplied brand name into a Brand.
func ParseBrand(name string) (Brand, error) {
	switch Brand(strings.ToLower(strings.TrimSpace(name))) {
	case BrandHyundai:
		return BrandHyundai, nil
	case BrandKia:
		return BrandKia, nil
	}
	return "", fmt.Errorf("unrecognized brand %q", name)
}

// Config carries the credentials and regional settings for one Bluelink account. It is treated as
// immutable once passed to account.New.
type Config struct {
	Username string
	Password string
	Brand    Brand
	Region   Region
	// PIN is the Bluelink service PIN. Commands that actuate the vehicle (lock, climate) are
	// rejected by the vendor without it.
	PIN string
	// Language is only meaningful for regions that localize responses. Defaults to "en".
	Language string
	// DeviceID overrides the generated device identifier on regions that require device
	// registration.
	DeviceID string
}

const DefaultLanguage = "en"

// Validate reports whether the Config is complete enough to attempt a login.
func (c *Config) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("%w: missing username", ErrInvalidConfig)
	}
	if c.Password == "" {
		return fmt.Errorf("%w: missing password", ErrInvalidConfig)
	}
	if _, err := ParseBrand(string(c.Brand)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if _, err := ParseRegion(string(c.Region)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	return nil
}
