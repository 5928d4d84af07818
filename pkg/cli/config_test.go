package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/cache"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvUsername, EnvPassword, EnvRegion, EnvBrand, EnvPIN, EnvVIN,
		EnvCacheFile, EnvKeyringType, EnvKeyringPass, EnvKeyringPath, EnvKeyringDebug,
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestReadFromEnvironment(t *testing.T) {
	clearEnvironment(t)
	t.Setenv(EnvUsername, "owner@example.com")
	t.Setenv(EnvRegion, "US")
	t.Setenv(EnvBrand, "kia")
	t.Setenv(EnvPIN, "1234")
	t.Setenv(EnvVIN, "5NMS55555555555555")
	t.Setenv(EnvCacheFile, "/tmp/sessions.json")

	config, err := NewConfig(FlagAll)
	if err != nil {
		t.Fatalf("NewConfig: %s", err)
	}
	config.ReadFromEnvironment()

	if config.Username != "owner@example.com" || config.Region != "US" || config.Brand != "kia" {
		t.Errorf("account fields = %q %q %q", config.Username, config.Region, config.Brand)
	}
	if config.PIN != "1234" || config.VIN != "5NMS55555555555555" {
		t.Errorf("pin/vin = %q %q", config.PIN, config.VIN)
	}
	if config.CacheFilename != "/tmp/sessions.json" {
		t.Errorf("cache file = %q", config.CacheFilename)
	}
}

func TestEnvironmentDoesNotOverrideExplicitValues(t *testing.T) {
	clearEnvironment(t)
	t.Setenv(EnvUsername, "env@example.com")
	t.Setenv(EnvBrand, "hyundai")

	config, err := NewConfig(FlagAccount)
	if err != nil {
		t.Fatalf("NewConfig: %s", err)
	}
	config.Username = "flag@example.com"
	config.Brand = "kia"
	config.ReadFromEnvironment()

	if config.Username != "flag@example.com" {
		t.Errorf("username = %q, explicit value should win", config.Username)
	}
	if config.Brand != "kia" {
		t.Errorf("brand = %q, explicit value should win", config.Brand)
	}
}

func TestBrandEnvironmentOverridesDefault(t *testing.T) {
	clearEnvironment(t)
	t.Setenv(EnvBrand, "kia")

	config, err := NewConfig(FlagAccount)
	if err != nil {
		t.Fatalf("NewConfig: %s", err)
	}
	// The brand flag defaults to hyundai; the environment should still be able to pick kia when
	// the user did not pass -brand explicitly.
	config.Brand = "hyundai"
	config.ReadFromEnvironment()

	if config.Brand != "kia" {
		t.Errorf("brand = %q, want kia", config.Brand)
	}
}

func TestFlagGating(t *testing.T) {
	clearEnvironment(t)
	t.Setenv(EnvVIN, "5NMS55555555555555")
	t.Setenv(EnvPIN, "1234")
	t.Setenv(EnvCacheFile, "/tmp/sessions.json")

	config, err := NewConfig(FlagAccount)
	if err != nil {
		t.Fatalf("NewConfig: %s", err)
	}
	config.ReadFromEnvironment()

	if config.VIN != "" || config.PIN != "" || config.CacheFilename != "" {
		t.Errorf("disabled options populated: vin=%q pin=%q cache=%q", config.VIN, config.PIN, config.CacheFilename)
	}
}

func TestLoadCredentialsRequiresUsername(t *testing.T) {
	clearEnvironment(t)

	config, err := NewConfig(FlagAccount)
	if err != nil {
		t.Fatalf("NewConfig: %s", err)
	}
	if err := config.LoadCredentials(); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestLoadCredentialsFromEnvironment(t *testing.T) {
	clearEnvironment(t)
	t.Setenv(EnvUsername, "owner@example.com")
	t.Setenv(EnvPassword, "hunter2")

	config, err := NewConfig(FlagAccount)
	if err != nil {
		t.Fatalf("NewConfig: %s", err)
	}
	config.ReadFromEnvironment()
	if err := config.LoadCredentials(); err != nil {
		t.Fatalf("LoadCredentials: %s", err)
	}
}

func TestAccountConfig(t *testing.T) {
	clearEnvironment(t)
	t.Setenv(EnvUsername, "owner@example.com")
	t.Setenv(EnvPassword, "hunter2")

	config, err := NewConfig(FlagAll)
	if err != nil {
		t.Fatalf("NewConfig: %s", err)
	}
	config.Region = "ca"
	config.Brand = "kia"
	config.PIN = "1234"
	config.ReadFromEnvironment()

	accountConfig, err := config.AccountConfig()
	if err != nil {
		t.Fatalf("AccountConfig: %s", err)
	}
	if accountConfig.Region != bluelink.RegionCA || accountConfig.Brand != bluelink.BrandKia {
		t.Errorf("region/brand = %s/%s", accountConfig.Region, accountConfig.Brand)
	}
	if accountConfig.Username != "owner@example.com" || accountConfig.Password != "hunter2" {
		t.Errorf("credentials = %q/%q", accountConfig.Username, accountConfig.Password)
	}
	if accountConfig.PIN != "1234" {
		t.Errorf("pin = %q", accountConfig.PIN)
	}
}

func TestAccountConfigRejectsBadRegion(t *testing.T) {
	clearEnvironment(t)

	config, err := NewConfig(FlagAccount)
	if err != nil {
		t.Fatalf("NewConfig: %s", err)
	}
	config.Region = "atlantis"
	config.Brand = "hyundai"
	if _, err := config.AccountConfig(); err == nil {
		t.Fatal("expected error for unknown region")
	}
}

func TestAccountRestoresCachedSession(t *testing.T) {
	clearEnvironment(t)
	t.Setenv(EnvUsername, "owner@example.com")
	t.Setenv(EnvPassword, "hunter2")

	filename := filepath.Join(t.TempDir(), "sessions.json")
	sessions := cache.New(0)
	sessions.Update(cache.Key("owner@example.com", bluelink.BrandHyundai, bluelink.RegionUS), &session.Session{
		AccessToken: "cached-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
	if err := sessions.ExportToFile(filename); err != nil {
		t.Fatalf("ExportToFile: %s", err)
	}

	config, err := NewConfig(FlagAll)
	if err != nil {
		t.Fatalf("NewConfig: %s", err)
	}
	config.Region = "us"
	config.Brand = "hyundai"
	config.PIN = "1234"
	config.CacheFilename = filename
	config.ReadFromEnvironment()
	if err := config.LoadCredentials(); err != nil {
		t.Fatalf("LoadCredentials: %s", err)
	}

	acct, err := config.Account()
	if err != nil {
		t.Fatalf("Account: %s", err)
	}
	s := acct.CurrentSession()
	if s == nil || s.AccessToken != "cached-token" {
		t.Fatalf("session = %+v, want the cached one", s)
	}

	// Persisting writes the session back under the same key.
	config.UpdateCachedSessions(acct)
	restored, err := cache.ImportFromFile(filename)
	if err != nil {
		t.Fatalf("ImportFromFile: %s", err)
	}
	if _, ok := restored.Get(cache.Key("owner@example.com", bluelink.BrandHyundai, bluelink.RegionUS)); !ok {
		t.Error("session missing from persisted cache")
	}
}

func TestAccountWithMissingCacheFile(t *testing.T) {
	clearEnvironment(t)
	t.Setenv(EnvUsername, "owner@example.com")
	t.Setenv(EnvPassword, "hunter2")

	config, err := NewConfig(FlagAll)
	if err != nil {
		t.Fatalf("NewConfig: %s", err)
	}
	config.Region = "us"
	config.Brand = "hyundai"
	config.PIN = "1234"
	config.CacheFilename = filepath.Join(t.TempDir(), "does-not-exist.json")
	config.ReadFromEnvironment()

	if _, err := config.Account(); err != nil {
		t.Fatalf("Account: %s", err)
	}
}
