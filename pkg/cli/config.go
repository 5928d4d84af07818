/*
Package cli facilitates building command-line applications that talk to Bluelink accounts. It
defines a [Config] type that registers common command-line flags (using the Golang flag package)
and environment variable equivalents.

The package uses [keyring]'s platform-agnostic interface for storing sensitive values (the account
password and service PIN) in an OS-dependent credential store.

# Examples

	import flag

	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		panic(err)
	}
	config.RegisterCommandLineFlags() // Adds command-line flags for account, VIN, keyring, etc.
	flag.Parse()
	config.ReadFromEnvironment()      // Fills in missing fields using environment variables
	config.LoadCredentials()          // Loads the password from the keyring, prompting if absent

	acct, err := config.Account()
	if err != nil {
		panic(err)
	}
	defer config.UpdateCachedSessions(acct)
*/
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/99designs/keyring"

	"github.com/bluelinky/bluelinky-go/internal/log"
	"github.com/bluelinky/bluelinky-go/pkg/account"
	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/cache"
)

// Environment variable names used by [Config.ReadFromEnvironment] to set common parameters.
const (
	EnvUsername     = "BLUELINK_USERNAME"
	EnvPassword     = "BLUELINK_PASSWORD" // Discouraged outside development; prefer the keyring.
	EnvRegion       = "BLUELINK_REGION"
	EnvBrand        = "BLUELINK_BRAND"
	EnvPIN          = "BLUELINK_PIN"
	EnvVIN          = "BLUELINK_VIN"
	EnvCacheFile    = "BLUELINK_CACHE_FILE"
	EnvKeyringType  = "BLUELINK_KEYRING_TYPE"
	EnvKeyringPass  = "BLUELINK_KEYRING_PASSWORD"
	EnvKeyringPath  = "BLUELINK_KEYRING_PATH"
	EnvKeyringDebug = "BLUELINK_KEYRING_DEBUG"
)

// Flag controls what options should be scanned from the command line and/or environment
// variables.
type Flag int

func (f Flag) isSet(other Flag) bool {
	return (f & other) == other
}

const (
	FlagAccount Flag = 1 // Enable account options (username, region, brand).
	FlagVIN     Flag = 2 // Enable VIN option.
	FlagPIN     Flag = 4 // Enable service PIN options. Required for actuation commands.
	FlagCache   Flag = 8 // Enable session cache options.
	FlagAll     Flag = FlagAccount | FlagVIN | FlagPIN | FlagCache
)

var (
	// ErrNoCredentials indicates no password source was configured or found.
	ErrNoCredentials = errors.New("account password not provided")
	ErrKeyNotFound   = keyring.ErrKeyNotFound
)

// Config fields determine how a client authenticates to the Bluelink backend.
type Config struct {
	Flags         Flag
	Username      string
	Region        string
	Brand         string
	VIN           string
	PIN           string
	CacheFilename string
	Backend       keyring.Config
	BackendType   backendType
	Debug         bool // Enable keyring debug messages

	password *string
	sessions *cache.SessionCache
}

func NewConfig(flags Flag) (*Config, error) {
	c := Config{
		Flags: flags,
		Backend: keyring.Config{
			ServiceName:              keyringServiceName,
			KeychainTrustApplication: true,
			KeyCtlScope:              "user",
		},
	}
	c.BackendType = backendType{&c}
	c.Backend.KeychainPasswordFunc = c.getKeyringPassword
	c.Backend.FilePasswordFunc = c.getKeyringPassword
	return &c, nil
}

func (c *Config) RegisterCommandLineFlags() {
	if c.Flags.isSet(FlagAccount) {
		flag.StringVar(&c.Username, "username", "", "Bluelink account `email`. Defaults to $BLUELINK_USERNAME.")
		flag.StringVar(&c.Region, "region", "", "Account region (US|CA|EU|CN|AU). Defaults to $BLUELINK_REGION.")
		flag.StringVar(&c.Brand, "brand", "hyundai", "Brand (hyundai|kia). Defaults to $BLUELINK_BRAND.")
	}
	if c.Flags.isSet(FlagVIN) {
		flag.StringVar(&c.VIN, "vin", "", "Vehicle Identification Number. Defaults to $BLUELINK_VIN.")
	}
	if c.Flags.isSet(FlagPIN) {
		flag.StringVar(&c.PIN, "pin", "", "Bluelink service `PIN`. Defaults to the keyring entry, then $BLUELINK_PIN.")
	}
	if c.Flags.isSet(FlagCache) {
		flag.StringVar(&c.CacheFilename, "session-cache", "", "Load session cache from `file`. Defaults to $BLUELINK_CACHE_FILE.")
	}
	if c.Flags.isSet(FlagAccount) {
		var names []string
		for _, name := range keyring.AvailableBackends() {
			names = append(names, string(name))
		}
		sort.Strings(names)
		flag.Var(&c.BackendType, "keyring-type", "Keyring `type` ("+strings.Join(names, "|")+"). Defaults to $BLUELINK_KEYRING_TYPE.")
		flag.StringVar(&c.Backend.FileDir, "keyring-file-dir", keyringDirectory, "keyring `directory` for file-backed keyring types")
		flag.BoolVar(&c.Debug, "keyring-debug", false, "Enable keyring debug logging")
	}
}

// ReadFromEnvironment populates c using environment variables. Values that are already populated
// are not overwritten.
//
// Call ReadFromEnvironment after flag.Parse() so the environment cannot override explicit
// command-line parameters.
func (c *Config) ReadFromEnvironment() {
	if c.Flags.isSet(FlagAccount) {
		if c.Username == "" {
			c.Username = os.Getenv(EnvUsername)
			log.Debug("Set username to '%s'", c.Username)
		}
		if c.Region == "" {
			c.Region = os.Getenv(EnvRegion)
			log.Debug("Set region to '%s'", c.Region)
		}
		if c.Brand == "" || c.Brand == "hyundai" {
			if brand := os.Getenv(EnvBrand); brand != "" {
				c.Brand = brand
				log.Debug("Set brand to '%s'", c.Brand)
			}
		}
		if c.password == nil {
			if password, ok := os.LookupEnv(EnvPassword); ok {
				c.password = &password
				log.Debug("Set password from environment")
			}
		}
	}
	if c.Flags.isSet(FlagVIN) && c.VIN == "" {
		c.VIN = os.Getenv(EnvVIN)
		log.Debug("Set VIN to '%s'", c.VIN)
	}
	if c.Flags.isSet(FlagPIN) && c.PIN == "" {
		c.PIN = os.Getenv(EnvPIN)
	}
	if c.Flags.isSet(FlagCache) && c.CacheFilename == "" {
		c.CacheFilename = os.Getenv(EnvCacheFile)
		log.Debug("Set session cache file to '%s'", c.CacheFilename)
	}
	if c.Flags.isSet(FlagAccount) {
		if c.BackendType.String() == string(keyring.InvalidBackend) {
			if err := c.BackendType.Set(os.Getenv(EnvKeyringType)); err == nil {
				log.Debug("Set keyring type to '%s'", c.BackendType)
			}
		}
		if c.Backend.FileDir == "" {
			c.Backend.FileDir = os.Getenv(EnvKeyringPath)
		}
		if !c.Debug {
			_, c.Debug = os.LookupEnv(EnvKeyringDebug)
		}
	}
}

// LoadCredentials resolves the account password, checking the system keyring first and falling
// back to an interactive prompt. Call before [Config.Account] so prompts do not count against
// command timeouts.
func (c *Config) LoadCredentials() error {
	if !c.Flags.isSet(FlagAccount) {
		return nil
	}
	if c.Username == "" {
		return fmt.Errorf("%w: no username configured", ErrNoCredentials)
	}
	if c.password != nil && *c.password != "" {
		return nil
	}
	if password, err := c.LoadPasswordFromKeyring(); err == nil {
		c.password = &password
		return nil
	}
	password, err := c.promptPassword(fmt.Sprintf("Password for %s", c.Username))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNoCredentials, err)
	}
	c.password = &password
	return nil
}

// AccountConfig assembles the bluelink.Config described by c.
func (c *Config) AccountConfig() (bluelink.Config, error) {
	region, err := bluelink.ParseRegion(c.Region)
	if err != nil {
		return bluelink.Config{}, err
	}
	brand, err := bluelink.ParseBrand(c.Brand)
	if err != nil {
		return bluelink.Config{}, err
	}
	pin := c.PIN
	if pin == "" {
		// A missing PIN is not fatal; read-only commands work without one.
		if stored, err := c.LoadPINFromKeyring(); err == nil {
			pin = stored
		}
	}
	var password string
	if c.password != nil {
		password = *c.password
	}
	return bluelink.Config{
		Username: c.Username,
		Password: password,
		Brand:    brand,
		Region:   region,
		PIN:      pin,
	}, nil
}

// Account builds the configured account, restoring a cached session when one is available so
// short-lived processes skip the login round trip.
func (c *Config) Account() (*account.Account, error) {
	config, err := c.AccountConfig()
	if err != nil {
		return nil, err
	}
	acct, err := account.New(config)
	if err != nil {
		return nil, err
	}
	if err := c.loadCache(); err != nil {
		return nil, err
	}
	if c.sessions != nil {
		if s, ok := c.sessions.Get(cache.Key(config.Username, config.Brand, config.Region)); ok {
			log.Debug("Restored cached session for %s", config.Username)
			acct.RestoreSession(s)
		}
	}
	return acct, nil
}

// UpdateCachedSessions persists the account's current session to c.CacheFilename. Does nothing if
// no cache file is configured or the account never logged in.
func (c *Config) UpdateCachedSessions(acct *account.Account) {
	if c.CacheFilename == "" || c.sessions == nil {
		return
	}
	s := acct.CurrentSession()
	if s == nil {
		return
	}
	c.sessions.Update(cache.Key(c.Username, acct.Brand(), acct.Region()), s)
	if err := c.sessions.ExportToFile(c.CacheFilename); err != nil {
		log.Error("Error updating session cache: %s", err)
	}
}

func (c *Config) loadCache() error {
	if c.CacheFilename == "" {
		return nil
	}
	log.Debug("Loading session cache from %s...", c.CacheFilename)
	var err error
	c.sessions, err = cache.ImportFromFile(c.CacheFilename)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load session cache: %s", err)
		}
		c.sessions = cache.New(0)
	}
	return nil
}
