package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
	"golang.org/x/term"

	"github.com/bluelinky/bluelinky-go/internal/log"
)

const (
	keyringServiceName = "com.bluelinky.auth"
	keyringDirectory   = "~/.bluelink_keys"
)

// backendType implements the flag.Value interface for keyring backend names.
type backendType struct {
	config *Config
}

func (b backendType) String() string {
	if b.config == nil || len(b.config.Backend.AllowedBackends) == 0 {
		return string(keyring.InvalidBackend)
	}
	return string(b.config.Backend.AllowedBackends[0])
}

func (b backendType) Set(value string) error {
	if value == "" {
		return fmt.Errorf("no keyring backend specified")
	}
	for _, backend := range keyring.AvailableBackends() {
		if value == string(backend) {
			b.config.Backend.AllowedBackends = []keyring.BackendType{backend}
			return nil
		}
	}
	return fmt.Errorf("unsupported keyring backend: %s", value)
}

func (c *Config) openKeyring() (keyring.Keyring, error) {
	if c.Debug {
		keyring.Debug = true
	}
	if strings.HasPrefix(c.Backend.FileDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		c.Backend.FileDir = home + c.Backend.FileDir[1:]
	}
	return keyring.Open(c.Backend)
}

// getKeyringPassword obtains the password that protects the keyring itself (not the Bluelink
// account password). Checks $BLUELINK_KEYRING_PASSWORD before prompting.
func (c *Config) getKeyringPassword(prompt string) (string, error) {
	if password, ok := os.LookupEnv(EnvKeyringPass); ok {
		return password, nil
	}
	return c.promptPassword(prompt)
}

func (c *Config) promptPassword(prompt string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func (c *Config) passwordKeyringKey() string {
	return "password." + c.Username
}

func (c *Config) pinKeyringKey() string {
	return "pin." + c.Username
}

// SavePasswordToKeyring writes the account password to the system keyring, prompting for it if it
// has not been loaded yet.
func (c *Config) SavePasswordToKeyring() error {
	if c.Username == "" {
		return fmt.Errorf("cannot save password without a username")
	}
	if c.password == nil || *c.password == "" {
		password, err := c.promptPassword(fmt.Sprintf("Password for %s", c.Username))
		if err != nil {
			return err
		}
		if password == "" {
			return fmt.Errorf("password cannot be empty")
		}
		c.password = &password
	}
	kr, err := c.openKeyring()
	if err != nil {
		return fmt.Errorf("failed to open keyring: %s", err)
	}
	log.Debug("Saving password for %s to keyring", c.Username)
	return kr.Set(keyring.Item{
		Key:         c.passwordKeyringKey(),
		Data:        []byte(*c.password),
		Label:       "Bluelink account password",
		Description: "password",
	})
}

// LoadPasswordFromKeyring reads the account password from the system keyring.
func (c *Config) LoadPasswordFromKeyring() (string, error) {
	if c.Username == "" {
		return "", fmt.Errorf("cannot load password without a username")
	}
	kr, err := c.openKeyring()
	if err != nil {
		return "", fmt.Errorf("failed to open keyring: %s", err)
	}
	log.Debug("Searching for password.%s in keyring", c.Username)
	item, err := kr.Get(c.passwordKeyringKey())
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

// DeletePasswordFromKeyring removes the account password from the system keyring.
func (c *Config) DeletePasswordFromKeyring() error {
	if c.Username == "" {
		return fmt.Errorf("cannot delete password without a username")
	}
	kr, err := c.openKeyring()
	if err != nil {
		return fmt.Errorf("failed to open keyring: %s", err)
	}
	return kr.Remove(c.passwordKeyringKey())
}

// SavePINToKeyring writes the service PIN to the system keyring, prompting for it if it was not
// provided on the command line or environment.
func (c *Config) SavePINToKeyring() error {
	if c.Username == "" {
		return fmt.Errorf("cannot save PIN without a username")
	}
	if c.PIN == "" {
		pin, err := c.promptPassword(fmt.Sprintf("PIN for %s", c.Username))
		if err != nil {
			return err
		}
		if pin == "" {
			return fmt.Errorf("PIN cannot be empty")
		}
		c.PIN = pin
	}
	kr, err := c.openKeyring()
	if err != nil {
		return fmt.Errorf("failed to open keyring: %s", err)
	}
	log.Debug("Saving PIN for %s to keyring", c.Username)
	return kr.Set(keyring.Item{
		Key:         c.pinKeyringKey(),
		Data:        []byte(c.PIN),
		Label:       "Bluelink service PIN",
		Description: "PIN",
	})
}

// LoadPINFromKeyring reads the service PIN from the system keyring.
func (c *Config) LoadPINFromKeyring() (string, error) {
	if c.Username == "" {
		return "", fmt.Errorf("cannot load PIN without a username")
	}
	kr, err := c.openKeyring()
	if err != nil {
		return "", fmt.Errorf("failed to open keyring: %s", err)
	}
	log.Debug("Searching for pin.%s in keyring", c.Username)
	item, err := kr.Get(c.pinKeyringKey())
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

// DeletePINFromKeyring removes the service PIN from the system keyring.
func (c *Config) DeletePINFromKeyring() error {
	if c.Username == "" {
		return fmt.Errorf("cannot delete PIN without a username")
	}
	kr, err := c.openKeyring()
	if err != nil {
		return fmt.Errorf("failed to open keyring: %s", err)
	}
	return kr.Remove(c.pinKeyringKey())
}
