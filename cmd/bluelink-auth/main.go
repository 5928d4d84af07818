// Utility for enrolling Bluelink credentials in the system keyring

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bluelinky/bluelinky-go/pkg/cli"
)

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "usage: %s [OPTION...] ACTION\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Manages Bluelink credentials in the system keyring. ACTIONs:")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  set-password     Prompt for the account password and store it")
	fmt.Fprintln(w, "  set-pin          Prompt for the service PIN and store it")
	fmt.Fprintln(w, "  delete-password  Remove the stored account password")
	fmt.Fprintln(w, "  delete-pin       Remove the stored service PIN")
	fmt.Fprintln(w, "  verify           Log in with the stored credentials to confirm they work")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Available OPTIONs:")
	flag.PrintDefaults()
}

func main() {
	returnCode := 1
	defer func() {
		os.Exit(returnCode)
	}()

	config, err := cli.NewConfig(cli.FlagAccount | cli.FlagPIN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load credential configuration: %s\n", err)
		return
	}

	flag.Usage = usage
	config.RegisterCommandLineFlags()
	flag.Parse()
	config.ReadFromEnvironment()

	if config.Username == "" {
		fmt.Fprintf(os.Stderr, "Must provide an account with -username or $%s\n", cli.EnvUsername)
		return
	}
	if flag.NArg() != 1 {
		usage()
		return
	}

	switch flag.Arg(0) {
	case "set-password":
		err = config.SavePasswordToKeyring()
	case "set-pin":
		err = config.SavePINToKeyring()
	case "delete-password":
		err = config.DeletePasswordFromKeyring()
	case "delete-pin":
		err = config.DeletePINFromKeyring()
	case "verify":
		err = verify(config)
	default:
		fmt.Fprintf(os.Stderr, "Unrecognized action: %s\n", flag.Arg(0))
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return
	}

	returnCode = 0
}

func verify(config *cli.Config) error {
	if err := config.LoadCredentials(); err != nil {
		return err
	}
	acct, err := config.Account()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := acct.Login(ctx); err != nil {
		return err
	}
	cars, err := acct.Vehicles(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Credentials OK; account has %d vehicle(s)\n", len(cars))
	return nil
}
