package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/bluelinky/bluelinky-go/internal/log"
	"github.com/bluelinky/bluelinky-go/pkg/account"
	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/cli"
	"github.com/bluelinky/bluelinky-go/pkg/vehicle"
)

func writeErr(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintf(os.Stderr, "\n")
}

const usage = `
 * Commands that target a vehicle require a VIN (or an account with exactly one vehicle).
 * Actuation commands (lock, unlock, climate) may require the account's service PIN.
 * Account-management commands only require credentials.`

func Usage() {
	fmt.Printf("Usage: %s [OPTION...] COMMAND [ARG...]\n", os.Args[0])
	fmt.Printf("\nRun %s help COMMAND for more information. Valid COMMANDs are listed below.", os.Args[0])
	fmt.Println("")
	fmt.Println(usage)
	fmt.Println("")

	fmt.Printf("Available OPTIONs:\n")
	flag.PrintDefaults()
	fmt.Println("")
	fmt.Printf("Available COMMANDs:\n")
	maxLength := 0
	var labels []string
	for command := range commands {
		labels = append(labels, command)
		if len(command) > maxLength {
			maxLength = len(command)
		}
	}
	sort.Strings(labels)
	for _, command := range labels {
		info := commands[command]
		fmt.Printf("  %s%s %s\n", command, strings.Repeat(" ", maxLength-len(command)), info.help)
	}
}

func runCommand(acct *account.Account, car *vehicle.Vehicle, args []string, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := execute(ctx, acct, car, args); err != nil {
		if bluelink.MayHaveSucceeded(err) {
			writeErr("Couldn't verify success: %s", err)
		} else if errors.Is(err, bluelink.ErrPINRequired) {
			writeErr("You must provide a service PIN with -pin (or store one with bluelink-auth) to execute this command")
		} else {
			writeErr("Failed to execute command: %s", err)
		}
		return 1
	}
	return 0
}

func runInteractiveShell(acct *account.Account, car *vehicle.Vehicle, timeout time.Duration) int {
	scanner := bufio.NewScanner(os.Stdin)
	for fmt.Printf("> "); scanner.Scan(); fmt.Printf("> ") {
		args, err := shlex.Split(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			return 0
		}
		if err != nil {
			writeErr("Invalid command: %s", err)
			continue
		}
		runCommand(acct, car, args, timeout)
	}
	if err := scanner.Err(); err != nil {
		writeErr("Error reading command: %s", err)
		return 1
	}
	return 0
}

// findVehicle picks the vehicle the command should target. With no VIN configured, an account with
// a single enrolled vehicle is unambiguous.
func findVehicle(ctx context.Context, acct *account.Account, vin string) (*vehicle.Vehicle, error) {
	if vin != "" {
		car, err := acct.GetVehicle(ctx, vin)
		if err != nil {
			return nil, err
		}
		if car == nil {
			return nil, fmt.Errorf("account has no vehicle with VIN %s", vin)
		}
		return car, nil
	}
	cars, err := acct.Vehicles(ctx)
	if err != nil {
		return nil, err
	}
	if len(cars) != 1 {
		return nil, fmt.Errorf("account has %d vehicles, specify one with -vin", len(cars))
	}
	return cars[0], nil
}

func main() {
	status := 1
	defer func() {
		os.Exit(status)
	}()

	var (
		debug          bool
		commandTimeout time.Duration
		connTimeout    time.Duration
	)
	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load credential configuration: %s\n", err)
		os.Exit(1)
	}
	flag.Usage = Usage
	flag.BoolVar(&debug, "debug", false, "Enable verbose debugging messages")
	flag.DurationVar(&commandTimeout, "command-timeout", 1*time.Minute, "Set timeout for commands sent to the vehicle.")
	flag.DurationVar(&connTimeout, "connect-timeout", 20*time.Second, "Set timeout for login and vehicle lookup.")

	config.RegisterCommandLineFlags()
	flag.Parse()
	if !debug {
		if debugEnv, ok := os.LookupEnv("BLUELINK_VERBOSE"); ok {
			debug = debugEnv != "false" && debugEnv != "0"
		}
	}
	if debug {
		log.SetLevel(log.LevelDebug)
	}
	config.ReadFromEnvironment()

	args := flag.Args()
	if len(args) > 0 {
		if args[0] == "help" {
			if len(args) == 1 {
				Usage()
				return
			}
			info, ok := commands[args[1]]
			if !ok {
				writeErr("Unrecognized command: %s", args[1])
				return
			}
			info.Usage(args[1])
			status = 0
			return
		}
		if err := configureFlags(config, args[0]); err != nil {
			writeErr("Missing required flag: %s", err)
			return
		}
	}

	if err := config.LoadCredentials(); err != nil {
		writeErr("Error loading credentials: %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	acct, err := config.Account()
	if err != nil {
		writeErr("Error: %s", err)
		return
	}
	defer config.UpdateCachedSessions(acct)

	var car *vehicle.Vehicle
	if len(args) == 0 {
		// Interactive shell. Vehicle commands are unavailable if the lookup fails, but account
		// commands still work.
		if car, err = findVehicle(ctx, acct, config.VIN); err != nil {
			writeErr("Warning: %s", err)
		}
	} else if commands[args[0]] == nil || commands[args[0]].requiresVehicle {
		car, err = findVehicle(ctx, acct, config.VIN)
		if err != nil {
			writeErr("Error: %s", err)
			return
		}
	}

	if flag.NArg() > 0 {
		status = runCommand(acct, car, flag.Args(), commandTimeout)
	} else {
		status = runInteractiveShell(acct, car, commandTimeout)
	}
}
