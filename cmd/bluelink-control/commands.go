package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bluelinky/bluelinky-go/pkg/account"
	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/cli"
	"github.com/bluelinky/bluelinky-go/pkg/vehicle"
)

var (
	ErrCommandLineArgs = errors.New("invalid command line arguments")
	ErrRequiresVIN     = errors.New("command requires a vehicle")
	ErrUnknownCommand  = errors.New("unrecognized command")
)

type Argument struct {
	name string
	help string
}

type Handler func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error

type Command struct {
	help            string
	requiresVehicle bool // True if the command targets a vehicle rather than the account
	requiresPIN     bool // True if the backend demands the account's service PIN
	args            []Argument
	optional        []Argument
	handler         Handler
}

// parseTemperature accepts setpoints such as 72F, 21.5C, or a bare number in the region's
// customary unit.
func parseTemperature(value string) (float64, string, error) {
	unit := ""
	switch {
	case strings.HasSuffix(value, "C"), strings.HasSuffix(value, "c"):
		unit = "C"
		value = value[:len(value)-1]
	case strings.HasSuffix(value, "F"), strings.HasSuffix(value, "f"):
		unit = "F"
		value = value[:len(value)-1]
	}
	degrees, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse temperature: format as 21.5C or 72F")
	}
	return degrees, unit, nil
}

// configureFlags narrows the credential flags to what a command actually needs so that the CLI
// doesn't prompt for a PIN before listing vehicles.
func configureFlags(c *cli.Config, commandName string) error {
	info, ok := commands[commandName]
	if !ok {
		return ErrUnknownCommand
	}
	c.Flags = cli.FlagAccount | cli.FlagCache
	if info.requiresVehicle {
		c.Flags |= cli.FlagVIN
	}
	if info.requiresPIN {
		c.Flags |= cli.FlagPIN
	}
	return nil
}

func checkReadiness(commandName string, haveVehicle bool) (*Command, error) {
	info, ok := commands[commandName]
	if !ok {
		return nil, ErrUnknownCommand
	}
	if info.requiresVehicle && !haveVehicle {
		return nil, ErrRequiresVIN
	}
	return info, nil
}

func execute(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args []string) error {
	if len(args) == 0 {
		return errors.New("missing COMMAND")
	}

	info, err := checkReadiness(args[0], car != nil)
	if err != nil {
		return err
	}

	if len(args)-1 < len(info.args) || len(args)-1 > len(info.args)+len(info.optional) {
		writeErr("Invalid number of command line arguments: %d (%d required, %d optional).", len(args), len(info.args), len(info.optional))
		err = ErrCommandLineArgs
	} else {
		keywords := make(map[string]string)
		for i, argInfo := range info.args {
			keywords[argInfo.name] = args[i+1]
		}
		index := len(info.args) + 1
		for _, argInfo := range info.optional {
			if index >= len(args) {
				break
			}
			keywords[argInfo.name] = args[index]
			index++
		}
		err = info.handler(ctx, acct, car, keywords)
	}

	// Print command-specific help
	if errors.Is(err, ErrCommandLineArgs) {
		info.Usage(args[0])
	}
	return err
}

func (c *Command) Usage(name string) {
	fmt.Printf("Usage: %s", name)
	maxLength := 0
	for _, arg := range c.args {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" [")
	}
	for _, arg := range c.optional {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" ]")
	}
	fmt.Printf("\n%s\n", c.help)
	maxLength++
	for _, arg := range c.args {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
	for _, arg := range c.optional {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
}

func printResult(result *bluelink.CommandResult) {
	fmt.Printf("%s: %s\n", result.Command, result.State)
}

var commands = map[string]*Command{
	"list": &Command{
		help: "List vehicles enrolled on the account",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			cars, err := acct.Vehicles(ctx)
			if err != nil {
				return err
			}
			for _, car := range cars {
				name := car.Nickname()
				if name == "" {
					name = car.Model()
				}
				fmt.Printf("%s\t%s\t%s\n", car.VIN(), name, car.Info().EngineType)
			}
			return nil
		},
	},
	"lock": &Command{
		help:            "Lock vehicle doors",
		requiresVehicle: true,
		requiresPIN:     true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			result, err := car.Lock(ctx)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	},
	"unlock": &Command{
		help:            "Unlock vehicle doors",
		requiresVehicle: true,
		requiresPIN:     true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			result, err := car.Unlock(ctx)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	},
	"climate-on": &Command{
		help:            "Start climate control (and engine, on combustion vehicles)",
		requiresVehicle: true,
		requiresPIN:     true,
		optional: []Argument{
			Argument{name: "TEMP", help: "Cabin setpoint (e.g., 72F or 21.5C; defaults to the region's unit)"},
			Argument{name: "DURATION", help: "Runtime in minutes (combustion vehicles only)"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			opts := bluelink.ClimateOptions{Climate: true}
			if temp, ok := args["TEMP"]; ok {
				degrees, unit, err := parseTemperature(temp)
				if err != nil {
					return fmt.Errorf("%w: %s", ErrCommandLineArgs, err)
				}
				opts.Temperature = degrees
				opts.Unit = unit
			}
			if duration, ok := args["DURATION"]; ok {
				minutes, err := strconv.Atoi(duration)
				if err != nil || minutes <= 0 {
					return fmt.Errorf("%w: DURATION must be a positive number of minutes", ErrCommandLineArgs)
				}
				opts.Duration = minutes
			}
			result, err := car.ClimateOn(ctx, opts)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	},
	"climate-off": &Command{
		help:            "Stop a remotely-started climate session",
		requiresVehicle: true,
		requiresPIN:     true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			result, err := car.ClimateOff(ctx)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	},
	"status": &Command{
		help:            "Print vehicle status",
		requiresVehicle: true,
		optional: []Argument{
			Argument{name: "MODE", help: "'refresh' polls the vehicle instead of returning the cached snapshot"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			opts := bluelink.StatusOptions{Parsed: true}
			if mode, ok := args["MODE"]; ok {
				if mode != "refresh" {
					return fmt.Errorf("%w: MODE must be 'refresh'", ErrCommandLineArgs)
				}
				opts.Refresh = true
			}
			status, err := car.Status(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Printf("Locked:   %v\n", status.Chassis.Locked)
			fmt.Printf("Climate:  %v", status.Climate.Active)
			if status.Climate.Active {
				fmt.Printf(" (setpoint %.1f)", status.Climate.TemperatureSetpoint)
			}
			fmt.Println("")
			fmt.Printf("Ignition: %v\n", status.Engine.Ignition)
			fmt.Printf("Range:    %.0f\n", status.Engine.Range)
			if !status.LastUpdated.IsZero() {
				fmt.Printf("Updated:  %s\n", status.LastUpdated.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	},
	"status-raw": &Command{
		help:            "Print the backend's status payload as JSON",
		requiresVehicle: true,
		optional: []Argument{
			Argument{name: "MODE", help: "'refresh' polls the vehicle instead of returning the cached snapshot"},
		},
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			opts := bluelink.StatusOptions{}
			if mode, ok := args["MODE"]; ok {
				if mode != "refresh" {
					return fmt.Errorf("%w: MODE must be 'refresh'", ErrCommandLineArgs)
				}
				opts.Refresh = true
			}
			status, err := car.Status(ctx, opts)
			if err != nil {
				return err
			}
			var pretty json.RawMessage = status.Raw
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(pretty)
		},
	},
	"location": &Command{
		help:            "Print the vehicle's last reported GPS fix",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			location, err := car.Location(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%.6f,%.6f (heading %.0f, speed %.0f)\n", location.Latitude, location.Longitude, location.Heading, location.Speed)
			return nil
		},
	},
	"odometer": &Command{
		help:            "Print the vehicle's odometer reading",
		requiresVehicle: true,
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			odometer, err := car.Odometer(ctx)
			if err != nil {
				return err
			}
			unit := "mi"
			if odometer.Unit == 1 {
				unit = "km"
			}
			fmt.Printf("%.1f %s\n", odometer.Value, unit)
			return nil
		},
	},
	"session-info": &Command{
		help: "Print the current session's expiration time",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			s, err := acct.Session(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Access token expires at %s\n", s.ExpiresAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	},
	"logout": &Command{
		help: "Invalidate the session and drop cached vehicle handles",
		handler: func(ctx context.Context, acct *account.Account, car *vehicle.Vehicle, args map[string]string) error {
			return acct.Logout(ctx)
		},
	},
}
