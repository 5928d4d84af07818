package bluelink

import (
	"encoding/json"
	"time"
)

// EngineType classifies a vehicle's drivetrain. The vendor exposes it as a one-letter flag on the
// enrollment record; the climate endpoints differ between combustion and electric vehicles.
type EngineType string

const (
	EngineTypeUnknown EngineType = ""
	EngineTypeICE     EngineType = "ICE"
	EngineTypeEV      EngineType = "EV"
	EngineTypePHEV    EngineType = "PHEV"
)

// VehicleInfo is a read-only snapshot of a vehicle enrolled on the account. It may go stale if the
// account's enrollment changes; re-fetch through the registry to refresh it.
type VehicleInfo struct {
	VIN            string
	Nickname       string
	Model          string
	RegistrationID string
	Generation     string
	BrandIndicator string
	EngineType     EngineType
	EnrolledAt     time.Time
	// Features lists the remote capabilities the vendor reports for this vehicle.
	Features []string
}

// CommandState tracks the lifecycle of a remote command. A result is terminal once its state
// leaves CommandPending and never transitions again.
type CommandState string

const (
	CommandPending CommandState = "pending"
	CommandSuccess CommandState = "success"
	CommandFailure CommandState = "failure"
)

// Command names a remote operation supported by the command client.
type Command string

const (
	CommandLock       Command = "lock"
	CommandUnlock     Command = "unlock"
	CommandClimateOn  Command = "climate_on"
	CommandClimateOff Command = "climate_off"
)

// CommandResult records the outcome of one issued remote command.
type CommandResult struct {
	Command   Command         `json:"command"`
	State     CommandState    `json:"state"`
	IssuedAt  time.Time       `json:"issued_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	// TransactionID identifies the command on regions whose API is asynchronous; controllers use
	// it to poll for completion. Empty on synchronous regions.
	TransactionID string          `json:"transaction_id,omitempty"`
	Raw           json.RawMessage `json:"raw,omitempty"`
}

// Terminal reports whether the result has reached a final state.
func (r *CommandResult) Terminal() bool {
	return r.State != CommandPending
}

// ClimateOptions configures a remote climate start.
type ClimateOptions struct {
	// Climate turns on HVAC. When false the engine may still start (US remote start).
	Climate bool
	// Temperature is the cabin setpoint. Interpreted per Unit.
	Temperature float64
	// Unit is "C" or "F". Defaults to the region's customary unit.
	Unit string
	Defrost bool
	// Duration is how long the vehicle stays on, in minutes. Ignored by EV climate endpoints.
	Duration int
	// HeatedFeatures selects steering wheel / mirror / rear window heating. Vendor enum.
	HeatedFeatures int
	// SeatClimate maps seat positions ("driver", "passenger", "rearLeft", "rearRight") to vendor
	// heat/vent levels.
	SeatClimate map[string]int
}

// StatusOptions configures a status fetch.
type StatusOptions struct {
	// Refresh asks the vendor to poll the vehicle instead of returning its cached snapshot.
	// Refreshing drains the 12V battery if done aggressively.
	Refresh bool
	// Parsed selects the typed VehicleStatus breakdown; otherwise only Raw is populated.
	Parsed bool
}

// DoorState reports which doors are open.
type DoorState struct {
	FrontLeft  bool `json:"frontLeft"`
	FrontRight bool `json:"frontRight"`
	BackLeft   bool `json:"backLeft"`
	BackRight  bool `json:"backRight"`
}

// ChassisStatus groups body-related state.
type ChassisStatus struct {
	HoodOpen          bool      `json:"hoodOpen"`
	TrunkOpen         bool      `json:"trunkOpen"`
	Locked            bool      `json:"locked"`
	OpenDoors         DoorState `json:"openDoors"`
	TirePressureLamps DoorState `json:"tirePressureWarningLamp"`
}

// ClimateStatus groups HVAC state.
type ClimateStatus struct {
	Active              bool    `json:"active"`
	SteeringWheelHeat   bool    `json:"steeringwheelHeat"`
	RearWindowHeat      bool    `json:"rearWindowHeat"`
	Defrost             bool    `json:"defrost"`
	TemperatureSetpoint float64 `json:"temperatureSetpoint"`
	TemperatureUnit     int     `json:"temperatureUnit"`
}

// EngineStatus groups drivetrain state.
type EngineStatus struct {
	Ignition        bool    `json:"ignition"`
	Accessory       bool    `json:"accessory"`
	Range           float64 `json:"range"`
	Charging        bool    `json:"charging"`
	BatteryCharge12 float64 `json:"batteryCharge12v"`
	BatteryChargeHV float64 `json:"batteryChargeHV"`
}

// VehicleStatus is the parsed view of a vehicle status snapshot. Raw always carries the vendor
// payload; the typed fields are only populated when StatusOptions.Parsed was set.
type VehicleStatus struct {
	Chassis     ChassisStatus   `json:"chassis"`
	Climate     ClimateStatus   `json:"climate"`
	Engine      EngineStatus    `json:"engine"`
	LastUpdated time.Time       `json:"lastupdate"`
	Raw         json.RawMessage `json:"-"`
}

// Location is a GPS fix reported by the vehicle.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
	Speed     float64 `json:"speed"`
}

// Odometer is the vehicle's odometer reading. Unit 0 is miles, 1 kilometers (vendor convention).
type Odometer struct {
	Value float64 `json:"value"`
	Unit  int     `json:"unit"`
}
