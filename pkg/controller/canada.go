package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bluelinky/bluelinky-go/internal/log"
	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

// canadianEnvironment holds the per-brand connection parameters for the Canadian deployment.
type canadianEnvironment struct {
	Host    string
	BaseURL string
	Origin  string
}

func canadianBrandEnvironment(brand bluelink.Brand) canadianEnvironment {
	host := "mybluelink.ca"
	if brand == bluelink.BrandKia {
		host = "kiaconnect.ca"
	}
	return canadianEnvironment{
		Host:    host,
		BaseURL: "https://" + host,
		Origin:  "SPA",
	}
}

// pinTokenLifetime bounds how long a verified PIN token is reused before re-verifying. The
// backend expires them after a few minutes; staying well under that avoids mid-command rejections.
const pinTokenLifetime = 2 * time.Minute

// CanadianController talks to the Canadian Bluelink deployment (mybluelink.ca / kiaconnect.ca).
// All endpoints are POSTs under /tods/api. Actuation commands additionally require a short-lived
// PIN token obtained from the vrfypin endpoint.
type CanadianController struct {
	config bluelink.Config
	env    canadianEnvironment
	client http.Client

	// pinMu makes the PIN-token check-and-store atomic. Vehicles on the same account share one
	// session, and their commands are only serialized per vehicle.
	pinMu sync.Mutex
}

func NewCanadianController(config bluelink.Config) (*CanadianController, error) {
	c := &CanadianController{
		config: config,
		env:    canadianBrandEnvironment(config.Brand),
	}
	log.Debug("CA controller created for %s", config.Brand)
	return c, nil
}

func (c *CanadianController) Region() bluelink.Region { return bluelink.RegionCA }
func (c *CanadianController) Brand() bluelink.Brand   { return c.config.Brand }

func (c *CanadianController) RetryInterval() time.Duration { return 3 * time.Second }

func (c *CanadianController) endpoint(name string) string {
	return c.env.BaseURL + "/tods/api/" + name
}

// canadianEnvelope is the response wrapper shared by all Canadian endpoints. A responseCode of
// zero indicates success regardless of the HTTP status.
type canadianEnvelope struct {
	ResponseHeader struct {
		ResponseCode int    `json:"responseCode"`
		ResponseDesc string `json:"responseDesc"`
	} `json:"responseHeader"`
	Result json.RawMessage `json:"result"`
}

func (c *CanadianController) baseHeaders(s *session.Session) map[string]string {
	headers := map[string]string{
		"from":     c.env.Origin,
		"language": "1",
		"offset":   "-5",
	}
	if s != nil && s.AccessToken != "" {
		headers["accessToken"] = s.AccessToken
	}
	return headers
}

// send POSTs to a Canadian endpoint and unwraps the response envelope.
func (c *CanadianController) send(ctx context.Context, s *session.Session, name string, headers map[string]string, payload interface{}) (*canadianEnvelope, error) {
	merged := c.baseHeaders(s)
	for k, v := range headers {
		merged[k] = v
	}
	body, err := sendJSON(ctx, &c.client, http.MethodPost, c.endpoint(name), merged, payload)
	if err != nil {
		return nil, err
	}
	var envelope canadianEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed response from %s: %w", name, err)
	}
	if envelope.ResponseHeader.ResponseCode != 0 {
		return &envelope, &bluelink.CommandError{
			Err:               fmt.Errorf("%s rejected: %s", name, envelope.ResponseHeader.ResponseDesc),
			PossibleSuccess:   false,
			PossibleTemporary: false,
		}
	}
	return &envelope, nil
}

func (c *CanadianController) Login(ctx context.Context) (*session.Session, error) {
	envelope, err := c.send(ctx, nil, "lgn", nil, map[string]string{
		"loginId":  c.config.Username,
		"password": c.config.Password,
	})
	if err != nil {
		if httpErr, ok := err.(*bluelink.HttpError); ok {
			return nil, &bluelink.AuthError{StatusCode: httpErr.Code, Message: httpErr.Message}
		}
		if cmdErr, ok := err.(*bluelink.CommandError); ok {
			return nil, &bluelink.AuthError{Message: cmdErr.Error()}
		}
		return nil, err
	}
	var result struct {
		Token struct {
			AccessToken  string      `json:"accessToken"`
			RefreshToken string      `json:"refreshToken"`
			ExpireIn     json.Number `json:"expireIn"`
		} `json:"token"`
	}
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		return nil, fmt.Errorf("malformed login result: %w", err)
	}
	if result.Token.AccessToken == "" {
		return nil, &bluelink.AuthError{Message: "login result missing access token"}
	}
	expiresIn, _ := result.Token.ExpireIn.Int64()
	return session.New(result.Token.AccessToken, result.Token.RefreshToken, time.Duration(expiresIn)*time.Second), nil
}

// Refresh re-authenticates with the stored credentials. The Canadian deployment has no refresh
// grant; expired sessions require a fresh login.
func (c *CanadianController) Refresh(ctx context.Context, s *session.Session) (*session.Session, error) {
	return c.Login(ctx)
}

func (c *CanadianController) Logout(ctx context.Context, s *session.Session) error {
	_, err := c.send(ctx, s, "lgout", nil, nil)
	return err
}

func (c *CanadianController) Vehicles(ctx context.Context, s *session.Session) ([]bluelink.VehicleInfo, error) {
	envelope, err := c.send(ctx, s, "vhcllst", nil, nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		Vehicles []struct {
			VehicleID    string `json:"vehicleId"`
			Nickname     string `json:"nickName"`
			ModelName    string `json:"modelName"`
			ModelYear    string `json:"modelYear"`
			VIN          string `json:"vin"`
			FuelKindCode string `json:"fuelKindCode"`
			GenType      string `json:"genType"`
		} `json:"vehicles"`
	}
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		return nil, fmt.Errorf("malformed vehicle list: %w", err)
	}
	var vehicles []bluelink.VehicleInfo
	for _, entry := range result.Vehicles {
		info := bluelink.VehicleInfo{
			VIN:            entry.VIN,
			Nickname:       entry.Nickname,
			Model:          entry.ModelName,
			RegistrationID: entry.VehicleID,
			Generation:     entry.GenType,
		}
		switch entry.FuelKindCode {
		case "E":
			info.EngineType = bluelink.EngineTypeEV
		case "P":
			info.EngineType = bluelink.EngineTypePHEV
		case "G", "D":
			info.EngineType = bluelink.EngineTypeICE
		}
		vehicles = append(vehicles, info)
	}
	log.Debug("CA account has %d enrolled vehicles", len(vehicles))
	return vehicles, nil
}

// pinToken exchanges the service PIN for the short-lived command authorization token, reusing the
// cached one when still fresh. Holding pinMu across the check and the store also collapses
// concurrent callers onto a single vrfypin exchange.
func (c *CanadianController) pinToken(ctx context.Context, s *session.Session) (string, error) {
	c.pinMu.Lock()
	defer c.pinMu.Unlock()
	if s.PINTokenValid() {
		return s.PINToken, nil
	}
	if c.config.PIN == "" {
		return "", bluelink.ErrPINRequired
	}
	envelope, err := c.send(ctx, s, "vrfypin", nil, map[string]string{"pin": c.config.PIN})
	if err != nil {
		return "", err
	}
	var result struct {
		PAuth string `json:"pAuth"`
	}
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		return "", fmt.Errorf("malformed pin verification result: %w", err)
	}
	if result.PAuth == "" {
		return "", bluelink.NewError("pin verification returned no token", false, false)
	}
	s.PINToken = result.PAuth
	s.PINTokenExpiresAt = time.Now().Add(pinTokenLifetime)
	return result.PAuth, nil
}

func (c *CanadianController) command(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, command bluelink.Command, name string, payload map[string]interface{}) (*bluelink.CommandResult, error) {
	pAuth, err := c.pinToken(ctx, s)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{
		"vehicleId": v.RegistrationID,
		"pAuth":     pAuth,
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["pin"] = c.config.PIN
	envelope, err := c.send(ctx, s, name, headers, payload)
	if err != nil {
		if bluelink.MayHaveSucceeded(err) {
			return terminalResult(command, bluelink.CommandFailure, nil), err
		}
		return nil, err
	}
	return terminalResult(command, bluelink.CommandSuccess, envelope.Result), nil
}

func (c *CanadianController) Lock(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return c.command(ctx, s, v, bluelink.CommandLock, "drlck", nil)
}

func (c *CanadianController) Unlock(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return c.command(ctx, s, v, bluelink.CommandUnlock, "drulck", nil)
}

func (c *CanadianController) ClimateOn(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, opts bluelink.ClimateOptions) (*bluelink.CommandResult, error) {
	// Temperature codes are Celsius indexes, so Fahrenheit setpoints are converted before
	// encoding.
	temperature := opts.Temperature
	switch {
	case temperature == 0:
		temperature = 21
	case opts.Unit == "F":
		temperature = bluelink.FahrenheitToCelsius(temperature)
	case opts.Unit != "" && opts.Unit != "C":
		return nil, fmt.Errorf("unrecognized temperature unit %q", opts.Unit)
	}
	tempCode, err := bluelink.CelsiusToTempCode(bluelink.RegionCA, temperature)
	if err != nil {
		return nil, err
	}
	duration := opts.Duration
	if duration == 0 {
		duration = 10
	}
	payload := map[string]interface{}{
		"hvacInfo": map[string]interface{}{
			"airCtrl":        boolToInt(opts.Climate),
			"airTemp":        map[string]interface{}{"value": tempCode, "unit": 0, "hvacTempType": 1},
			"defrost":        opts.Defrost,
			"heating1":       opts.HeatedFeatures,
			"igniOnDuration": duration,
		},
	}
	return c.command(ctx, s, v, bluelink.CommandClimateOn, "evc/rfon", payload)
}

func (c *CanadianController) ClimateOff(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return c.command(ctx, s, v, bluelink.CommandClimateOff, "evc/rfoff", nil)
}

// CommandStatus on the Canadian deployment never sees a pending result; the envelope's response
// code settles the outcome inline.
func (c *CanadianController) CommandStatus(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, r *bluelink.CommandResult) (*bluelink.CommandResult, error) {
	return r, nil
}

func (c *CanadianController) Status(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, opts bluelink.StatusOptions) (*bluelink.VehicleStatus, error) {
	name := "lstvhclsts"
	if opts.Refresh {
		// rltmvhclsts polls the vehicle itself rather than returning the backend's snapshot.
		name = "rltmvhclsts"
	}
	envelope, err := c.send(ctx, s, name, map[string]string{"vehicleId": v.RegistrationID}, nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		Status json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		return nil, fmt.Errorf("malformed status result: %w", err)
	}
	status := &bluelink.VehicleStatus{Raw: result.Status}
	if !opts.Parsed {
		return status, nil
	}
	var raw struct {
		DateTime  string   `json:"lastStatusDate"`
		HoodOpen  flexBool `json:"hoodOpen"`
		TrunkOpen flexBool `json:"trunkOpen"`
		DoorLock  flexBool `json:"doorLock"`
		DoorOpen  struct {
			FrontLeft  flexBool `json:"frontLeft"`
			FrontRight flexBool `json:"frontRight"`
			BackLeft   flexBool `json:"backLeft"`
			BackRight  flexBool `json:"backRight"`
		} `json:"doorOpen"`
		AirCtrlOn flexBool `json:"airCtrlOn"`
		Defrost   flexBool `json:"defrost"`
		AirTemp   struct {
			Value flexFloat `json:"value"`
			Unit  int       `json:"unit"`
		} `json:"airTemp"`
		Engine  flexBool `json:"engine"`
		Battery struct {
			BatSoc flexFloat `json:"batSoc"`
		} `json:"battery"`
		DTE struct {
			Value flexFloat `json:"value"`
		} `json:"dte"`
		EVStatus struct {
			BatteryCharge flexBool  `json:"batteryCharge"`
			BatteryStatus flexFloat `json:"batteryStatus"`
		} `json:"evStatus"`
	}
	if err := json.Unmarshal(result.Status, &raw); err != nil {
		return nil, fmt.Errorf("malformed status payload: %w", err)
	}
	status.Chassis = bluelink.ChassisStatus{
		HoodOpen:  bool(raw.HoodOpen),
		TrunkOpen: bool(raw.TrunkOpen),
		Locked:    bool(raw.DoorLock),
		OpenDoors: bluelink.DoorState{
			FrontLeft:  bool(raw.DoorOpen.FrontLeft),
			FrontRight: bool(raw.DoorOpen.FrontRight),
			BackLeft:   bool(raw.DoorOpen.BackLeft),
			BackRight:  bool(raw.DoorOpen.BackRight),
		},
	}
	status.Climate = bluelink.ClimateStatus{
		Active:              bool(raw.AirCtrlOn),
		Defrost:             bool(raw.Defrost),
		TemperatureSetpoint: float64(raw.AirTemp.Value),
		TemperatureUnit:     raw.AirTemp.Unit,
	}
	status.Engine = bluelink.EngineStatus{
		Ignition:        bool(raw.Engine),
		Range:           float64(raw.DTE.Value),
		Charging:        bool(raw.EVStatus.BatteryCharge),
		BatteryCharge12: float64(raw.Battery.BatSoc),
		BatteryChargeHV: float64(raw.EVStatus.BatteryStatus),
	}
	if updated, err := bluelink.ParseTimestamp(raw.DateTime); err == nil {
		status.LastUpdated = updated
	}
	return status, nil
}

func (c *CanadianController) Location(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.Location, error) {
	pAuth, err := c.pinToken(ctx, s)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{"vehicleId": v.RegistrationID, "pAuth": pAuth}
	envelope, err := c.send(ctx, s, "fndmcr", headers, map[string]string{"pin": c.config.PIN})
	if err != nil {
		return nil, err
	}
	var result struct {
		Coord struct {
			Lat flexFloat `json:"lat"`
			Lon flexFloat `json:"lon"`
			Alt flexFloat `json:"alt"`
		} `json:"coord"`
		Head  flexFloat `json:"head"`
		Speed struct {
			Value flexFloat `json:"value"`
		} `json:"speed"`
	}
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		return nil, fmt.Errorf("malformed locate result: %w", err)
	}
	return &bluelink.Location{
		Latitude:  float64(result.Coord.Lat),
		Longitude: float64(result.Coord.Lon),
		Altitude:  float64(result.Coord.Alt),
		Heading:   float64(result.Head),
		Speed:     float64(result.Speed.Value),
	}, nil
}

func (c *CanadianController) Odometer(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.Odometer, error) {
	envelope, err := c.send(ctx, s, "sltvhcl", map[string]string{"vehicleId": v.RegistrationID}, nil)
	if err != nil {
		return nil, err
	}
	var result struct {
		Vehicle struct {
			Odometer     flexFloat `json:"odometer"`
			OdometerUnit int       `json:"odometerUnit"`
		} `json:"vehicle"`
	}
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		return nil, fmt.Errorf("malformed vehicle info result: %w", err)
	}
	return &bluelink.Odometer{Value: float64(result.Vehicle.Odometer), Unit: result.Vehicle.OdometerUnit}, nil
}
