package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bluelinky/bluelinky-go/internal/log"
	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

// americanEnvironment holds the per-brand connection parameters for the US deployment. Both
// brands are served from the Hyundai telematics host; they differ only in application
// credentials.
type americanEnvironment struct {
	Host         string
	BaseURL      string
	ClientID     string
	ClientSecret string
}

func americanBrandEnvironment(brand bluelink.Brand) americanEnvironment {
	env := americanEnvironment{
		Host:    "api.telematics.hyundaiusa.com",
		BaseURL: "https://api.telematics.hyundaiusa.com",
	}
	if brand == bluelink.BrandKia {
		env.ClientID = "14a22b0a-91d3-4e45-ab92-fc42f3c9d750"
		env.ClientSecret = "c3dcbf6f-1c36-4b0d-82f0-71652d7a2606"
	} else {
		env.ClientID = "101e9585-302d-4c14-8c25-9ec6e6b57e43"
		env.ClientSecret = "8f43e78e-6f59-4a43-b2d2-1639f56edb83"
	}
	return env
}

// AmericanController talks to the US Bluelink deployment. The US command API is synchronous: a
// 200 response means the command was delivered and executed, so command results are terminal on
// return.
type AmericanController struct {
	config bluelink.Config
	env    americanEnvironment
	client http.Client
}

func NewAmericanController(config bluelink.Config) (*AmericanController, error) {
	c := &AmericanController{
		config: config,
		env:    americanBrandEnvironment(config.Brand),
	}
	log.Debug("US controller created for %s", config.Brand)
	return c, nil
}

func (c *AmericanController) Region() bluelink.Region { return bluelink.RegionUS }
func (c *AmericanController) Brand() bluelink.Brand   { return c.config.Brand }

func (c *AmericanController) RetryInterval() time.Duration { return time.Second }

type americanTokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    json.Number `json:"expires_in"`
}

func (c *AmericanController) authHeaders() map[string]string {
	return map[string]string{
		"client_id":     c.env.ClientID,
		"client_secret": c.env.ClientSecret,
	}
}

func (c *AmericanController) sessionFromToken(body []byte, previous *session.Session) (*session.Session, error) {
	var token americanTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("malformed token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, &bluelink.AuthError{Message: "token response missing access_token"}
	}
	expiresIn, _ := token.ExpiresIn.Int64()
	refresh := token.RefreshToken
	if refresh == "" && previous != nil {
		refresh = previous.RefreshToken
	}
	return session.New(token.AccessToken, refresh, time.Duration(expiresIn)*time.Second), nil
}

func (c *AmericanController) Login(ctx context.Context) (*session.Session, error) {
	body, err := sendJSON(ctx, &c.client, http.MethodPost, c.env.BaseURL+"/v2/ac/oauth/token", c.authHeaders(), map[string]string{
		"username": c.config.Username,
		"password": c.config.Password,
	})
	if err != nil {
		return nil, asAuthError(err)
	}
	return c.sessionFromToken(body, nil)
}

func (c *AmericanController) Refresh(ctx context.Context, s *session.Session) (*session.Session, error) {
	if s == nil || s.RefreshToken == "" {
		return nil, &bluelink.AuthError{Message: "no refresh token available"}
	}
	body, err := sendJSON(ctx, &c.client, http.MethodPost, c.env.BaseURL+"/v2/ac/oauth/token/refresh", c.authHeaders(), map[string]string{
		"refresh_token": s.RefreshToken,
	})
	if err != nil {
		return nil, asAuthError(err)
	}
	log.Debug("US token refreshed")
	return c.sessionFromToken(body, s)
}

// Logout is a no-op: the US deployment has no logout endpoint, tokens simply age out.
func (c *AmericanController) Logout(ctx context.Context, s *session.Session) error {
	return nil
}

type americanEnrollment struct {
	EnrolledVehicleDetails []struct {
		VehicleDetails struct {
			NickName          string     `json:"nickName"`
			VIN               string     `json:"vin"`
			RegID             string     `json:"regid"`
			ModelCode         string     `json:"modelCode"`
			EnrollmentDate    string     `json:"enrollmentDate"`
			BrandIndicator    string     `json:"brandIndicator"`
			VehicleGeneration flexString `json:"vehicleGeneration"`
			EVStatus          string     `json:"evStatus"`
			Odometer          flexFloat  `json:"odometer"`
			EnrolledFeatures  []string   `json:"additionalVehicleDetails,omitempty"`
		} `json:"vehicleDetails"`
	} `json:"enrolledVehicleDetails"`
}

func (c *AmericanController) fetchEnrollment(ctx context.Context, s *session.Session) (*americanEnrollment, error) {
	headers := map[string]string{
		"access_token": s.AccessToken,
		"client_id":    c.env.ClientID,
		"Host":         c.env.Host,
	}
	headers["includeNonConnectedVehicles"] = "Y"
	body, err := get(ctx, &c.client, fmt.Sprintf("%s/ac/v2/enrollment/details/%s", c.env.BaseURL, url.PathEscape(c.config.Username)), headers)
	if err != nil {
		return nil, err
	}
	var enrollment americanEnrollment
	if err := json.Unmarshal(body, &enrollment); err != nil {
		return nil, fmt.Errorf("malformed enrollment response: %w", err)
	}
	return &enrollment, nil
}

func (c *AmericanController) Vehicles(ctx context.Context, s *session.Session) ([]bluelink.VehicleInfo, error) {
	enrollment, err := c.fetchEnrollment(ctx, s)
	if err != nil {
		return nil, err
	}
	var vehicles []bluelink.VehicleInfo
	for _, entry := range enrollment.EnrolledVehicleDetails {
		details := entry.VehicleDetails
		info := bluelink.VehicleInfo{
			VIN:            details.VIN,
			Nickname:       details.NickName,
			Model:          details.ModelCode,
			RegistrationID: details.RegID,
			Generation:     string(details.VehicleGeneration),
			BrandIndicator: details.BrandIndicator,
			Features:       details.EnrolledFeatures,
		}
		switch details.EVStatus {
		case "E":
			info.EngineType = bluelink.EngineTypeEV
		case "N":
			info.EngineType = bluelink.EngineTypeICE
		}
		if enrolled, err := bluelink.ParseTimestamp(details.EnrollmentDate); err == nil {
			info.EnrolledAt = enrolled
		}
		vehicles = append(vehicles, info)
	}
	log.Debug("US account has %d enrolled vehicles", len(vehicles))
	return vehicles, nil
}

// vehicleHeaders builds the header set the US command endpoints expect. The backend validates
// most of these even though they duplicate the request body.
func (c *AmericanController) vehicleHeaders(s *session.Session, v *bluelink.VehicleInfo) map[string]string {
	return map[string]string{
		"access_token":       s.AccessToken,
		"client_id":          c.env.ClientID,
		"Host":               c.env.Host,
		"registrationId":     v.RegistrationID,
		"gen":                v.Generation,
		"username":           c.config.Username,
		"vin":                v.VIN,
		"APPCLOUD-VIN":       v.VIN,
		"Language":           "0",
		"to":                 "ISS",
		"encryptFlag":        "false",
		"from":               "SPA",
		"brandIndicator":     v.BrandIndicator,
		"bluelinkservicepin": c.config.PIN,
		"offset":             "-5",
	}
}

func terminalResult(command bluelink.Command, state bluelink.CommandState, raw []byte) *bluelink.CommandResult {
	now := time.Now()
	return &bluelink.CommandResult{
		Command:   command,
		State:     state,
		IssuedAt:  now,
		UpdatedAt: now,
		Raw:       raw,
	}
}

func (c *AmericanController) door(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, command bluelink.Command, endpoint string) (*bluelink.CommandResult, error) {
	form := url.Values{}
	form.Set("userName", c.config.Username)
	form.Set("vin", v.VIN)
	body, err := sendForm(ctx, &c.client, c.env.BaseURL+endpoint, c.vehicleHeaders(s, v), form)
	if err != nil {
		return nil, err
	}
	return terminalResult(command, bluelink.CommandSuccess, body), nil
}

func (c *AmericanController) Lock(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return c.door(ctx, s, v, bluelink.CommandLock, "/ac/v2/rcs/rdo/off")
}

func (c *AmericanController) Unlock(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return c.door(ctx, s, v, bluelink.CommandUnlock, "/ac/v2/rcs/rdo/on")
}

func (c *AmericanController) ClimateOn(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, opts bluelink.ClimateOptions) (*bluelink.CommandResult, error) {
	// The airTemp payload always declares Fahrenheit (unit 1), so Celsius setpoints are converted
	// before encoding.
	temperature := opts.Temperature
	switch {
	case temperature == 0:
		temperature = 70
	case opts.Unit == "C":
		temperature = bluelink.CelsiusToFahrenheit(temperature)
	case opts.Unit != "" && opts.Unit != "F":
		return nil, fmt.Errorf("unrecognized temperature unit %q", opts.Unit)
	}
	duration := opts.Duration
	if duration == 0 {
		duration = 10
	}
	payload := map[string]interface{}{
		"Ims":     0,
		"airCtrl": boolToInt(opts.Climate),
		"airTemp": map[string]interface{}{
			"unit":  1,
			"value": strconv.FormatFloat(temperature, 'f', -1, 64),
		},
		"defrost":  opts.Defrost,
		"heating1": opts.HeatedFeatures,
		"username": c.config.Username,
		"vin":      v.VIN,
	}
	endpoint := "/ac/v2/rcs/rsc/start"
	// Second-generation EVs use the dedicated climate endpoint and reject the duration and seat
	// settings fields.
	gen2ev := v.EngineType == bluelink.EngineTypeEV && v.Generation == "2"
	if v.EngineType == bluelink.EngineTypeEV {
		endpoint = "/ac/v2/evc/fatc/start"
	}
	if !gen2ev {
		payload["igniOnDuration"] = duration
		if len(opts.SeatClimate) > 0 {
			payload["seatHeaterVentInfo"] = opts.SeatClimate
		}
	}
	headers := c.vehicleHeaders(s, v)
	headers["offset"] = "-4"
	body, err := sendJSON(ctx, &c.client, http.MethodPost, c.env.BaseURL+endpoint, headers, payload)
	if err != nil {
		return nil, err
	}
	return terminalResult(bluelink.CommandClimateOn, bluelink.CommandSuccess, body), nil
}

func (c *AmericanController) ClimateOff(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	headers := c.vehicleHeaders(s, v)
	headers["offset"] = "-4"
	body, err := sendJSON(ctx, &c.client, http.MethodPost, c.env.BaseURL+"/ac/v2/rcs/rsc/stop", headers, nil)
	if err != nil {
		return nil, err
	}
	return terminalResult(bluelink.CommandClimateOff, bluelink.CommandSuccess, body), nil
}

// CommandStatus on the US deployment never sees a pending result; commands complete inline.
func (c *AmericanController) CommandStatus(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, r *bluelink.CommandResult) (*bluelink.CommandResult, error) {
	return r, nil
}

type americanStatusEnvelope struct {
	VehicleStatus struct {
		DateTime  string   `json:"dateTime"`
		HoodOpen  flexBool `json:"hoodOpen"`
		TrunkOpen flexBool `json:"trunkOpen"`
		DoorLock  flexBool `json:"doorLock"`
		DoorOpen  struct {
			FrontLeft  flexBool `json:"frontLeft"`
			FrontRight flexBool `json:"frontRight"`
			BackLeft   flexBool `json:"backLeft"`
			BackRight  flexBool `json:"backRight"`
		} `json:"doorOpen"`
		TirePressureLamp struct {
			FrontLeft  flexBool `json:"tirePressureWarningLampFrontLeft"`
			FrontRight flexBool `json:"tirePressureWarningLampFrontRight"`
			RearLeft   flexBool `json:"tirePressureWarningLampRearLeft"`
			RearRight  flexBool `json:"tirePressureWarningLampRearRight"`
		} `json:"tirePressureLamp"`
		AirCtrlOn          flexBool `json:"airCtrlOn"`
		SteerWheelHeat     flexBool `json:"steerWheelHeat"`
		SideBackWindowHeat flexBool `json:"sideBackWindowHeat"`
		Defrost            flexBool `json:"defrost"`
		AirTemp            struct {
			Value flexFloat `json:"value"`
			Unit  int       `json:"unit"`
		} `json:"airTemp"`
		Engine  flexBool `json:"engine"`
		Acc     flexBool `json:"acc"`
		Battery struct {
			BatSoc flexFloat `json:"batSoc"`
		} `json:"battery"`
		DTE struct {
			Value flexFloat `json:"value"`
		} `json:"dte"`
		EVStatus struct {
			BatteryCharge flexBool  `json:"batteryCharge"`
			BatteryStatus flexFloat `json:"batteryStatus"`
			DrvDistance   []struct {
				RangeByFuel struct {
					TotalAvailableRange struct {
						Value flexFloat `json:"value"`
					} `json:"totalAvailableRange"`
				} `json:"rangeByFuel"`
			} `json:"drvDistance"`
		} `json:"evStatus"`
	} `json:"vehicleStatus"`
}

func (c *AmericanController) Status(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, opts bluelink.StatusOptions) (*bluelink.VehicleStatus, error) {
	headers := c.vehicleHeaders(s, v)
	headers["REFRESH"] = strconv.FormatBool(opts.Refresh)
	body, err := get(ctx, &c.client, c.env.BaseURL+"/ac/v2/rcs/rvs/vehicleStatus", headers)
	if err != nil {
		return nil, err
	}
	status := &bluelink.VehicleStatus{Raw: body}
	if !opts.Parsed {
		return status, nil
	}
	var envelope americanStatusEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed status response: %w", err)
	}
	raw := envelope.VehicleStatus
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
		TirePressureLamps: bluelink.DoorState{
			FrontLeft:  bool(raw.TirePressureLamp.FrontLeft),
			FrontRight: bool(raw.TirePressureLamp.FrontRight),
			BackLeft:   bool(raw.TirePressureLamp.RearLeft),
			BackRight:  bool(raw.TirePressureLamp.RearRight),
		},
	}
	status.Climate = bluelink.ClimateStatus{
		Active:              bool(raw.AirCtrlOn),
		SteeringWheelHeat:   bool(raw.SteerWheelHeat),
		RearWindowHeat:      bool(raw.SideBackWindowHeat),
		Defrost:             bool(raw.Defrost),
		TemperatureSetpoint: float64(raw.AirTemp.Value),
		TemperatureUnit:     raw.AirTemp.Unit,
	}
	vehicleRange := float64(raw.DTE.Value)
	if len(raw.EVStatus.DrvDistance) > 0 {
		if ev := float64(raw.EVStatus.DrvDistance[0].RangeByFuel.TotalAvailableRange.Value); ev > 0 {
			vehicleRange = ev
		}
	}
	status.Engine = bluelink.EngineStatus{
		Ignition:        bool(raw.Engine),
		Accessory:       bool(raw.Acc),
		Range:           vehicleRange,
		Charging:        bool(raw.EVStatus.BatteryCharge),
		BatteryCharge12: float64(raw.Battery.BatSoc),
		BatteryChargeHV: float64(raw.EVStatus.BatteryStatus),
	}
	if updated, err := bluelink.ParseTimestamp(raw.DateTime); err == nil {
		status.LastUpdated = updated
	}
	return status, nil
}

func (c *AmericanController) Location(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.Location, error) {
	body, err := get(ctx, &c.client, c.env.BaseURL+"/ac/v2/rcs/rfc/findMyCar", c.vehicleHeaders(s, v))
	if err != nil {
		return nil, err
	}
	var response struct {
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
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("malformed location response: %w", err)
	}
	return &bluelink.Location{
		Latitude:  float64(response.Coord.Lat),
		Longitude: float64(response.Coord.Lon),
		Altitude:  float64(response.Coord.Alt),
		Heading:   float64(response.Head),
		Speed:     float64(response.Speed.Value),
	}, nil
}

// Odometer reads come from the enrollment record; the US deployment has no dedicated endpoint.
func (c *AmericanController) Odometer(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.Odometer, error) {
	enrollment, err := c.fetchEnrollment(ctx, s)
	if err != nil {
		return nil, err
	}
	for _, entry := range enrollment.EnrolledVehicleDetails {
		if entry.VehicleDetails.VIN == v.VIN {
			return &bluelink.Odometer{Value: float64(entry.VehicleDetails.Odometer), Unit: 0}, nil
		}
	}
	return nil, fmt.Errorf("vehicle %s not present in enrollment details", v.VIN)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// asAuthError converts HTTP-level rejections from identity endpoints into AuthError so callers
// can distinguish bad credentials from transport failures.
func asAuthError(err error) error {
	if httpErr, ok := err.(*bluelink.HttpError); ok {
		return &bluelink.AuthError{StatusCode: httpErr.Code, Message: httpErr.Message}
	}
	return err
}
