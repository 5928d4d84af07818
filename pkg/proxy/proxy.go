// Package proxy exposes a Bluelink account over a local HTTP API so that home-automation systems
// can issue vehicle commands without speaking the vendor protocol themselves. The proxy owns the
// login session and the single-flight rules around token refresh and per-vehicle commands.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/bluelinky/bluelinky-go/pkg/account"
	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/vehicle"
)

const (
	// DefaultTimeout bounds a single proxied command, including status polling.
	DefaultTimeout      = 90 * time.Second
	maxRequestBodyBytes = 4096
)

// Proxy exposes an HTTP API for sending vehicle commands.
type Proxy struct {
	Timeout time.Duration

	acct   *account.Account
	router *mux.Router
}

// New wraps an account in an HTTP handler. The account does not need to be logged in; the first
// proxied request triggers the login.
func New(acct *account.Account) *Proxy {
	p := &Proxy{
		Timeout: DefaultTimeout,
		acct:    acct,
	}
	router := mux.NewRouter()
	router.HandleFunc("/api/1/vehicles", p.handleVehicles).Methods("GET")
	router.HandleFunc("/api/1/vehicles/{vin}/command/{command}", p.handleCommand).Methods("POST")
	router.HandleFunc("/api/1/vehicles/{vin}/status", p.handleStatus).Methods("GET")
	router.HandleFunc("/api/1/vehicles/{vin}/location", p.handleLocation).Methods("GET")
	router.HandleFunc("/api/1/vehicles/{vin}/odometer", p.handleOdometer).Methods("GET")
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug("404 page not found", "path", r.URL.Path)
		http.Error(w, "404 page not found: "+r.URL.Path, http.StatusNotFound)
	})
	p.router = router
	return p
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.router.ServeHTTP(w, r)
}

// commandBody carries the optional parameters of a climate command.
type commandBody struct {
	Temperature float64 `json:"temperature"`
	Unit        string  `json:"unit"`
	Duration    int     `json:"duration"`
	Defrost     bool    `json:"defrost"`
}

func writeResponse(w http.ResponseWriter, status int, response *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Ret{Response: *response}); err != nil {
		log.Error("failed to send response", "error", err)
	}
	log.Debug("Response", "Command", response.Command, "Status", status, "Result", response.Result, "Reason", response.Reason)
}

// findVehicle resolves the request's VIN against the account registry. A nil vehicle with nil
// error means the account has no such vehicle.
func (p *Proxy) findVehicle(ctx context.Context, w http.ResponseWriter, response *Response) *vehicle.Vehicle {
	car, err := p.acct.GetVehicle(ctx, response.Vin)
	if err != nil {
		response.Reason = err.Error()
		writeResponse(w, http.StatusServiceUnavailable, response)
		return nil
	}
	if car == nil {
		response.Reason = "account has no vehicle with this VIN"
		writeResponse(w, http.StatusNotFound, response)
		return nil
	}
	return car
}

func (p *Proxy) handleVehicles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), p.Timeout)
	defer cancel()

	response := Response{Command: "vehicles"}
	cars, err := p.acct.Vehicles(ctx)
	if err != nil {
		response.Reason = err.Error()
		writeResponse(w, http.StatusServiceUnavailable, &response)
		return
	}
	infos := make([]bluelink.VehicleInfo, 0, len(cars))
	for _, car := range cars {
		infos = append(infos, car.Info())
	}
	payload, err := json.Marshal(infos)
	if err != nil {
		response.Reason = err.Error()
		writeResponse(w, http.StatusInternalServerError, &response)
		return
	}
	response.Result = true
	response.Response = payload
	writeResponse(w, http.StatusOK, &response)
}

func (p *Proxy) handleCommand(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	response := Response{Vin: params["vin"], Command: params["command"]}

	ctx, cancel := context.WithTimeout(r.Context(), p.Timeout)
	defer cancel()

	var body commandBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		log.Error("Decoding body", "Error", err)
		response.Reason = "invalid request body"
		writeResponse(w, http.StatusBadRequest, &response)
		return
	}
	log.Debug("Command", "Vin", response.Vin, "Command", response.Command)

	car := p.findVehicle(ctx, w, &response)
	if car == nil {
		return
	}

	var result *bluelink.CommandResult
	var err error
	switch bluelink.Command(response.Command) {
	case bluelink.CommandLock:
		result, err = car.Lock(ctx)
	case bluelink.CommandUnlock:
		result, err = car.Unlock(ctx)
	case bluelink.CommandClimateOn:
		opts := bluelink.ClimateOptions{
			Climate:     true,
			Temperature: body.Temperature,
			Unit:        body.Unit,
			Duration:    body.Duration,
			Defrost:     body.Defrost,
		}
		result, err = car.ClimateOn(ctx, opts)
	case bluelink.CommandClimateOff:
		result, err = car.ClimateOff(ctx)
	default:
		log.Error("Command not supported", "Command", response.Command)
		response.Reason = "unsupported command"
		writeResponse(w, http.StatusNotFound, &response)
		return
	}
	if err != nil {
		response.Reason = err.Error()
		status := http.StatusServiceUnavailable
		if bluelink.MayHaveSucceeded(err) {
			status = http.StatusGatewayTimeout
		}
		writeResponse(w, status, &response)
		return
	}
	payload, _ := json.Marshal(result)
	response.Result = result.State == bluelink.CommandSuccess
	if !response.Result {
		response.Reason = "the vehicle rejected the command"
	}
	response.Response = payload
	writeResponse(w, http.StatusOK, &response)
}

func (p *Proxy) handleStatus(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	response := Response{Vin: params["vin"], Command: "status"}

	ctx, cancel := context.WithTimeout(r.Context(), p.Timeout)
	defer cancel()

	car := p.findVehicle(ctx, w, &response)
	if car == nil {
		return
	}
	opts := bluelink.StatusOptions{
		Refresh: r.URL.Query().Get("refresh") == "true",
		Parsed:  r.URL.Query().Get("parsed") == "true",
	}
	status, err := car.Status(ctx, opts)
	if err != nil {
		response.Reason = err.Error()
		writeResponse(w, http.StatusServiceUnavailable, &response)
		return
	}
	if opts.Parsed {
		payload, _ := json.Marshal(status)
		response.Response = payload
	} else {
		response.Response = status.Raw
	}
	response.Result = true
	writeResponse(w, http.StatusOK, &response)
}

func (p *Proxy) handleLocation(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	response := Response{Vin: params["vin"], Command: "location"}

	ctx, cancel := context.WithTimeout(r.Context(), p.Timeout)
	defer cancel()

	car := p.findVehicle(ctx, w, &response)
	if car == nil {
		return
	}
	location, err := car.Location(ctx)
	if err != nil {
		response.Reason = err.Error()
		writeResponse(w, http.StatusServiceUnavailable, &response)
		return
	}
	payload, _ := json.Marshal(location)
	response.Result = true
	response.Response = payload
	writeResponse(w, http.StatusOK, &response)
}

func (p *Proxy) handleOdometer(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	response := Response{Vin: params["vin"], Command: "odometer"}

	ctx, cancel := context.WithTimeout(r.Context(), p.Timeout)
	defer cancel()

	car := p.findVehicle(ctx, w, &response)
	if car == nil {
		return
	}
	odometer, err := car.Odometer(ctx)
	if err != nil {
		response.Reason = err.Error()
		writeResponse(w, http.StatusServiceUnavailable, &response)
		return
	}
	payload, _ := json.Marshal(odometer)
	response.Result = true
	response.Response = payload
	writeResponse(w, http.StatusOK, &response)
}
