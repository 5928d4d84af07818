package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bluelinky/bluelinky-go/internal/log"
	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
)

// MaxResponseLength caps the byte-length of vendor responses the client will buffer.
const MaxResponseLength = 100000

// userAgent mirrors the header sent by the official mobile application; some regional backends
// reject unrecognized clients.
const userAgent = "okhttp/3.12.0"

// readWithContext reads r into p, bailing out early if ctx expires. net/http does not interrupt
// an in-progress body read when the request context is cancelled from another goroutine.
func readWithContext(ctx context.Context, r io.Reader, p []byte) ([]byte, error) {
	bytesRead := 0
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		n, err := r.Read(p[bytesRead:])
		bytesRead += n
		if err == io.EOF {
			return p[:bytesRead], nil
		}
		if err != nil {
			return p[:bytesRead], err
		}
		if bytesRead == len(p) {
			return p[:bytesRead], nil
		}
	}
}

// sendRequest issues an HTTP request with the given headers and returns the bounded response body.
// Non-2xx statuses are returned as *bluelink.HttpError so callers can classify them.
func sendRequest(ctx context.Context, client *http.Client, method, requestURL string, headers map[string]string, body io.Reader, contentType string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, &bluelink.CommandError{Err: err, PossibleSuccess: false, PossibleTemporary: false}
	}
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept", "*/*")
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	for name, value := range headers {
		request.Header.Set(name, value)
	}

	log.Debug("Sending %s %s", method, requestURL)
	response, err := client.Do(request)
	if err != nil {
		return nil, &bluelink.CommandError{Err: err, PossibleSuccess: false, PossibleTemporary: true}
	}
	defer response.Body.Close()

	buffer := make([]byte, MaxResponseLength+1)
	payload, err := readWithContext(ctx, response.Body, buffer)
	if err != nil {
		return nil, &bluelink.CommandError{Err: err, PossibleSuccess: true, PossibleTemporary: false}
	}
	if len(payload) == MaxResponseLength+1 {
		return nil, bluelink.NewError("response exceeds maximum length", true, true)
	}

	log.Debug("Server returned %d: %s: %s", response.StatusCode, http.StatusText(response.StatusCode), payload)
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return payload, &bluelink.HttpError{Code: response.StatusCode, Message: string(payload)}
	}
	return payload, nil
}

// sendJSON POSTs a JSON-serialized command and returns the response body.
func sendJSON(ctx context.Context, client *http.Client, method, requestURL string, headers map[string]string, command interface{}) ([]byte, error) {
	var body io.Reader
	if command != nil {
		payload, err := json.Marshal(command)
		if err != nil {
			return nil, err
		}
		log.Debug("Request body: %s", payload)
		body = bytes.NewReader(payload)
	}
	return sendRequest(ctx, client, method, requestURL, headers, body, "application/json")
}

// sendForm POSTs URL-encoded form values. The US door lock endpoints predate the JSON API.
func sendForm(ctx context.Context, client *http.Client, requestURL string, headers map[string]string, values url.Values) ([]byte, error) {
	return sendRequest(ctx, client, http.MethodPost, requestURL, headers, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
}

// get issues a GET request and returns the response body.
func get(ctx context.Context, client *http.Client, requestURL string, headers map[string]string) ([]byte, error) {
	return sendRequest(ctx, client, http.MethodGet, requestURL, headers, nil, "")
}
