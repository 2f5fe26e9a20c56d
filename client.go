// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package keychain

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"aead.dev/mem"
	"github.com/minio/keychain/internal/headers"
)

// Client is a client of a keychain server. It provides
// the Store operations to other processes. Usually, a
// new client is instantiated via NewClient.
//
// Custom transport protocols, timeouts, connection
// pooling, etc. can be specified via a custom
// http.RoundTripper. For example:
//
//	client := &keychain.Client{
//	    Endpoint:  "https://127.0.0.1:7373",
//	    HTTPClient: http.Client{
//	        Transport: &http.Transport{
//	           TLSClientConfig: &tls.Config{
//	               RootCAs: rootCAs,
//	           },
//	        },
//	    },
//	}
type Client struct {
	// Endpoint is the keychain server endpoint.
	// For example: http://127.0.0.1:7373
	Endpoint string

	// APIToken is sent as bearer token, if not
	// empty.
	APIToken string

	// HTTPClient is the HTTP client.
	//
	// The HTTP client uses its http.RoundTripper
	// to send requests resp. receive responses.
	//
	// It must not be modified concurrently.
	HTTPClient http.Client
}

// NewClient returns a new keychain client with the given
// server endpoint. The TLS config is used for HTTPS
// endpoints and may be nil.
//
// NewClient uses an http.Transport with reasonable
// defaults.
func NewClient(endpoint string, config *tls.Config) *Client {
	return &Client{
		Endpoint: endpoint,
		HTTPClient: http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				TLSClientConfig:       config,
			},
		},
	}
}

// Version tries to fetch the version information from the
// keychain server.
func (c *Client) Version(ctx context.Context) (string, error) {
	const (
		APIPath         = "/version"
		Method          = http.MethodGet
		StatusOK        = http.StatusOK
		MaxResponseSize = 1 * mem.KiB
	)
	resp, err := c.send(ctx, Method, APIPath, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != StatusOK {
		return "", parseErrorResponse(resp)
	}

	type Response struct {
		Version string `json:"version"`
	}
	var response Response
	if err = json.NewDecoder(limitBody(resp, MaxResponseSize)).Decode(&response); err != nil {
		return "", err
	}
	return response.Version, nil
}

// ServerStatus describes the state of a keychain server.
type ServerStatus struct {
	Version string        `json:"version"`
	OS      string        `json:"os"`
	Arch    string        `json:"arch"`
	UpTime  time.Duration `json:"uptime"`

	// StoreAvailable reports whether the server's
	// store has been opened successfully.
	StoreAvailable bool   `json:"store_available"`
	Provider       string `json:"provider"`

	// StoreLatency is the latency of the underlying
	// key-value store. It is zero if StoreUnreachable.
	StoreLatency     time.Duration `json:"-"`
	StoreUnreachable bool          `json:"store_unreachable"`
}

// Status returns the current state of the keychain server.
func (c *Client) Status(ctx context.Context) (ServerStatus, error) {
	const (
		APIPath         = "/v1/status"
		Method          = http.MethodGet
		StatusOK        = http.StatusOK
		MaxResponseSize = 1 * mem.MiB
	)
	resp, err := c.send(ctx, Method, APIPath, nil)
	if err != nil {
		return ServerStatus{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != StatusOK {
		return ServerStatus{}, parseErrorResponse(resp)
	}

	type Response struct {
		ServerStatus
		StoreLatency int64 `json:"store_latency"` // In microseconds
	}
	var response Response
	if err = json.NewDecoder(limitBody(resp, MaxResponseSize)).Decode(&response); err != nil {
		return ServerStatus{}, err
	}
	status := response.ServerStatus
	status.StoreLatency = time.Duration(response.StoreLatency) * time.Microsecond
	return status, nil
}

// Get returns the value of the given key. It reports
// whether the key exists.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	const (
		APIPath         = "/v1/get"
		Method          = http.MethodPost
		StatusOK        = http.StatusOK
		MaxResponseSize = 2 * mem.MiB
	)
	type Request struct {
		Key string `json:"key"`
	}
	body, err := json.Marshal(Request{Key: key})
	if err != nil {
		return "", false, err
	}
	resp, err := c.send(ctx, Method, APIPath, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != StatusOK {
		return "", false, parseErrorResponse(resp)
	}

	type Response struct {
		Value *string `json:"value"`
	}
	var response Response
	if err = json.NewDecoder(limitBody(resp, MaxResponseSize)).Decode(&response); err != nil {
		return "", false, err
	}
	if response.Value == nil {
		return "", false, nil
	}
	return *response.Value, true, nil
}

// Put sets the value of the given key.
func (c *Client) Put(ctx context.Context, key, value string) error {
	type Request struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	return c.call(ctx, "/v1/put", Request{Key: key, Value: value})
}

// Remove removes the given key. It does not return an
// error if the key does not exist.
func (c *Client) Remove(ctx context.Context, key string) error {
	type Request struct {
		Key string `json:"key"`
	}
	return c.call(ctx, "/v1/remove", Request{Key: key})
}

// Clear removes all keys, including the wrapped
// encryption key. Values stored before are lost.
func (c *Client) Clear(ctx context.Context) error {
	return c.call(ctx, "/v1/clear", struct{}{})
}

// call sends request as JSON to the API path and
// expects an empty 200 OK response.
func (c *Client) call(ctx context.Context, apiPath string, request any) error {
	body, err := json.Marshal(request)
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, http.MethodPost, apiPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseErrorResponse(resp)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, apiPath string, body io.ReadSeeker) (*http.Response, error) {
	var options []requestOption
	if body != nil {
		options = append(options, withHeader(headers.ContentType, headers.ContentTypeJSON))
	}
	if c.APIToken != "" {
		options = append(options, withHeader(headers.Authorization, "Bearer "+c.APIToken))
	}
	client := retry(c.HTTPClient)
	return client.Send(ctx, method, endpoint(c.Endpoint, apiPath), body, options...)
}

// endpoint returns an endpoint URL starting with the
// given endpoint followed by the path elements.
//
// For example:
//   - endpoint("http://127.0.0.1:7373", "version")   => "http://127.0.0.1:7373/version"
//   - endpoint("http://127.0.0.1:7373/", "/v1/get") => "http://127.0.0.1:7373/v1/get"
//
// Any leading or trailing whitespaces are removed from
// the endpoint before it is concatenated with the path
// elements.
//
// The path elements will not be URL-escaped.
func endpoint(endpoint string, elems ...string) string {
	endpoint = strings.TrimSpace(endpoint)
	endpoint = strings.TrimSuffix(endpoint, "/")

	if len(elems) > 0 && !strings.HasPrefix(elems[0], "/") {
		endpoint += "/"
	}
	return endpoint + path.Join(elems...)
}

// limitBody returns the response body limited to at most
// maxLen bytes. If the response content length is smaller
// then maxLen, the returned io.Reader may return less than
// maxLen bytes.
func limitBody(r *http.Response, maxLen mem.Size) io.Reader {
	size := mem.Size(r.ContentLength)
	if size < 0 || size > maxLen {
		size = maxLen
	}
	return mem.LimitReader(r.Body, size)
}
