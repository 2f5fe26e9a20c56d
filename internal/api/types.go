// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package api

import "time"

// GetRequest is the request sent by clients when calling the Get API.
type GetRequest struct {
	Key string `json:"key"`
}

// GetResponse is the response sent to clients by the Get API.
// Value is nil if no value exists for the requested key.
type GetResponse struct {
	Value *string `json:"value"`
}

// PutRequest is the request sent by clients when calling the Put API.
// A nil Value removes the key.
type PutRequest struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// RemoveRequest is the request sent by clients when calling the Remove API.
type RemoveRequest struct {
	Key string `json:"key"`
}

// VersionResponse is the response sent to clients by the Version API.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// StatusResponse is the response sent to clients by the Status API.
type StatusResponse struct {
	Version string        `json:"version"`
	OS      string        `json:"os"`
	Arch    string        `json:"arch"`
	UpTime  time.Duration `json:"uptime"`

	StoreAvailable   bool   `json:"store_available"`
	Provider         string `json:"provider,omitempty"`
	StoreLatency     int64  `json:"store_latency,omitempty"` // In microseconds
	StoreUnreachable bool   `json:"store_unreachable,omitempty"`
}
