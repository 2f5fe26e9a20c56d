// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/minio/keychain/internal/headers"
	"github.com/minio/keychain/internal/sys"
	"github.com/minio/keychain/kv"
)

func version(config *RouterConfig) API {
	const (
		Method  = http.MethodGet
		APIPath = PathVersion
		MaxBody = 0
		Timeout = 15 * time.Second
	)
	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		info := sys.BinaryInfo()

		w.Header().Set(headers.ContentType, headers.ContentTypeJSON)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(VersionResponse{
			Version: info.Version,
			Commit:  info.CommitID,
		})
	}
	return API{
		Method:  Method,
		Path:    APIPath,
		MaxBody: MaxBody,
		Timeout: Timeout,
		Handler: config.Metrics.Count(config.Metrics.Latency(handler)),
	}
}

func status(config *RouterConfig) API {
	const (
		Method  = http.MethodGet
		APIPath = PathStatus
		MaxBody = 0
		Timeout = 15 * time.Second
	)
	startTime := time.Now().UTC()
	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			Version: sys.BinaryInfo().Version,
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
			UpTime:  time.Since(startTime).Round(time.Second),
		}
		if config.Store != nil {
			resp.StoreAvailable = true
			resp.Provider = config.Store.Provider()

			state, err := config.Store.Status(r.Context())
			if _, ok := kv.IsUnreachable(err); ok {
				resp.StoreUnreachable = true
			} else if err != nil {
				Fail(w, err)
				return
			} else {
				resp.StoreLatency = state.Latency.Microseconds()
			}
		}

		w.Header().Set(headers.ContentType, headers.ContentTypeJSON)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
	return API{
		Method:  Method,
		Path:    APIPath,
		MaxBody: MaxBody,
		Timeout: Timeout,
		Verify:  config.Verify,
		Handler: config.Metrics.Count(config.Metrics.Latency(handler)),
	}
}

func metrics(config *RouterConfig) API {
	const (
		Method  = http.MethodGet
		APIPath = PathMetrics
		MaxBody = 0
		Timeout = 15 * time.Second
	)
	return API{
		Method:  Method,
		Path:    APIPath,
		MaxBody: MaxBody,
		Timeout: Timeout,
		Verify:  config.Verify,
		Handler: config.Metrics,
	}
}
