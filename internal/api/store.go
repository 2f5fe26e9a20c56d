// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"aead.dev/mem"
	"github.com/minio/keychain/internal/headers"
)

// MaxKeyLen is the max. length of a key in bytes.
const MaxKeyLen = 1024

func get(config *RouterConfig) API {
	const (
		Method  = http.MethodPost
		APIPath = PathGet
		MaxBody = 8 * mem.KiB
		Timeout = 15 * time.Second
	)
	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		var req GetRequest
		if err := decodeRequest(r, &req); err != nil {
			Fail(w, err)
			return
		}
		if err := verifyKey(req.Key); err != nil {
			Fail(w, err)
			return
		}

		value, ok, err := config.Store.Get(r.Context(), req.Key)
		config.Metrics.Operation("get", err)
		if err != nil {
			failStore(config, w, r, err)
			return
		}

		var resp GetResponse
		if ok {
			resp.Value = &value
		}
		w.Header().Set(headers.ContentType, headers.ContentTypeJSON)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
	return API{
		Method:  Method,
		Path:    APIPath,
		MaxBody: int64(MaxBody),
		Timeout: Timeout,
		Verify:  config.Verify,
		Handler: config.Metrics.Count(config.Metrics.Latency(handler)),
	}
}

func put(config *RouterConfig) API {
	const (
		Method  = http.MethodPost
		APIPath = PathPut
		MaxBody = 1 * mem.MiB
		Timeout = 15 * time.Second
	)
	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		var req PutRequest
		if err := decodeRequest(r, &req); err != nil {
			Fail(w, err)
			return
		}
		if err := verifyKey(req.Key); err != nil {
			Fail(w, err)
			return
		}

		var err error
		if req.Value == nil {
			err = config.Store.Remove(r.Context(), req.Key)
			config.Metrics.Operation("remove", err)
		} else {
			err = config.Store.Put(r.Context(), req.Key, *req.Value)
			config.Metrics.Operation("put", err)
		}
		if err != nil {
			failStore(config, w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
	return API{
		Method:  Method,
		Path:    APIPath,
		MaxBody: int64(MaxBody),
		Timeout: Timeout,
		Verify:  config.Verify,
		Handler: config.Metrics.Count(config.Metrics.Latency(handler)),
	}
}

func remove(config *RouterConfig) API {
	const (
		Method  = http.MethodPost
		APIPath = PathRemove
		MaxBody = 8 * mem.KiB
		Timeout = 15 * time.Second
	)
	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		var req RemoveRequest
		if err := decodeRequest(r, &req); err != nil {
			Fail(w, err)
			return
		}
		if err := verifyKey(req.Key); err != nil {
			Fail(w, err)
			return
		}

		err := config.Store.Remove(r.Context(), req.Key)
		config.Metrics.Operation("remove", err)
		if err != nil {
			failStore(config, w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
	return API{
		Method:  Method,
		Path:    APIPath,
		MaxBody: int64(MaxBody),
		Timeout: Timeout,
		Verify:  config.Verify,
		Handler: config.Metrics.Count(config.Metrics.Latency(handler)),
	}
}

func clearAll(config *RouterConfig) API {
	const (
		Method  = http.MethodPost
		APIPath = PathClear
		MaxBody = 1 * mem.KiB
		Timeout = 30 * time.Second
	)
	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		err := config.Store.Clear(r.Context())
		config.Metrics.Operation("clear", err)
		if err != nil {
			failStore(config, w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
	return API{
		Method:  Method,
		Path:    APIPath,
		MaxBody: int64(MaxBody),
		Timeout: Timeout,
		Verify:  config.Verify,
		Handler: config.Metrics.Count(config.Metrics.Latency(handler)),
	}
}

func decodeRequest(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return NewError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

func verifyKey(key string) error {
	if key == "" {
		return NewError(http.StatusBadRequest, "invalid argument: key is empty")
	}
	if len(key) > MaxKeyLen {
		return NewError(http.StatusBadRequest, "invalid argument: key is too long")
	}
	if !utf8.ValidString(key) {
		return NewError(http.StatusBadRequest, "invalid argument: key is not valid UTF-8")
	}
	return nil
}

// failStore responds with a store error and logs
// server-side failures.
func failStore(config *RouterConfig, w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := IsError(err); !ok || e.Status() >= 500 {
		config.ErrorLog.ErrorContext(r.Context(), "store operation failed", slog.String("path", r.URL.Path), slog.Any("err", err))
	}
	Fail(w, err)
}
