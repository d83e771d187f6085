// Copyright (c) 2021 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package monitor

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegisterDebugHandlersServesIndex(t *testing.T) {
	mux := http.NewServeMux()
	RegisterDebugHandlers(mux)

	req := httptest.NewRequest(http.MethodGet, "/debug", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "/debug/pprof") {
		t.Fatalf("expected index to link pprof, got %q", body)
	}
}

func TestRegisterDebugHandlersRejectsGetOnLoglevel(t *testing.T) {
	mux := http.NewServeMux()
	RegisterDebugHandlers(mux)

	req := httptest.NewRequest(http.MethodGet, "/debug/loglevel", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-POST request, got %d", rec.Code)
	}
}

func TestRegisterDebugHandlersAppliesGlogVerbosity(t *testing.T) {
	mux := http.NewServeMux()
	RegisterDebugHandlers(mux)

	req := httptest.NewRequest(http.MethodPost, "/debug/loglevel?glog=2", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
