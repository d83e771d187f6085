// Copyright (C) 2015  Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package monitor registers the debug HTTP handlers an operator uses
// to inspect and adjust a running detector process: an index page,
// expvar counters, pprof profiles, and a dynamic glog verbosity
// control, all served alongside the Prometheus metrics endpoint.
package monitor

import (
	_ "expvar" // Go documentation recommended usage
	"fmt"
	"net/http"
	_ "net/http/pprof" // Go documentation recommended usage
)

func debugHandler(w http.ResponseWriter, r *http.Request) {
	indexTmpl := `<html>
	<head>
	<title>/debug</title>
	</head>
	<body>
	<p>/debug</p>
	<div><a href="/debug/vars">vars</a></div>
	<div><a href="/debug/pprof">pprof</a></div>
	<div><a href="/debug/vars/pretty">vars (pretty)</a></div>
	<div><a href="/debug/loglevel">loglevel</a></div>
	</body>
	</html>
	`
	fmt.Fprint(w, indexTmpl)
}

func varsPrettyHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, VarsToString())
}

// RegisterDebugHandlers attaches the /debug index, /debug/vars/pretty,
// and /debug/loglevel handlers to mux. expvar and pprof register
// themselves against http.DefaultServeMux on import, so this is only
// complete when mux is http.DefaultServeMux.
func RegisterDebugHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/debug", debugHandler)
	mux.HandleFunc("/debug/vars/pretty", varsPrettyHandler)
	mux.Handle("/debug/loglevel", newLogsetSrv())
}
