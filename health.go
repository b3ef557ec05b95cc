package main

import (
	"fmt"
	"net/http"
	"strconv"
)

// healthController answers liveness probes. The revision of the last
// published view is reported in X-World-Revision.
type healthController struct {
	broker *Broker
}

func (c healthController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if c.broker != nil {
		if v, ok := c.broker.Latest(); ok {
			w.Header().Set("X-World-Revision", strconv.FormatUint(v.Revision, 10))
		}
	}
	fmt.Fprintf(w, "Healthy\n")
}
