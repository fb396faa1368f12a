// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"regexp"
	"strconv"
)

var (
	// latencyRegex matches the round-trip time token of ping output,
	// covering both "time=23.4" and the sub-millisecond "time<1" form.
	latencyRegex = regexp.MustCompile(`time[=<]([\d.]+)`)
	// ttlRegex matches the reply TTL, case-insensitive since windows
	// prints "TTL=" and unix "ttl=".
	ttlRegex = regexp.MustCompile(`(?i)ttl=(\d+)`)
)

// assumedInitialTTL infers the originating platform's default initial TTL
// from an observed reply TTL using fixed break points.
func assumedInitialTTL(ttl int) int {
	switch {
	case ttl > 128:
		return 255
	case ttl > 64:
		return 128
	default:
		return 64
	}
}

// parsePingOutput extracts latency and a hop estimate from the output of a
// successful ping. Best effort: a missing latency token leaves Latency unset
// but does not turn the reply into a loss, and a missing TTL assumes the
// common initial value of 64.
func parsePingOutput(out string) Result {
	var res Result

	if m := latencyRegex.FindStringSubmatch(out); m != nil {
		if latency, err := strconv.ParseFloat(m[1], 64); err == nil {
			res.Latency = &latency
		}
	}

	ttl := 64
	if m := ttlRegex.FindStringSubmatch(out); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			ttl = v
		}
	}
	hops := assumedInitialTTL(ttl) - ttl
	res.Hops = &hops

	return res
}
