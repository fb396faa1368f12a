// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// hopLineRegex matches a hop index followed by the rest of the line.
	hopLineRegex = regexp.MustCompile(`^\s*(\d+)\s+(.*)$`)
	// ipRegex captures an IPv4 or IPv6 literal enclosed in parentheses.
	ipRegex = regexp.MustCompile(`\(([0-9a-fA-F:\.]+)\)`)
	// rttRegex captures a numeric value followed by a millisecond unit.
	rttRegex = regexp.MustCompile(`(?i)([0-9]+\.?[0-9]*)\s*ms`)
)

// parseOutput parses the trace tool's stdout into hops.
// Lines that do not match the hop-index pattern are skipped.
func parseOutput(out string) []Hop {
	hops := []Hop{}
	for _, line := range strings.Split(out, "\n") {
		if hop, ok := parseLine(line); ok {
			hops = append(hops, hop)
		}
	}
	return hops
}

// parseLine parses a single line of trace output. The second return value
// is false when the line is not a hop line.
func parseLine(line string) (Hop, bool) {
	m := hopLineRegex.FindStringSubmatch(line)
	if m == nil {
		return Hop{}, false
	}

	index, err := strconv.Atoi(m[1])
	if err != nil {
		return Hop{}, false
	}
	rest := m[2]

	hop := Hop{
		Index:   index,
		Timeout: strings.Contains(rest, "*"),
		Raw:     strings.TrimSpace(line),
	}

	if ipm := ipRegex.FindStringSubmatch(rest); ipm != nil {
		hop.IP = ipm[1]
	}

	if fields := strings.Fields(rest); len(fields) > 0 && !strings.HasPrefix(rest, "*") {
		hop.Host = fields[0]
	}
	if hop.Host == "" {
		hop.Host = hop.IP
	}

	if rm := rttRegex.FindStringSubmatch(rest); rm != nil {
		if rtt, err := strconv.ParseFloat(rm[1], 64); err == nil {
			hop.RTT = &rtt
		}
	}

	return hop, true
}
