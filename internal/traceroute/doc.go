// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package traceroute wraps the platform's multi-hop trace tool
// (traceroute on unix, tracert on windows) behind a Client interface.
// The tool is invoked once per call under a hard wall-clock timeout and
// its textual output is parsed heuristically into per-hop records. Lines
// that do not look like hop lines are skipped; the original line is kept
// on every hop since the parsing is diagnostic, not authoritative.
package traceroute
