// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned when the trace tool is not installed on the host.
	ErrUnavailable = errors.New("traceroute binary not found on host")
	// ErrTimeout is returned when a trace run exceeds its wall-clock bound.
	// The underlying process is killed before this is returned.
	ErrTimeout = errors.New("traceroute timed out")
	// ErrInvalidAddress is returned when the target address is not an IP literal.
	ErrInvalidAddress = errors.New("invalid trace address")
)

// ErrExit is returned when the trace tool exits with a code outside its
// accepted set, carrying the tool's diagnostic output.
type ErrExit struct {
	Code   int
	Stderr string
}

func (e ErrExit) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("traceroute failed with exit code %d", e.Code)
	}
	return fmt.Sprintf("traceroute failed with exit code %d: %s", e.Code, e.Stderr)
}
