// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package kestrel

import (
	"errors"
	"fmt"
)

// ErrFinalShutdown is returned by Run after a completed shutdown.
var ErrFinalShutdown = errors.New("kestrel was shut down")

// ErrShutdown holds any errors that may
// have occurred during shutdown of kestrel
type ErrShutdown struct {
	errAPI     error
	errMetrics error
}

// HasError returns true if any of the errors are set
func (e ErrShutdown) HasError() bool {
	return e.errAPI != nil || e.errMetrics != nil
}

type ErrCreateOpenapiSchema struct {
	name string
	err  error
}

func (e ErrCreateOpenapiSchema) Error() string {
	return fmt.Sprintf("failed to create schema for %s: %v", e.name, e.err)
}
