// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import "errors"

var (
	// ErrInvalidListeningAddress is returned when the listening address is invalid
	ErrInvalidListeningAddress = errors.New("invalid listening address")
	// ErrInvalidRoute is returned when a route misses its path or handler
	ErrInvalidRoute = errors.New("invalid route")
)
