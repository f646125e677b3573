// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package proxy

import "errors"

var (
	// ErrBadRequest is returned when the client request is not an absolute-form HTTP request.
	ErrBadRequest = errors.New("bad proxy request")
	// ErrUpstream is returned when the upstream server cannot be reached or does not answer.
	ErrUpstream = errors.New("upstream failed")
)

const (
	responseBadRequest = "HTTP/1.0 400 Bad Request\r\n\r\n"
	responseBadGateway = "HTTP/1.0 502 Bad Gateway\r\n\r\n"
)
