// SPDX-License-Identifier: EPL-2.0

package decoder

import "errors"

var (
	ErrNoRegistry     = errors.New("decoder: no format registry")
	ErrNoSampleRate   = errors.New("decoder: context backend needs an output sample rate")
	ErrUnknownBackend = errors.New("decoder: unknown backend")
	ErrEmptyData      = errors.New("decoder: empty input")
	ErrNoProgress     = errors.New("decoder: native source returned no data")
)
