// SPDX-License-Identifier: EPL-2.0

package loader

import "errors"

var (
	ErrNoContext = errors.New("loader: no audio output context")
	ErrNoURL     = errors.New("loader: no source url")
	ErrStatus    = errors.New("loader: unexpected http status")
)
