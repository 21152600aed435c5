// SPDX-License-Identifier: EPL-2.0

package opus

import "errors"

// ErrUnsupportedChannels is returned for multichannel (surround) streams.
var ErrUnsupportedChannels = errors.New("only mono and stereo Ogg Opus is supported")
