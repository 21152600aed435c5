// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF and AIFF-C (uncompressed) files through
// github.com/go-audio/aiff. 8, 16, 24 and 32-bit integer PCM are scaled to
// float32 in [-1.0, 1.0]. Non-seekable input is buffered in memory first.
package aiff
