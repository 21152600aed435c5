// SPDX-License-Identifier: EPL-2.0

// Package loader fetches audio over http(s) or from disk, reports progress
// and drives the decode.
package loader
