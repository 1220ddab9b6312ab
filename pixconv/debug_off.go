//go:build !pixconv_debug

package pixconv

const debug = false
