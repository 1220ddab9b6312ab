//go:build pixconv_debug

package pixconv

const debug = true
