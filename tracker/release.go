//go:build !lrutrack_debug

package tracker

const debugging = false
