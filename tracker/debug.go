//go:build lrutrack_debug

package tracker

// debugging enables a full Validate after every mutation.
const debugging = true
