// Package process terminates the headless browser process tree left behind
// after PDF rendering. Errors are ignored: the browser may already be gone.
package process
