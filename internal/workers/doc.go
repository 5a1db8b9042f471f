// Package workers bounds how many units of work run at once.
//
// A Pool hands out a fixed number of slots. Do blocks until a slot is free,
// runs the function on the calling goroutine, and releases the slot when the
// function returns. Work that has been admitted always runs to completion;
// only the wait for a slot can be abandoned through the context.
package workers
