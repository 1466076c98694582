// Package events implements the in-process event bus used by the container
// lifecycle.
//
// Every emission produces an *Event. Subscribers run synchronously in
// subscription order and may register asynchronous work on the event with
// Event.Go; Emit returns only after every registered task has finished and
// reports all of their failures joined together. This lets features attach
// teardown work to "stopping" without the lifecycle knowing about it ahead
// of time.
package events
