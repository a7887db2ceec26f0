// Package events carries lifecycle events from the services that commit a
// state change to the components that react to it.
//
// Services emit an Event after their unit of work commits. Handlers such as
// the notification fanout receive it synchronously from the emitter and must
// not fail the emitting operation; the emitter only logs handler errors.
package events
