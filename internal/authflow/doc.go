// Package authflow drives the sign-in form shared by every front end.
//
// A Flow owns the two pieces of form state, the active Variant (login or
// register) and whether a request is in flight. Submit and SocialAction
// dispatch to the external collaborators, report the outcome through a
// Notifier and always clear the loading state on the way out, whatever the
// outcome. A second submission while one is in flight is refused with
// ErrBusy instead of racing the first.
//
// Renderers observe the state through State and Subscribe; they never
// mutate it directly.
package authflow
