// Package toast shows transient notifications inside a dom.Document.
//
// A Notifier owns its toast registry and its container element; create one
// per document. Each toast is a <div class="toast"> appended to a fixed
// container, faded in one tick after insertion, and removed automatically
// after a short (3s) or long (6s) delay:
//
//	n := toast.New(doc)
//	id := n.Show("Saved", false)
//	...
//	n.Remove(id) // early dismissal; a second call is a no-op
//
// Removal fades the toast out (opacity 0) immediately and detaches the node
// once the fade transition has had time to finish.
//
// # Levels
//
// ShowLevel and the Success, Error, Warning and Info helpers add a
// toast-{level} class so a stylesheet can tell them apart.
//
// # Client Delivery
//
// A Notifier can forward every show and remove to an Emitter. Hub is an
// Emitter that broadcasts toast events to browsers over WebSocket as
//
//	{"type": "domkit:toast", "detail": {"id": 1, "level": "info", "message": "...", "action": "show"}}
//
// so the page can mirror the server-side toasts with any toast library.
package toast
