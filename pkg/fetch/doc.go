// Package fetch issues HTTP requests and normalizes every failure into a
// Problem.
//
// A request carries either a JSON payload or a multipart Form, never both.
// Successful (2xx) responses are returned untouched with the body unread.
// Anything else becomes a Problem:
//
//   - a non-2xx response whose JSON body has status/detail fields uses them,
//     falling back to the HTTP status, the body's message field, and finally
//     "An error occurred: {status}"
//   - a non-2xx response with a non-JSON body gets the generated detail
//   - a transport failure (refused connection, DNS, cancelled context) gets
//     status 0 and NetworkErrorDetail
//
// Request only returns an error for caller mistakes such as passing both
// bodies. Network and HTTP failures are values, so callers branch on one
// shape:
//
//	resp, err := client.Request(ctx, "/api/items", http.MethodPost, item, nil)
//	if err != nil {
//	    return err
//	}
//	defer resp.Close()
//	if !resp.OK() {
//	    fetch.Display(resp, notifier)
//	    return nil
//	}
//
// Display hands a response's detail field to any Notifier; toast.Notifier
// satisfies the interface.
package fetch
