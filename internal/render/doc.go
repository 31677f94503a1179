// Package render provides session.Renderer implementations.
//
//   - Terminal writes colored lines for an interactive client and shows a
//     typing line while a request is outstanding.
//   - HTML writes message bubbles as HTML fragments, suitable for a
//     transcript file or an embedding page.
//   - Multi fans each event out to several renderers in order.
package render
