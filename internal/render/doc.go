// Package render draws collected rows.
//
// Two strategies implement [Renderer]:
//
//   - Progressive: a bubbletea program on the terminal. The skeleton is
//     drawn immediately and each cell fills in once its fact settles;
//     pending cells spin and timed-out cells show ⧖. A cell that has
//     settled is frozen and never redrawn with different content.
//   - Batch: buffers every update and writes one complete snapshot on
//     Finish, either as a table or as a JSON array.
//
// [Select] chooses one once per command. Nothing upstream knows which is
// active. Timeouts and failures are summarised by [WriteFooter] on stderr
// after the primary output.
package render
