// Package routing decides which engine family handles a task description.
//
//   - Keyword: case-insensitive substring match against a fixed keyword list;
//     the first match sends the task to the dialogue path, no match to the task path
//   - Fixed: always the same path
//
// Routing never inspects anything but the task text.
package routing
