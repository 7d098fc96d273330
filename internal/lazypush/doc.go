// Package lazypush commits every local change and pushes it to the tracked remote branch in one step.
//
// Service runs the fixed git sequence: status check, optional pull, add,
// commit, push, and a single pull --rebase and push retry when the first push
// is rejected. Every terminal condition prints exactly one status line through
// the Reporter. CommandBuilder exposes the workflow as the lazypush cobra
// command and ParseOptions implements its strict flag contract.
package lazypush
