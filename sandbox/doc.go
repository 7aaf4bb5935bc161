// Package sandbox executes validated custom log expressions in a
// restricted Lua environment. Each evaluation runs in a fresh state
// that exposes exactly the merged variable context plus a small fixed
// set of safe utility libraries; no process, file, network, or host
// global access is reachable from the scope by construction.
package sandbox
