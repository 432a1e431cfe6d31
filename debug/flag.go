//go:build !debug

package debug

// Debug reports whether the binary was built with the debug tag. When set,
// builder calls record full creation stacks on operations.
const Debug = false
