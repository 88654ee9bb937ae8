// Package assets holds prompt text embedded into the binary.
package assets

import _ "embed"

// SystemInstruction is the agent's system prompt.
//
//go:embed system_prompt.md
var SystemInstruction string
