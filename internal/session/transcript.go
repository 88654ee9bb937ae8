package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nitrr/campus-assistant/internal/model"
)

const transcriptRule = "================================================================================"
const transcriptSep = "--------------------------------------------------------------------------------"

// WriteTranscript rewrites the full conversation as a human-readable text
// file. The file is overwritten on every call; only the latest snapshot
// exists on disk, the authoritative history lives in memory.
func (s *Session) WriteTranscript(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("session: transcript dir: %w", err)
		}
	}

	var b strings.Builder
	b.WriteString(transcriptRule + "\n")
	b.WriteString("CONVERSATION LOG\n")
	b.WriteString(transcriptRule + "\n\n")

	for _, msg := range s.messages {
		b.WriteString("[" + transcriptRole(msg) + "]\n")
		b.WriteString(msg.Content + "\n")

		if msg.Role == model.RoleAssistant && len(msg.ToolCalls) > 0 {
			b.WriteString("  └── tool_calls:\n")
			for _, call := range msg.ToolCalls {
				args, err := json.MarshalIndent(call.Args, "        ", "    ")
				if err != nil {
					args = []byte("{}")
				}
				fmt.Fprintf(&b, "      - id: %s\n", call.ID)
				fmt.Fprintf(&b, "        name: %s\n", call.Name)
				fmt.Fprintf(&b, "        args: %s\n", args)
			}
		}

		b.WriteString(transcriptSep + "\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("session: write transcript: %w", err)
	}

	return nil
}

func transcriptRole(msg model.Message) string {
	switch msg.Role {
	case model.RoleUser:
		return "USER"
	case model.RoleAssistant:
		return "ASSISTANT"
	case model.RoleSystem:
		return "SYSTEM"
	case model.RoleTool:
		return fmt.Sprintf("TOOL (%s)", msg.ToolName)
	default:
		return "UNKNOWN"
	}
}
