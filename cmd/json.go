package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/vexide/arm-toolchain/logging"
)

// Global variables for JSON mode
var (
	jsonOutput bool // Flag for JSON output
	jsonLogs   bool // Flag for JSON logs
)

// ToolchainOutput describes one toolchain version in JSON output.
type ToolchainOutput struct {
	Version   string `json:"version"`
	Path      string `json:"path,omitempty"`
	Active    bool   `json:"active,omitempty"`
	Installed bool   `json:"installed,omitempty"`
}

// CommandOutput structure for JSON output
type CommandOutput struct {
	Toolchains []ToolchainOutput `json:"toolchains,omitempty"`
	Path       string            `json:"path,omitempty"`
	BytesFreed *int64            `json:"bytes_freed,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// OutputJSON handles JSON output for all commands
func OutputJSON(data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %v", err)
	}
	logging.LogOutput("%s", jsonData)
	return nil
}
