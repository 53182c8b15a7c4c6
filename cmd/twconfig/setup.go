package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// serverName is the key the MCP server is registered under in agent configs.
const serverName = "twconfig"

// agentDef describes how to detect one AI agent and register the server with it.
type agentDef struct {
	ID          string
	DisplayName string

	// Binary is set for agents configured through their own CLI
	// (`<binary> mcp add`). File agents leave it empty.
	Binary string

	// Markers are directories whose presence means the project uses the agent.
	Markers    []string
	ConfigPath string
	ServersKey string
	Extra      map[string]string
}

func (d agentDef) isCLI() bool { return d.Binary != "" }

// detectedAgent is an agent found in the current project.
type detectedAgent struct {
	Def        agentDef
	Configured bool
}

// Replaceable for testing.
var (
	lookPathFunc = exec.LookPath
	statFunc     = os.Stat
	runAgentCLI  = func(stdout, stderr io.Writer, name string, args ...string) error {
		cmd := exec.Command(name, args...)
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		return cmd.Run()
	}
)

// agents lists supported agents in display order. All registrations are
// project scoped: the server reads the config of the project it starts in.
var agents = []agentDef{
	{ID: "claude_code", DisplayName: "Claude Code", Binary: "claude", ConfigPath: ".mcp.json", ServersKey: "mcpServers"},
	{ID: "openai_codex", DisplayName: "OpenAI Codex", Binary: "codex"},
	{
		ID: "vscode_copilot", DisplayName: "VS Code Copilot",
		Markers:    []string{".vscode"},
		ConfigPath: filepath.Join(".vscode", "mcp.json"),
		ServersKey: "servers",
		Extra:      map[string]string{"type": "stdio"},
	},
	{
		ID: "cursor", DisplayName: "Cursor",
		Markers:    []string{".cursor"},
		ConfigPath: filepath.Join(".cursor", "mcp.json"),
		ServersKey: "mcpServers",
	},
}

func detectAgents() []detectedAgent {
	var detected []detectedAgent
	for _, def := range agents {
		if !agentPresent(def) {
			continue
		}
		d := detectedAgent{Def: def}
		if def.ConfigPath != "" && def.ServersKey != "" {
			d.Configured = hasServer(def.ConfigPath, def.ServersKey)
		}
		detected = append(detected, d)
	}
	return detected
}

func agentPresent(def agentDef) bool {
	if def.isCLI() {
		_, err := lookPathFunc(def.Binary)
		return err == nil
	}
	for _, marker := range def.Markers {
		if _, err := statFunc(marker); err == nil {
			return true
		}
	}
	return false
}

// hasServer reports whether the JSON file at path already registers the server.
func hasServer(path, serversKey string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var doc, servers map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	if err := json.Unmarshal(doc[serversKey], &servers); err != nil {
		return false
	}
	_, ok := servers[serverName]
	return ok
}

func serverEntry(extra map[string]string) *orderedmap.OrderedMap[string, any] {
	entry := orderedmap.New[string, any]()
	entry.Set("command", "twconfig")
	entry.Set("args", []string{"serve"})
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		entry.Set(k, extra[k])
	}
	return entry
}

// mergeServerEntry adds the server under serversKey in an agent's JSON
// config. Keys already in the file keep their order and their values are
// copied through untouched. Returns nil, nil if the server is already
// registered.
func mergeServerEntry(existing []byte, serversKey string, extra map[string]string) ([]byte, error) {
	doc := orderedmap.New[string, json.RawMessage]()
	if len(bytes.TrimSpace(existing)) > 0 {
		if err := json.Unmarshal(existing, doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers := orderedmap.New[string, json.RawMessage]()
	if raw, ok := doc.Get(serversKey); ok && string(bytes.TrimSpace(raw)) != "null" {
		if err := json.Unmarshal(raw, servers); err != nil {
			return nil, fmt.Errorf("%q is not an object: %w", serversKey, err)
		}
	}
	if _, exists := servers.Get(serverName); exists {
		return nil, nil
	}

	entry, err := json.Marshal(serverEntry(extra))
	if err != nil {
		return nil, err
	}
	servers.Set(serverName, entry)
	serversJSON, err := json.Marshal(servers)
	if err != nil {
		return nil, err
	}
	doc.Set(serversKey, serversJSON)

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func configureFileAgent(def agentDef, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	existing, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	merged, err := mergeServerEntry(existing, def.ServersKey, def.Extra)
	if err != nil {
		return fmt.Errorf("%s: %w", configPath, err)
	}
	if merged == nil {
		return nil
	}
	return writeFileAtomic(configPath, merged, nil)
}

func configureCLIAgent(w io.Writer, def agentDef) error {
	return runAgentCLI(w, w, def.Binary, "mcp", "add", "--scope", "project", serverName, "--", "twconfig", "serve")
}

// promptYesNo prints a question and reads Y/n. Empty input and EOF mean yes.
func promptYesNo(r *bufio.Scanner, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s ", question)
	if !r.Scan() {
		return true
	}
	answer := strings.TrimSpace(strings.ToLower(r.Text()))
	return answer == "" || answer == "y" || answer == "yes"
}

func (a *app) cmdSetup(args []string) int {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	auto := fs.Bool("auto", false, "configure every detected agent without prompting")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if failed := executeSetup(a.stdin, a.stdout, *auto); failed > 0 {
		return exitFailure
	}
	return exitOK
}

// executeSetup registers the server with detected agents and returns the
// number of agents that could not be configured.
func executeSetup(r io.Reader, w io.Writer, auto bool) int {
	detected := detectAgents()
	if len(detected) == 0 {
		fmt.Fprintln(w, "No supported AI agents detected.")
		return 0
	}

	fmt.Fprintln(w, "Detected AI agents:")
	for _, d := range detected {
		if d.Configured {
			fmt.Fprintf(w, "  * %s (already configured)\n", d.Def.DisplayName)
		} else {
			fmt.Fprintf(w, "  * %s\n", d.Def.DisplayName)
		}
	}
	fmt.Fprintln(w)

	// One scanner for every prompt so buffered answers are not lost.
	scanner := bufio.NewScanner(r)
	if !auto && !promptYesNo(scanner, w, "Configure agents? [Y/n]") {
		return 0
	}

	failed := 0
	for _, d := range detected {
		if d.Configured {
			fmt.Fprintf(w, "%s: already configured, skipping\n", d.Def.DisplayName)
			continue
		}
		if !auto && !promptYesNo(scanner, w, fmt.Sprintf("Add to %s? [Y/n]", d.Def.DisplayName)) {
			fmt.Fprintln(w, "  skipped")
			continue
		}

		var err error
		if d.Def.isCLI() {
			err = configureCLIAgent(w, d.Def)
		} else {
			err = configureFileAgent(d.Def, d.Def.ConfigPath)
		}
		if err != nil {
			fmt.Fprintf(w, "  ! %s: failed: %v\n", d.Def.DisplayName, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "  + %s configured\n", d.Def.DisplayName)
	}
	return failed
}
