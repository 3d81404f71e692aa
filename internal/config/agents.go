package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// agentFileName is the per-agent definition file inside agents/<name>/.
const agentFileName = "agent.yaml"

// LoadAgents reads every agent definition under the agents directory.
// Each agent lives in its own subdirectory containing agent.yaml and a
// soul file with the persona text. Agents are returned sorted by name so
// the roster and router order are deterministic.
func LoadAgents(agentsDir string) ([]AgentConfig, error) {
	entries, err := os.ReadDir(agentsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("agents directory does not exist: %s", agentsDir)
		}
		return nil, fmt.Errorf("failed to read agents directory: %w", err)
	}

	var agents []AgentConfig
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		agentDir := filepath.Join(agentsDir, entry.Name())
		agent, err := loadAgent(agentDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load agent %s: %w", entry.Name(), err)
		}
		agents = append(agents, agent)
	}

	if len(agents) == 0 {
		return nil, fmt.Errorf("no agents defined in %s", agentsDir)
	}

	sort.Slice(agents, func(i, j int) bool {
		return agents[i].Name < agents[j].Name
	})

	return agents, nil
}

// loadAgent reads one agent definition from its directory.
func loadAgent(agentDir string) (AgentConfig, error) {
	data, err := os.ReadFile(filepath.Join(agentDir, agentFileName))
	if err != nil {
		return AgentConfig{}, fmt.Errorf("failed to read %s: %w", agentFileName, err)
	}

	var agent AgentConfig
	if err := yaml.Unmarshal(data, &agent); err != nil {
		return AgentConfig{}, fmt.Errorf("failed to parse %s: %w", agentFileName, err)
	}

	if agent.Name == "" {
		agent.Name = filepath.Base(agentDir)
	}
	if agent.Soul == "" {
		agent.Soul = "soul.md"
	}

	soulText, err := LoadSoul(filepath.Join(agentDir, agent.Soul))
	if err != nil {
		return AgentConfig{}, err
	}
	agent.SoulText = soulText

	return agent, nil
}

// LoadSoul reads an agent's persona file.
func LoadSoul(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read soul file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SoulSummary returns the first non-empty line of an agent's soul text,
// used as the role summary in classification prompts.
func (a AgentConfig) SoulSummary() string {
	for _, line := range strings.Split(a.SoulText, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return "Hive agent"
}
