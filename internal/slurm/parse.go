package slurm

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const directivePrefix = "#SBATCH"

// ParsedScript holds what a submission script declares: every scheduler
// directive in file order, plus the payload command after the separator.
type ParsedScript struct {
	JobName     string     // value of the -J directive, if any
	Directives  Directives // every #SBATCH directive, in file order
	Exports     []EnvVar   // export assignments ahead of the command
	Command     string     // payload command after the separator line
	HasShebang  bool       // first line is an interpreter line
	StrictSetup bool       // a fail-fast set -e line precedes the payload
}

// ParseScriptFile reads a submission script from disk and parses it.
func ParseScriptFile(path string) (*ParsedScript, error) {
	lines, err := readFileLines(path)
	if err != nil {
		return nil, err
	}
	return parseScriptLines(lines), nil
}

// ParseScript parses submission script text.
func ParseScript(content string) *ParsedScript {
	return parseScriptLines(strings.Split(content, "\n"))
}

// readFileLines opens a file and returns all its lines.
func readFileLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading script: %w", err)
	}
	return lines, nil
}

func parseScriptLines(lines []string) *ParsedScript {
	parsed := &ParsedScript{}
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		parsed.HasShebang = true
	}

	inPayload := false
	var payload []string

	for _, line := range lines {
		if inPayload {
			payload = append(payload, line)
			continue
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == payloadSeparator:
			inPayload = true
		case strings.HasPrefix(trimmed, "set -e"):
			parsed.StrictSetup = true
		case strings.HasPrefix(trimmed, directivePrefix):
			raw := strings.TrimSpace(strings.TrimPrefix(trimmed, directivePrefix))
			if d, ok := parseDirective(raw); ok {
				parsed.Directives = append(parsed.Directives, d)
				if d.Key == "J" {
					parsed.JobName = d.Value
				}
			}
		case strings.HasPrefix(trimmed, "export "):
			kv := strings.TrimPrefix(trimmed, "export ")
			if key, value, found := strings.Cut(kv, "="); found && key != "" {
				parsed.Exports = append(parsed.Exports, EnvVar{Key: key, Value: value})
			}
		}
	}

	parsed.Command = strings.Join(payload, "\n")
	return parsed
}

// parseDirective decodes one raw directive in either rendered form:
// "--key=value" (also tolerating "--key value") or "-k value".
func parseDirective(raw string) (Directive, bool) {
	if raw == "" {
		return Directive{}, false
	}
	if strings.HasPrefix(raw, "--") {
		body := strings.TrimPrefix(raw, "--")
		if key, value, found := strings.Cut(body, "="); found {
			return Directive{Key: key, Value: value}, key != ""
		}
		key, value, _ := strings.Cut(body, " ")
		return Directive{Key: key, Value: strings.TrimSpace(value)}, key != ""
	}
	if strings.HasPrefix(raw, "-") {
		body := strings.TrimPrefix(raw, "-")
		key, value, _ := strings.Cut(body, " ")
		return Directive{Key: key, Value: strings.TrimSpace(value)}, key != ""
	}
	return Directive{}, false
}
