package utils

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

/**
 * Render command and args templates
 * @param {string} command - Command template, e.g. "{{.Node}}"
 * @param {[]string} args - Argument templates, e.g. ["{{.Entry}}"]
 * @param {interface{}} data - Template data
 * @returns {string} Rendered command
 * @returns {[]string} Rendered arguments, empty results are dropped
 */
func GetCommandLine(command string, args []string, data interface{}) (string, []string, error) {
	cmdStr, err := render("command", command, data)
	if err != nil {
		return "", nil, err
	}

	var processedArgs []string
	for _, arg := range args {
		s, err := render("arg", arg, data)
		if err != nil {
			return "", nil, err
		}
		if s = strings.TrimSpace(s); s != "" {
			processedArgs = append(processedArgs, s)
		}
	}
	return strings.TrimSpace(cmdStr), processedArgs, nil
}

func render(name, text string, data interface{}) (string, error) {
	tpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template '%s': %w", name, text, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template '%s': %w", name, text, err)
	}
	return buf.String(), nil
}
