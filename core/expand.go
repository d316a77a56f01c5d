package core

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"text/template"
)

var expandFuncs = template.FuncMap{
	"env": func(envvar string) string {
		return os.Getenv(envvar)
	},
	// envOr returns the value of the first non-empty variable
	"envOr": func(envvars ...string) string {
		for _, v := range envvars {
			if val := os.Getenv(v); val != "" {
				return val
			}
		}
		return ""
	},
	"exec": func(line string) (string, error) {
		if strings.Contains(line, " | ") {
			out, err := exec.Command("sh", "-c", line).Output()
			return strings.TrimSpace(string(out)), err
		}

		l := strings.Fields(line)
		if len(l) < 1 {
			return "", errors.New("no command provided")
		}

		out, err := exec.Command(l[0], l[1:]...).Output()
		return strings.TrimSpace(string(out)), err
	},
}

func expand(value string) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}

	tmpl, err := template.New("expand_variables").Funcs(expandFuncs).Parse(value)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	err = tmpl.Execute(&out, nil)
	if err != nil {
		return "", err
	}

	return out.String(), nil
}

// expandOrDefault silently suppresses errors.
func expandOrDefault(value string) string {
	ex, err := expand(value)
	if err != nil {
		return value
	}
	return ex
}
