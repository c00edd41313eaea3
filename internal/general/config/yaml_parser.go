package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// setter assigns one "key: value" pair into cfg.
type setter func(cfg *Config, val string) error

// sectionKeys maps each top-level section to its known keys. Any other
// section or key is a hard error: config typos fail at startup, not in
// production as a silently applied default.
var sectionKeys = map[string]map[string]setter{
	"database": {
		"host":     func(c *Config, v string) error { c.Database.Host = v; return nil },
		"port":     func(c *Config, v string) error { return setPort(&c.Database.Port, "database.port", v) },
		"user":     func(c *Config, v string) error { c.Database.User = v; return nil },
		"password": func(c *Config, v string) error { c.Database.Password = v; return nil },
		"database": func(c *Config, v string) error { c.Database.Name = v; return nil },
	},
	"rabbitmq": {
		"host":     func(c *Config, v string) error { c.RabbitMQ.Host = v; return nil },
		"port":     func(c *Config, v string) error { return setPort(&c.RabbitMQ.Port, "rabbitmq.port", v) },
		"user":     func(c *Config, v string) error { c.RabbitMQ.User = v; return nil },
		"password": func(c *Config, v string) error { c.RabbitMQ.Password = v; return nil },
	},
	"evidence": {
		"dir": func(c *Config, v string) error { c.Evidence.Dir = v; return nil },
	},
	"services": {
		"dispatch_service": func(c *Config, v string) error {
			return setPort(&c.Services.DispatchServicePort, "services.dispatch_service", v)
		},
		"courier_service": func(c *Config, v string) error {
			return setPort(&c.Services.CourierServicePort, "services.courier_service", v)
		},
		"admin_service": func(c *Config, v string) error {
			return setPort(&c.Services.AdminServicePort, "services.admin_service", v)
		},
	},
	"jwt": {
		"secret_key": func(c *Config, v string) error { c.JWT.SecretKey = v; return nil },
	},
}

// parseYAML reads the two-level section/key mapping used by config.yaml.
// This is deliberately not a general YAML parser: flat sections of scalar
// keys are all the file format allows.
func parseYAML(r io.Reader, cfg *Config) error {
	scanner := bufio.NewScanner(r)

	var current map[string]setter
	var currentName string
	seen := map[string]bool{}
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}
		line := strings.TrimRight(raw, " \t\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// unindented lines open a section
		if line[0] != ' ' && line[0] != '\t' {
			name := strings.TrimSuffix(strings.TrimSpace(line), ":")
			keys, ok := sectionKeys[name]
			if !ok {
				return fmt.Errorf("line %d: unknown top-level key %q", lineNo, name)
			}
			if seen[name] {
				return fmt.Errorf("line %d: duplicate %q section", lineNo, name)
			}
			seen[name] = true
			current, currentName = keys, name
			continue
		}

		if current == nil {
			return fmt.Errorf("line %d: key without a section", lineNo)
		}

		trim := strings.TrimSpace(line)
		colon := strings.IndexByte(trim, ':')
		if colon <= 0 {
			return fmt.Errorf("line %d: expected 'key: value'", lineNo)
		}
		key := strings.TrimSpace(trim[:colon])
		val := resolveScalar(trim[colon+1:])

		set, ok := current[key]
		if !ok {
			return fmt.Errorf("line %d: unknown key in %s: %q", lineNo, currentName, key)
		}
		if err := set(cfg, val); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	return scanner.Err()
}

func setPort(dst *int, field, val string) error {
	p, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("%s must be int: %v", field, err)
	}
	*dst = p
	return nil
}

// resolveScalar trims whitespace and strips one layer of surrounding quotes,
// so `secret_key: "abc"` stores abc and not "abc".
func resolveScalar(s string) string {
	s = strings.TrimSpace(s)

	n := len(s)
	if n >= 2 {
		if (s[0] == '"' && s[n-1] == '"') || (s[0] == '\'' && s[n-1] == '\'') {
			if unq, err := strconv.Unquote(s); err == nil {
				return unq
			}
			return s[1 : n-1]
		}
	}

	return s
}
