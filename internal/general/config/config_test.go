package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
# sample
database:
  host: db.internal
  port: 5433
  user: courier
  password: "pa55"
  database: courier_dispatch

rabbitmq:
  host: mq.internal
  port: 5673
  user: mq
  password: 'mqpass'

evidence:
  dir: /var/lib/evidence

services:
  dispatch_service: 8000
  courier_service: 8001
  admin_service: 8004

jwt:
  secret_key: "super-secret"
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 5433 {
		t.Fatalf("database section wrong: %+v", cfg.Database)
	}
	if cfg.Database.Password != "pa55" {
		t.Fatalf("quotes must be stripped, got %q", cfg.Database.Password)
	}
	if cfg.RabbitMQ.Password != "mqpass" {
		t.Fatalf("single quotes must be stripped, got %q", cfg.RabbitMQ.Password)
	}
	if cfg.Evidence.Dir != "/var/lib/evidence" {
		t.Fatalf("evidence dir wrong: %q", cfg.Evidence.Dir)
	}
	if cfg.Services.CourierServicePort != 8001 || cfg.Services.AdminServicePort != 8004 {
		t.Fatalf("service ports wrong: %+v", cfg.Services)
	}
	if cfg.JWT.SecretKey != "super-secret" {
		t.Fatalf("jwt secret wrong: %q", cfg.JWT.SecretKey)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  user: courier
  password: pw
  database: courier_dispatch

rabbitmq:
  user: mq
  password: pw
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Fatalf("database defaults not applied: %+v", cfg.Database)
	}
	if cfg.Services.DispatchServicePort != 3000 {
		t.Fatalf("service port default not applied: %d", cfg.Services.DispatchServicePort)
	}
	if cfg.Evidence.Dir != "data/evidence" {
		t.Fatalf("evidence default not applied: %q", cfg.Evidence.Dir)
	}
	if cfg.JWT.SecretKey == "" {
		t.Fatalf("missing secret must be generated, not left empty")
	}
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost

rabbitmq:
  host: localhost
`)

	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "database.user is required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
database:
  hostname: localhost
`)
	if _, err := LoadFromFile(path); err == nil {
		t.Fatalf("expected unknown key to fail")
	}

	path = writeConfig(t, `
storage:
  dir: /tmp
`)
	if _, err := LoadFromFile(path); err == nil {
		t.Fatalf("expected unknown section to fail")
	}
}
