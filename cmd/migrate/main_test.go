package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/repsejnworb/doc-migrator/pkg/codec"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// fixture lays out a change set directory, a schema directory and a config file.
func fixture(t *testing.T) (dir string, cfg Config) {
	t.Helper()
	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, "migrations", "car.json"), `{
  "subject": "car",
  "changes": [
    {"op": "added", "down": "V1", "up": "V2", "attribute": "color", "default": "red"},
    {"op": "renamed", "down": "V2", "up": "V3", "from": "name", "to": "fullName"}
  ]
}`)
	writeFile(t, filepath.Join(dir, "migrations", "truck.yaml"), `
subject: truck
changes:
  - op: modified
    down: V2
    up: V3
    attribute: price
    transform: centsToDecimal
`)
	writeFile(t, filepath.Join(dir, "schemas", "V1.json"), `{"type":"object","required":["name"]}`)
	writeFile(t, filepath.Join(dir, "migrate.yaml"), `
changes: `+filepath.Join(dir, "migrations")+`
schemas: `+filepath.Join(dir, "schemas")+`
versionAttribute: modelVersion
versions:
  scheme: enum
  symbols: [V1, V2, V3]
log:
  level: error
`)
	cfg, err := loadConfig(filepath.Join(dir, "migrate.yaml"), true)
	require.NoError(t, err)
	require.NoError(t, cfg.validate())
	return dir, cfg
}

func TestLoadConfig(t *testing.T) {
	_, cfg := fixture(t)
	assert.Equal(t, "enum", cfg.Versions.Scheme)
	assert.Equal(t, []string{"V1", "V2", "V3"}, cfg.Versions.Symbols)
	assert.Equal(t, "error", cfg.Log.Level)

	missing := filepath.Join(t.TempDir(), "none.yaml")
	def, err := loadConfig(missing, false)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), def)
	// the lexical default still needs a current version
	err = def.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--current")
	def.Versions.Current = "2024-01"
	assert.NoError(t, def.validate())

	_, err = loadConfig(missing, true)
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	base := func() Config {
		c := defaultConfig()
		c.Versions.Current = "2024-01"
		return c
	}
	require.NoError(t, base().validate())

	tests := map[string]func(*Config){
		"unknown scheme":    func(c *Config) { c.Versions.Scheme = "calendar" },
		"enum no symbols":   func(c *Config) { c.Versions.Scheme = "enum" },
		"duplicate symbols": func(c *Config) { c.Versions = VersionsConfig{Scheme: "enum", Symbols: []string{"A", "A"}} },
		"no changes dir":    func(c *Config) { c.Changes = "" },
		"no version attr":   func(c *Config) { c.VersionAttribute = "" },
		"unknown log level": func(c *Config) { c.Log.Level = "chatty" },
		"semver no current": func(c *Config) { c.Versions = VersionsConfig{Scheme: "semver"} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			assert.Error(t, c.validate())
		})
	}
}

func TestEnumRunner(t *testing.T) {
	_, cfg := fixture(t)
	r, err := newRunner(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"car", "truck"}, r.subjects())

	doc, err := r.run("car", []byte(`{"modelVersion":"V1","name":"Ann"}`), "", "")
	require.NoError(t, err)
	assert.Equal(t, `{"modelVersion":"V3","color":"red","fullName":"Ann"}`, doc.String())

	doc, err = r.run("car", []byte(doc.String()), "", "V1")
	require.NoError(t, err)
	assert.Equal(t, `{"modelVersion":"V1","name":"Ann"}`, doc.String())

	_, err = r.run("car", []byte(`{"fullName":"Ann"}`), "V3", "V2")
	require.NoError(t, err)
	// the V1 schema rejects a document without a name
	_, err = r.run("car", []byte(`{"color":"red"}`), "V2", "V1")
	assert.Error(t, err)

	doc, err = r.run("truck", []byte(`{"modelVersion":"V2","price":1999}`), "", "")
	require.NoError(t, err)
	assert.Equal(t, `{"modelVersion":"V3","price":19.99}`, doc.String())

	_, err = r.run("bus", []byte(`{}`), "", "")
	assert.ErrorIs(t, err, codec.ErrUnknownConverter)
	_, err = r.run("car", []byte(`{"modelVersion":"V7"}`), "", "")
	assert.Error(t, err)
}

func TestRunnerDescribePlanValidate(t *testing.T) {
	_, cfg := fixture(t)
	r, err := newRunner(cfg, zap.NewNop())
	require.NoError(t, err)

	rep, err := r.describe("car")
	require.NoError(t, err)
	assert.Len(t, rep.Fingerprint, 16)
	assert.Equal(t, []string{
		"Attribute color was added to car",
		"Attribute name on car was renamed to fullName",
	}, rep.Changes)

	steps, err := r.plan("car", "V1", "V3")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"upgrade V1->V2: Attribute color was added to car",
		"upgrade V2->V3: Attribute name on car was renamed to fullName",
	}, steps)

	assert.NoError(t, r.validate([]byte(`{"name":"Ann"}`), "V1"))
	assert.Error(t, r.validate([]byte(`{}`), "V1"))
	assert.Error(t, r.validate([]byte(`{}`), "V9"))
}

func TestSemverAndIntegerRunners(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "semver", "svc.yaml"), `
subject: service
changes:
  - {op: added, down: 1.0.0, up: 1.1.0, attribute: timeout, default: 30}
  - {op: removed, down: 1.1.0, up: 2.0.0, attribute: legacy}
`)
	writeFile(t, filepath.Join(dir, "integer", "svc.json"),
		`{"subject":"service","changes":[{"op":"renamed","down":"1","up":"2","from":"host","to":"address"}]}`)

	cfg := defaultConfig()
	cfg.Changes = filepath.Join(dir, "semver")
	cfg.Versions = VersionsConfig{Scheme: "semver", Current: "2.0.0"}
	r, err := newRunner(cfg, zap.NewNop())
	require.NoError(t, err)
	doc, err := r.run("service", []byte(`{"modelVersion":"1.0.0","legacy":true}`), "", "")
	require.NoError(t, err)
	assert.Equal(t, `{"modelVersion":"v2.0.0","timeout":30}`, doc.String())

	cfg.Changes = filepath.Join(dir, "integer")
	cfg.Versions = VersionsConfig{Scheme: "integer", Current: "2"}
	r, err = newRunner(cfg, zap.NewNop())
	require.NoError(t, err)
	doc, err = r.run("service", []byte(`{"modelVersion":1,"host":"db"}`), "", "")
	require.NoError(t, err)
	assert.Equal(t, `{"modelVersion":"2","address":"db"}`, doc.String())

	cfg.Versions = VersionsConfig{Scheme: "integer", Current: "two"}
	_, err = newRunner(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	dir, _ := fixture(t)
	in := filepath.Join(dir, "in.json")
	writeFile(t, in, `{"modelVersion":"V1","name":"Ann"}`)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--config", filepath.Join(dir, "migrate.yaml"),
		"--type", "car", "--in", in, "--pretty=false"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, `{"modelVersion":"V3","color":"red","fullName":"Ann"}`, strings.TrimSpace(out.String()))

	out.Reset()
	rootCmd.SetArgs([]string{"plan", "--config", filepath.Join(dir, "migrate.yaml"),
		"--type", "car", "--from", "V3", "--to", "V2"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "1. downgrade V2->V3: Attribute name on car was renamed to fullName\n", out.String())
}
