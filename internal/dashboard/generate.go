package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"aether-sim/internal/telemetry"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Render parses the embedded Grafana dashboard templates and writes the
// rendered dashboards to outDir. Templates may call env to read required
// environment variables and decisionTable or summaryTable for the GreptimeDB
// table names.
func Render(outDir string) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
		"decisionTable": func() string { return telemetry.DecisionTableName },
		"summaryTable":  func() string { return telemetry.SummaryTableName },
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	names, err := templates.ReadDir("templates")
	if err != nil {
		return err
	}
	for _, entry := range names {
		name := entry.Name()
		t, err := template.New(name).Funcs(funcMap).ParseFS(templates, "templates/"+name)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(name, ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, nil); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
