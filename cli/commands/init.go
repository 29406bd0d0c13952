package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
)

type initTemplateData struct {
	ProjectName  string
	Provider     string
	DefaultModel string
}

var initDefaults = map[string]string{
	"openai": "gpt-4o",
	"ollama": "llama3.2",
}

func (a *App) newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <project-name>",
		Short: "Scaffold a new project",
		Long: `Create a new project directory with a config file and a minimal
main.go wired to the selected provider.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(args[0])
		},
	}

	cmd.Flags().StringVar(&a.initProvider, "with-provider", "openai", "provider to scaffold (openai, ollama)")

	return cmd
}

func (a *App) runInit(name string) error {
	if name == "rill" {
		return &exitError{ExitValidation, fmt.Errorf("%q is a reserved project name", name)}
	}
	model, ok := initDefaults[a.initProvider]
	if !ok {
		return &exitError{ExitValidation, fmt.Errorf("unsupported provider %q for init", a.initProvider)}
	}

	if _, err := os.Stat(name); err == nil {
		return &exitError{ExitValidation, fmt.Errorf("directory %q already exists", name)}
	}
	if err := os.MkdirAll(name, 0755); err != nil {
		return err
	}

	data := initTemplateData{
		ProjectName:  name,
		Provider:     a.initProvider,
		DefaultModel: model,
	}

	files := map[string]string{
		"rill.yaml": configTemplate,
		"main.go":   mainTemplate,
	}
	for file, tmpl := range files {
		if err := writeTemplate(filepath.Join(name, file), tmpl, data); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.stdout, "Created project %s\n", name)
	fmt.Fprintf(a.stdout, "  cd %s && go mod init %s && go mod tidy\n", name, name)
	return nil
}

func writeTemplate(path, tmpl string, data initTemplateData) error {
	t, err := template.New(filepath.Base(path)).Parse(tmpl)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return t.Execute(f, data)
}

const configTemplate = `# {{.ProjectName}} configuration
default_provider: {{.Provider}}
default_model: {{.DefaultModel}}

retry:
  max_attempts: 3
  base_delay: 1s
  max_delay: 30s
`

const mainTemplate = `package main

import (
	"context"
	"fmt"
	"log"
{{if eq .Provider "openai"}}
	"github.com/rill-labs/rill/core"
	"github.com/rill-labs/rill/providers/openai"
{{else}}
	"github.com/rill-labs/rill/core"
	"github.com/rill-labs/rill/providers/ollama"
{{end}})

func main() {
{{if eq .Provider "openai"}}	provider, err := openai.NewFromEnv()
	if err != nil {
		log.Fatal(err)
	}
{{else}}	provider := ollama.New()
{{end}}
	client := core.NewClient(provider)

	resp, err := client.
		Chat("{{.DefaultModel}}").
		User("Hello! Introduce yourself in one sentence.").
		GetResponse(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.Output)
}
`
