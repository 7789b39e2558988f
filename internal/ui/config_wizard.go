package ui

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"martdrop/pkg/models"
)

// ConfigWizard provides an interactive configuration setup
type ConfigWizard struct {
	currentStep int
	totalSteps  int
}

// NewConfigWizard creates a new configuration wizard
func NewConfigWizard() *ConfigWizard {
	return &ConfigWizard{
		currentStep: 1,
		totalSteps:  4,
	}
}

// Run executes the configuration wizard
func (w *ConfigWizard) Run() (*models.Config, error) {
	ShowHeader("martdrop - Configuration Setup")

	config := &models.Config{}

	steps := []func(*models.Config) error{
		w.configureWarehouseStep,
		w.configureSourcesStep,
		w.configureMartsStep,
		w.reviewConfiguration,
	}
	for _, step := range steps {
		if err := step(config); err != nil {
			if err == terminal.InterruptErr {
				return nil, fmt.Errorf("configuration cancelled")
			}
			return nil, err
		}
	}

	return config, nil
}

func (w *ConfigWizard) showProgress(title string) {
	fmt.Printf("\n%s Step %d/%d: %s\n\n",
		ColorInfo("▸"), w.currentStep, w.totalSteps, ColorBold(title))
	w.currentStep++
}

func (w *ConfigWizard) configureWarehouseStep(config *models.Config) error {
	w.showProgress("Warehouse")

	questions := []*survey.Question{
		{
			Name: "path",
			Prompt: &survey.Input{
				Message: "Database file:",
				Default: "warehouse.duckdb",
				Help:    "Path of the DuckDB file; leave empty for in-memory",
			},
		},
		{
			Name: "schema",
			Prompt: &survey.Input{
				Message: "Warehouse schema:",
				Default: "warehouse",
			},
		},
		{
			Name: "martschema",
			Prompt: &survey.Input{
				Message: "Mart schema:",
				Default: "marts",
			},
		},
	}

	answers := struct {
		Path       string
		Schema     string
		MartSchema string `survey:"martschema"`
	}{}

	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	config.Warehouse.Path = answers.Path
	config.Warehouse.Schema = answers.Schema
	config.Warehouse.MartSchema = answers.MartSchema

	var hosted bool
	if err := survey.AskOne(&survey.Confirm{
		Message: "Use the hosted variant (cloud token)?",
		Default: false,
	}, &hosted); err != nil {
		return err
	}

	if hosted {
		var token string
		if err := survey.AskOne(&survey.Password{
			Message: "Cloud token:",
			Help:    "Stored in the OS keyring when available",
		}, &token, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		config.Warehouse.CloudToken = token
		config.Warehouse.UseKeyring = true
	}

	return nil
}

func (w *ConfigWizard) configureSourcesStep(config *models.Config) error {
	w.showProgress("Sources")

	defaults := []models.Source{
		{Name: "jobs", Landing: "stg_jobs"},
		{Name: "skills", Landing: "stg_skills"},
	}

	for _, source := range defaults {
		var url string
		if err := survey.AskOne(&survey.Input{
			Message: fmt.Sprintf("CSV URL for %s:", source.Name),
			Help:    "HTTPS URL of the extract, read directly by the engine",
		}, &url, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
		source.URL = url
		config.Sources = append(config.Sources, source)
	}

	return nil
}

func (w *ConfigWizard) configureMartsStep(config *models.Config) error {
	w.showProgress("Marts")

	var kinds []string
	if err := survey.AskOne(&survey.MultiSelect{
		Message: "Built-in marts to maintain:",
		Options: []string{"flat", "monthly", "priority", "hiring"},
		Default: []string{"flat", "priority"},
	}, &kinds); err != nil {
		return err
	}

	for _, kind := range kinds {
		mart := models.Mart{
			Name:     "mart_" + kind,
			Kind:     kind,
			Strategy: models.StrategyReplace,
		}
		if kind == "priority" {
			mart.Strategy = models.StrategyReconcile
			var titles string
			if err := survey.AskOne(&survey.Input{
				Message: "Tracked titles (comma separated):",
				Default: "Data Engineer, Data Scientist",
			}, &titles); err != nil {
				return err
			}
			mart.Titles = splitTitles(titles)
		}
		config.Marts = append(config.Marts, mart)
	}

	return nil
}

func (w *ConfigWizard) reviewConfiguration(config *models.Config) error {
	w.showProgress("Review")

	PrintKeyValue("Database", displayPath(config.Warehouse.Path))
	PrintKeyValue("Schema", config.Warehouse.Schema)
	PrintKeyValue("Mart schema", config.Warehouse.MartSchema)
	PrintKeyValue("Sources", fmt.Sprintf("%d", len(config.Sources)))
	PrintKeyValue("Marts", fmt.Sprintf("%d", len(config.Marts)))

	var confirmed bool
	if err := survey.AskOne(&survey.Confirm{
		Message: "Save this configuration?",
		Default: true,
	}, &confirmed); err != nil {
		return err
	}
	if !confirmed {
		return fmt.Errorf("configuration not saved")
	}
	return nil
}

// Confirm asks a yes/no question; used before destructive rebuilds.
func Confirm(message string) (bool, error) {
	var ok bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok)
	return ok, err
}

func splitTitles(s string) []string {
	var titles []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			titles = append(titles, trimmed)
		}
	}
	return titles
}

func displayPath(path string) string {
	if path == "" {
		return "(in-memory)"
	}
	return path
}
