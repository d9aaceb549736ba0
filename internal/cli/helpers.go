package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jaa/tunesort/internal/config"
)

func loadConfig(app *AppContext) (config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("resolve working directory: %w", err)
	}

	cfg, err := config.Load(config.LoadOptions{
		ExplicitPath: strings.TrimSpace(app.Opts.ConfigPath),
		WorkingDir:   wd,
	})
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func isTTY(file *os.File) bool {
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func promptYesNo(app *AppContext, prompt string) (bool, error) {
	fmt.Fprintf(app.IO.Out, "%s [y/N]: ", prompt)
	reader := bufio.NewReader(app.IO.In)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	response := strings.ToLower(strings.TrimSpace(line))
	return response == "y" || response == "yes", nil
}
