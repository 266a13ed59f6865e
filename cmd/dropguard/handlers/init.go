package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/sud0woodo/DROPGUARD/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the interactive configuration wizard.
	runWizard = config.RunWizard

	// writeWizardResult writes the collected answers to a file.
	writeWizardResult = func(r *config.WizardResult, path string) error {
		return r.WriteFile(path)
	}
)

// Init runs the configuration wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	if err := writeWizardResult(result, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, result)

	return nil
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Println()
	fmt.Println("dropguard - WireGuard gateways on DigitalOcean")
	fmt.Println("==============================================")
	fmt.Println()
	fmt.Println("This wizard records the settings that rarely change between runs.")
	fmt.Println("Everything can still be overridden with flags.")
	fmt.Println()
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(outputPath string, result *config.WizardResult) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	// Summary
	fmt.Println("Gateway Summary")
	fmt.Println("---------------")
	fmt.Printf("  Region:      %s\n", result.Region)
	fmt.Printf("  Size:        %s\n", result.Size)
	fmt.Printf("  Port:        %s\n", result.Port)
	fmt.Printf("  Private Key: %s\n", result.PrivateKey)
	fmt.Printf("  Output:      %s\n", result.Output)
	fmt.Println()

	// Next steps
	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Set your DigitalOcean API token:")
	fmt.Println("     export DO_TOKEN=<your-token>")
	fmt.Println()
	fmt.Println("  2. Look up the SSH keys registered with your account:")
	fmt.Println("     dropguard list --keys")
	fmt.Println()
	fmt.Println("  3. Create your gateway:")
	fmt.Println("     dropguard create -n vpn -k <key-id>")
	fmt.Println()
}
