package cmd

import (
    "fmt"

    "github.com/spf13/cobra"

    "martdrop/internal/config"
    "martdrop/internal/ui"
)

var setupForce bool

var setupCmd = &cobra.Command{
    Use:   "setup",
    Short: "Interactive configuration setup",
    Long: `Walk through warehouse, source and mart configuration and write
the result to the config file. The cloud token, when given, is stored
in the OS keyring or encrypted in the config file.`,
    RunE: runSetup,
}

func init() {
    rootCmd.AddCommand(setupCmd)

    setupCmd.Flags().BoolVarP(&setupForce, "force", "f", false, "Overwrite an existing configuration")
}

func runSetup(cmd *cobra.Command, args []string) error {
    if config.Exists() && !setupForce {
        ok, err := ui.Confirm("Configuration already exists. Overwrite?")
        if err != nil {
            return err
        }
        if !ok {
            ui.ShowInfo("Setup cancelled")
            return nil
        }
    }

    wizard := ui.NewConfigWizard()
    appConfig, err := wizard.Run()
    if err != nil {
        ui.ShowError(err)
        return err
    }

    // Prefer the keyring for the token; fall back to the encrypted
    // config field when no keyring backend is available.
    if appConfig.Warehouse.CloudToken != "" && appConfig.Warehouse.UseKeyring {
        if err := config.StoreCloudToken(appConfig.Warehouse.CloudToken); err == nil {
            appConfig.Warehouse.CloudToken = ""
        } else {
            ui.ShowWarning(fmt.Sprintf("Keyring unavailable, encrypting token in config: %v", err))
            appConfig.Warehouse.UseKeyring = false
        }
    }

    if err := config.EncryptConfigSecrets(appConfig); err != nil {
        ui.ShowError(err)
        return err
    }

    if err := config.Save(appConfig); err != nil {
        ui.ShowError(err)
        return err
    }

    ui.ShowSuccess(fmt.Sprintf("Configuration saved to %s", config.GetConfigFile()))
    return nil
}
