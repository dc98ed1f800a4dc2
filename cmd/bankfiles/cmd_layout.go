package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/layout"
	"github.com/joseph-ayodele/bankfiles/internal/layoutconfig"
	"github.com/joseph-ayodele/bankfiles/internal/services/export"
	"github.com/joseph-ayodele/bankfiles/internal/services/layouts"
)

var detectCmd = &cobra.Command{
	Use:   "detect <file>",
	Short: "Detect whether a file is CNAB 240 or CNAB 400",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		content := layout.Decode(data)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d lines\n", layout.Detect(content), len(layout.Lines(content)))
		return nil
	},
}

var classifyKind string

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Print the record type of every line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		content := layout.Decode(data)
		kind, err := kindOrDetect(classifyKind, content)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, l := range layout.ClassifyAll(content, kind) {
			fmt.Fprintf(out, "%d\t%s\t%s\n", l.Ordinal, l.Type, l.Type.Key(kind))
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyKind, "kind", "", "force the kind (240, 400)")
}

func kindOrDetect(flag, content string) (constants.Kind, error) {
	if flag == "" {
		return layout.Detect(content), nil
	}
	return constants.ParseKind(flag)
}

var (
	genBank    string
	genName    string
	genKind    string
	genOut     string
	genSave    bool
	genDefault bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <sample-file>",
	Short: "Generate a layout configuration from a sample file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		cfg, err := a.layouts.Generate(cmd.Context(), layouts.GenerateRequest{
			BankID:      genBank,
			Name:        genName,
			Content:     layout.Decode(data),
			Kind:        genKind,
			Persist:     genSave,
			MakeDefault: genDefault,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd, genOut, cfg)
	},
}

func init() {
	generateCmd.Flags().StringVar(&genBank, "bank", "", "bank code (required)")
	generateCmd.Flags().StringVar(&genName, "name", "", "configuration name (required)")
	generateCmd.Flags().StringVar(&genKind, "kind", "", "force the kind (240, 400)")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "write the configuration JSON to this file")
	generateCmd.Flags().BoolVar(&genSave, "save", false, "store the configuration")
	generateCmd.Flags().BoolVar(&genDefault, "default", false, "make it the bank's default (with --save)")
	_ = generateCmd.MarkFlagRequired("bank")
	_ = generateCmd.MarkFlagRequired("name")
}

var (
	extBank     string
	extConfig   string
	extConfigID string
	extXLSX     string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract detail records with a configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var res *layouts.ExtractResult
		if extConfig != "" {
			raw, err := os.ReadFile(extConfig)
			if err != nil {
				return err
			}
			cfg, err := layoutconfig.Decode(raw)
			if err != nil {
				return err
			}
			res = a.layouts.ExtractWith(cfg, layout.Decode(data))
		} else {
			res, err = a.layouts.Extract(cmd.Context(), layouts.ExtractRequest{
				BankID:          extBank,
				ConfigurationID: extConfigID,
				Content:         layout.Decode(data),
			})
			if err != nil {
				return err
			}
		}

		if extXLSX != "" {
			xlsx, err := export.NewService(a.logger).RecordsXLSX(res.Records)
			if err != nil {
				return err
			}
			if err := os.WriteFile(extXLSX, xlsx, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d records written to %s\n", len(res.Records), extXLSX)
			return nil
		}
		return writeJSON(cmd, "", res.Records)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extBank, "bank", "", "bank code; its default configuration is used")
	extractCmd.Flags().StringVar(&extConfig, "config", "", "configuration JSON file")
	extractCmd.Flags().StringVar(&extConfigID, "config-id", "", "stored configuration id")
	extractCmd.Flags().StringVar(&extXLSX, "xlsx", "", "write records to this workbook instead of stdout")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stored layout configurations",
}

var importDefault bool

var configImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Validate and store a configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		cfg, err := layoutconfig.Decode(data)
		if err != nil {
			return err
		}
		if importDefault {
			cfg.IsDefault = true
		}
		saved, err := a.layouts.Save(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
		return nil
	},
}

var listBank string

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored configurations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		cfgs, err := a.layouts.List(cmd.Context(), listBank)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range cfgs {
			def := ""
			if c.IsDefault {
				def = "default"
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.BankID, c.Kind, c.Name, def)
		}
		return nil
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export <id> <out.xlsx>",
	Short: "Document a stored configuration as a workbook",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		cfg, err := a.layouts.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := export.NewService(a.logger).ConfigurationXLSX(cfg)
		if err != nil {
			return err
		}
		return os.WriteFile(args[1], data, 0o644)
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog <240|400>",
	Short: "Print the default record catalog of a kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := constants.ParseKind(args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd, "", layout.DefaultCatalog(kind))
	},
}

func init() {
	configImportCmd.Flags().BoolVar(&importDefault, "default", false, "make it the bank's default")
	configListCmd.Flags().StringVar(&listBank, "bank", "", "only this bank")
	configCmd.AddCommand(configImportCmd, configListCmd, configExportCmd, catalogCmd)
}

func writeJSON(cmd *cobra.Command, path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	if path == "" {
		_, err = cmd.OutOrStdout().Write(raw)
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
