package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
	"github.com/joseph-ayodele/bankfiles/internal/placement"
	"github.com/joseph-ayodele/bankfiles/internal/render"
)

var placementCmd = &cobra.Command{
	Use:   "placement <in.csv|in.xlsx> <out.csv|out.xlsx>",
	Short: "Convert a field-placement table between CSV and XLSX",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		fields, err := placement.Decode(data)
		if err != nil {
			return err
		}
		var out []byte
		if strings.EqualFold(filepath.Ext(args[1]), ".xlsx") {
			out, err = placement.EncodeXLSX(fields)
		} else {
			out, err = placement.EncodeCSV(fields)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d fields\n", len(fields))
		return os.WriteFile(args[1], out, 0o644)
	},
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage slip templates",
}

var (
	tplName       string
	tplBackground string
	tplPlacement  string
	tplWidth      float64
	tplHeight     float64
	tplCheckDigit bool
)

var templateImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Store a template from a background reference and a placement table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		tpl, err := importTemplate(cmd, a)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tpl.ID)
		return nil
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		tpls, err := a.templates.ListTemplates(cmd.Context())
		if err != nil {
			return err
		}
		for _, t := range tpls {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.ID, t.Name, t.BackgroundURL)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{templateImportCmd, renderCmd} {
		c.Flags().StringVar(&tplName, "name", "", "template name")
		c.Flags().StringVar(&tplBackground, "background", "", "background page: URL, file:// URL or path")
		c.Flags().StringVar(&tplPlacement, "placement", "", "field placement table (CSV or XLSX)")
		c.Flags().Float64Var(&tplWidth, "width", 0, "page width in mm (default A4)")
		c.Flags().Float64Var(&tplHeight, "height", 0, "page height in mm (default A4)")
		c.Flags().BoolVar(&tplCheckDigit, "check-digit", false, "synthesize the digitable line from the barcode")
	}
	templateCmd.AddCommand(templateImportCmd, templateListCmd)
}

func importTemplate(cmd *cobra.Command, a *app) (*entity.Template, error) {
	validator := common.NewValidator()
	validator.Field("background", tplBackground, common.Required)
	validator.Field("placement", tplPlacement, common.Required)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(tplPlacement)
	if err != nil {
		return nil, err
	}
	fields, err := placement.Decode(data)
	if err != nil {
		return nil, err
	}
	name := tplName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(tplPlacement), filepath.Ext(tplPlacement))
	}
	return a.templates.SaveTemplate(cmd.Context(), &entity.Template{
		Name:               name,
		BackgroundURL:      tplBackground,
		PageWidthMM:        tplWidth,
		PageHeightMM:       tplHeight,
		RequiresCheckDigit: tplCheckDigit,
	}, fields)
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage data records",
}

var recordPutCmd = &cobra.Command{
	Use:   "put <record.json>",
	Short: "Store a JSON object as a data record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := putRecord(cmd, a, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
		return nil
	},
}

func init() {
	recordCmd.AddCommand(recordPutCmd)
}

func putRecord(cmd *cobra.Command, a *app, path string) (*entity.DataRecord, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, common.NewAppError("INVALID_RECORD", "record must be a JSON object", common.ErrInvalidInput)
	}
	return a.records.PutRecord(cmd.Context(), &entity.DataRecord{Values: values})
}

var (
	renderTemplateID string
	renderRecordID   string
	renderData       string
	renderOut        string
	renderNoCompress bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a payment slip",
	Long: `Render a stored record onto a stored template (--template, --record),
or render ad hoc from files (--placement, --background, --data).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var templateID, recordID uuid.UUID
		if renderData != "" {
			tpl, err := importTemplate(cmd, a)
			if err != nil {
				return err
			}
			rec, err := putRecord(cmd, a, renderData)
			if err != nil {
				return err
			}
			templateID, recordID = tpl.ID, rec.ID
		} else {
			if templateID, err = uuid.Parse(renderTemplateID); err != nil {
				return common.InvalidArgumentErrorf("--template %q must be a UUID", renderTemplateID)
			}
			if recordID, err = uuid.Parse(renderRecordID); err != nil {
				return common.InvalidArgumentErrorf("--record %q must be a UUID", renderRecordID)
			}
		}

		wd, _ := os.Getwd()
		fetcher := render.NewHTTPFetcher(a.cfg.Render.FetchTimeout, wd, a.logger)
		r := render.NewRenderer(a.templates, a.records, fetcher, a.logger, render.WithCompression(!renderNoCompress))
		pdf, err := r.Render(cmd.Context(), templateID, recordID)
		if err != nil {
			return err
		}
		out := renderOut
		if out == "" {
			out = recordID.String() + ".pdf"
		}
		if err := os.WriteFile(out, pdf, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", out, len(pdf))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderTemplateID, "template", "", "stored template id")
	renderCmd.Flags().StringVar(&renderRecordID, "record", "", "stored record id")
	renderCmd.Flags().StringVar(&renderData, "data", "", "record JSON file for an ad hoc render")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output PDF (default <record id>.pdf)")
	renderCmd.Flags().BoolVar(&renderNoCompress, "no-compress", false, "write uncompressed content streams")
}
