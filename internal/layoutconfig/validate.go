package layoutconfig

import (
	"fmt"

	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

// Validate checks the structural invariants of a configuration before it is
// stored: a bank, a valid kind, and fields with 1 <= start <= end within the
// kind's line length.
func Validate(cfg *entity.LayoutConfiguration) error {
	v := common.NewValidator()
	v.Field("bank_id", cfg.BankID, common.Required)
	v.Field("name", cfg.Name, common.Required)
	if !cfg.Kind.Valid() {
		v.Add("kind", cfg.Kind, "must be 240 or 400")
	}
	if len(cfg.Records) == 0 && len(cfg.LegacyFields) == 0 {
		v.Add("records", nil, "at least one record layout or field is required")
	}

	maxEnd := cfg.Kind.LineLength()
	check := func(path string, start, end int) {
		if start < 1 || start > end {
			v.Add(path, fmt.Sprintf("%d-%d", start, end), "start must be >= 1 and <= end")
		} else if end > maxEnd {
			v.Add(path, fmt.Sprintf("%d-%d", start, end), fmt.Sprintf("end must be <= %d", maxEnd))
		}
	}
	for _, r := range cfg.Records {
		for _, f := range r.Fields {
			check(fmt.Sprintf("records[%s].%s", r.Type, f.Name), f.Start, f.End)
		}
	}
	for i, f := range cfg.LegacyFields {
		check(fmt.Sprintf("fields[%d].%s", i, f.Name), f.Start, f.End)
	}
	if v.HasErrors() {
		return common.NewAppError("INVALID_CONFIGURATION", v.ErrorMessage(), common.ErrValidation)
	}
	return nil
}
