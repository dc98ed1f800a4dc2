package constants

// Format is the value format tag of a fixed-width field.
type Format string

const (
	FormatText          Format = "text"
	FormatCurrencyCents Format = "currency_cents"
	FormatDateDDMMYY    Format = "date_ddmmyy"
	FormatDateDDMMYYYY  Format = "date_ddmmyyyy"
)

// IsDate reports whether the format is one of the day-month-year layouts.
func (f Format) IsDate() bool {
	return f == FormatDateDDMMYY || f == FormatDateDDMMYYYY
}

// ValueFormat is the display format applied to a template field value.
type ValueFormat string

const (
	ValueCurrency  ValueFormat = "currency"
	ValueDate      ValueFormat = "date"
	ValueCNPJ      ValueFormat = "cnpj"
	ValueUppercase ValueFormat = "uppercase"
	ValueDigits    ValueFormat = "digits"
)
