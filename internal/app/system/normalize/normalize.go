// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

// Kind selects which separators Digits strips.
type Kind int

const (
	Phone Kind = iota
	Postal
	CorporateNumber
)

func (k Kind) String() string {
	switch k {
	case Phone:
		return "phone"
	case Postal:
		return "postal"
	case CorporateNumber:
		return "corporate_number"
	default:
		return "unknown"
	}
}

var (
	phoneSeparators  = runes.Predicate(func(r rune) bool { return strings.ContainsRune("()（）-−", r) })
	postalSeparators = runes.Predicate(func(r rune) bool { return r == '-' || r == '−' })
)

// Digits folds full-width characters to half-width and strips the
// separators that kind allows. Every other rune is kept as-is.
func Digits(raw string, kind Kind) string {
	if raw == "" {
		return ""
	}
	var t transform.Transformer
	switch kind {
	case Phone:
		t = transform.Chain(width.Narrow, runes.Remove(phoneSeparators))
	case Postal:
		t = transform.Chain(width.Narrow, runes.Remove(postalSeparators))
	default:
		t = width.Narrow
	}
	out, _, err := transform.String(t, raw)
	if err != nil {
		return raw
	}
	return out
}

// Email trims surrounding whitespace and lower-cases the address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace. Case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a raw query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// searchKinds lists the listing search fields that are stored normalized.
var searchKinds = map[string]Kind{
	"corporate_number": CorporateNumber,
	"tel_number1":      Phone,
	"tel_number2":      Phone,
	"tel_number3":      Phone,
	"fax_number":       Phone,
	"zip_code":         Postal,
}

// SearchCriteria returns a copy of criteria with every known
// phone/postal/corporate field normalized. Other keys are trimmed.
func SearchCriteria(criteria map[string]string) map[string]string {
	out := make(map[string]string, len(criteria))
	for k, v := range criteria {
		v = QueryParam(v)
		if kind, ok := searchKinds[k]; ok {
			v = Digits(v, kind)
		}
		out[k] = v
	}
	return out
}
