package normalize

import "testing"

func TestDigits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
		want  string
	}{
		{"full-width phone", "０９９−１２３−４５６７", Phone, "0991234567"},
		{"parenthesized phone", "(03)1234-5678", Phone, "0312345678"},
		{"full-width parens", "（０３）１２３４－５６７８", Phone, "0312345678"},
		{"phone keeps other runes", "03 1234 5678", Phone, "03 1234 5678"},
		{"postal minus sign", "123−４567", Postal, "1234567"},
		{"postal keeps parens", "(123)-4567", Postal, "(123)4567"},
		{"corporate pass-through", "１２３４５６７８９０１２３", CorporateNumber, "1234567890123"},
		{"corporate keeps hyphen", "123-456", CorporateNumber, "123-456"},
		{"empty phone", "", Phone, ""},
		{"empty postal", "", Postal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Digits(tt.input, tt.kind)
			if got != tt.want {
				t.Errorf("Digits(%q, %v) = %q, want %q", tt.input, tt.kind, got, tt.want)
			}
		})
	}
}

func TestDigitsIdempotent(t *testing.T) {
	inputs := []string{
		"０９９−１２３−４５６７",
		"(03)1234-5678",
		"１２３−４５６７",
		"abc－ＸＹＺ",
		"",
	}
	for _, kind := range []Kind{Phone, Postal, CorporateNumber} {
		for _, in := range inputs {
			once := Digits(in, kind)
			twice := Digits(once, kind)
			if once != twice {
				t.Errorf("Digits(%q, %v) not idempotent: %q then %q", in, kind, once, twice)
			}
		}
	}
}

func TestSearchCriteria(t *testing.T) {
	in := map[string]string{
		"tel_number1":      "０３−１２３４−５６７８",
		"fax_number":       "(03)9999-0000",
		"zip_code":         " 100−0001 ",
		"corporate_number": "１２３",
		"customer_name":    "  Acme  ",
	}
	got := SearchCriteria(in)

	want := map[string]string{
		"tel_number1":      "0312345678",
		"fax_number":       "0399990000",
		"zip_code":         "1000001",
		"corporate_number": "123",
		"customer_name":    "Acme",
	}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("SearchCriteria()[%q] = %q, want %q", k, got[k], w)
		}
	}
	if in["zip_code"] != " 100−0001 " {
		t.Error("SearchCriteria modified its input")
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Taro Yamada", "Taro Yamada"},
		{"  山田 太郎  ", "山田 太郎"},
		{"", ""},
		{"UPPERCASE NAME", "UPPERCASE NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
