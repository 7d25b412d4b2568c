package inputval

import "testing"

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://example.com", true},
		{"https://example.com/path?query=1", true},
		{"http://localhost:8080", true},
		{"  https://example.com  ", true},

		{"", false},
		{"   ", false},
		{"ftp://example.com", false},
		{"mailto:user@example.com", false},
		{"example.com", false},
		{"//example.com", false},
		{"not a url", false},
		{"file:///path/to/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := IsValidHTTPURL(tt.url)
			if got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"FFFFFFFFFFFFFFFFFFFFFFFF", true},
		{"  507f1f77bcf86cd799439011  ", true},

		{"", false},
		{"507f1f77bcf86cd79943901", false},
		{"507f1f77bcf86cd79943901g", false},
		{"not-a-valid-id", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := IsValidObjectID(tt.id)
			if got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `validate:"required,max=10" label:"Full name"`
		Email string `validate:"required,email" label:"Email address"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
	}{
		{
			name:  "valid input",
			input: TestInput{Name: "Taro", Email: "taro@example.com"},
		},
		{
			name:       "missing name",
			input:      TestInput{Name: "", Email: "taro@example.com"},
			wantErrors: true,
			wantFirst:  "Full name is required.",
		},
		{
			name:       "name too long",
			input:      TestInput{Name: "VeryLongNameThatExceedsLimit", Email: "taro@example.com"},
			wantErrors: true,
			wantFirst:  "Full name must be at most 10 characters.",
		},
		{
			name:       "invalid email",
			input:      TestInput{Name: "Taro", Email: "not-an-email"},
			wantErrors: true,
			wantFirst:  "A valid email address is required.",
		},
		{
			name:       "missing both",
			input:      TestInput{},
			wantErrors: true,
			wantFirst:  "Full name is required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v", result.HasErrors(), tt.wantErrors)
			}
			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	r := &Result{}
	if r.All() != "" {
		t.Errorf("All() = %q, want empty", r.All())
	}
	r = &Result{Errors: []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}}
	if want := "Error 1; Error 2"; r.All() != want {
		t.Errorf("All() = %q, want %q", r.All(), want)
	}
	if r.First() != "Error 1" {
		t.Errorf("First() = %q, want %q", r.First(), "Error 1")
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type input struct {
		URL     string `validate:"omitempty,httpurl" label:"URL"`
		ID      string `validate:"omitempty,objectid" label:"Sales person"`
		Tel     string `validate:"omitempty,digits" label:"Phone"`
		Action  string `validate:"omitempty,actionstatus" label:"Action status"`
		Public  string `validate:"omitempty,publicstatus" label:"Public status"`
		Contact string `validate:"omitempty,contacttype" label:"Contact type"`
		Role    string `validate:"omitempty,role" label:"Role"`
	}

	tests := []struct {
		name    string
		in      input
		wantTag string
	}{
		{"all valid", input{URL: "https://example.com", ID: "507f1f77bcf86cd799439011", Tel: "0312345678",
			Action: "3", Public: "2", Contact: "5", Role: "owner"}, ""},
		{"empty skipped", input{}, ""},
		{"bad url", input{URL: "not-a-url"}, "httpurl"},
		{"bad id", input{ID: "invalid-id"}, "objectid"},
		{"bad tel", input{Tel: "03-1234"}, "digits"},
		{"bad action", input{Action: "4"}, "actionstatus"},
		{"bad public", input{Public: "3"}, "publicstatus"},
		{"bad contact", input{Contact: "6"}, "contacttype"},
		{"bad role", input{Role: "superuser"}, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(tt.in)
			if tt.wantTag == "" {
				if r.HasErrors() {
					t.Fatalf("Validate() errors = %v, want none", r.Errors)
				}
				return
			}
			if len(r.Errors) != 1 || r.Errors[0].Tag != tt.wantTag {
				t.Fatalf("Validate() errors = %v, want one %q", r.Errors, tt.wantTag)
			}
		})
	}
}
