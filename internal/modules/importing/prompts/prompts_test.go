package prompts

import (
	"strings"
	"testing"
)

func TestDefaultCatalogRendersNormalizerPrompt(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	out, err := c.NormalizerUser("Nazwa;Kolor\ntelefon;czarny\n", 1)
	if err != nil {
		t.Fatalf("NormalizerUser: %v", err)
	}
	for _, want := range []string{"telefon;czarny", `"warehousePlace"`, `"foundDate": "RRRR-MM-DD"`, "(1)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "{{") {
		t.Fatalf("unrendered template action left in prompt")
	}
}

func TestValidatorUserAppendsPayload(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	out := c.ValidatorUser([]byte(`{"csv_row": []}`))
	if !strings.HasPrefix(out, c.Validator.UserPreamble) || !strings.HasSuffix(out, `{"csv_row": []}`) {
		t.Fatalf("unexpected validator message: %q", out)
	}
}

func TestParseRejectsIncompleteCatalog(t *testing.T) {
	cases := []string{
		"catalog: other\nnormalizer:\n  user: '{{ .CSV }}'\nvalidator:\n  system: x\n",
		"catalog: import\nnormalizer:\n  user: 'no placeholder'\nvalidator:\n  system: x\n",
		"catalog: import\nnormalizer:\n  user: '{{ .CSV }}'\n",
		"catalog: [",
	}
	for _, in := range cases {
		if _, err := Parse([]byte(in)); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
