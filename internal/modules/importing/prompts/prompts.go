package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
)

// PromptsEnv points at a YAML file that replaces the embedded catalog.
const PromptsEnv = "IMPORT_PROMPTS_YAML"

//go:embed prompts.yaml
var promptsFS embed.FS

type Catalog struct {
	Name       string          `yaml:"catalog"`
	Version    int             `yaml:"version"`
	Normalizer NormalizerTexts `yaml:"normalizer"`
	Validator  ValidatorTexts  `yaml:"validator"`

	normalizerUser *template.Template
}

type NormalizerTexts struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type ValidatorTexts struct {
	System       string `yaml:"system"`
	UserPreamble string `yaml:"user_preamble"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the process-wide catalog, loaded once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		data, err := read()
		if err != nil {
			defaultErr = err
			return
		}
		defaultCat, defaultErr = Parse(data)
	})
	return defaultCat, defaultErr
}

func read() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(PromptsEnv)); path != "" {
		return os.ReadFile(path)
	}
	return promptsFS.ReadFile("prompts.yaml")
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	tmpl, err := template.New("normalizer_user").Parse(c.Normalizer.User)
	if err != nil {
		return nil, fmt.Errorf("parse normalizer template: %w", err)
	}
	c.normalizerUser = tmpl
	return &c, nil
}

func (c *Catalog) validate() error {
	if strings.TrimSpace(c.Name) != "import" {
		return fmt.Errorf("unexpected catalog: %q", c.Name)
	}
	if strings.TrimSpace(c.Normalizer.User) == "" {
		return errors.New("normalizer.user is required")
	}
	if !strings.Contains(c.Normalizer.User, ".CSV") {
		return errors.New("normalizer.user must reference .CSV")
	}
	if strings.TrimSpace(c.Validator.System) == "" {
		return errors.New("validator.system is required")
	}
	return nil
}

type normalizerData struct {
	Schema    []items.FieldSpec
	RowCount  int
	CSV       string
	ItemShape string
}

// NormalizerUser renders the normalizer instructions around csvText.
func (c *Catalog) NormalizerUser(csvText string, rowCount int) (string, error) {
	var buf bytes.Buffer
	err := c.normalizerUser.Execute(&buf, normalizerData{
		Schema:    items.Schema(),
		RowCount:  rowCount,
		CSV:       strings.TrimRight(csvText, "\n"),
		ItemShape: itemShape(),
	})
	if err != nil {
		return "", fmt.Errorf("render normalizer prompt: %w", err)
	}
	return buf.String(), nil
}

// ValidatorUser prefixes the indented JSON payload with the validator preamble.
func (c *Catalog) ValidatorUser(payload []byte) string {
	return c.Validator.UserPreamble + string(payload)
}

func itemShape() string {
	var b strings.Builder
	b.WriteString("{")
	for i, f := range items.Schema() {
		if i > 0 {
			b.WriteString(", ")
		}
		if f.IsDate() {
			fmt.Fprintf(&b, "%q: \"RRRR-MM-DD\"", f.Name)
		} else {
			fmt.Fprintf(&b, "%q: \"string\"", f.Name)
		}
	}
	b.WriteString("}")
	return b.String()
}
