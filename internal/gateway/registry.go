package gateway

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"sbp-deeplinks/internal/domain"
)

//go:embed registry.yaml
var builtinRegistry []byte

type registryFile struct {
	Version string      `yaml:"version"`
	Banks   []bankEntry `yaml:"banks"`
}

type bankEntry struct {
	Code         string                     `yaml:"code"`
	Name         string                     `yaml:"name"`
	BankMemberID string                     `yaml:"bank_member_id"`
	Domestic     map[string][]templateEntry `yaml:"domestic"`
	Transborder  map[string][]templateEntry `yaml:"transborder"`
	Web          *webEntry                  `yaml:"web"`
}

type templateEntry struct {
	Name        string   `yaml:"name"`
	Scheme      string   `yaml:"scheme"`
	Schemes     []string `yaml:"schemes"`
	Integration string   `yaml:"integration"`
	Link        string   `yaml:"link"`
	Phone       string   `yaml:"phone"`
	Card        string   `yaml:"card"`
}

type webEntry struct {
	Domestic    string `yaml:"domestic"`
	Transborder string `yaml:"transborder"`
}

// YAMLBankRegistry implements the BankRegistry interface over a YAML document.
// It is immutable after loading.
type YAMLBankRegistry struct {
	version string
	banks   map[string]*domain.BankProfile
	codes   []string
}

// NewBuiltinBankRegistry loads the registry compiled into the binary.
func NewBuiltinBankRegistry() (*YAMLBankRegistry, error) {
	return ParseBankRegistry(builtinRegistry, "builtin registry")
}

// LoadBankRegistry reads a registry file. An empty path selects the builtin one.
func LoadBankRegistry(ctx context.Context, path string) (*YAMLBankRegistry, error) {
	if path == "" {
		return NewBuiltinBankRegistry()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry file %s: %w", path, err)
	}
	return ParseBankRegistry(data, path)
}

// ParseBankRegistry decodes and compiles a registry document. source names the
// document in error messages.
func ParseBankRegistry(data []byte, source string) (*YAMLBankRegistry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}
	if len(file.Banks) == 0 {
		return nil, fmt.Errorf("%s defines no banks", source)
	}

	r := &YAMLBankRegistry{
		version: file.Version,
		banks:   make(map[string]*domain.BankProfile, len(file.Banks)),
	}
	for i, entry := range file.Banks {
		if entry.Code == "" {
			return nil, fmt.Errorf("%s: bank #%d has no code", source, i+1)
		}
		if _, dup := r.banks[entry.Code]; dup {
			return nil, fmt.Errorf("%s: bank %s defined twice", source, entry.Code)
		}
		profile, err := compileBank(entry)
		if err != nil {
			return nil, fmt.Errorf("%s: bank %s: %w", source, entry.Code, err)
		}
		r.banks[entry.Code] = profile
		r.codes = append(r.codes, entry.Code)
	}
	sort.Strings(r.codes)
	return r, nil
}

// Lookup returns the profile for a bank code.
func (r *YAMLBankRegistry) Lookup(code string) (*domain.BankProfile, bool) {
	b, ok := r.banks[code]
	return b, ok
}

// Codes returns the supported bank codes, sorted.
func (r *YAMLBankRegistry) Codes() []string {
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}

// Version is the registry document's version label.
func (r *YAMLBankRegistry) Version() string {
	return r.version
}

func compileBank(entry bankEntry) (*domain.BankProfile, error) {
	domestic, err := compileSet(entry.Domestic)
	if err != nil {
		return nil, fmt.Errorf("domestic: %w", err)
	}
	transborder, err := compileSet(entry.Transborder)
	if err != nil {
		return nil, fmt.Errorf("transborder: %w", err)
	}

	profile := &domain.BankProfile{
		Code:         entry.Code,
		Name:         entry.Name,
		BankMemberID: entry.BankMemberID,
		Domestic:     domestic,
		Transborder:  transborder,
	}
	if entry.Web != nil {
		web := &domain.WebFallback{}
		if web.Domestic, err = compileOptional(entry.Code+"/web", entry.Web.Domestic); err != nil {
			return nil, err
		}
		if web.Transborder, err = compileOptional(entry.Code+"/web-transborder", entry.Web.Transborder); err != nil {
			return nil, err
		}
		profile.Web = web
	}
	return profile, nil
}

func compileSet(raw map[string][]templateEntry) (domain.TemplateSet, error) {
	set := make(domain.TemplateSet, len(raw))
	for key, entries := range raw {
		pk, err := domain.ParsePlatformKey(key)
		if err != nil {
			return nil, err
		}
		var list []domain.SchemeTemplate
		for _, e := range entries {
			expanded, err := compileTemplate(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			list = append(list, expanded...)
		}
		set[pk] = list
	}
	return set, nil
}

// compileTemplate expands an entry over its scheme aliases, keeping their order.
func compileTemplate(e templateEntry) ([]domain.SchemeTemplate, error) {
	if e.Name == "" {
		return nil, errors.New("template without name")
	}
	phoneSrc, cardSrc := e.Link, e.Link
	if e.Phone != "" {
		phoneSrc = e.Phone
	}
	if e.Card != "" {
		cardSrc = e.Card
	}
	if phoneSrc == "" && cardSrc == "" {
		return nil, fmt.Errorf("template %s has no link, phone or card shape", e.Name)
	}

	integration := domain.Integration(e.Integration)
	switch integration {
	case "":
		integration = domain.IntegrationBasic
	case domain.IntegrationBasic, domain.IntegrationExtended:
	default:
		return nil, fmt.Errorf("template %s: unknown integration %q", e.Name, e.Integration)
	}

	phone, err := compileOptional(e.Name+"/phone", phoneSrc)
	if err != nil {
		return nil, err
	}
	card, err := compileOptional(e.Name+"/card", cardSrc)
	if err != nil {
		return nil, err
	}
	if err := checkIntegration(e.Name, integration, phone); err != nil {
		return nil, err
	}

	schemes := e.Schemes
	if len(schemes) == 0 {
		schemes = []string{e.Scheme}
	}
	out := make([]domain.SchemeTemplate, 0, len(schemes))
	for _, s := range schemes {
		name := e.Name
		if len(e.Schemes) > 0 {
			name = e.Name + "/" + s
		}
		out = append(out, domain.SchemeTemplate{
			Name:        name,
			Scheme:      s,
			Integration: integration,
			Phone:       phone,
			Card:        card,
		})
	}
	return out, nil
}

// checkIntegration keeps the declared integration honest: extended shapes pass
// the amount on phone flows and basic ones never do.
func checkIntegration(name string, integration domain.Integration, phone *domain.URITemplate) error {
	if phone == nil {
		return nil
	}
	usesAmount := phone.References("Amount", "Minor")
	switch {
	case integration == domain.IntegrationExtended && !usesAmount:
		return fmt.Errorf("template %s: extended integration but phone shape has no .Amount or .Minor", name)
	case integration == domain.IntegrationBasic && usesAmount:
		return fmt.Errorf("template %s: basic integration but phone shape uses the amount", name)
	}
	return nil
}

func compileOptional(name, src string) (*domain.URITemplate, error) {
	if src == "" {
		return nil, nil
	}
	return domain.CompileURITemplate(name, src)
}
