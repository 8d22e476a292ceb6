package domain

import (
	"fmt"
	"strings"
	"text/template"
	"text/template/parse"
)

// Integration is how deeply a bank app supports a URI shape. Extended
// integrations accept the amount on phone flows; basic ones drop it.
type Integration string

const (
	IntegrationBasic    Integration = "basic"
	IntegrationExtended Integration = "extended"
)

// PlatformKey indexes template lists inside a bank profile. PlatformMobile
// covers ios and android when neither has a list of its own.
type PlatformKey string

const (
	KeyIOS     PlatformKey = "ios"
	KeyAndroid PlatformKey = "android"
	KeyDesktop PlatformKey = "desktop"
	KeyMobile  PlatformKey = "mobile"
)

// ParsePlatformKey validates a registry platform key.
func ParsePlatformKey(s string) (PlatformKey, error) {
	switch k := PlatformKey(strings.ToLower(s)); k {
	case KeyIOS, KeyAndroid, KeyDesktop, KeyMobile:
		return k, nil
	default:
		return "", fmt.Errorf("unknown platform key %q", s)
	}
}

// TemplateData is the value URI templates are executed against.
type TemplateData struct {
	Scheme       string
	Account      string
	Amount       string
	Minor        string
	BankMemberID string
}

// URITemplate is a compiled text/template producing one URI.
type URITemplate struct {
	src  string
	tmpl *template.Template
}

// CompileURITemplate parses src and checks it executes against TemplateData.
func CompileURITemplate(name, src string) (*URITemplate, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	t := &URITemplate{src: src, tmpl: tmpl}
	if _, err := t.execute(TemplateData{Scheme: "x", Account: "79990000000", Amount: "1.00", Minor: "100", BankMemberID: "1"}); err != nil {
		return nil, fmt.Errorf("check template %s: %w", name, err)
	}
	return t, nil
}

func (t *URITemplate) execute(data TemplateData) (string, error) {
	var b strings.Builder
	if err := t.tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Render executes the template. Templates are checked at compile time, so a
// failure here yields an empty string.
func (t *URITemplate) Render(data TemplateData) string {
	s, err := t.execute(data)
	if err != nil {
		return ""
	}
	return s
}

// References reports whether the template reads any of the named TemplateData
// fields, in actions or in if/range/with pipelines.
func (t *URITemplate) References(fields ...string) bool {
	want := make(map[string]bool, len(fields))
	for _, f := range fields {
		want[f] = true
	}
	return referencesNode(t.tmpl.Tree.Root, want)
}

func referencesNode(node parse.Node, want map[string]bool) bool {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return false
		}
		for _, c := range n.Nodes {
			if referencesNode(c, want) {
				return true
			}
		}
	case *parse.ActionNode:
		return referencesNode(n.Pipe, want)
	case *parse.PipeNode:
		if n == nil {
			return false
		}
		for _, c := range n.Cmds {
			if referencesNode(c, want) {
				return true
			}
		}
	case *parse.CommandNode:
		for _, a := range n.Args {
			if referencesNode(a, want) {
				return true
			}
		}
	case *parse.FieldNode:
		return len(n.Ident) > 0 && want[n.Ident[0]]
	case *parse.IfNode:
		return referencesBranch(&n.BranchNode, want)
	case *parse.RangeNode:
		return referencesBranch(&n.BranchNode, want)
	case *parse.WithNode:
		return referencesBranch(&n.BranchNode, want)
	}
	return false
}

func referencesBranch(b *parse.BranchNode, want map[string]bool) bool {
	return referencesNode(b.Pipe, want) || referencesNode(b.List, want) || referencesNode(b.ElseList, want)
}

// Source returns the template text.
func (t *URITemplate) Source() string {
	return t.src
}

// SchemeTemplate is one entry of a bank's ordered template list. Phone and
// Card are the two URI shapes; a nil branch produces nothing for that kind.
type SchemeTemplate struct {
	Name        string
	Scheme      string
	Integration Integration
	Phone       *URITemplate
	Card        *URITemplate
}

// Render produces the URI for acct, or false when the template has no branch
// for the account kind.
func (t SchemeTemplate) Render(acct AccountIdentifier, data TemplateData) (string, bool) {
	branch := t.Phone
	if acct.IsCard() {
		branch = t.Card
	}
	if branch == nil {
		return "", false
	}
	data.Scheme = t.Scheme
	data.Account = acct.Digits
	uri := branch.Render(data)
	return uri, uri != ""
}

// TemplateSet holds ordered template lists per platform key.
type TemplateSet map[PlatformKey][]SchemeTemplate

// For returns the ordered templates for p. A platform-specific list wins;
// ios and android fall back to the mobile list.
func (s TemplateSet) For(p Platform) []SchemeTemplate {
	if list, ok := s[PlatformKey(p)]; ok {
		return list
	}
	if p == PlatformIOS || p == PlatformAndroid {
		return s[KeyMobile]
	}
	return nil
}

// Empty reports whether the set has no templates at all.
func (s TemplateSet) Empty() bool {
	for _, list := range s {
		if len(list) > 0 {
			return false
		}
	}
	return true
}

// WebFallback is the HTTPS form a desktop caller can open instead of a scheme.
type WebFallback struct {
	Domestic    *URITemplate
	Transborder *URITemplate
}

// BankProfile is the registry entry for one bank. Profiles are immutable once
// loaded.
type BankProfile struct {
	Code         string
	Name         string
	BankMemberID string
	Domestic     TemplateSet
	Transborder  TemplateSet
	Web          *WebFallback
}

// HasTransborder reports whether the bank defines a cross-border flow.
func (b *BankProfile) HasTransborder() bool {
	return !b.Transborder.Empty()
}

// Templates picks the template list for a call. Transborder and domestic flows
// never mix.
func (b *BankProfile) Templates(p Platform, transborder bool) []SchemeTemplate {
	if transborder && b.HasTransborder() {
		return b.Transborder.For(p)
	}
	return b.Domestic.For(p)
}
