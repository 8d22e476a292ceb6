package usecase

import (
	"sbp-deeplinks/internal/domain"
)

// DeepLinkUseCase turns payment intents into ordered deep-link candidates.
// It holds no mutable state and is safe for concurrent use.
type DeepLinkUseCase struct {
	registry BankRegistry
}

// NewDeepLinkUseCase creates a new instance of the usecase.
func NewDeepLinkUseCase(registry BankRegistry) *DeepLinkUseCase {
	return &DeepLinkUseCase{registry: registry}
}

// Generate resolves req into the bank's candidate links for the resolved
// platform. An unknown bank is the only error; malformed account or amount
// input still yields links and is reported in LinkSet.Warnings.
func (uc *DeepLinkUseCase) Generate(req domain.LinkRequest) (*domain.LinkSet, error) {
	bank, ok := uc.registry.Lookup(req.Bank)
	if !ok {
		return nil, &domain.UnsupportedBankError{Code: req.Bank}
	}

	acct := domain.Normalize(req.Account)
	amount := req.Amount.Normalize()
	platform := domain.ResolvePlatform(req.Platform, req.UserAgent)

	memberID := req.BankMemberID
	if memberID == "" {
		memberID = bank.BankMemberID
	}
	data := domain.TemplateData{
		Amount:       amount.Display(),
		Minor:        amount.MinorString(),
		BankMemberID: memberID,
	}

	templates := bank.Templates(platform, req.IsTransborder)
	links := make([]string, 0, len(templates))
	for _, t := range templates {
		if uri, ok := t.Render(acct, data); ok {
			links = append(links, uri)
		}
	}

	set := &domain.LinkSet{
		Bank:     bank.Code,
		Platform: platform,
		Links:    dedupStable(links),
	}
	set.Warnings = append(set.Warnings, acct.Warnings()...)
	set.Warnings = append(set.Warnings, amount.Warnings()...)
	return set, nil
}

// DesktopLink returns the HTTPS fallback for a bank, or false when the bank
// has no web form and the caller should show a scannable code instead.
func (uc *DeepLinkUseCase) DesktopLink(req domain.DesktopLinkRequest) (string, bool, error) {
	bank, ok := uc.registry.Lookup(req.Bank)
	if !ok {
		return "", false, &domain.UnsupportedBankError{Code: req.Bank}
	}
	if bank.Web == nil {
		return "", false, nil
	}

	tmpl := bank.Web.Domestic
	if req.IsTransborder && bank.Web.Transborder != nil {
		tmpl = bank.Web.Transborder
	}
	if tmpl == nil {
		return "", false, nil
	}

	acct := domain.Normalize(req.Account)
	uri := tmpl.Render(domain.TemplateData{Account: acct.Digits, BankMemberID: bank.BankMemberID})
	return uri, uri != "", nil
}

// Banks lists the supported bank codes.
func (uc *DeepLinkUseCase) Banks() []string {
	return uc.registry.Codes()
}

// dedupStable drops repeated strings, keeping the first occurrence in place.
func dedupStable(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
