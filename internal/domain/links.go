package domain

// LinkRequest is one payment intent to resolve into deep links.
type LinkRequest struct {
	Account       string      `json:"account"`
	Amount        AmountInput `json:"amount"`
	Bank          string      `json:"bank"`
	BankMemberID  string      `json:"bankMemberId,omitempty"`
	IsTransborder bool        `json:"isTransborder,omitempty"`
	Platform      Platform    `json:"platform,omitempty"`

	// UserAgent is the platform signal used when Platform is empty.
	UserAgent string `json:"-"`
}

// LinkSet is the ordered candidate list a client tries until one opens.
type LinkSet struct {
	Bank     string                  `json:"bank"`
	Platform Platform                `json:"platform"`
	Links    []string                `json:"links"`
	Warnings []MalformedInputWarning `json:"warnings,omitempty"`
}

// DesktopLinkRequest asks for the HTTPS fallback of a bank.
type DesktopLinkRequest struct {
	Account       string `json:"account"`
	Bank          string `json:"bank"`
	IsTransborder bool   `json:"isTransborder,omitempty"`
}
