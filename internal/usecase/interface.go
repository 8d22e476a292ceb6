package usecase

import (
	"context"

	"sbp-deeplinks/internal/domain"
)

// BankRegistry provides bank profiles by code.
// The usecase layer depends on this interface, not on a concrete implementation.
//
//go:generate mockgen -destination=mocks/mock_interface.go -source=interface.go
type BankRegistry interface {
	Lookup(code string) (*domain.BankProfile, bool)
	Codes() []string
}

// BrowserLauncher opens a page whose interception hooks are armed before the
// first navigation. Observations from both harvest channels go to sink.
type BrowserLauncher interface {
	Launch(ctx context.Context, opts domain.LaunchOptions, sink domain.EvidenceSink) (BrowserPage, error)
}

// BrowserPage is the page a harvest session drives.
type BrowserPage interface {
	// Navigate loads url and waits for network quiescence.
	Navigate(ctx context.Context, url string) error
	// Click activates the first element matching target.
	Click(ctx context.Context, target domain.ClickTarget) error
	// Close shuts the browser down and waits for in-flight script scans.
	Close() error
}

// EvidenceStore persists harvest evidence between sessions.
type EvidenceStore interface {
	WriteEvidence(ctx context.Context, path string, evidence []domain.Evidence) error
	ReadEvidence(ctx context.Context, paths []string) ([]domain.Evidence, error)
}
