package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sbp-deeplinks/internal/domain"
	"sbp-deeplinks/internal/gateway"
	"sbp-deeplinks/internal/usecase"
)

var (
	genAccount      string
	genAmount       string
	genBank         string
	genBankMemberID string
	genTransborder  bool
	genPlatform     string
	genUserAgent    string
	genOut          string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print the ordered deep-link candidates for one payment",
	Long: `Resolves a payment intent into the bank's candidate URIs, in the order a
client should try them. Malformed account or amount input still produces links
and is reported under "warnings".

Example:
  deeplinks generate --bank ru_tinkoff --account "+7 999 123-45-67" --amount 1107.5 --platform ios`,
	RunE: runGenerate,
}

var desktopCmd = &cobra.Command{
	Use:   "desktop",
	Short: "Print the HTTPS fallback link of a bank, if it has one",
	RunE:  runDesktop,
}

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List the supported bank codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write([]byte(strings.Join(usecase.NewDeepLinkUseCase(registry).Banks(), "\n") + "\n"))
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{generateCmd, desktopCmd} {
		c.Flags().StringVar(&genAccount, "account", "", "Phone number or card number (required)")
		c.Flags().StringVar(&genBank, "bank", "", "Bank code, e.g. ru_tinkoff (required)")
		c.Flags().BoolVar(&genTransborder, "transborder", false, "Use the bank's cross-border templates")
		c.Flags().StringVar(&genOut, "out", "-", "Output file, - for stdout")
		_ = c.MarkFlagRequired("account")
		_ = c.MarkFlagRequired("bank")
	}
	generateCmd.Flags().StringVar(&genAmount, "amount", "", "Payment amount, e.g. 1107.50 or 1107,5")
	generateCmd.Flags().StringVar(&genBankMemberID, "bank-member-id", "", "Override the bank's SBP member id")
	generateCmd.Flags().StringVar(&genPlatform, "platform", "", "ios, android or desktop (default: detect from --user-agent)")
	generateCmd.Flags().StringVar(&genUserAgent, "user-agent", "", "Client User-Agent used for platform detection")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	platform, err := domain.ParsePlatform(genPlatform)
	if err != nil {
		return err
	}

	set, err := usecase.NewDeepLinkUseCase(registry).Generate(domain.LinkRequest{
		Account:       genAccount,
		Amount:        domain.AmountInput(genAmount),
		Bank:          genBank,
		BankMemberID:  genBankMemberID,
		IsTransborder: genTransborder,
		Platform:      platform,
		UserAgent:     genUserAgent,
	})
	if err != nil {
		return err
	}
	for _, w := range set.Warnings {
		logger.Warn("malformed input", zap.String("field", w.Field), zap.String("reason", w.Reason))
	}
	return gateway.WriteJSON(genOut, set)
}

type desktopOutput struct {
	Bank      string `json:"bank"`
	Link      string `json:"link,omitempty"`
	Available bool   `json:"available"`
}

func runDesktop(cmd *cobra.Command, args []string) error {
	link, ok, err := usecase.NewDeepLinkUseCase(registry).DesktopLink(domain.DesktopLinkRequest{
		Account:       genAccount,
		Bank:          genBank,
		IsTransborder: genTransborder,
	})
	if err != nil {
		return err
	}
	return gateway.WriteJSON(genOut, desktopOutput{Bank: genBank, Link: link, Available: ok})
}
