package usecase_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbp-deeplinks/internal/domain"
	"sbp-deeplinks/internal/gateway"
	"sbp-deeplinks/internal/usecase"
	mock_usecase "sbp-deeplinks/internal/usecase/mocks"
)

const iPhoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1"

func builtinUseCase(t *testing.T) *usecase.DeepLinkUseCase {
	t.Helper()
	reg, err := gateway.NewBuiltinBankRegistry()
	require.NoError(t, err)
	return usecase.NewDeepLinkUseCase(reg)
}

func mustTemplate(t *testing.T, src string) *domain.URITemplate {
	t.Helper()
	tmpl, err := domain.CompileURITemplate("test", src)
	require.NoError(t, err)
	return tmpl
}

func TestDeepLinkUseCase_Generate(t *testing.T) {
	uc := builtinUseCase(t)

	tests := []struct {
		name         string
		req          domain.LinkRequest
		wantPlatform domain.Platform
		wantLinks    []string
		wantFirst    string
		wantLen      int
		wantWarnings int
	}{
		{
			name:         "vtb domestic phone",
			req:          domain.LinkRequest{Account: "+7 (999) 123-45-67", Amount: "1107", Bank: "ru_vtb", Platform: domain.PlatformIOS},
			wantPlatform: domain.PlatformIOS,
			wantLinks:    []string{"https://online.vtb.ru/i/ppl/79991234567"},
		},
		{
			name:         "vtb transborder",
			req:          domain.LinkRequest{Account: "89991234567", Amount: "1107", Bank: "ru_vtb", IsTransborder: true, Platform: domain.PlatformAndroid},
			wantPlatform: domain.PlatformAndroid,
			wantLinks:    []string{"https://online.vtb.ru/i/phone/TJ/73/?phoneNumber=79991234567&deeplink=true"},
		},
		{
			name:         "tinkoff on desktop yields nothing",
			req:          domain.LinkRequest{Account: "79991234567", Amount: "100", Bank: "ru_tinkoff", Platform: domain.PlatformDesktop},
			wantPlatform: domain.PlatformDesktop,
			wantLinks:    []string{},
		},
		{
			name:         "sberbank on desktop yields nothing",
			req:          domain.LinkRequest{Account: "79991234567", Amount: "100", Bank: "ru_sberbank", Platform: domain.PlatformDesktop},
			wantPlatform: domain.PlatformDesktop,
			wantLinks:    []string{},
		},
		{
			name:         "sberbank transborder on desktop yields nothing",
			req:          domain.LinkRequest{Account: "79991234567", Amount: "100", Bank: "ru_sberbank_trans", Platform: domain.PlatformDesktop, IsTransborder: true},
			wantPlatform: domain.PlatformDesktop,
			wantLinks:    []string{},
		},
		{
			name:         "user agent detects ios",
			req:          domain.LinkRequest{Account: "79991234567", Amount: "100", Bank: "ru_sberbank", UserAgent: iPhoneUA},
			wantPlatform: domain.PlatformIOS,
			wantFirst:    "budgetonline-ios://sbolonline/payments/p2p-by-phone-number?phoneNumber=79991234567",
			wantLen:      6,
		},
		{
			name:         "missing user agent is android",
			req:          domain.LinkRequest{Account: "79991234567", Amount: "100", Bank: "ru_sberbank"},
			wantPlatform: domain.PlatformAndroid,
			wantFirst:    "sberbankonline://payments/p2p-by-phone-number?phoneNumber=79991234567",
			wantLen:      11,
		},
		{
			name:         "bank member id override",
			req:          domain.LinkRequest{Account: "79991234567", Amount: "1107,00", Bank: "ru_tinkoff", BankMemberID: "99999", Platform: domain.PlatformIOS},
			wantPlatform: domain.PlatformIOS,
			wantFirst:    "freelancecase://Main/PayByMobileNumber?numberPhone=%2B79991234567&amount=1107.00&bankMemberId=99999",
			wantLen:      14,
		},
		{
			name:         "non numeric amount still yields links",
			req:          domain.LinkRequest{Account: "79991234567", Amount: "abc", Bank: "ru_tinkoff", Platform: domain.PlatformAndroid},
			wantPlatform: domain.PlatformAndroid,
			wantFirst:    "freelancecase://Main/PayByMobileNumber?numberPhone=%2B79991234567&amount=NaN&bankMemberId=10076",
			wantLen:      14,
			wantWarnings: 1,
		},
		{
			name:         "sberbank card in kopecks",
			req:          domain.LinkRequest{Account: "2200 1234 5678 9012", Amount: "1107", Bank: "ru_sberbank", Platform: domain.PlatformIOS},
			wantPlatform: domain.PlatformIOS,
			wantFirst:    "budgetonline-ios://sbolonline/p2ptransfer?amount=110700&isNeedToOpenNextScreen=true&skipContactsScreen=true&to=2200123456789012&type=cardNumber",
			wantLen:      5,
		},
		{
			name:         "short phone warns",
			req:          domain.LinkRequest{Account: "12345", Amount: "1", Bank: "ru_vtb", Platform: domain.PlatformIOS},
			wantPlatform: domain.PlatformIOS,
			wantLinks:    []string{"https://online.vtb.ru/i/ppl/12345"},
			wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.Generate(tt.req)
			require.NoError(t, err)

			assert.Equal(t, tt.req.Bank, got.Bank)
			assert.Equal(t, tt.wantPlatform, got.Platform)
			assert.NotNil(t, got.Links)
			assert.Len(t, got.Warnings, tt.wantWarnings)
			if tt.wantLinks != nil {
				assert.Equal(t, tt.wantLinks, got.Links)
				return
			}
			require.Len(t, got.Links, tt.wantLen)
			assert.Equal(t, tt.wantFirst, got.Links[0])
		})
	}
}

func TestDeepLinkUseCase_Generate_UnsupportedBank(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := mock_usecase.NewMockBankRegistry(ctrl)
	registry.EXPECT().Lookup("ru_alfa").Return(nil, false)

	uc := usecase.NewDeepLinkUseCase(registry)
	got, err := uc.Generate(domain.LinkRequest{Account: "79991234567", Amount: "1", Bank: "ru_alfa"})

	assert.Nil(t, got)
	require.Error(t, err)
	var unsupported *domain.UnsupportedBankError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "ru_alfa", unsupported.Code)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedBank))
}

func TestDeepLinkUseCase_Generate_OrderAndDedup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	shared := mustTemplate(t, "{{.Scheme}}://pay?to={{.Account}}&sum={{.Amount}}")
	bank := &domain.BankProfile{
		Code:         "demo",
		BankMemberID: "42",
		Domestic: domain.TemplateSet{
			domain.KeyMobile: {
				{Name: "b", Scheme: "beta", Phone: shared},
				{Name: "a", Scheme: "alpha", Phone: shared},
				{Name: "b-again", Scheme: "beta", Phone: shared},
				{Name: "card-only", Scheme: "gamma", Card: shared},
			},
		},
	}
	registry := mock_usecase.NewMockBankRegistry(ctrl)
	registry.EXPECT().Lookup("demo").Return(bank, true)

	uc := usecase.NewDeepLinkUseCase(registry)
	got, err := uc.Generate(domain.LinkRequest{Account: "89991234567", Amount: "5", Bank: "demo", Platform: domain.PlatformIOS})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"beta://pay?to=79991234567&sum=5.00",
		"alpha://pay?to=79991234567&sum=5.00",
	}, got.Links)
}

func TestDeepLinkUseCase_Generate_TransborderExclusive(t *testing.T) {
	uc := builtinUseCase(t)

	for _, p := range []domain.Platform{domain.PlatformIOS, domain.PlatformAndroid, domain.PlatformDesktop} {
		domestic, err := uc.Generate(domain.LinkRequest{Account: "79991234567", Amount: "1", Bank: "ru_vtb", Platform: p})
		require.NoError(t, err)
		abroad, err := uc.Generate(domain.LinkRequest{Account: "79991234567", Amount: "1", Bank: "ru_vtb", Platform: p, IsTransborder: true})
		require.NoError(t, err)

		for _, link := range abroad.Links {
			assert.NotContains(t, domestic.Links, link)
			assert.False(t, strings.Contains(link, "/i/ppl/"), link)
		}
	}

	// Banks without a cross-border flow ignore the flag.
	plain, err := uc.Generate(domain.LinkRequest{Account: "79991234567", Amount: "1", Bank: "ru_sberbank", Platform: domain.PlatformIOS})
	require.NoError(t, err)
	flagged, err := uc.Generate(domain.LinkRequest{Account: "79991234567", Amount: "1", Bank: "ru_sberbank", Platform: domain.PlatformIOS, IsTransborder: true})
	require.NoError(t, err)
	assert.Equal(t, plain.Links, flagged.Links)
}

func TestDeepLinkUseCase_Generate_NoDuplicates(t *testing.T) {
	uc := builtinUseCase(t)

	for _, bank := range uc.Banks() {
		for _, p := range []domain.Platform{domain.PlatformIOS, domain.PlatformAndroid, domain.PlatformDesktop} {
			for _, account := range []string{"79991234567", "2200123456789012"} {
				for _, transborder := range []bool{false, true} {
					got, err := uc.Generate(domain.LinkRequest{Account: account, Amount: "10.5", Bank: bank, Platform: p, IsTransborder: transborder})
					require.NoError(t, err)

					seen := map[string]bool{}
					for _, link := range got.Links {
						assert.False(t, seen[link], "duplicate %s for %s/%s", link, bank, p)
						seen[link] = true
					}
				}
			}
		}
	}
}

func TestDeepLinkUseCase_DesktopLink(t *testing.T) {
	uc := builtinUseCase(t)

	tests := []struct {
		name    string
		req     domain.DesktopLinkRequest
		want    string
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "vtb domestic",
			req:    domain.DesktopLinkRequest{Account: "+7 999 123 45 67", Bank: "ru_vtb"},
			want:   "https://online.vtb.ru/i/ppl/79991234567",
			wantOK: true,
		},
		{
			name:   "vtb transborder",
			req:    domain.DesktopLinkRequest{Account: "79991234567", Bank: "ru_vtb", IsTransborder: true},
			want:   "https://online.vtb.ru/i/phone/TJ/73/?phoneNumber=79991234567&deeplink=true",
			wantOK: true,
		},
		{
			name:   "tinkoff has no web form",
			req:    domain.DesktopLinkRequest{Account: "79991234567", Bank: "ru_tinkoff"},
			wantOK: false,
		},
		{
			name:    "unknown bank",
			req:     domain.DesktopLinkRequest{Account: "79991234567", Bank: "ru_alfa"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := uc.DesktopLink(tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedBank)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeepLinkUseCase_Banks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := mock_usecase.NewMockBankRegistry(ctrl)
	registry.EXPECT().Codes().Return([]string{"ru_sberbank", "ru_vtb"})

	uc := usecase.NewDeepLinkUseCase(registry)
	assert.Equal(t, []string{"ru_sberbank", "ru_vtb"}, uc.Banks())
}
