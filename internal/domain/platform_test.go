package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePlatform(t *testing.T) {
	tests := []struct {
		name      string
		explicit  Platform
		userAgent string
		want      Platform
	}{
		{
			name:      "explicit wins over user agent",
			explicit:  PlatformDesktop,
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X)",
			want:      PlatformDesktop,
		},
		{
			name:      "iphone",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1",
			want:      PlatformIOS,
		},
		{
			name:      "ipad",
			userAgent: "Mozilla/5.0 (iPad; CPU OS 11_0 like Mac OS X) AppleWebKit/604.1.34 (KHTML, like Gecko) Version/11.0 Mobile/15A5341f Safari/604.1",
			want:      PlatformIOS,
		},
		{
			name:      "ipod lowercase",
			userAgent: "some-client ipod",
			want:      PlatformIOS,
		},
		{
			name:      "android phone",
			userAgent: "Mozilla/5.0 (Linux; Android 11; Pixel 5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			want:      PlatformAndroid,
		},
		{
			name:      "desktop browser is android",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want:      PlatformAndroid,
		},
		{
			name:      "android app mentioning iphone in a product token",
			userAgent: "Mozilla/5.0 (Linux; Android 11; Pixel 5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36 iPhoneShareKit/2.1",
			want:      PlatformAndroid,
		},
		{
			name:      "unparsed app client falls back to raw match",
			userAgent: "SberPayWidget/3.4 (iPhone14,2; iOS 17.1)",
			want:      PlatformIOS,
		},
		{
			name:      "unparsed client without device",
			userAgent: "okhttp-like/4.9",
			want:      PlatformAndroid,
		},
		{
			name: "no user agent",
			want: PlatformAndroid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePlatform(tt.explicit, tt.userAgent))
		})
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "ios", want: PlatformIOS},
		{in: " Android ", want: PlatformAndroid},
		{in: "DESKTOP", want: PlatformDesktop},
		{in: "symbian", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlatform(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
