package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	v := NewValidator([]string{
		"acme.example.com", "localhost", "127.0.0.1", "10.1.2.3", "172.20.0.1", "192.168.1.1",
		"169.254.169.254", "0.1.2.3", "224.0.0.1", "255.255.255.255", "8.8.8.8", "172.32.0.1",
		"fe80::1", "fd00::1", "::ffff:10.0.0.1", "2001:db8::1",
	})

	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"allowed https", "https://acme.example.com/pricing?x=1", nil},
		{"case insensitive host", "HTTPS://ACME.Example.COM/", nil},
		{"relative", "/pricing", ErrInvalidFormat},
		{"garbage", "http://%zz", ErrInvalidFormat},
		{"empty", "", ErrInvalidFormat},
		{"ftp", "ftp://acme.example.com/file", ErrProtocolNotAllowed},
		{"javascript", "javascript://acme.example.com/%0aalert(1)", ErrProtocolNotAllowed},
		{"file", "file:///etc/passwd", ErrInvalidFormat},
		{"not listed", "https://evil.example.net/", ErrDomainNotAllowed},
		{"not listed any scheme", "http://evil.example.net/", ErrDomainNotAllowed},
		{"localhost", "http://localhost:3000/", ErrLocalhostBlocked},
		{"loopback v4", "http://127.0.0.1/", ErrLocalhostBlocked},
		{"ten", "http://10.1.2.3/", ErrPrivateIPBlocked},
		{"172.16/12", "http://172.20.0.1/", ErrPrivateIPBlocked},
		{"172.32 is public", "http://172.32.0.1/", nil},
		{"192.168", "http://192.168.1.1/", ErrPrivateIPBlocked},
		{"link local", "http://169.254.169.254/latest/meta-data", ErrPrivateIPBlocked},
		{"zero net", "http://0.1.2.3/", ErrPrivateIPBlocked},
		{"multicast", "http://224.0.0.1/", ErrPrivateIPBlocked},
		{"broadcast", "http://255.255.255.255/", ErrPrivateIPBlocked},
		{"public v4", "http://8.8.8.8/", nil},
		{"fe80", "http://[fe80::1]/", ErrPrivateIPv6Blocked},
		{"ula", "http://[fd00::1]/", ErrPrivateIPv6Blocked},
		{"mapped v4", "http://[::ffff:10.0.0.1]/", ErrPrivateIPBlocked},
		{"public v6", "http://[2001:db8::1]/", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := v.Validate(tc.raw)
			if tc.want == nil {
				require.NoError(t, err)
				assert.NotNil(t, u)
				return
			}
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsRejection(err))
			assert.Nil(t, u)
		})
	}
}

func TestValidatorRejectsUnlistedPrivateRanges(t *testing.T) {
	v := NewValidator([]string{"acme.example.com"})
	for _, raw := range []string{"http://10.0.0.1/", "http://192.168.0.1/", "http://[fd00::1]/"} {
		_, err := v.Validate(raw)
		assert.ErrorIs(t, err, ErrDomainNotAllowed, raw)
	}
}
