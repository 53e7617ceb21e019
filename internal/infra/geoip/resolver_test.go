package geoip

import (
	"net"
	"testing"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	codes  map[string]string
	calls  int
	closed bool
}

func (f *fakeReader) Country(ip net.IP) (*geoip2.Country, error) {
	f.calls++
	rec := &geoip2.Country{}
	rec.Country.IsoCode = f.codes[ip.String()]
	return rec, nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func TestEmptyPathDisablesResolver(t *testing.T) {
	r, err := NewResolver("  ")
	require.NoError(t, err)
	assert.Nil(t, r)

	_, err = r.CountryCode("203.0.113.9")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, r.Close())
}

func TestMissingDatabaseFails(t *testing.T) {
	_, err := NewResolver(t.TempDir() + "/missing.mmdb")
	assert.Error(t, err)
}

func TestCountryCodeCachesLookups(t *testing.T) {
	reader := &fakeReader{codes: map[string]string{"203.0.113.9": "kr"}}
	r := newResolver(reader)

	for i := 0; i < 3; i++ {
		code, err := r.CountryCode(" 203.0.113.9 ")
		require.NoError(t, err)
		assert.Equal(t, "KR", code)
	}
	assert.Equal(t, 1, reader.calls)

	code, err := r.CountryCode("198.51.100.1")
	require.NoError(t, err)
	assert.Empty(t, code)

	require.NoError(t, r.Close())
	assert.True(t, reader.closed)
}

func TestCountryCodeSkipsLocalAddresses(t *testing.T) {
	reader := &fakeReader{}
	r := newResolver(reader)
	for _, ip := range []string{"127.0.0.1", "10.1.2.3", "192.168.0.5", "::1", "0.0.0.0"} {
		code, err := r.CountryCode(ip)
		require.NoError(t, err, ip)
		assert.Empty(t, code, ip)
	}
	assert.Zero(t, reader.calls)

	_, err := r.CountryCode("not-an-ip")
	assert.Error(t, err)
}
