package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveClientType(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		userAgent string
		want      string
	}{
		{"explicit header wins", "Mobile", "Mozilla/5.0", ClientMobile},
		{"browser", "", "Mozilla/5.0 (X11; Linux x86_64)", ClientWeb},
		{"flutter", "", "Dart/3.2 (dart:io)", ClientMobile},
		{"curl", "", "curl/8.4.0", ClientAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveClientType(tt.header, tt.userAgent))
		})
	}
	assert.True(t, IsWebClient(ClientWeb))
	assert.False(t, IsWebClient(ClientAPI))
}
