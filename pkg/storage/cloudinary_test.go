package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712/bragboard/1700-team.webp", "bragboard/1700-team"},
		{"https://res.cloudinary.com/demo/image/upload/bragboard/photo.jpg", "bragboard/photo"},
		{"https://res.cloudinary.com/demo/image/upload/velvet/photo.png", "velvet/photo"},
		{"https://res.cloudinary.com/demo/image/upload/", ""},
		{"https://example.com/some/file.png", ""},
		{"::not a url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PublicIDFromURL(tt.url))
		})
	}
}
