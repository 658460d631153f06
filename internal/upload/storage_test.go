package upload

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
)

func TestStorage_Save(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		content   []byte
		wantExt   string
		wantErrIs error
	}{
		{name: "png", filename: "cover.png", content: pngHeader, wantExt: ".png"},
		{name: "jpg", filename: "cover.jpg", content: jpegHeader, wantExt: ".jpg"},
		{name: "jpeg_upper_case", filename: "COVER.JPEG", content: jpegHeader, wantExt: ".jpeg"},
		{name: "gif_extension", filename: "cover.gif", content: pngHeader, wantErrIs: ErrUnsupportedType},
		{name: "text_disguised_as_png", filename: "notes.png", content: []byte("just some text"), wantErrIs: ErrUnsupportedType},
		{name: "no_extension", filename: "cover", content: pngHeader, wantErrIs: ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			storage := NewStorage(dir)

			got, err := storage.Save(tt.filename, bytes.NewReader(tt.content))
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				entries, _ := os.ReadDir(dir)
				assert.Empty(t, entries)
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got, PublicPrefix+"image-"), got)
			assert.Equal(t, tt.wantExt, filepath.Ext(got))

			stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(got, PublicPrefix)))
			require.NoError(t, err)
			assert.Equal(t, tt.content, stored)
		})
	}
}

func TestStorage_Save_TooLarge(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorage(dir)
	storage.maxSize = 64

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 128)...)

	_, err := storage.Save("big.png", bytes.NewReader(content))
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorage_Save_LargerThanSniffBuffer(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorage(dir)

	content := append(append([]byte{}, jpegHeader...), bytes.Repeat([]byte{0xab}, 10*sniffLen)...)

	got, err := storage.Save("photo.jpg", bytes.NewReader(content))
	require.NoError(t, err)

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(got, PublicPrefix)))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}
