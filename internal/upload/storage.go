package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// PublicPrefix is the URL path stored files are served under.
	PublicPrefix = "/uploads/"

	MaxImageSize = 5 << 20
	sniffLen     = 3072
)

var (
	ErrUnsupportedType = errors.New("images only: jpg, jpeg or png")
	ErrTooLarge        = errors.New("image is too large")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var allowedMIME = []string{"image/jpeg", "image/png"}

// Storage keeps uploaded images on the local disk.
type Storage struct {
	dir     string
	maxSize int64
}

func NewStorage(dir string) *Storage {
	return &Storage{dir: dir, maxSize: MaxImageSize}
}

// Save checks both the file name extension and the sniffed content type,
// writes the image under a generated name and returns its public path.
func (s *Storage) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedType, ext)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("upload: failed to read image: %w", err)
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	if !mimetype.EqualsAny(mtype.String(), allowedMIME...) {
		return "", fmt.Errorf("%w: detected %s", ErrUnsupportedType, mtype.String())
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("upload: failed to create upload dir: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("upload: failed to generate file name: %w", err)
	}
	name := "image-" + id.String() + ext
	target := filepath.Join(s.dir, name)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("upload: failed to create file: %w", err)
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	written, copyErr := io.Copy(f, io.LimitReader(body, s.maxSize+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		s.remove(target)
		return "", fmt.Errorf("upload: failed to write file: %w", copyErr)
	case written > s.maxSize:
		s.remove(target)
		return "", ErrTooLarge
	case closeErr != nil:
		s.remove(target)
		return "", fmt.Errorf("upload: failed to close file: %w", closeErr)
	}

	log.Info().Str("file", name).Str("mime", mtype.String()).Int64("bytes", written).Msg("upload: image stored")
	return path.Join(PublicPrefix, name), nil
}

func (s *Storage) remove(target string) {
	if err := os.Remove(target); err != nil {
		log.Warn().Err(err).Str("file", target).Msg("upload: failed to remove partial file")
	}
}
