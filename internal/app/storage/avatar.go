package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"alumnilink/internal/pkg/errs"
	"alumnilink/internal/pkg/logx"
)

const (
	// MaxAvatarSizeMB is the maximum allowed avatar size in megabytes.
	MaxAvatarSizeMB = 5

	// MaxAvatarSize is the maximum allowed avatar size in bytes.
	MaxAvatarSize = MaxAvatarSizeMB * 1024 * 1024

	// PresignedURLDuration is how long an upload URL stays valid.
	PresignedURLDuration = 5 * time.Minute

	// AvatarPrefix is the key prefix of every avatar object.
	AvatarPrefix = "avatars/"

	deleteTimeout = 10 * time.Second
)

// AllowedMIMETypes is the set of accepted avatar types.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// ExtToMIME maps file extensions to the MIME type they must be declared with.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ValidateFileSize checks that size is positive and within MaxAvatarSize.
func ValidateFileSize(size int64) *errs.CustomError {
	if size <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if size > MaxAvatarSize {
		return errs.NewError(errs.ErrFileSizeTooLarge, MaxAvatarSizeMB)
	}
	return nil
}

// ValidateFileType checks that mimeType is allowed and matches the extension of
// fileName.
func ValidateFileType(fileName, mimeType string) *errs.CustomError {
	mimeType = strings.ToLower(mimeType)

	if _, ok := AllowedMIMETypes[mimeType]; !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	expected, ok := ExtToMIME[strings.ToLower(filepath.Ext(fileName))]
	if !ok || expected != mimeType {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	return nil
}

// PresignInput describes the avatar a client is about to upload.
type PresignInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// AvatarUpload is returned for an accepted upload.
type AvatarUpload struct {
	UploadURL string    `json:"uploadUrl,omitempty"`
	FileKey   string    `json:"fileKey"`
	AvatarURL string    `json:"avatarUrl"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Avatars issues avatar uploads and maps object keys to public URLs.
type Avatars struct {
	store      StorageService
	publicBase string
	log        zerolog.Logger
}

// NewAvatars returns an Avatars backed by svc.
func NewAvatars(svc StorageService, cfg ServiceConfig) *Avatars {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3BucketName
	}

	return &Avatars{
		store:      svc,
		publicBase: base,
		log:        logx.Component("avatars"),
	}
}

// ownerPrefix is the key prefix of ownerID's avatars. Characters outside
// [A-Za-z0-9._-] are replaced so admin emails make safe keys.
func ownerPrefix(ownerID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, ownerID)
	return AvatarPrefix + safe + "/"
}

func newKey(ownerID, fileName string) string {
	return ownerPrefix(ownerID) + uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
}

func validate(fileName, mimeType string, size int64) *errs.CustomError {
	if err := ValidateFileSize(size); err != nil {
		return err
	}
	return ValidateFileType(fileName, mimeType)
}

// Presign validates in and returns a presigned PUT URL for a new avatar of ownerID.
func (a *Avatars) Presign(ctx context.Context, ownerID string, in PresignInput) (AvatarUpload, error) {
	if err := validate(in.FileName, in.MimeType, in.FileSize); err != nil {
		return AvatarUpload{}, err
	}

	key := newKey(ownerID, in.FileName)
	url, err := a.store.PresignUpload(ctx, key, strings.ToLower(in.MimeType), in.FileSize, PresignedURLDuration)
	if err != nil {
		return AvatarUpload{}, errs.NewError(errs.ErrFileStorageFailed)
	}

	a.log.Info().Str("owner_id", ownerID).Str("key", key).Msg("Avatar upload presigned")

	return AvatarUpload{
		UploadURL: url,
		FileKey:   key,
		AvatarURL: a.PublicURL(key),
		ExpiresAt: time.Now().Add(PresignedURLDuration).UTC(),
	}, nil
}

// Upload validates and stores an avatar sent through the server.
func (a *Avatars) Upload(ctx context.Context, ownerID, fileName, mimeType string, size int64, body io.Reader) (AvatarUpload, error) {
	if err := validate(fileName, mimeType, size); err != nil {
		return AvatarUpload{}, err
	}

	key := newKey(ownerID, fileName)
	if err := a.store.Upload(ctx, key, strings.ToLower(mimeType), io.LimitReader(body, MaxAvatarSize)); err != nil {
		return AvatarUpload{}, errs.NewError(errs.ErrFileStorageFailed)
	}

	return AvatarUpload{FileKey: key, AvatarURL: a.PublicURL(key)}, nil
}

// Confirm checks that an uploaded object under key belongs to ownerID and is a
// valid avatar, and returns its public URL. Invalid objects are deleted.
func (a *Avatars) Confirm(ctx context.Context, ownerID, key string) (string, error) {
	if !strings.HasPrefix(key, ownerPrefix(ownerID)) {
		return "", errs.NewError(errs.ErrForbidden)
	}

	info, err := a.store.Stat(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		return "", errs.NewError(errs.ErrInvalidParams)
	}
	if err != nil {
		return "", errs.NewError(errs.ErrFileStorageFailed)
	}

	if customErr := validate(key, info.ContentType, info.Size); customErr != nil {
		a.log.Warn().Str("key", key).Str("content_type", info.ContentType).Int64("size", info.Size).Msg("Rejecting uploaded avatar")
		a.deleteAsync(key)
		return "", customErr
	}

	return a.PublicURL(key), nil
}

// PublicURL returns the public URL of key.
func (a *Avatars) PublicURL(key string) string {
	return a.publicBase + "/" + key
}

// KeyFromURL returns the object key of an avatar URL issued by this service.
func (a *Avatars) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, a.publicBase+"/")
	if !ok || !strings.HasPrefix(key, AvatarPrefix) {
		return "", false
	}
	return key, true
}

// CheckOwner rejects url with ErrForbidden when it names one of our avatar
// objects stored for a profile other than ownerID. Other URLs are accepted.
func (a *Avatars) CheckOwner(ownerID, url string) error {
	key, ok := a.KeyFromURL(url)
	if ok && !strings.HasPrefix(key, ownerPrefix(ownerID)) {
		return errs.NewError(errs.ErrForbidden)
	}
	return nil
}

// Replaced deletes the object behind oldURL in the background when ownerID's
// avatar changed from oldURL to newURL and oldURL is an object stored for ownerID.
func (a *Avatars) Replaced(ownerID, oldURL, newURL string) {
	if oldURL == newURL {
		return
	}
	key, ok := a.KeyFromURL(oldURL)
	if !ok {
		return
	}
	if !strings.HasPrefix(key, ownerPrefix(ownerID)) {
		a.log.Warn().Str("owner_id", ownerID).Str("key", key).Msg("Keeping avatar object of another owner")
		return
	}
	a.deleteAsync(key)
}

func (a *Avatars) deleteAsync(key string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
		defer cancel()

		if err := a.store.Delete(ctx, key); err != nil {
			a.log.Warn().Err(err).Str("key", key).Msg("Failed to delete avatar object")
		}
	}()
}
