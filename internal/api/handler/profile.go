package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Rrens/salespulse/internal/api/middleware"
	"github.com/Rrens/salespulse/internal/api/response"
	"github.com/Rrens/salespulse/internal/domain"
	"github.com/Rrens/salespulse/internal/service"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxAvatarBytes is the avatar size limit when none is configured
const DefaultMaxAvatarBytes = 5 << 20

var avatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ProfileHandler handles the caller's profile and avatar endpoints
type ProfileHandler struct {
	profileService *service.ProfileService
	maxAvatarBytes int64
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService, maxAvatarBytes int64) *ProfileHandler {
	if maxAvatarBytes <= 0 {
		maxAvatarBytes = DefaultMaxAvatarBytes
	}
	return &ProfileHandler{profileService: profileService, maxAvatarBytes: maxAvatarBytes}
}

// Get returns the caller's profile with the current workspace, if one was sent
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) error {
	identity, err := identityFrom(r)
	if err != nil {
		return err
	}

	var current *domain.Actor
	if actor, ok := middleware.GetActor(r.Context()); ok {
		current = &actor
	}

	view, err := h.profileService.Get(r.Context(), identity, current)
	if err != nil {
		return err
	}

	response.OK(w, view)
	return nil
}

// Update applies a partial profile update
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request, update domain.ProfileUpdate) error {
	identity, err := identityFrom(r)
	if err != nil {
		return err
	}

	profile, err := h.profileService.Update(r.Context(), identity, update)
	if err != nil {
		return err
	}

	response.WithMessage(w, http.StatusOK, profile, "Profile updated")
	return nil
}

// UploadAvatar accepts a multipart "file" image and makes it the caller's avatar
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) error {
	identity, err := identityFrom(r)
	if err != nil {
		return err
	}

	upload, err := h.readAvatar(w, r)
	if err != nil {
		return err
	}

	profile, err := h.profileService.UploadAvatar(r.Context(), identity, upload)
	if err != nil {
		return err
	}

	response.WithMessage(w, http.StatusOK, map[string]any{"avatarUrl": profile.AvatarURL, "profile": profile}, "Avatar uploaded")
	return nil
}

// readAvatar enforces the size limit and sniffs the content type; the
// client's declared type and file name are ignored.
func (h *ProfileHandler) readAvatar(w http.ResponseWriter, r *http.Request) (service.AvatarUpload, error) {
	// Leave room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarBytes+64<<10)
	if err := r.ParseMultipartForm(h.maxAvatarBytes); err != nil {
		var sizeErr *http.MaxBytesError
		if errors.As(err, &sizeErr) || strings.Contains(err.Error(), "request body too large") {
			return service.AvatarUpload{}, domain.Invalid("file too large", domain.FieldError{Field: "file", Message: "must be at most 5MB"})
		}
		return service.AvatarUpload{}, domain.Invalid("invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return service.AvatarUpload{}, domain.Invalid("no file uploaded", domain.FieldError{Field: "file", Message: "field is required"})
	}
	defer file.Close()

	if header.Size > h.maxAvatarBytes {
		return service.AvatarUpload{}, domain.Invalid("file too large", domain.FieldError{Field: "file", Message: "must be at most 5MB"})
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxAvatarBytes+1))
	if err != nil {
		return service.AvatarUpload{}, domain.Internal("failed to read upload", err)
	}
	if int64(len(data)) > h.maxAvatarBytes {
		return service.AvatarUpload{}, domain.Invalid("file too large", domain.FieldError{Field: "file", Message: "must be at most 5MB"})
	}
	if len(data) == 0 {
		return service.AvatarUpload{}, domain.Invalid("file is empty", domain.FieldError{Field: "file", Message: "must not be empty"})
	}

	mtype := mimetype.Detect(data)
	if !avatarTypes[mtype.String()] {
		return service.AvatarUpload{}, domain.Invalid("invalid file type", domain.FieldError{Field: "file", Message: "must be a JPEG, PNG, WebP or GIF image"})
	}

	return service.AvatarUpload{Data: data, ContentType: mtype.String(), Extension: mtype.Extension()}, nil
}

// DeleteAvatar clears the caller's avatar
func (h *ProfileHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) error {
	identity, err := identityFrom(r)
	if err != nil {
		return err
	}

	profile, err := h.profileService.DeleteAvatar(r.Context(), identity)
	if err != nil {
		return err
	}

	response.WithMessage(w, http.StatusOK, profile, "Avatar removed")
	return nil
}
