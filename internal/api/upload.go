package api

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"celebration/internal/config"
)

// UploadHandler signs direct-upload policies for the media host. The
// browser uploads straight to the host with the returned signature; the
// server never sees the bytes.
type UploadHandler struct {
	media config.MediaConfig
}

func NewUploadHandler(media config.MediaConfig) *UploadHandler {
	return &UploadHandler{media: media}
}

type SignUploadRequest struct {
	Folder       string `json:"folder"`
	ResourceType string `json:"resourceType"`
}

type SignUploadResponse struct {
	Timestamp    int64  `json:"timestamp"`
	Folder       string `json:"folder"`
	Signature    string `json:"signature"`
	APIKey       string `json:"apiKey"`
	CloudName    string `json:"cloudName"`
	ResourceType string `json:"resourceType"`
}

// POST /api/upload/signature
func (h *UploadHandler) Sign(w http.ResponseWriter, r *http.Request) {
	if !h.media.Configured() {
		internalError(w, "Missing media config. Set CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET.")
		return
	}

	var req SignUploadRequest
	if r.Body != nil {
		// Both fields are optional; a missing or empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	folder := req.Folder
	if folder == "" {
		folder = h.media.DefaultFolder
	}
	resourceType := req.ResourceType
	if resourceType == "" {
		resourceType = "auto"
	}

	timestamp := time.Now().Unix()
	writeJSON(w, http.StatusOK, SignUploadResponse{
		Timestamp:    timestamp,
		Folder:       folder,
		Signature:    signUploadPolicy(folder, timestamp, h.media.APISecret),
		APIKey:       h.media.APIKey,
		CloudName:    h.media.CloudName,
		ResourceType: resourceType,
	})
}

// signUploadPolicy implements the media host's signing contract: the SHA-1
// hex digest of the sorted parameter string with the API secret appended.
func signUploadPolicy(folder string, timestamp int64, secret string) string {
	base := fmt.Sprintf("folder=%s&timestamp=%d%s", folder, timestamp, secret)
	digest := sha1.Sum([]byte(base))
	return hex.EncodeToString(digest[:])
}
