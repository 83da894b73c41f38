// Package uploads stores post images on local disk and hands back public
// URLs, standing in for the object-storage path.
package uploads

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"aurie/middleware"
	"aurie/utils"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

const (
	postPicDir   = "static/postpic"
	displayWidth = 1200
	thumbWidth   = 300
)

// UploadImage handles POST /api/upload/image (multipart field "image").
func UploadImage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := middleware.ValidateJWT(r.Header.Get("Authorization")); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "No image uploaded")
		return
	}
	defer file.Close()

	if !utils.ValidateImageFileType(w, header) {
		return
	}

	url, thumb, err := processSingleImageUpload(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Upload failed: %v", err))
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"url":   url,
		"thumb": thumb,
	})
}

func processSingleImageUpload(file multipart.File) (string, string, error) {
	img, err := imaging.Decode(file)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image: %w", err)
	}

	uniqueID := uuid.NewString()
	fileName := uniqueID + ".jpg"

	thumbDir := filepath.Join(postPicDir, "thumb")
	if err := utils.EnsureDir(postPicDir); err != nil {
		return "", "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := utils.EnsureDir(thumbDir); err != nil {
		return "", "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	if img.Bounds().Dx() > displayWidth {
		img = imaging.Resize(img, displayWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(img, filepath.Join(postPicDir, fileName)); err != nil {
		return "", "", fmt.Errorf("failed to save image: %w", err)
	}

	thumbImg := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumbImg, filepath.Join(thumbDir, fileName)); err != nil {
		return "", "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return "/static/postpic/" + fileName, "/static/postpic/thumb/" + fileName, nil
}
