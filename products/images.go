package products

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"krishimitra/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
)

const (
	uploadDir  = "./uploads/images"
	thumbDir   = "./uploads/thumbs"
	thumbWidth = 200
	maxUpload  = 10 << 20 // 10 MB
)

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadImage stores a product or land image and writes a thumbnail next
// to it. Returns the relative paths the client embeds in the record.
func UploadImage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "Upload too large", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !supportedImageTypes[header.Header.Get("Content-Type")] {
		http.Error(w, "Invalid file type. Supported formats: JPEG, PNG, WebP.", http.StatusBadRequest)
		return
	}

	for _, dir := range []string{uploadDir, thumbDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Println("UploadImage mkdir error:", err)
			http.Error(w, "Failed to store image", http.StatusInternalServerError)
			return
		}
	}

	filename := fmt.Sprintf("%s%s", utils.GenerateRandomString(12), filepath.Ext(header.Filename))
	fullPath := filepath.Join(uploadDir, filename)

	img, err := imaging.Decode(file)
	if err != nil {
		http.Error(w, "Unreadable image", http.StatusBadRequest)
		return
	}

	if err := imaging.Save(img, fullPath); err != nil {
		log.Println("UploadImage save error:", err)
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	// maintain aspect ratio
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	thumbPath := filepath.Join(thumbDir, filename)
	if err := imaging.Save(thumb, thumbPath); err != nil {
		log.Println("UploadImage thumbnail error:", err)
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"imageUrl": "/uploads/images/" + filename,
		"thumbUrl": "/uploads/thumbs/" + filename,
	})
}
