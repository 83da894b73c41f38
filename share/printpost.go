// Package share exports published posts as downloadable PDFs with a QR
// code linking back to the post.
package share

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"aurie/db"
	"aurie/feed"
	"aurie/models"
	"aurie/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

func baseURL() string {
	if v := os.Getenv("AURIE_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// PostQR handles GET /api/posts/:postid/qr and returns a PNG QR code of
// the post's public URL.
func PostQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	postID := ps.ByName("postid")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := db.PostsCollection.FindOne(ctx, bson.M{
		"postid": postID,
		"status": models.StatusPublished,
	}).Err()
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}

	png, err := qrcode.Encode(baseURL()+"/post/"+postID, qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// PrintPost handles GET /api/posts/:postid/pdf. Published posts only.
func PrintPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	postID := ps.ByName("postid")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var post models.Post
	err := db.PostsCollection.FindOne(ctx, bson.M{
		"postid": postID,
		"status": models.StatusPublished,
	}).Decode(&post)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}

	qrPNG, err := qrcode.Encode(baseURL()+"/post/"+postID, qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(150, 9, post.Title, "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("By %s", post.Author))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("%d min read - %s", feed.ReadTime(post.Content), post.CreatedAt.Format("Jan 2, 2006")))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 6, feed.StripTags(post.Content), "", "L", false)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 10, 35, 35, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=post-"+postID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
