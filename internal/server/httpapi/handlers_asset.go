package httpapi

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlebedeva/projectdock/internal/server/services"
)

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) handleUploadDocuments(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	files := make([]services.FileUpload, 0, len(headers))
	for _, fh := range headers {
		content, err := readUpload(fh)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "failed to read " + fh.Filename})
			return
		}
		files = append(files, services.FileUpload{Filename: fh.Filename, Content: content})
	}

	results, err := s.assets.UploadDocuments(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx), files)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	type fileResult struct {
		Filename string `json:"filename"`
		StoredAs string `json:"stored_as,omitempty"`
		FileURL  string `json:"file_url,omitempty"`
		Error    string `json:"error,omitempty"`
	}
	response := make([]fileResult, 0, len(results))
	for _, r := range results {
		fr := fileResult{Filename: r.Filename, StoredAs: r.StoredAs, FileURL: r.FileURL}
		if r.Err != nil {
			fr.Error = r.Err.Error()
		}
		response = append(response, fr)
	}

	ctx.JSON(http.StatusOK, gin.H{"files": response})
}

func (s *Server) handleListDocuments(ctx *gin.Context) {
	docs, err := s.assets.ListDocuments(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx))
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	type documentResponse struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		FileURL  string `json:"file_url"`
	}
	response := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		response = append(response, documentResponse{ID: d.ID, Filename: d.Filename, FileURL: d.FileURL})
	}

	ctx.JSON(http.StatusOK, response)
}

func (s *Server) handleDownloadDocument(ctx *gin.Context) {
	doc, data, err := s.assets.DownloadDocument(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx))
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename="+doc.Filename)
	ctx.Data(http.StatusOK, "application/octet-stream", data)
}

func (s *Server) handleUpdateDocument(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	content, err := readUpload(fh)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	if err := s.assets.UpdateDocument(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx), content); err != nil {
		s.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "file content updated successfully"})
}

func (s *Server) handleDeleteDocument(ctx *gin.Context) {
	if err := s.assets.DeleteDocument(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx)); err != nil {
		s.writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (s *Server) handleUploadLogo(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	content, err := readUpload(fh)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	url, err := s.assets.UploadLogo(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx), fh.Filename, content)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"logo_url": url})
}

func (s *Server) handleDownloadLogo(ctx *gin.Context) {
	filename, data, err := s.assets.DownloadLogo(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx))
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename="+filename)
	ctx.Data(http.StatusOK, "application/octet-stream", data)
}

func (s *Server) handleDeleteLogo(ctx *gin.Context) {
	if err := s.assets.DeleteLogo(ctx.Request.Context(), ctx.Param("id"), currentUserID(ctx)); err != nil {
		s.writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
