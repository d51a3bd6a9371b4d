package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"eseva-portal/internal/adapter/http/middleware"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"
	"eseva-portal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxMultipartMemory is held in memory per upload; the rest spills to disk.
const maxMultipartMemory = 8 << 20

// caller returns the authenticated account, writing 401 when there is none.
func caller(c *gin.Context) (ports.TokenClaims, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
	}
	return claims, ok
}

// bindError maps a binding failure to the API error taxonomy.
func bindError(err error) *apperror.AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.ErrBodyTooLarge()
	}
	return apperror.Validation(err.Error())
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}

// uuidParam parses a UUID path parameter, writing 400 when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.Validation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// multipartInput collects the text fields and the first file of each file
// field of a multipart request.
func multipartInput(c *gin.Context) (map[string]string, []ports.UploadedFile, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, nil, err
	}
	form := c.Request.MultipartForm

	fields := make(map[string]string, len(form.Value))
	for k, v := range form.Value {
		if len(v) > 0 {
			fields[k] = strings.TrimSpace(v[0])
		}
	}
	return fields, uploadedFiles(form.File), nil
}

// fileField picks the upload sent as field.
func fileField(files []ports.UploadedFile, field string) (ports.UploadedFile, bool) {
	for _, f := range files {
		if f.Field == field {
			return f, true
		}
	}
	return ports.UploadedFile{}, false
}

func uploadedFiles(headers map[string][]*multipart.FileHeader) []ports.UploadedFile {
	files := make([]ports.UploadedFile, 0, len(headers))
	for field, fhs := range headers {
		if len(fhs) == 0 {
			continue
		}
		fh := fhs[0]
		files = append(files, ports.UploadedFile{
			Field:    field,
			Filename: filepath.Base(fh.Filename),
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Field < files[j].Field })
	return files
}
