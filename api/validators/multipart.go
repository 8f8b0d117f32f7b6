package validators

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/peopledesk/peopledesk-backend/internal/blobs"
	pkgerrors "github.com/peopledesk/peopledesk-backend/pkg/errors"
)

// ReadMultipartFiles extracts every uploaded file under the named form
// field, enforcing the per-file size ceiling. The multipart parser itself
// is bounded by the same limit to keep memory use predictable.
func ReadMultipartFiles(r *http.Request, field string, maxBytes int64) ([]blobs.UploadFile, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart request")
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no files supplied")
	}

	headers := r.MultipartForm.File[field]
	files := make([]blobs.UploadFile, 0, len(headers))
	for _, header := range headers {
		file, err := readOne(header, maxBytes)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// ReadMultipartFile extracts exactly one uploaded file under the named field.
func ReadMultipartFile(r *http.Request, field string, maxBytes int64) (blobs.UploadFile, error) {
	files, err := ReadMultipartFiles(r, field, maxBytes)
	if err != nil {
		return blobs.UploadFile{}, err
	}
	return files[0], nil
}

func readOne(header *multipart.FileHeader, maxBytes int64) (blobs.UploadFile, error) {
	if header.Filename == "" {
		return blobs.UploadFile{}, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file is missing a name")
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return blobs.UploadFile{}, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file exceeds the size limit").WithDetails(map[string]any{"filename": header.Filename})
	}

	f, err := header.Open()
	if err != nil {
		return blobs.UploadFile{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file failed")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return blobs.UploadFile{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file failed")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return blobs.UploadFile{
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
