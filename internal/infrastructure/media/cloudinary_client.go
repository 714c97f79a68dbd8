package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"campusfind/internal/domain/service"
	"campusfind/pkg/errors"
	"campusfind/pkg/logger"
)

// CloudinaryClient uploads images through Cloudinary's unsigned preset
// endpoint. One shot per call: no retry, no resumable uploads.
type CloudinaryClient struct {
	cloudName    string
	uploadPreset string
	httpClient   *http.Client
}

func NewCloudinaryClient(cloudName, uploadPreset string) service.FileUploadService {
	return &CloudinaryClient{
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *CloudinaryClient) UploadImage(ctx context.Context, file io.Reader, fileType, folder string) (string, error) {
	body, contentType, err := c.buildForm(file, fileType, folder)
	if err != nil {
		return "", errors.Upload("Failed to prepare upload", err)
	}

	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", errors.Upload("Failed to build upload request", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Upload("Media endpoint did not respond", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Upload("Failed to read upload response", err)
	}

	var result uploadResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", errors.Upload("Unexpected upload response", err)
	}

	if resp.StatusCode != http.StatusOK || result.SecureURL == "" {
		logger.Warn("Cloudinary upload rejected (status %d): %s", resp.StatusCode, result.Error.Message)
		return "", errors.Upload("Media endpoint rejected the upload", nil)
	}

	return result.SecureURL, nil
}

func (c *CloudinaryClient) buildForm(file io.Reader, fileType, folder string) (io.Reader, string, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		var err error
		defer func() {
			pw.CloseWithError(err)
		}()

		filename := "image" + extensionFor(fileType)
		part, werr := writer.CreateFormFile("file", filename)
		if werr != nil {
			err = werr
			return
		}
		if _, werr := io.Copy(part, file); werr != nil {
			err = werr
			return
		}
		if werr := writer.WriteField("upload_preset", c.uploadPreset); werr != nil {
			err = werr
			return
		}
		if folder != "" {
			if werr := writer.WriteField("folder", folder); werr != nil {
				err = werr
				return
			}
		}
		err = writer.Close()
	}()

	return pr, writer.FormDataContentType(), nil
}

func extensionFor(fileType string) string {
	switch fileType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func (c *CloudinaryClient) Close() error {
	return nil
}
