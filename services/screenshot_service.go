package services

import (
	"fmt"
	"log"
	"os"
	"time"
)

// ScreenshotService captures a diagnostic screenshot of the page when a
// run ends blocked or failed. Uploads go to S3 when configured, with a
// local ./static fallback.
type ScreenshotService struct {
	s3 *S3Service
}

func NewScreenshotService() *ScreenshotService {
	s3Service, err := NewS3Service()
	if err != nil {
		log.Printf("Warning: S3 not available for screenshots: %v", err)
	}

	return &ScreenshotService{s3: s3Service}
}

// Capture screenshots the session's page and stores it, returning the
// stored location.
func (s *ScreenshotService) Capture(session BrowserSession, slipID string) (string, error) {
	filename := fmt.Sprintf("slip_%s_%d.png", slipID, time.Now().Unix())
	tempPath := fmt.Sprintf("./temp_%s", filename)

	if err := session.Screenshot(tempPath); err != nil {
		return "", fmt.Errorf("failed to take screenshot: %w", err)
	}

	if s.s3 != nil {
		key := fmt.Sprintf("screenshots/%s", filename)
		url, err := s.s3.UploadFile(tempPath, key, "image/png")
		if err == nil {
			os.Remove(tempPath)
			return url, nil
		}
		log.Printf("Failed to upload screenshot to S3, keeping it locally: %v", err)
	}

	localPath := fmt.Sprintf("./static/%s", filename)
	if err := os.Rename(tempPath, localPath); err != nil {
		return "", fmt.Errorf("failed to save screenshot locally: %w", err)
	}

	return "/static/" + filename, nil
}
