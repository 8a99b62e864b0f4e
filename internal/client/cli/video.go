package cli

import "context"

// runVideoURL запрашивает URL прямой загрузки видео
func (c *Cli) runVideoURL(ctx context.Context) error {
	if err := c.requireAuth(ctx); err != nil {
		return err
	}

	upload, err := c.apiClient.CreateVideoUpload(ctx)
	if err != nil {
		return wrapSessionErr(err)
	}

	c.io.Printf("Upload ID:  %s\n", upload.UploadID)
	c.io.Printf("Upload URL: %s\n", upload.UploadURL)
	c.io.Println("Upload the file with an HTTP PUT to the URL above.")
	return nil
}
