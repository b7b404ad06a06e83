package archive

import (
	"bytes"
	"context"
	"path"
	"time"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/expense-tracker/pkg/helpers"
)

// GCSArchiver keeps a copy of every emailed CSV report in a private bucket.
type GCSArchiver struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

func NewGCSArchiver(client *storage.Client, bucket string) *GCSArchiver {
	return &GCSArchiver{client: client, bucket: bucket, now: time.Now}
}

// objectPath lays reports out as reports/<user>/<yyyy>/<mm>/<timestamp>_<filename>.
func objectPath(userID, filename string, at time.Time) string {
	at = at.UTC()
	return path.Join("reports", userID, at.Format("2006"), at.Format("01"),
		at.Format("20060102T150405.000000000")+"_"+path.Base(filename))
}

// Archive uploads content and returns its gs:// URI.
func (a *GCSArchiver) Archive(ctx context.Context, userID, filename string, content []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return helpers.UploadObject(ctx, a.client, a.bucket, objectPath(userID, filename, a.now()), "text/csv", bytes.NewReader(content))
}
