package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/ballop/merchplan/internal/blob"
	"github.com/ballop/merchplan/internal/models"
)

// Upload is one pending binary payload for an attachment slot.
type Upload struct {
	Filename string
	Data     []byte
}

// Attachments carries the zero-to-five pending payloads of a save, one per
// slot. Nil slots are left untouched.
type Attachments struct {
	Design   *Upload
	Trim     *Upload
	Package  *Upload
	Tag      *Upload
	PlanFile *Upload
}

// Empty reports whether no slot has a pending payload.
func (a Attachments) Empty() bool {
	return a.Design == nil && a.Trim == nil && a.Package == nil && a.Tag == nil && a.PlanFile == nil
}

// stager uploads pending payloads and rewrites the product's attachment
// references. The first failing upload aborts the whole save; the entity
// record is only written afterwards, so no attachment is ever durably
// associated with a half-saved product.
type stager struct {
	blobs blob.Store
	now   func() time.Time
}

func (s *stager) stage(ctx context.Context, p *models.Product, files Attachments) error {
	slots := []struct {
		kind   string
		upload *Upload
		ref    *string
	}{
		{"designs", files.Design, &p.DesignImage},
		{"trims", files.Trim, &p.TrimImage},
		{"packages", files.Package, &p.PackageImage},
		{"tags", files.Tag, &p.TagImage},
		{"plans", files.PlanFile, &p.PlanFileURL},
	}
	stamp := s.now().UnixMilli()
	for _, slot := range slots {
		if slot.upload == nil {
			continue
		}
		path := fmt.Sprintf("%s/%d_%s", slot.kind, stamp, slot.upload.Filename)
		url, err := s.blobs.Put(ctx, path, slot.upload.Data)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrAttachmentUpload, slot.kind, err)
		}
		*slot.ref = url
	}
	return nil
}
