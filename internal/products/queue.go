package products

import (
	"fmt"
	"image"
	"io"
	"slices"

	"printshop/internal/fit"
	"printshop/internal/pdfpage"
)

// QueueItem is one uploaded image waiting to be exported.
type QueueItem struct {
	Name string
	Size int64
	// Rotation is the clockwise rotation applied so far, in degrees.
	Rotation int
	Image    *image.NRGBA
}

func (it QueueItem) key() string { return fmt.Sprintf("%s_%d", it.Name, it.Size) }

// Queue is an ordered list of images for the images-to-PDF export. An upload
// is identified by its file name and byte size; adding the same upload twice
// is a no-op until it is deleted or the queue is cleared.
type Queue struct {
	Items []QueueItem
}

// QueueAction is a per-item queue operation.
type QueueAction string

const (
	QueueUp     QueueAction = "up"
	QueueDown   QueueAction = "down"
	QueueRotate QueueAction = "rotate"
	QueueDelete QueueAction = "delete"
)

// Add appends an image unless the same upload is already queued. It reports
// whether the image was added.
func (q *Queue) Add(name string, size int64, img *image.NRGBA) bool {
	it := QueueItem{Name: name, Size: size, Image: img}
	for _, o := range q.Items {
		if o.key() == it.key() {
			return false
		}
	}
	q.Items = append(q.Items, it)
	return true
}

// Len returns the number of queued images.
func (q *Queue) Len() int { return len(q.Items) }

// Clone returns a queue with its own item slice. Images are shared; queue
// operations replace them rather than draw into them.
func (q Queue) Clone() Queue {
	return Queue{Items: slices.Clone(q.Items)}
}

// Clear empties the queue.
func (q *Queue) Clear() { q.Items = nil }

// Apply runs action on the item at index. Moving the first item up or the
// last item down does nothing.
func (q *Queue) Apply(index int, action QueueAction) error {
	if index < 0 || index >= len(q.Items) {
		return optionError("queue index %d out of range [0,%d)", index, len(q.Items))
	}
	switch action {
	case QueueUp:
		if index > 0 {
			q.Items[index-1], q.Items[index] = q.Items[index], q.Items[index-1]
		}
	case QueueDown:
		if index < len(q.Items)-1 {
			q.Items[index+1], q.Items[index] = q.Items[index], q.Items[index+1]
		}
	case QueueRotate:
		img, err := fit.Rotate(q.Items[index].Image, 90)
		if err != nil {
			return err
		}
		q.Items[index].Image = img
		q.Items[index].Rotation = (q.Items[index].Rotation + 90) % 360
	case QueueDelete:
		q.Items = append(q.Items[:index], q.Items[index+1:]...)
	default:
		return optionError("unknown queue action %q", action)
	}
	return nil
}

// Images returns the queued images in order.
func (q *Queue) Images() []image.Image {
	out := make([]image.Image, len(q.Items))
	for i, it := range q.Items {
		out[i] = it.Image
	}
	return out
}

// ImagesToPDF writes one page per image, each page exactly the image's
// printed size at dpi.
func ImagesToPDF(w io.Writer, images []image.Image, dpi, quality int, title string) error {
	if len(images) == 0 {
		return optionError("no images to export")
	}
	pages := make([]pdfpage.Page, len(images))
	for i, img := range images {
		p, err := pdfpage.PageForImage(img, dpi)
		if err != nil {
			return fmt.Errorf("image %d: %w", i+1, err)
		}
		pages[i] = p
	}
	return pdfpage.Write(w, pages, pdfpage.Options{Quality: quality, Title: title})
}
