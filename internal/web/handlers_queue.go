package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"printshop/internal/codec"
	"printshop/internal/products"
)

// QueueEntry describes one queued image.
type QueueEntry struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Bytes    int64  `json:"bytes"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Rotation int    `json:"rotation"`
}

func queueEntries(q products.Queue) []QueueEntry {
	out := make([]QueueEntry, len(q.Items))
	for i, it := range q.Items {
		b := it.Image.Bounds()
		out[i] = QueueEntry{Index: i, Name: it.Name, Bytes: it.Size, Width: b.Dx(), Height: b.Dy(), Rotation: it.Rotation}
	}
	return out
}

// GET /queue
func (s *Server) handleQueueList(w http.ResponseWriter, r *http.Request) {
	q, _ := s.getOrCreateQueue(r.Context(), w, r)
	writeJSON(w, queueEntries(q))
}

// POST /queue
func (s *Server) handleQueueAdd(w http.ResponseWriter, r *http.Request) {
	id, _ := s.sessionOrNew(w, r)
	f, err := s.parseForm(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	photos, err := f.Photos()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	added := 0
	entries, err := s.updateQueue(r, id, func(q *products.Queue) error {
		for _, p := range photos {
			if q.Add(p.Name, p.Size, p.Image) {
				added++
			}
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger().Debug("queued", "added", added, "skipped", len(photos)-added, "total", len(entries))
	writeJSON(w, entries)
}

// POST /queue/{index}/{action}
func (s *Server) handleQueueAction(w http.ResponseWriter, r *http.Request) {
	id, _ := s.sessionOrNew(w, r)
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: queue index %q", errBadRequest, r.PathValue("index")))
		return
	}
	action := products.QueueAction(r.PathValue("action"))
	entries, err := s.updateQueue(r, id, func(q *products.Queue) error {
		return q.Apply(index, action)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, entries)
}

// POST /queue/clear
func (s *Server) handleQueueClear(w http.ResponseWriter, r *http.Request) {
	id, _ := s.sessionOrNew(w, r)
	entries, err := s.updateQueue(r, id, func(q *products.Queue) error {
		q.Clear()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, entries)
}

// updateQueue applies fn to the session's queue as one step and returns the
// resulting listing.
func (s *Server) updateQueue(r *http.Request, id string, fn func(q *products.Queue) error) ([]QueueEntry, error) {
	var entries []QueueEntry
	err := s.Store.Update(r.Context(), id, func(q *products.Queue) error {
		if err := fn(q); err != nil {
			return err
		}
		entries = queueEntries(*q)
		return nil
	})
	return entries, err
}

// GET /queue/pdf
func (s *Server) handleQueuePDF(w http.ResponseWriter, r *http.Request) {
	q, _ := s.getOrCreateQueue(r.Context(), w, r)
	f := &form{r: r, cfg: s.Config}
	dpi := f.DPI()
	name := f.String("name", "merged_images")
	if err := f.Err(); err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := products.ImagesToPDF(&buf, q.Images(), dpi, s.Config.Quality, name); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger().Info("exported queue", "images", q.Len(), "dpi", dpi)
	sendFile(w, name+".pdf", codec.PDF.ContentType(), buf.Bytes())
}
