package printing

import (
	"context"
	"fmt"
	"io"

	"github.com/vladislavdragonenkov/kiosk/internal/service/receipt"
)

// WriterSpooler печатает чек в io.Writer. В разработке это stdout киоска;
// на устройстве writer подменяется дескриптором системного спулера.
type WriterSpooler struct {
	w  io.Writer
	rc receipt.Context
}

// NewWriterSpooler создаёт спулер поверх writer.
func NewWriterSpooler(w io.Writer, rc receipt.Context) *WriterSpooler {
	return &WriterSpooler{w: w, rc: rc}
}

// Print кодирует чек в командный поток и пишет его целиком.
func (s *WriterSpooler) Print(_ context.Context, doc *receipt.Document) error {
	payload := receipt.Encode(doc.Commands(s.rc))
	if _, err := io.WriteString(s.w, payload); err != nil {
		return fmt.Errorf("write receipt to spooler: %w", err)
	}
	return nil
}

var _ Spooler = (*WriterSpooler)(nil)
