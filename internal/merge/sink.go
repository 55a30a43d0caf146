package merge

import (
	"errors"
	"fmt"
	"io"

	"kitmerge/internal/resource"
)

// write hands one event to the format writer.
func (mg *Merger) write(ev *resource.Event) error {
	if err := mg.writer.HandleEvent(ev); err != nil {
		return fmt.Errorf("write %s: %w", mg.info.RelativeInputPath, err)
	}
	if ev.Type == resource.EventEndDocument {
		mg.ended = true
	}
	return nil
}

// finish writes the rest of the original and closes the writer. The
// output file is complete once it returns without error.
func (mg *Merger) finish() error {
	if mg.flushed {
		return mg.checkEnded()
	}
	mg.flushed = true
	for {
		ev, err := mg.stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read original of %s: %w", mg.info.RelativeInputPath, err)
		}
		if err := mg.write(ev); err != nil {
			return err
		}
	}
	if err := mg.checkEnded(); err != nil {
		return err
	}
	if err := mg.writer.Close(); err != nil {
		return fmt.Errorf("close output of %s: %w", mg.info.RelativeInputPath, err)
	}
	return nil
}

// checkEnded fails when the original ran out before its EndDocument, which
// leaves the writer without a committed output.
func (mg *Merger) checkEnded() error {
	if !mg.ended {
		return fmt.Errorf("original of %s: %w", mg.info.RelativeInputPath, ErrIncompleteOriginal)
	}
	return nil
}

func (mg *Merger) handoffEvent() *resource.Event {
	h := *mg.handoff
	return resource.NewHandoffEvent(&h)
}
