package merge

import (
	"errors"
	"fmt"
	"io"

	"kitmerge/internal/resource"
	"kitmerge/internal/textutil"
)

// processUnit aligns one translated unit with the next original unit.
// Alignment is positional: the ids must agree, no search is done.
func (mg *Merger) processUnit(tra *resource.Unit) error {
	if tra == nil || !tra.Translatable {
		// The original is written when the next unit is looked up.
		return nil
	}
	if mg.flushed {
		mg.state = stateExhausted
	}

	oriEvent, err := mg.nextOriginalUnit()
	if err != nil {
		return err
	}
	if oriEvent == nil {
		mg.state = stateExhausted
		mg.errorCount++
		mg.log.Error().Str("id", tra.ID).Str("text", textutil.Truncate(tra.Source.Text(), 40)).
			Msg("No corresponding text unit in the original file")
		return nil
	}

	ori := oriEvent.Unit()
	if ori.ID != tra.ID {
		mg.state = stateMismatch
		mg.errorCount++
		mg.log.Error().Str("id", tra.ID).Str("original_id", ori.ID).
			Str("text", textutil.Truncate(ori.Source.Text(), 40)).
			Msg("De-synchronized files, writing the original unit unchanged")
		return mg.write(oriEvent)
	}

	mg.state = stateMatched
	merged := mg.transfer(ori, tra)
	return mg.write(resource.NewUnitEvent(merged))
}

// nextOriginalUnit writes original events through until the next unit that
// can take a translation. Non-translatable units and, for packagings that
// leave them out, empty units are written through as well. It returns nil
// once the original is exhausted.
func (mg *Merger) nextOriginalUnit() (*resource.Event, error) {
	if mg.state == stateExhausted {
		return nil, nil
	}
	for {
		ev, err := mg.stream.Next()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read original of %s: %w", mg.info.RelativeInputPath, err)
		}
		if ev.Type == resource.EventTextUnit {
			u := ev.Unit()
			if u != nil && u.Translatable && !(mg.skipEmptySource && u.IsEmpty()) {
				return ev, nil
			}
		}
		if err := mg.write(ev); err != nil {
			return nil, err
		}
	}
}
