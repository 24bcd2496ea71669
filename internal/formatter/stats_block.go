package formatter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
)

// StatsBlock is one machine readable result block:
//
//	[RC_STATS]
//	type:RC
//	scenario:linear
//	objects_created:5
//	...
//	[/RC_STATS]
type StatsBlock struct {
	Type            string
	Scenario        string
	ObjectsCreated  int
	ObjectsLeft     int
	MemoryFreed     uint64
	MemoryLeaked    uint64
	ExecutionTimeMs float64
}

// BlockTag returns the short tag used for a collector name.
func BlockTag(collector string) string {
	switch collector {
	case "reference_counting":
		return "RC"
	case "mark_sweep":
		return "MS"
	default:
		return strings.ToUpper(collector)
	}
}

// WriteStatsBlocks writes one block per result of cmp.
func WriteStatsBlocks(w io.Writer, cmp *model.Comparison) error {
	for i := range cmp.Results {
		if err := WriteStatsBlock(w, cmp.ScenarioName, &cmp.Results[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteStatsBlock writes res as a block.
func WriteStatsBlock(w io.Writer, scenario string, res *model.GCResult) error {
	tag := BlockTag(res.Collector)
	_, err := fmt.Fprintf(w,
		"[%s_STATS]\ntype:%s\nscenario:%s\nobjects_created:%d\nobjects_left:%d\nmemory_freed:%d\nmemory_leaked:%d\nexecution_time_ms:%.3f\n[/%s_STATS]\n",
		tag, tag, scenario, res.ObjectsCreated, res.ObjectsLeft, res.MemoryFreed, res.MemoryLeaked, res.ExecutionTimeMs, tag)
	return err
}

// ParseStatsBlocks reads every block in r. Lines outside blocks are
// ignored.
func ParseStatsBlocks(r io.Reader) ([]StatsBlock, error) {
	var (
		blocks []StatsBlock
		cur    *StatsBlock
		end    string
	)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		switch {
		case cur == nil:
			if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "_STATS]") && !strings.HasPrefix(text, "[/") {
				cur = &StatsBlock{}
				end = "[/" + text[1:]
			}
		case text == end:
			blocks = append(blocks, *cur)
			cur = nil
		default:
			key, value, ok := strings.Cut(text, ":")
			if !ok {
				continue
			}
			if err := cur.set(key, value); err != nil {
				return nil, apperrors.Wrap(apperrors.CodeParseError, fmt.Sprintf("line %d", line), err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if cur != nil {
		return nil, apperrors.Newf(apperrors.CodeParseError, "unterminated block, expected %s", end)
	}
	return blocks, nil
}

func (b *StatsBlock) set(key, value string) error {
	var err error
	switch key {
	case "type":
		b.Type = value
	case "scenario":
		b.Scenario = value
	case "objects_created":
		b.ObjectsCreated, err = strconv.Atoi(value)
	case "objects_left":
		b.ObjectsLeft, err = strconv.Atoi(value)
	case "memory_freed":
		b.MemoryFreed, err = strconv.ParseUint(value, 10, 64)
	case "memory_leaked":
		b.MemoryLeaked, err = strconv.ParseUint(value, 10, 64)
	case "execution_time_ms":
		b.ExecutionTimeMs, err = strconv.ParseFloat(value, 64)
	}
	return err
}
