package parser

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ralt/rpm-builder/internal/models"
)

// ChangelogDateLayout is the only accepted changelog date format (yyyy-mm-dd, UTC)
const ChangelogDateLayout = "2006-01-02"

// ParseChangelogEntry parses an <author>:<content>:<yyyy-mm-dd> entry.
// The timestamp is midnight UTC of the given day.
func ParseChangelogEntry(raw string) (models.ChangelogEntry, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return models.ChangelogEntry{}, models.NewError(models.ErrMalformedChangelogEntry, raw,
			fmt.Errorf("expected 3 ':' separated parts, got %d, it needs to be of the form <author>:<content>:<yyyy-mm-dd>", len(parts)))
	}

	author, content, rawDate := parts[0], parts[1], parts[2]
	if author == "" || content == "" {
		return models.ChangelogEntry{}, models.NewError(models.ErrMalformedChangelogEntry, raw,
			fmt.Errorf("author and content must not be empty"))
	}

	date, err := time.ParseInLocation(ChangelogDateLayout, rawDate, time.UTC)
	if err != nil {
		return models.ChangelogEntry{}, models.NewError(models.ErrInvalidChangelogDate, raw,
			fmt.Errorf("error while parsing date %q: %w", rawDate, err))
	}

	// RPM stores changelog times as unsigned 32 bit seconds
	ts := date.Truncate(24 * time.Hour).Unix()
	if ts < 0 || ts > math.MaxUint32 {
		return models.ChangelogEntry{}, models.NewError(models.ErrInvalidChangelogDate, raw,
			fmt.Errorf("date %q is outside 1970-01-01 to 2106-02-07", rawDate))
	}

	return models.ChangelogEntry{
		Author:  author,
		Content: content,
		Time:    ts,
	}, nil
}
