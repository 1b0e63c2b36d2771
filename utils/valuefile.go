package utils

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ReadInt reads a decimal value from r the way scanf's %d would: leading
// whitespace and an optional '+' are skipped and parsing stops at the first
// non-digit. Content without leading digits, or with a value that does not
// fit, reads as 0.
func ReadInt(r io.Reader) (uint64, error) {
	content, err := ioutil.ReadAll(r)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read value")
	}
	valueStr := strings.TrimLeftFunc(string(content), unicode.IsSpace)
	valueStr = strings.TrimPrefix(valueStr, "+")
	end := 0
	for end < len(valueStr) && valueStr[end] >= '0' && valueStr[end] <= '9' {
		end++
	}
	value, err := strconv.ParseUint(valueStr[:end], 10, 64)
	if err != nil {
		return 0, nil
	}
	return value, nil
}

// WriteInt replaces the content of f with value followed by a newline.
func WriteInt(f *os.File, value uint64) error {
	if err := f.Truncate(0); err != nil {
		return errors.Wrap(err, "failed to truncate "+f.Name())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "failed to rewind "+f.Name())
	}
	if _, err := fmt.Fprintf(f, "%d\n", value); err != nil {
		return errors.Wrap(err, "failed to write "+f.Name())
	}
	return nil
}
