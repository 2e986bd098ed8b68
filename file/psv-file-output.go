package file

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	c "github.com/relloyd/psvexport/constants"
	"github.com/relloyd/psvexport/logger"
	"github.com/relloyd/psvexport/stream"
)

// PSVWriter writes delimited records to any io.Writer.
type PSVWriter struct {
	name      string // used in error messages
	delimiter rune
	quoteAll  bool
	fWriter   *bufio.Writer
	rowCount  int
}

// NewPSVWriter returns a PSVWriter that buffers output to w. Call Flush when done.
func NewPSVWriter(w io.Writer, name string, delimiter rune, quoteAll bool) (*PSVWriter, error) {
	if delimiter == c.FieldQuote || delimiter == '\n' || delimiter == '\r' {
		return nil, fmt.Errorf("invalid field delimiter %q", delimiter)
	}
	return &PSVWriter{name: name, delimiter: delimiter, quoteAll: quoteAll, fWriter: bufio.NewWriter(w)}, nil
}

// WriteRecord writes the fields joined by the delimiter and terminated by a new line.
func (f *PSVWriter) WriteRecord(fields []string) error {
	for idx, v := range fields {
		if idx > 0 {
			if _, err := f.fWriter.WriteRune(f.delimiter); err != nil {
				return errors.Wrapf(err, "error writing to %q", f.name)
			}
		}
		if _, err := f.fWriter.WriteString(f.formatField(v)); err != nil {
			return errors.Wrapf(err, "error writing to %q", f.name)
		}
	}
	if _, err := f.fWriter.WriteString(c.LineTerminator); err != nil {
		return errors.Wrapf(err, "error writing to %q", f.name)
	}
	f.rowCount++
	return nil
}

// WriteRowSet writes every row in rows. If header is true the column names are written first.
func (f *PSVWriter) WriteRowSet(rows stream.RowSet, header bool) error {
	if header {
		if err := f.WriteRecord(rows.Columns); err != nil {
			return err
		}
	}
	for _, row := range rows.Rows {
		if err := f.WriteRecord(row.Strings()); err != nil {
			return err
		}
	}
	return nil
}

// formatField quotes v if we quote everything or if it contains characters that need quoting.
// Embedded quotes are doubled.
func (f *PSVWriter) formatField(v string) string {
	needsQuote := f.quoteAll || strings.ContainsRune(v, f.delimiter) || strings.ContainsAny(v, "\"\r\n")
	if !needsQuote {
		return v
	}
	q := string(c.FieldQuote)
	return q + strings.Replace(v, q, q+q, -1) + q
}

// RowCount returns the number of records written so far.
func (f *PSVWriter) RowCount() int {
	return f.rowCount
}

// Flush writes any buffered records.
func (f *PSVWriter) Flush() error {
	if err := f.fWriter.Flush(); err != nil {
		return errors.Wrapf(err, "unable to flush %q", f.name)
	}
	return nil
}

// PSVFileOutput writes delimited records to a single OS file that is truncated on creation.
type PSVFileOutput struct {
	*PSVWriter
	log      logger.Logger
	fileName string
	file     *os.File
}

// NewPSVFileOutput creates the parent directory of fileName if required and opens the file for writing.
// Any existing file is truncated so output is never appended.
func NewPSVFileOutput(log logger.Logger, fileName string, delimiter rune, quoteAll bool) (*PSVFileOutput, error) {
	if fileName == "" {
		return nil, errors.New("missing output file name")
	}
	if delimiter == c.FieldQuote || delimiter == '\n' || delimiter == '\r' {
		return nil, fmt.Errorf("invalid field delimiter %q", delimiter)
	}
	if err := os.MkdirAll(filepath.Dir(fileName), 0755); err != nil {
		return nil, errors.Wrapf(err, "unable to create directory for file %q", fileName)
	}
	f, err := os.Create(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create file %q", fileName)
	}
	w, _ := NewPSVWriter(f, fileName, delimiter, quoteAll) // delimiter is already validated.
	log.Debug("created output file ", fileName, "; delimiter=", string(delimiter), "; quoteAll=", quoteAll)
	return &PSVFileOutput{PSVWriter: w, log: log, fileName: fileName, file: f}, nil
}

// Name returns the full path of the output file.
func (f *PSVFileOutput) Name() string {
	return f.fileName
}

// Close flushes buffered records and closes the OS file.
func (f *PSVFileOutput) Close() error {
	if f.file == nil {
		return nil
	}
	errFlush := f.Flush()
	errClose := f.file.Close()
	f.file = nil
	if errFlush != nil {
		return errFlush
	}
	if errClose != nil {
		return errors.Wrapf(errClose, "unable to close file %q", f.fileName)
	}
	return nil
}

// WritePSV writes rows to fileName, one row per line, fields joined by delimiter.
// If header is true the RowSet column names are written first.
func WritePSV(log logger.Logger, fileName string, rows stream.RowSet, delimiter rune, quoteAll bool, header bool) (err error) {
	out, err := NewPSVFileOutput(log, fileName, delimiter, quoteAll)
	if err != nil {
		return err
	}
	defer func() {
		if errClose := out.Close(); errClose != nil && err == nil {
			err = errClose
		}
	}()
	err = out.WriteRowSet(rows, header)
	return err
}

// VerifyFile returns an error unless fileName exists, is a regular file and is non-empty.
func VerifyFile(fileName string) error {
	info, err := os.Stat(fileName)
	if err != nil {
		return errors.Wrapf(err, "file does not exist: %v", fileName)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %v", fileName)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file is empty: %v", fileName)
	}
	return nil
}

// OutputPath builds <root>/<folder>/<name>_<YYYYMMDD>.psv using the UTC date of runDate.
func OutputPath(root string, folder string, name string, runDate time.Time) string {
	fileName := fmt.Sprintf("%v_%v%v", name, runDate.UTC().Format(c.TimeFormatFileDate), c.FileExtensionPsv)
	return filepath.Join(root, folder, fileName)
}
