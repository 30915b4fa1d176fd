package util

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TensorExt is the extension of raw tensor dumps.
const TensorExt = ".bin"

// ErrMalformedTensorFile is returned when a dump is not a whole number of
// float32 values.
var ErrMalformedTensorFile = errors.New("malformed tensor file")

// TensorFile represents a raw model output tensor dumped to disk.
type TensorFile struct {
	// Path is the path to the tensor file.
	Path string
	// Data is the decoded little-endian float32 values.
	Data []float32
	// Frame is the frame number parsed from the file name.
	Frame int
}

// LoadTensorFile reads a raw little-endian float32 tensor dump.
//
// Arguments:
// - path: Path to the tensor file.
//
// Returns:
// - []float32: The tensor values.
// - error: Error if the file cannot be read or its size is not a multiple of 4.
func LoadTensorFile(path string) ([]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, errors.Wrapf(ErrMalformedTensorFile, "%s: %d bytes", path, len(raw))
	}

	data := make([]float32, len(raw)/4)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, data); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return data, nil
}

// WriteTensorFile writes data as a raw little-endian float32 dump.
func WriteTensorFile(path string, data []float32) error {
	var buf bytes.Buffer
	buf.Grow(len(data) * 4)
	if err := binary.Write(&buf, binary.LittleEndian, data); err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadDirectoryTensorFiles reads all frame-N.bin tensor dumps from a directory.
//
// Arguments:
// - dir: Directory path containing tensor files.
//
// Returns:
// - []TensorFile: Slice of TensorFile sorted by frame number.
// - error: Error if loading fails.
func LoadDirectoryTensorFiles(dir string) ([]TensorFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var tensors []TensorFile
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != TensorExt {
			continue
		}

		path := filepath.Join(dir, file.Name())
		frame, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(file.Name(), "frame-"), TensorExt))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing frame number of %s", file.Name())
		}
		data, err := LoadTensorFile(path)
		if err != nil {
			return nil, err
		}
		tensors = append(tensors, TensorFile{
			Path:  path,
			Data:  data,
			Frame: frame,
		})
	}

	sort.Slice(tensors, func(i, j int) bool {
		return tensors[i].Frame < tensors[j].Frame
	})

	return tensors, nil
}
