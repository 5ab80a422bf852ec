package apptest

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// UploadError is the status code attached to an uploaded file.
type UploadError int

const (
	UploadErrOK        UploadError = 0
	UploadErrIniSize   UploadError = 1
	UploadErrFormSize  UploadError = 2
	UploadErrPartial   UploadError = 3
	UploadErrNoFile    UploadError = 4
	UploadErrNoTmpDir  UploadError = 6
	UploadErrCantWrite UploadError = 7
	UploadErrExtension UploadError = 8
)

func (e UploadError) String() string {
	switch e {
	case UploadErrOK:
		return "ok"
	case UploadErrIniSize:
		return "exceeds max upload size"
	case UploadErrFormSize:
		return "exceeds form max file size"
	case UploadErrPartial:
		return "partially uploaded"
	case UploadErrNoFile:
		return "no file"
	case UploadErrNoTmpDir:
		return "missing temporary directory"
	case UploadErrCantWrite:
		return "failed to write to disk"
	case UploadErrExtension:
		return "stopped by extension"
	}
	return "unknown"
}

// FileNode is one node of the files argument of Client.Request. It is one of
// UploadDescriptor, UploadList, MultiUpload or Files.
type FileNode interface {
	fileNode()
}

// UploadDescriptor describes a single incoming file. TmpName must point at a
// readable file when the request is built; the file is never removed.
type UploadDescriptor struct {
	Name    string
	TmpName string
	Size    int64
	Error   UploadError
	Type    string
}

// UploadList is an ordered set of files sent under one field name.
type UploadList []UploadDescriptor

// MultiUpload is the parallel-array shape of a multi-file field: entry i of
// every slice describes file i.
type MultiUpload struct {
	Name    []string
	TmpName []string
	Size    []int64
	Error   []UploadError
	Type    []string
}

// Files groups nodes by field name. Groups nest.
type Files map[string]FileNode

func (UploadDescriptor) fileNode() {}
func (UploadList) fileNode()       {}
func (MultiUpload) fileNode()      {}
func (Files) fileNode()            {}

// GenerateUploadFile builds a descriptor for the file at path. The name is
// the base name of path and the type is sniffed from the content. The error
// code defaults to UploadErrOK.
func GenerateUploadFile(path string, uploadErr ...UploadError) (UploadDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return UploadDescriptor{}, errors.Wrap(err, "stat upload file")
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return UploadDescriptor{}, errors.Wrap(err, "detect upload file type")
	}

	code := UploadErrOK
	if len(uploadErr) > 0 {
		code = uploadErr[0]
	}

	return UploadDescriptor{
		Name:    filepath.Base(path),
		TmpName: path,
		Size:    info.Size(),
		Error:   code,
		Type:    mediaType(mtype.String()),
	}, nil
}

// GenerateUploadFiles builds the multi-file shape for paths, in order.
func GenerateUploadFiles(paths []string) (MultiUpload, error) {
	var multi MultiUpload
	for _, path := range paths {
		info, err := GenerateUploadFile(path)
		if err != nil {
			return MultiUpload{}, err
		}
		multi.Name = append(multi.Name, info.Name)
		multi.TmpName = append(multi.TmpName, info.TmpName)
		multi.Size = append(multi.Size, info.Size)
		multi.Error = append(multi.Error, info.Error)
		multi.Type = append(multi.Type, info.Type)
	}
	return multi, nil
}

// descriptors splits the parallel arrays into one descriptor per file.
// Missing entries in the shorter slices are left at their zero value.
func (m MultiUpload) descriptors() UploadList {
	list := make(UploadList, len(m.TmpName))
	for i := range m.TmpName {
		list[i].TmpName = m.TmpName[i]
		if i < len(m.Name) {
			list[i].Name = m.Name[i]
		}
		if i < len(m.Size) {
			list[i].Size = m.Size[i]
		}
		if i < len(m.Error) {
			list[i].Error = m.Error[i]
		}
		if i < len(m.Type) {
			list[i].Type = m.Type[i]
		}
	}
	return list
}

// UploadedNode is one node of the uploaded files tree seen by the
// application: *UploadedFile, UploadedFileList or UploadedFiles.
type UploadedNode interface {
	uploadedNode()
}

// UploadedFileList holds the files of a multi-file field in upload order.
type UploadedFileList []*UploadedFile

// UploadedFiles mirrors the Files argument with every descriptor replaced by
// an *UploadedFile.
type UploadedFiles map[string]UploadedNode

func (*UploadedFile) uploadedNode()    {}
func (UploadedFileList) uploadedNode() {}
func (UploadedFiles) uploadedNode()    {}

// File returns the single file uploaded under name.
func (u UploadedFiles) File(name string) (*UploadedFile, bool) {
	f, ok := u[name].(*UploadedFile)
	return f, ok
}

// List returns the files of a multi-file field. A single file is returned as
// a list of one.
func (u UploadedFiles) List(name string) UploadedFileList {
	switch node := u[name].(type) {
	case UploadedFileList:
		return node
	case *UploadedFile:
		return UploadedFileList{node}
	}
	return nil
}

// Group returns the nested group stored under name.
func (u UploadedFiles) Group(name string) UploadedFiles {
	group, _ := u[name].(UploadedFiles)
	return group
}

// UploadedFile is the handle the application gets for an uploaded file.
type UploadedFile struct {
	path      string
	name      string
	mediaType string
	size      int64
	err       UploadError
	moved     bool
}

func newUploadedFile(d UploadDescriptor) *UploadedFile {
	name := d.Name
	if name == "" {
		name = filepath.Base(d.TmpName)
	}
	return &UploadedFile{
		path:      d.TmpName,
		name:      name,
		mediaType: d.Type,
		size:      d.Size,
		err:       d.Error,
	}
}

func (f *UploadedFile) ClientFilename() string  { return f.name }
func (f *UploadedFile) ClientMediaType() string { return f.mediaType }
func (f *UploadedFile) Size() int64             { return f.size }
func (f *UploadedFile) Error() UploadError      { return f.err }

// Stream opens the uploaded file for reading. The caller closes it.
func (f *UploadedFile) Stream() (io.ReadSeekCloser, error) {
	if f.moved {
		return nil, ErrFileMoved
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, errors.Wrap(err, "open uploaded file")
	}
	return file, nil
}

// Contents reads the whole uploaded file.
func (f *UploadedFile) Contents() ([]byte, error) {
	stream, err := f.Stream()
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return io.ReadAll(stream)
}

// MoveTo copies the uploaded file to target. The temporary file is left in
// place since the handle does not own it; the handle is unusable afterwards.
func (f *UploadedFile) MoveTo(target string) error {
	if f.moved {
		return ErrFileMoved
	}

	src, err := f.Stream()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return errors.Wrap(err, "create move target")
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.Wrap(err, "copy uploaded file")
	}
	if err := dst.Close(); err != nil {
		return errors.Wrap(err, "close move target")
	}

	f.moved = true
	return nil
}

// convertUploadFiles turns the files argument into the tree of handles.
func convertUploadFiles(files Files) UploadedFiles {
	uploaded := make(UploadedFiles, len(files))
	for name, node := range files {
		if converted := convertUploadNode(node); converted != nil {
			uploaded[name] = converted
		}
	}
	return uploaded
}

func convertUploadNode(node FileNode) UploadedNode {
	switch n := node.(type) {
	case UploadDescriptor:
		return newUploadedFile(n)
	case *UploadDescriptor:
		if n == nil {
			return nil
		}
		return newUploadedFile(*n)
	case UploadList:
		list := make(UploadedFileList, 0, len(n))
		for _, d := range n {
			list = append(list, newUploadedFile(d))
		}
		return list
	case MultiUpload:
		return convertUploadNode(n.descriptors())
	case Files:
		return convertUploadFiles(n)
	}
	return nil
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
