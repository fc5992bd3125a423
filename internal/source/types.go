package source

// FileID indexes a FileSet; ids start at 0 in registration order.
type FileID uint32

// FileFlags records where a file came from and what loading changed.
type FileFlags uint8

const (
	// FileVirtual marks text that never lived on disk: the source embedded
	// in a tree file, test input, stdin.
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM is set when AddVirtual stripped a UTF-8 byte order mark.
	FileHadBOM
	// FileNormalizedCRLF is set when AddVirtual rewrote CRLF line ends.
	FileNormalizedCRLF
)

// File is one registered text. Spans of a tree point into Content, so Add
// keeps the bytes exactly as given.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	// LineIdx holds the offset of every '\n', ascending.
	LineIdx []uint32
	Hash    [32]byte // sha256 of Content
	Flags   FileFlags
}

// LineCol is a 1-based position for humans; Col counts bytes.
type LineCol struct {
	Line, Col uint32
}
