package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("trace: syntax error")

// OpKind identifies a trace operation.
type OpKind byte

const (
	OpAlloc   OpKind = 'a'
	OpRealloc OpKind = 'r'
	OpFree    OpKind = 'f'
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	default:
		return fmt.Sprintf("OpKind(%q)", byte(k))
	}
}

// Op is one trace line.
type Op struct {
	Kind OpKind
	ID   int
	Size uint32 // zero for OpFree
	Line int
}

// Trace is a parsed trace file.
type Trace struct {
	Name          string
	SuggestedHeap int
	NumIDs        int
	Weight        int
	Ops           []Op
}

// ParseFile parses the trace at path; the trace is named after the file.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tr.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return tr, nil
}

// Parse reads a trace. Errors carry the offending line number and wrap
// ErrSyntax.
func Parse(r io.Reader) (*Trace, error) {
	sc := bufio.NewScanner(r)
	tr := &Trace{}
	var numOps int
	header := []*int{&tr.SuggestedHeap, &tr.NumIDs, &numOps, &tr.Weight}

	line := 0
	seen := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if seen < len(header) {
			n, err := strconv.Atoi(text)
			if err != nil || n < 0 {
				return nil, syntaxErr(line, "header field %d: %q is not a non-negative integer", seen+1, text)
			}
			*header[seen] = n
			seen++
			if seen == len(header) {
				tr.Ops = make([]Op, 0, numOps)
			}
			continue
		}

		op, err := parseOp(text, line, tr.NumIDs)
		if err != nil {
			return nil, err
		}
		tr.Ops = append(tr.Ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if seen < len(header) {
		return nil, syntaxErr(line, "truncated header: %d of %d fields", seen, len(header))
	}
	if len(tr.Ops) != numOps {
		return nil, syntaxErr(line, "header declares %d ops, found %d", numOps, len(tr.Ops))
	}
	return tr, nil
}

func parseOp(text string, line, numIDs int) (Op, error) {
	fields := strings.Fields(text)
	if len(fields[0]) != 1 {
		return Op{}, syntaxErr(line, "unknown op %q", fields[0])
	}
	op := Op{Kind: OpKind(fields[0][0]), Line: line}

	want := 3
	switch op.Kind {
	case OpAlloc, OpRealloc:
	case OpFree:
		want = 2
	default:
		return Op{}, syntaxErr(line, "unknown op %q", fields[0])
	}
	if len(fields) != want {
		return Op{}, syntaxErr(line, "%s takes %d fields, got %d", op.Kind, want-1, len(fields)-1)
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 || id >= numIDs {
		return Op{}, syntaxErr(line, "id %q out of range [0,%d)", fields[1], numIDs)
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return Op{}, syntaxErr(line, "size %q: %v", fields[2], err)
		}
		op.Size = uint32(size)
	}
	return op, nil
}

func syntaxErr(line int, format string, args ...any) error {
	return fmt.Errorf("line %d: %s: %w", line, fmt.Sprintf(format, args...), ErrSyntax)
}
