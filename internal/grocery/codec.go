package grocery

import (
	"bufio"
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Joseda-hg/lazyreminder/internal/tokenfile"
)

//go:embed schema/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://github.com/Joseda-hg/lazyreminder/schema/"

// decodeList reads a marker line followed by a JSON array and decodes the
// array into a slice of T. The body is checked against the named embedded
// schema before it is decoded.
func decodeList[T any](r io.Reader, token, schemaName string) ([]T, error) {
	br := bufio.NewReader(r)
	if err := tokenfile.ReadHeader(br, token); err != nil {
		if errors.Is(err, tokenfile.ErrMismatch) {
			return nil, &LoadError{Kind: ErrFormat, Msg: err.Error()}
		}
		return nil, fmt.Errorf("read grocery file: %w", err)
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("read grocery file: %w", err)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &LoadError{Kind: ErrParse, Msg: fmt.Sprintf("file is corrupt - %v", err)}
	}
	if err := validateBody(schemaName, doc); err != nil {
		return nil, err
	}

	var list []T
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &LoadError{Kind: ErrParse, Msg: fmt.Sprintf("file is corrupt - %v", err)}
	}
	return list, nil
}

// encodeList writes the marker line followed by list as a JSON array. A nil
// list is written as an empty array.
func encodeList[T any](w io.Writer, token string, list []T) error {
	if list == nil {
		list = []T{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := tokenfile.WriteHeader(w, token); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func writeFile(path string, encode func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return fmt.Errorf("encode grocery file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write grocery file: %w", err)
	}
	return nil
}

// BackupSuffix is appended to a default file that failed to load before it
// is rewritten.
const BackupSuffix = ".bak"

// backupUnreadable moves an existing file that failed to load aside so
// rewriting the default never destroys it. Missing files need no backup.
func backupUnreadable(path string, loadErr error) error {
	if errors.Is(loadErr, fs.ErrNotExist) {
		return nil
	}
	if err := os.Rename(path, path+BackupSuffix); err != nil {
		return fmt.Errorf("back up %s: %w", path, err)
	}
	return nil
}

func validateBody(schemaName string, doc any) error {
	schema, err := compileSchema(schemaName)
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return &LoadError{Kind: ErrParse, Msg: err.Error()}
		}
		leaf := firstCause(ve)
		return &LoadError{
			Kind: ErrParse,
			Path: instancePath(leaf.InstanceLocation),
			Msg:  fmt.Sprintf("file is corrupt - %s", leaf.Message),
		}
	}
	return nil
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile("schema/" + name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	url := schemaBaseURL + name
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

func firstCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

// instancePath turns a JSON pointer such as "/2/cost" into "[2].cost".
func instancePath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		if _, err := strconv.Atoi(part); err == nil {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(part)
	}
	return b.String()
}
