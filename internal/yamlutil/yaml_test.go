package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-qrtable/internal/yamlutil"
)

type generator struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type document struct {
	Placeholder string      `yaml:"placeholder"`
	Size        int         `yaml:"size"`
	Generators  []generator `yaml:"generators"`
}

// ---------------------------------------------------------------------------
// TestDecode - Strict parsing into structs
// ---------------------------------------------------------------------------

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		data       string
		dest       any
		wantErr    error
		wantErrSub string
	}{
		{
			name:    "empty input",
			data:    "",
			dest:    &document{},
			wantErr: yamlutil.ErrEmptyInput,
		},
		{
			name:    "nil destination",
			data:    "size: 1",
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:       "unknown field rejected",
			data:       "placeholder: X\ncolour: red\n",
			dest:       &document{},
			wantErrSub: "yamlutil:",
		},
		{
			name:       "syntax error",
			data:       "generators: [unclosed",
			dest:       &document{},
			wantErrSub: "yamlutil:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Decode([]byte(tt.data), tt.dest)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErrSub != "" && !strings.Contains(err.Error(), tt.wantErrSub) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErrSub)
			}
		})
	}
}

func TestDecode_Valid(t *testing.T) {
	t.Parallel()

	data := `placeholder: RefTable
size: 300
generators:
  - name: local
    url: http://localhost/qr?d={data}
`
	var doc document
	if err := yamlutil.Decode([]byte(data), &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Placeholder != "RefTable" {
		t.Errorf("Placeholder = %q, want %q", doc.Placeholder, "RefTable")
	}
	if doc.Size != 300 {
		t.Errorf("Size = %d, want 300", doc.Size)
	}
	if len(doc.Generators) != 1 || doc.Generators[0].Name != "local" {
		t.Errorf("Generators = %+v, want one named local", doc.Generators)
	}
}

func TestDecode_TooLarge(t *testing.T) {
	// Not parallel: mutates MaxInputSize.
	orig := yamlutil.MaxInputSize
	yamlutil.MaxInputSize = 16
	defer func() { yamlutil.MaxInputSize = orig }()

	err := yamlutil.Decode([]byte("placeholder: "+strings.Repeat("x", 32)), &document{})
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("error = %v, want ErrInputTooLarge", err)
	}
}

// ---------------------------------------------------------------------------
// TestEncode - Round trip through Decode
// ---------------------------------------------------------------------------

func TestEncode(t *testing.T) {
	t.Parallel()

	in := document{
		Placeholder: "QRCodeTable",
		Size:        600,
		Generators:  []generator{{Name: "a", URL: "https://a.test/?d={data}"}},
	}
	out, err := yamlutil.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(out), "placeholder: QRCodeTable") {
		t.Errorf("output missing placeholder:\n%s", out)
	}

	var back document
	if err := yamlutil.Decode(out, &back); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Size != in.Size || back.Generators[0].URL != in.Generators[0].URL {
		t.Errorf("round trip = %+v, want %+v", back, in)
	}
}
