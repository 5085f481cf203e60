package storage_test

import (
	"testing"

	"github.com/gsingh-io/dbbackup/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseOutputOptions(t *testing.T) {
	t.Parallel()

	dataset := []struct {
		input    string
		expected storage.FormatOpts
		wantErr  string
	}{
		{
			input:    "",
			expected: storage.FormatOpts{Type: storage.ConsoleFormat},
		},
		{
			input:    "console",
			expected: storage.FormatOpts{Type: storage.ConsoleFormat},
		},
		{
			input: "go-template-file=/tmp/template.tmpl",
			expected: storage.FormatOpts{
				Type:         storage.GoTemplateFileFormat,
				TemplatePath: "/tmp/template.tmpl",
			},
		},
		{
			input:   "go-template-file",
			wantErr: "you need to provide a path to template file",
		},
		{
			input:   "yaml",
			wantErr: "\"yaml\" is not a valid output format",
		},
	}

	for _, ds := range dataset {
		opts, err := storage.ParseOutputOptions(ds.input)
		if ds.wantErr != "" {
			require.ErrorContains(t, err, ds.wantErr)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, ds.expected, opts)
	}
}

func Test_HumanSize(t *testing.T) {
	t.Parallel()

	dataset := []struct {
		size     int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}

	for _, ds := range dataset {
		assert.Equal(t, ds.expected, storage.HumanSize(ds.size))
	}
}
